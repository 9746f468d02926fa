// Package account provides registration, login and per-user library operations.
package account

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/osa030/melodia/internal/domain/playlist"
	"github.com/osa030/melodia/internal/domain/track"
	"github.com/osa030/melodia/internal/domain/user"
	"github.com/osa030/melodia/internal/infra/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmptyPlaylistName  = errors.New("playlist name is required")
)

// Repository is the storage used by the account service.
type Repository interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	UpdateProfile(ctx context.Context, u user.User) error
	LikeSong(ctx context.Context, userID, songID string) error
	UnlikeSong(ctx context.Context, userID, songID string) error
	LikedSongs(ctx context.Context, userID string) ([]track.Track, error)
	CreatePlaylist(ctx context.Context, p playlist.Playlist, songIDs []string) error
	GetPlaylist(ctx context.Context, id string) (playlist.Playlist, error)
	PlaylistsByOwner(ctx context.Context, ownerID string) ([]playlist.Playlist, error)
}

// Config holds account service configuration.
type Config struct {
	BcryptCost       int
	MinPasswordChars int
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  user.User
}

// Service provides account operations.
type Service struct {
	repo   Repository
	tokens *TokenRegistry
	config Config

	// Lookups of unknown emails still compare against this hash.
	dummyHash []byte
}

// NewService creates an account service.
func NewService(config Config, repo Repository, tokens *TokenRegistry) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.MinPasswordChars <= 0 {
		config.MinPasswordChars = 1
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("melodia"), config.BcryptCost)

	return &Service{
		repo:      repo,
		tokens:    tokens,
		config:    config,
		dummyHash: dummy,
	}
}

// HashPassword hashes a password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, email, password, username string) (Session, error) {
	if err := user.ValidateRegistration(email, password, username); err != nil {
		return Session{}, err
	}
	if utf8.RuneCountInString(password) < s.config.MinPasswordChars {
		return Session{}, ErrPasswordTooShort
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	u := user.NewUser(uuid.New().String(), strings.TrimSpace(username), email)
	u.PasswordHash = hash
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, err
	}

	zlog.Info().Msgf("account: registered: user=%s username=%s", u.ID, u.Username)
	return Session{Token: s.tokens.Issue(u.ID), User: *u}, nil
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, user.ErrMissingFields
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Session{}, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return Session{}, ErrInvalidCredentials
	}
	if u.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	zlog.Info().Msgf("account: logged in: user=%s", u.ID)
	return Session{Token: s.tokens.Issue(u.ID), User: u}, nil
}

// Logout revokes a token.
func (s *Service) Logout(token string) {
	s.tokens.Revoke(token)
}

// Authenticate resolves a bearer token to its user ID.
func (s *Service) Authenticate(token string) (string, error) {
	return s.tokens.Lookup(token)
}

// Me returns the user's profile.
func (s *Service) Me(ctx context.Context, userID string) (user.User, error) {
	return s.repo.GetUser(ctx, userID)
}

// UpdateProfile applies a profile patch and returns the updated profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch user.ProfilePatch) (user.User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	u.Apply(patch)
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// LikeSong adds a song to the user's liked songs.
func (s *Service) LikeSong(ctx context.Context, userID, songID string) error {
	return s.repo.LikeSong(ctx, userID, songID)
}

// UnlikeSong removes a song from the user's liked songs.
func (s *Service) UnlikeSong(ctx context.Context, userID, songID string) error {
	return s.repo.UnlikeSong(ctx, userID, songID)
}

// ListLikedSongs returns the user's liked songs.
func (s *Service) ListLikedSongs(ctx context.Context, userID string) ([]track.Track, error) {
	return s.repo.LikedSongs(ctx, userID)
}

// CreatePlaylist creates a playlist owned by the user.
func (s *Service) CreatePlaylist(ctx context.Context, userID, name string, songIDs []string) (playlist.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return playlist.Playlist{}, ErrEmptyPlaylistName
	}

	p := playlist.Playlist{
		ID:      uuid.New().String(),
		Name:    name,
		OwnerID: userID,
	}
	if err := s.repo.CreatePlaylist(ctx, p, songIDs); err != nil {
		return playlist.Playlist{}, err
	}
	return s.repo.GetPlaylist(ctx, p.ID)
}

// ListMyPlaylists returns the playlists the user created.
func (s *Service) ListMyPlaylists(ctx context.Context, userID string) ([]playlist.Playlist, error) {
	return s.repo.PlaylistsByOwner(ctx, userID)
}
