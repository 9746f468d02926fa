package account

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/osa030/melodia/internal/domain/track"
	"github.com/osa030/melodia/internal/domain/user"
	"github.com/osa030/melodia/internal/infra/store"
)

func newTestService(t *testing.T) (*Service, *TokenRegistry) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tokens := NewTokenRegistry()
	svc := NewService(Config{BcryptCost: bcrypt.MinCost}, s, tokens)

	hash, err := svc.HashPassword("demo")
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, hash))

	return svc, tokens
}

func TestService_Register(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		username string
		wantErr  error
	}{
		{name: "missing email", password: "pw", username: "bob", wantErr: user.ErrMissingFields},
		{name: "missing password", email: "bob@example.com", username: "bob", wantErr: user.ErrMissingFields},
		{name: "missing username", email: "bob@example.com", password: "pw", wantErr: user.ErrMissingFields},
		{name: "invalid email", email: "not-an-email", password: "pw", username: "bob", wantErr: user.ErrInvalidEmail},
		{name: "taken email", email: "JOAO@example.com", password: "pw", username: "bob", wantErr: ErrEmailTaken},
		{name: "ok", email: "bob@example.com", password: "pw", username: " bob "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.Register(ctx, tt.email, tt.password, tt.username)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.Token)
			assert.Equal(t, "bob", session.User.Username)
			assert.Equal(t, "bob@example.com", session.User.Email)
			assert.Equal(t, user.AvatarBaseURL+"bob", session.User.AvatarURL)

			userID, err := tokens.Lookup(session.Token)
			require.NoError(t, err)
			assert.Equal(t, session.User.ID, userID)
		})
	}
}

func TestService_RegisterPasswordPolicy(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	svc := NewService(Config{BcryptCost: bcrypt.MinCost, MinPasswordChars: 8}, s, NewTokenRegistry())

	_, err = svc.Register(ctx, "a@example.com", "short", "a")
	assert.True(t, errors.Is(err, ErrPasswordTooShort))

	_, err = svc.Register(ctx, "a@example.com", "long enough", "a")
	assert.NoError(t, err)
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "", "demo")
	assert.True(t, errors.Is(err, user.ErrMissingFields))

	_, err = svc.Login(ctx, store.DemoUserEmail, "")
	assert.True(t, errors.Is(err, user.ErrMissingFields))

	_, err = svc.Login(ctx, store.DemoUserEmail, "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(ctx, "nobody@example.com", "demo")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	session, err := svc.Login(ctx, "  Joao@Example.com ", "demo")
	require.NoError(t, err)
	assert.Equal(t, "joaosilva", session.User.Username)

	userID, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, userID)

	svc.Logout(session.Token)
	_, err = svc.Authenticate(session.Token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestService_UpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "carol@example.com", "pw", "carol")
	require.NoError(t, err)

	bio := "Guitarist"
	blank := "  "
	updated, err := svc.UpdateProfile(ctx, session.User.ID, user.ProfilePatch{Bio: &bio, Username: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Guitarist", updated.Bio)
	assert.Equal(t, "carol", updated.Username)

	me, err := svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guitarist", me.Bio)

	_, err = svc.UpdateProfile(ctx, "missing", user.ProfilePatch{Bio: &bio})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestService_LikedSongs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "dave@example.com", "pw", "dave")
	require.NoError(t, err)
	id := session.User.ID

	require.NoError(t, svc.LikeSong(ctx, id, "1"))
	require.NoError(t, svc.LikeSong(ctx, id, "3"))

	liked, err := svc.ListLikedSongs(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "3"}, track.IDs(liked))

	require.NoError(t, svc.UnlikeSong(ctx, id, "1"))
	liked, err = svc.ListLikedSongs(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, track.IDs(liked))
}

func TestService_Playlists(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "erin@example.com", "pw", "erin")
	require.NoError(t, err)
	id := session.User.ID

	_, err = svc.CreatePlaylist(ctx, id, "   ", nil)
	assert.True(t, errors.Is(err, ErrEmptyPlaylistName))

	p, err := svc.CreatePlaylist(ctx, id, "Focus", []string{"3", "1"})
	require.NoError(t, err)
	assert.Equal(t, "Focus", p.Name)
	assert.Equal(t, id, p.OwnerID)
	assert.Equal(t, []string{"3", "1"}, p.TrackIDs())

	mine, err := svc.ListMyPlaylists(ctx, id)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)
}

func TestTokenRegistry(t *testing.T) {
	r := NewTokenRegistry()

	a1 := r.Issue("alice")
	a2 := r.Issue("alice")
	b := r.Issue("bob")
	assert.NotEqual(t, a1, a2)
	assert.Equal(t, 3, r.Count())

	id, err := r.Lookup(b)
	require.NoError(t, err)
	assert.Equal(t, "bob", id)

	_, err = r.Lookup("unknown")
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.Equal(t, 2, r.RevokeUser("alice"))
	assert.Equal(t, 1, r.Count())

	r.Revoke(b)
	r.Revoke(b)
	assert.Equal(t, 0, r.Count())
}
