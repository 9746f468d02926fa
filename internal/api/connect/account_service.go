package connect

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/app/account"
)

// AccountService implements the AccountService RPC.
type AccountService struct {
	accounts *account.Service
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts *account.Service) *AccountService {
	return &AccountService{accounts: accounts}
}

var _ rpc.AccountServiceHandler = (*AccountService)(nil)

func authResponse(session account.Session) *connect.Response[rpc.AuthResponse] {
	return connect.NewResponse(&rpc.AuthResponse{
		Token: session.Token,
		User:  rpc.FromUser(session.User),
	})
}

// Register creates an account and signs it in.
func (s *AccountService) Register(
	ctx context.Context,
	req *connect.Request[rpc.RegisterRequest],
) (*connect.Response[rpc.AuthResponse], error) {
	session, err := s.accounts.Register(ctx, req.Msg.Email, req.Msg.Password, req.Msg.Username)
	if err != nil {
		return nil, toConnectError(err)
	}
	return authResponse(session), nil
}

// Login signs a user in.
func (s *AccountService) Login(
	ctx context.Context,
	req *connect.Request[rpc.LoginRequest],
) (*connect.Response[rpc.AuthResponse], error) {
	session, err := s.accounts.Login(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(err)
	}
	return authResponse(session), nil
}

// Logout revokes the caller's token.
func (s *AccountService) Logout(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[emptypb.Empty], error) {
	s.accounts.Logout(tokenFrom(ctx))
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// Me returns the caller's profile.
func (s *AccountService) Me(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.User], error) {
	userID := UserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	u, err := s.accounts.Me(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	res := rpc.FromUser(u)
	return connect.NewResponse(&res), nil
}

// UpdateProfile changes the caller's profile fields.
func (s *AccountService) UpdateProfile(
	ctx context.Context,
	req *connect.Request[rpc.UpdateProfileRequest],
) (*connect.Response[rpc.User], error) {
	userID := UserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	u, err := s.accounts.UpdateProfile(ctx, userID, rpc.ToProfilePatch(req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	res := rpc.FromUser(u)
	return connect.NewResponse(&res), nil
}

// LikeSong adds a song to the caller's liked songs.
func (s *AccountService) LikeSong(
	ctx context.Context,
	req *connect.Request[rpc.SongRequest],
) (*connect.Response[emptypb.Empty], error) {
	userID := UserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.accounts.LikeSong(ctx, userID, req.Msg.SongID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// UnlikeSong removes a song from the caller's liked songs.
func (s *AccountService) UnlikeSong(
	ctx context.Context,
	req *connect.Request[rpc.SongRequest],
) (*connect.Response[emptypb.Empty], error) {
	userID := UserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.accounts.UnlikeSong(ctx, userID, req.Msg.SongID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// ListLikedSongs returns the caller's liked songs.
func (s *AccountService) ListLikedSongs(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.SongList], error) {
	userID := UserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	songs, err := s.accounts.ListLikedSongs(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.SongList{Songs: rpc.FromTracks(songs)}), nil
}

// CreatePlaylist creates a playlist owned by the caller.
func (s *AccountService) CreatePlaylist(
	ctx context.Context,
	req *connect.Request[rpc.CreatePlaylistRequest],
) (*connect.Response[rpc.Playlist], error) {
	userID := UserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := s.accounts.CreatePlaylist(ctx, userID, req.Msg.Name, req.Msg.SongIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	res := rpc.FromPlaylist(p)
	return connect.NewResponse(&res), nil
}

// ListMyPlaylists returns the caller's playlists.
func (s *AccountService) ListMyPlaylists(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlaylistList], error) {
	userID := UserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	playlists, err := s.accounts.ListMyPlaylists(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.PlaylistList{Playlists: rpc.FromPlaylists(playlists)}), nil
}
