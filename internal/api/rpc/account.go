package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

// AccountServiceName is the fully-qualified name of the AccountService service.
const AccountServiceName = "melodia.v1.AccountService"

// AccountService procedure paths.
const (
	AccountServiceRegisterProcedure        = "/melodia.v1.AccountService/Register"
	AccountServiceLoginProcedure           = "/melodia.v1.AccountService/Login"
	AccountServiceLogoutProcedure          = "/melodia.v1.AccountService/Logout"
	AccountServiceMeProcedure              = "/melodia.v1.AccountService/Me"
	AccountServiceUpdateProfileProcedure   = "/melodia.v1.AccountService/UpdateProfile"
	AccountServiceLikeSongProcedure        = "/melodia.v1.AccountService/LikeSong"
	AccountServiceUnlikeSongProcedure      = "/melodia.v1.AccountService/UnlikeSong"
	AccountServiceListLikedSongsProcedure  = "/melodia.v1.AccountService/ListLikedSongs"
	AccountServiceCreatePlaylistProcedure  = "/melodia.v1.AccountService/CreatePlaylist"
	AccountServiceListMyPlaylistsProcedure = "/melodia.v1.AccountService/ListMyPlaylists"
)

// AccountServiceHandler is implemented by the server.
type AccountServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	Logout(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error)
	Me(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[User], error)
	UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[User], error)
	LikeSong(context.Context, *connect.Request[SongRequest]) (*connect.Response[emptypb.Empty], error)
	UnlikeSong(context.Context, *connect.Request[SongRequest]) (*connect.Response[emptypb.Empty], error)
	ListLikedSongs(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[SongList], error)
	CreatePlaylist(context.Context, *connect.Request[CreatePlaylistRequest]) (*connect.Response[Playlist], error)
	ListMyPlaylists(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlaylistList], error)
}

// NewAccountServiceHandler builds an HTTP handler from the service implementation.
func NewAccountServiceHandler(svc AccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(AccountServiceRegisterProcedure, connect.NewUnaryHandler(AccountServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AccountServiceLoginProcedure, connect.NewUnaryHandler(AccountServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AccountServiceLogoutProcedure, connect.NewUnaryHandler(AccountServiceLogoutProcedure, svc.Logout, opts...))
	mux.Handle(AccountServiceMeProcedure, connect.NewUnaryHandler(AccountServiceMeProcedure, svc.Me, opts...))
	mux.Handle(AccountServiceUpdateProfileProcedure, connect.NewUnaryHandler(AccountServiceUpdateProfileProcedure, svc.UpdateProfile, opts...))
	mux.Handle(AccountServiceLikeSongProcedure, connect.NewUnaryHandler(AccountServiceLikeSongProcedure, svc.LikeSong, opts...))
	mux.Handle(AccountServiceUnlikeSongProcedure, connect.NewUnaryHandler(AccountServiceUnlikeSongProcedure, svc.UnlikeSong, opts...))
	mux.Handle(AccountServiceListLikedSongsProcedure, connect.NewUnaryHandler(AccountServiceListLikedSongsProcedure, svc.ListLikedSongs, opts...))
	mux.Handle(AccountServiceCreatePlaylistProcedure, connect.NewUnaryHandler(AccountServiceCreatePlaylistProcedure, svc.CreatePlaylist, opts...))
	mux.Handle(AccountServiceListMyPlaylistsProcedure, connect.NewUnaryHandler(AccountServiceListMyPlaylistsProcedure, svc.ListMyPlaylists, opts...))
	return "/" + AccountServiceName + "/", mux
}

// AccountServiceClient is a client for the melodia.v1.AccountService service.
type AccountServiceClient interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	Logout(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error)
	Me(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[User], error)
	UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[User], error)
	LikeSong(context.Context, *connect.Request[SongRequest]) (*connect.Response[emptypb.Empty], error)
	UnlikeSong(context.Context, *connect.Request[SongRequest]) (*connect.Response[emptypb.Empty], error)
	ListLikedSongs(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[SongList], error)
	CreatePlaylist(context.Context, *connect.Request[CreatePlaylistRequest]) (*connect.Response[Playlist], error)
	ListMyPlaylists(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlaylistList], error)
}

type accountServiceClient struct {
	register        *connect.Client[RegisterRequest, AuthResponse]
	login           *connect.Client[LoginRequest, AuthResponse]
	logout          *connect.Client[emptypb.Empty, emptypb.Empty]
	me              *connect.Client[emptypb.Empty, User]
	updateProfile   *connect.Client[UpdateProfileRequest, User]
	likeSong        *connect.Client[SongRequest, emptypb.Empty]
	unlikeSong      *connect.Client[SongRequest, emptypb.Empty]
	listLikedSongs  *connect.Client[emptypb.Empty, SongList]
	createPlaylist  *connect.Client[CreatePlaylistRequest, Playlist]
	listMyPlaylists *connect.Client[emptypb.Empty, PlaylistList]
}

// NewAccountServiceClient constructs a client for the melodia.v1.AccountService service.
func NewAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AccountServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &accountServiceClient{
		register:        connect.NewClient[RegisterRequest, AuthResponse](httpClient, baseURL+AccountServiceRegisterProcedure, opts...),
		login:           connect.NewClient[LoginRequest, AuthResponse](httpClient, baseURL+AccountServiceLoginProcedure, opts...),
		logout:          connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+AccountServiceLogoutProcedure, opts...),
		me:              connect.NewClient[emptypb.Empty, User](httpClient, baseURL+AccountServiceMeProcedure, opts...),
		updateProfile:   connect.NewClient[UpdateProfileRequest, User](httpClient, baseURL+AccountServiceUpdateProfileProcedure, opts...),
		likeSong:        connect.NewClient[SongRequest, emptypb.Empty](httpClient, baseURL+AccountServiceLikeSongProcedure, opts...),
		unlikeSong:      connect.NewClient[SongRequest, emptypb.Empty](httpClient, baseURL+AccountServiceUnlikeSongProcedure, opts...),
		listLikedSongs:  connect.NewClient[emptypb.Empty, SongList](httpClient, baseURL+AccountServiceListLikedSongsProcedure, opts...),
		createPlaylist:  connect.NewClient[CreatePlaylistRequest, Playlist](httpClient, baseURL+AccountServiceCreatePlaylistProcedure, opts...),
		listMyPlaylists: connect.NewClient[emptypb.Empty, PlaylistList](httpClient, baseURL+AccountServiceListMyPlaylistsProcedure, opts...),
	}
}

func (c *accountServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *accountServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *accountServiceClient) Logout(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *accountServiceClient) Me(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[User], error) {
	return c.me.CallUnary(ctx, req)
}

func (c *accountServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[User], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

func (c *accountServiceClient) LikeSong(ctx context.Context, req *connect.Request[SongRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.likeSong.CallUnary(ctx, req)
}

func (c *accountServiceClient) UnlikeSong(ctx context.Context, req *connect.Request[SongRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.unlikeSong.CallUnary(ctx, req)
}

func (c *accountServiceClient) ListLikedSongs(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[SongList], error) {
	return c.listLikedSongs.CallUnary(ctx, req)
}

func (c *accountServiceClient) CreatePlaylist(ctx context.Context, req *connect.Request[CreatePlaylistRequest]) (*connect.Response[Playlist], error) {
	return c.createPlaylist.CallUnary(ctx, req)
}

func (c *accountServiceClient) ListMyPlaylists(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlaylistList], error) {
	return c.listMyPlaylists.CallUnary(ctx, req)
}
