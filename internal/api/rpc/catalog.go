package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

// CatalogServiceName is the fully-qualified name of the CatalogService service.
const CatalogServiceName = "melodia.v1.CatalogService"

// CatalogService procedure paths.
const (
	CatalogServiceListSongsProcedure     = "/melodia.v1.CatalogService/ListSongs"
	CatalogServiceGetSongProcedure       = "/melodia.v1.CatalogService/GetSong"
	CatalogServiceGetArtistProcedure     = "/melodia.v1.CatalogService/GetArtist"
	CatalogServiceGetPlaylistProcedure   = "/melodia.v1.CatalogService/GetPlaylist"
	CatalogServiceListPlaylistsProcedure = "/melodia.v1.CatalogService/ListPlaylists"
	CatalogServiceSearchProcedure        = "/melodia.v1.CatalogService/Search"
)

// CatalogServiceHandler is implemented by the server.
type CatalogServiceHandler interface {
	ListSongs(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[SongList], error)
	GetSong(context.Context, *connect.Request[IDRequest]) (*connect.Response[Song], error)
	GetArtist(context.Context, *connect.Request[IDRequest]) (*connect.Response[ArtistDetail], error)
	GetPlaylist(context.Context, *connect.Request[IDRequest]) (*connect.Response[Playlist], error)
	ListPlaylists(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlaylistList], error)
	Search(context.Context, *connect.Request[SearchRequest]) (*connect.Response[SearchResponse], error)
}

// NewCatalogServiceHandler builds an HTTP handler from the service implementation.
func NewCatalogServiceHandler(svc CatalogServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(CatalogServiceListSongsProcedure, connect.NewUnaryHandler(CatalogServiceListSongsProcedure, svc.ListSongs, opts...))
	mux.Handle(CatalogServiceGetSongProcedure, connect.NewUnaryHandler(CatalogServiceGetSongProcedure, svc.GetSong, opts...))
	mux.Handle(CatalogServiceGetArtistProcedure, connect.NewUnaryHandler(CatalogServiceGetArtistProcedure, svc.GetArtist, opts...))
	mux.Handle(CatalogServiceGetPlaylistProcedure, connect.NewUnaryHandler(CatalogServiceGetPlaylistProcedure, svc.GetPlaylist, opts...))
	mux.Handle(CatalogServiceListPlaylistsProcedure, connect.NewUnaryHandler(CatalogServiceListPlaylistsProcedure, svc.ListPlaylists, opts...))
	mux.Handle(CatalogServiceSearchProcedure, connect.NewUnaryHandler(CatalogServiceSearchProcedure, svc.Search, opts...))
	return "/" + CatalogServiceName + "/", mux
}

// CatalogServiceClient is a client for the melodia.v1.CatalogService service.
type CatalogServiceClient interface {
	ListSongs(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[SongList], error)
	GetSong(context.Context, *connect.Request[IDRequest]) (*connect.Response[Song], error)
	GetArtist(context.Context, *connect.Request[IDRequest]) (*connect.Response[ArtistDetail], error)
	GetPlaylist(context.Context, *connect.Request[IDRequest]) (*connect.Response[Playlist], error)
	ListPlaylists(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlaylistList], error)
	Search(context.Context, *connect.Request[SearchRequest]) (*connect.Response[SearchResponse], error)
}

type catalogServiceClient struct {
	listSongs     *connect.Client[emptypb.Empty, SongList]
	getSong       *connect.Client[IDRequest, Song]
	getArtist     *connect.Client[IDRequest, ArtistDetail]
	getPlaylist   *connect.Client[IDRequest, Playlist]
	listPlaylists *connect.Client[emptypb.Empty, PlaylistList]
	search        *connect.Client[SearchRequest, SearchResponse]
}

// NewCatalogServiceClient constructs a client for the melodia.v1.CatalogService service.
func NewCatalogServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CatalogServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &catalogServiceClient{
		listSongs:     connect.NewClient[emptypb.Empty, SongList](httpClient, baseURL+CatalogServiceListSongsProcedure, opts...),
		getSong:       connect.NewClient[IDRequest, Song](httpClient, baseURL+CatalogServiceGetSongProcedure, opts...),
		getArtist:     connect.NewClient[IDRequest, ArtistDetail](httpClient, baseURL+CatalogServiceGetArtistProcedure, opts...),
		getPlaylist:   connect.NewClient[IDRequest, Playlist](httpClient, baseURL+CatalogServiceGetPlaylistProcedure, opts...),
		listPlaylists: connect.NewClient[emptypb.Empty, PlaylistList](httpClient, baseURL+CatalogServiceListPlaylistsProcedure, opts...),
		search:        connect.NewClient[SearchRequest, SearchResponse](httpClient, baseURL+CatalogServiceSearchProcedure, opts...),
	}
}

func (c *catalogServiceClient) ListSongs(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[SongList], error) {
	return c.listSongs.CallUnary(ctx, req)
}

func (c *catalogServiceClient) GetSong(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Song], error) {
	return c.getSong.CallUnary(ctx, req)
}

func (c *catalogServiceClient) GetArtist(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[ArtistDetail], error) {
	return c.getArtist.CallUnary(ctx, req)
}

func (c *catalogServiceClient) GetPlaylist(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Playlist], error) {
	return c.getPlaylist.CallUnary(ctx, req)
}

func (c *catalogServiceClient) ListPlaylists(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlaylistList], error) {
	return c.listPlaylists.CallUnary(ctx, req)
}

func (c *catalogServiceClient) Search(ctx context.Context, req *connect.Request[SearchRequest]) (*connect.Response[SearchResponse], error) {
	return c.search.CallUnary(ctx, req)
}
