package connect

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/app/catalog"
)

// CatalogService implements the CatalogService RPC.
type CatalogService struct {
	catalog *catalog.Service
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalog *catalog.Service) *CatalogService {
	return &CatalogService{catalog: catalog}
}

var _ rpc.CatalogServiceHandler = (*CatalogService)(nil)

// ListSongs returns every song, newest first.
func (s *CatalogService) ListSongs(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.SongList], error) {
	songs, err := s.catalog.ListSongs(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.SongList{Songs: rpc.FromTracks(songs)}), nil
}

// GetSong returns a song.
func (s *CatalogService) GetSong(
	ctx context.Context,
	req *connect.Request[rpc.IDRequest],
) (*connect.Response[rpc.Song], error) {
	t, err := s.catalog.GetSong(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	song := rpc.FromTrack(t)
	return connect.NewResponse(&song), nil
}

// GetArtist returns an artist with their songs.
func (s *CatalogService) GetArtist(
	ctx context.Context,
	req *connect.Request[rpc.IDRequest],
) (*connect.Response[rpc.ArtistDetail], error) {
	detail, err := s.catalog.GetArtist(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.ArtistDetail{
		Artist: rpc.FromArtist(detail.Artist),
		Songs:  rpc.FromTracks(detail.Songs),
	}), nil
}

// GetPlaylist returns a playlist with its songs in order.
func (s *CatalogService) GetPlaylist(
	ctx context.Context,
	req *connect.Request[rpc.IDRequest],
) (*connect.Response[rpc.Playlist], error) {
	p, err := s.catalog.GetPlaylist(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	playlist := rpc.FromPlaylist(p)
	return connect.NewResponse(&playlist), nil
}

// ListPlaylists returns every playlist.
func (s *CatalogService) ListPlaylists(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlaylistList], error) {
	playlists, err := s.catalog.ListPlaylists(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.PlaylistList{Playlists: rpc.FromPlaylists(playlists)}), nil
}

// Search matches songs, playlists and artists.
func (s *CatalogService) Search(
	ctx context.Context,
	req *connect.Request[rpc.SearchRequest],
) (*connect.Response[rpc.SearchResponse], error) {
	results, err := s.catalog.Search(ctx, req.Msg.Query)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.SearchResponse{
		Songs:     rpc.FromTracks(results.Songs),
		Playlists: rpc.FromPlaylists(results.Playlists),
		Artists:   rpc.FromArtists(results.Artists),
	}), nil
}
