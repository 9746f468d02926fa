// Package main provides the library CLI for browsing the catalog and managing an account.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/format"
)

var (
	app    = kingpin.New("melodia-library", "Melodia catalog and account client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Bearer token (or set MELODIA_TOKEN env)").Envar("MELODIA_TOKEN").String()

	// catalog commands
	songsCmd     = app.Command("songs", "List all songs")
	songCmd      = app.Command("song", "Show a song")
	songID       = songCmd.Arg("song-id", "Song ID").Required().String()
	artistCmd    = app.Command("artist", "Show an artist and their songs")
	artistID     = artistCmd.Arg("artist-id", "Artist ID").Required().String()
	playlistsCmd = app.Command("playlists", "List all playlists")
	playlistCmd  = app.Command("playlist", "Show a playlist")
	playlistID   = playlistCmd.Arg("playlist-id", "Playlist ID").Required().String()
	searchCmd    = app.Command("search", "Search songs, playlists and artists")
	searchQuery  = searchCmd.Arg("query", "Search text").Required().Strings()

	// account commands
	registerCmd      = app.Command("register", "Create an account and print its token")
	registerEmail    = registerCmd.Arg("email", "Email address").Required().String()
	registerUsername = registerCmd.Arg("username", "Username").Required().String()
	registerPassword = registerCmd.Flag("password", "Password (or set MELODIA_PASSWORD env)").Envar("MELODIA_PASSWORD").Required().String()

	loginCmd      = app.Command("login", "Sign in and print a token")
	loginEmail    = loginCmd.Arg("email", "Email address").Required().String()
	loginPassword = loginCmd.Flag("password", "Password (or set MELODIA_PASSWORD env)").Envar("MELODIA_PASSWORD").Required().String()

	logoutCmd = app.Command("logout", "Revoke the current token")
	meCmd     = app.Command("me", "Show your profile")

	profileCmd      = app.Command("profile", "Update your profile")
	profileUsername = profileCmd.Flag("username", "New username").String()
	profileBio      = profileCmd.Flag("bio", "New bio").String()
	profileAvatar   = profileCmd.Flag("avatar-url", "New avatar URL").String()
	profileCover    = profileCmd.Flag("cover-url", "New cover URL").String()

	likeCmd    = app.Command("like", "Like a song")
	likeSongID = likeCmd.Arg("song-id", "Song ID").Required().String()

	unlikeCmd    = app.Command("unlike", "Remove a song from your liked songs")
	unlikeSongID = unlikeCmd.Arg("song-id", "Song ID").Required().String()

	likedCmd = app.Command("liked", "List your liked songs")

	createPlaylistCmd   = app.Command("create-playlist", "Create a playlist")
	createPlaylistName  = createPlaylistCmd.Arg("name", "Playlist name").Required().String()
	createPlaylistSongs = createPlaylistCmd.Arg("song-ids", "Song IDs in play order").Strings()

	myPlaylistsCmd = app.Command("my-playlists", "List the playlists you created")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	var opts []connect.ClientOption
	if *token != "" {
		opts = append(opts, rpc.WithBearerToken(*token))
	}
	catalog := rpc.NewCatalogServiceClient(http.DefaultClient, *server, opts...)
	accounts := rpc.NewAccountServiceClient(http.DefaultClient, *server, opts...)

	ctx := context.Background()

	var err error
	switch command {
	case songsCmd.FullCommand():
		err = listSongs(ctx, catalog)
	case songCmd.FullCommand():
		err = showSong(ctx, catalog, *songID)
	case artistCmd.FullCommand():
		err = showArtist(ctx, catalog, *artistID)
	case playlistsCmd.FullCommand():
		err = listPlaylists(catalog.ListPlaylists(ctx, rpc.Empty()))
	case playlistCmd.FullCommand():
		err = showPlaylist(ctx, catalog, *playlistID)
	case searchCmd.FullCommand():
		err = search(ctx, catalog, strings.Join(*searchQuery, " "))
	case registerCmd.FullCommand():
		err = printAuth(accounts.Register(ctx, connect.NewRequest(&rpc.RegisterRequest{
			Email:    *registerEmail,
			Password: *registerPassword,
			Username: *registerUsername,
		})))
	case loginCmd.FullCommand():
		err = printAuth(accounts.Login(ctx, connect.NewRequest(&rpc.LoginRequest{
			Email:    *loginEmail,
			Password: *loginPassword,
		})))
	case logoutCmd.FullCommand():
		if _, err = accounts.Logout(ctx, rpc.Empty()); err == nil {
			fmt.Println("Logged out")
		}
	case meCmd.FullCommand():
		err = showProfile(accounts.Me(ctx, rpc.Empty()))
	case profileCmd.FullCommand():
		err = showProfile(accounts.UpdateProfile(ctx, connect.NewRequest(profilePatch())))
	case likeCmd.FullCommand():
		if _, err = accounts.LikeSong(ctx, connect.NewRequest(&rpc.SongRequest{SongID: *likeSongID})); err == nil {
			fmt.Println("Song liked")
		}
	case unlikeCmd.FullCommand():
		if _, err = accounts.UnlikeSong(ctx, connect.NewRequest(&rpc.SongRequest{SongID: *unlikeSongID})); err == nil {
			fmt.Println("Song removed from liked songs")
		}
	case likedCmd.FullCommand():
		err = listLiked(ctx, accounts)
	case createPlaylistCmd.FullCommand():
		err = createPlaylist(ctx, accounts, *createPlaylistName, *createPlaylistSongs)
	case myPlaylistsCmd.FullCommand():
		err = listPlaylists(accounts.ListMyPlaylists(ctx, rpc.Empty()))
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printSongs(songs []rpc.Song) {
	for i, s := range songs {
		fmt.Printf("%3d. %-10s %-40s %-25s %6s  %s plays\n",
			i+1, s.ID, s.Title, s.Artist.Name, format.Seconds(s.DurationSeconds), format.Count(s.Plays))
	}
}

func listSongs(ctx context.Context, client rpc.CatalogServiceClient) error {
	resp, err := client.ListSongs(ctx, rpc.Empty())
	if err != nil {
		return err
	}
	fmt.Printf("Songs (%d):\n", len(resp.Msg.Songs))
	printSongs(resp.Msg.Songs)
	return nil
}

func showSong(ctx context.Context, client rpc.CatalogServiceClient, id string) error {
	resp, err := client.GetSong(ctx, connect.NewRequest(&rpc.IDRequest{ID: id}))
	if err != nil {
		return err
	}

	s := resp.Msg
	fmt.Printf("%s\n", s.Title)
	fmt.Printf("  ID: %s\n", s.ID)
	fmt.Printf("  Artist: %s (%s)\n", s.Artist.Name, s.Artist.ID)
	fmt.Printf("  Duration: %s\n", format.Seconds(s.DurationSeconds))
	fmt.Printf("  Plays: %s  Likes: %s\n", format.Count(s.Plays), format.Count(s.Likes))
	fmt.Printf("  Audio: %s\n", s.AudioURL)
	if s.CoverURL != "" {
		fmt.Printf("  Cover: %s\n", s.CoverURL)
	}
	fmt.Printf("  Added: %s\n", format.Ago(rpc.ParseTime(s.CreatedAt)))
	return nil
}

func showArtist(ctx context.Context, client rpc.CatalogServiceClient, id string) error {
	resp, err := client.GetArtist(ctx, connect.NewRequest(&rpc.IDRequest{ID: id}))
	if err != nil {
		return err
	}

	a := resp.Msg.Artist
	fmt.Printf("%s (%s followers)\n", a.Name, format.Count(a.Followers))
	printSongs(resp.Msg.Songs)
	return nil
}

func listPlaylists(resp *connect.Response[rpc.PlaylistList], err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("Playlists (%d):\n", len(resp.Msg.Playlists))
	for _, p := range resp.Msg.Playlists {
		fmt.Printf("  %-12s %-30s %3d songs  %8s  %s likes\n",
			p.ID, p.Name, len(p.Songs), format.Seconds(p.TotalDurationSeconds), format.Count(p.Likes))
	}
	return nil
}

func showPlaylist(ctx context.Context, client rpc.CatalogServiceClient, id string) error {
	resp, err := client.GetPlaylist(ctx, connect.NewRequest(&rpc.IDRequest{ID: id}))
	if err != nil {
		return err
	}
	printPlaylist(resp.Msg)
	return nil
}

func printPlaylist(p *rpc.Playlist) {
	fmt.Printf("%s (%s)\n", p.Name, p.ID)
	fmt.Printf("  %d songs, %s, created %s\n",
		len(p.Songs), format.Seconds(p.TotalDurationSeconds), format.Date(rpc.ParseTime(p.CreatedAt)))
	printSongs(p.Songs)
}

func search(ctx context.Context, client rpc.CatalogServiceClient, query string) error {
	resp, err := client.Search(ctx, connect.NewRequest(&rpc.SearchRequest{Query: query}))
	if err != nil {
		return err
	}

	r := resp.Msg
	if len(r.Songs)+len(r.Playlists)+len(r.Artists) == 0 {
		fmt.Printf("No results for %q\n", query)
		return nil
	}
	if len(r.Songs) > 0 {
		fmt.Printf("Songs (%d):\n", len(r.Songs))
		printSongs(r.Songs)
	}
	if len(r.Playlists) > 0 {
		fmt.Printf("Playlists (%d):\n", len(r.Playlists))
		for _, p := range r.Playlists {
			fmt.Printf("  %-12s %s\n", p.ID, p.Name)
		}
	}
	if len(r.Artists) > 0 {
		fmt.Printf("Artists (%d):\n", len(r.Artists))
		for _, a := range r.Artists {
			fmt.Printf("  %-12s %s\n", a.ID, a.Name)
		}
	}
	return nil
}

func printAuth(resp *connect.Response[rpc.AuthResponse], err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s <%s>\n", resp.Msg.User.Username, resp.Msg.User.Email)
	fmt.Printf("Token: %s\n", resp.Msg.Token)
	fmt.Println("Export it as MELODIA_TOKEN to use it with other commands.")
	return nil
}

func showProfile(resp *connect.Response[rpc.User], err error) error {
	if err != nil {
		return err
	}

	u := resp.Msg
	fmt.Printf("%s <%s>\n", u.Username, u.Email)
	fmt.Printf("  ID: %s\n", u.ID)
	if u.Bio != "" {
		fmt.Printf("  Bio: %s\n", u.Bio)
	}
	fmt.Printf("  Avatar: %s\n", u.AvatarURL)
	fmt.Printf("  Followers: %s  Following: %s  Plays: %s\n",
		format.Count(u.Followers), format.Count(u.Following), format.Count(u.TotalPlays))
	fmt.Printf("  Member since %s\n", format.Date(rpc.ParseTime(u.CreatedAt)))
	return nil
}

// profilePatch sends only the flags given a value.
func profilePatch() *rpc.UpdateProfileRequest {
	return &rpc.UpdateProfileRequest{
		Username:  nonEmpty(*profileUsername),
		Bio:       nonEmpty(*profileBio),
		AvatarURL: nonEmpty(*profileAvatar),
		CoverURL:  nonEmpty(*profileCover),
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func listLiked(ctx context.Context, client rpc.AccountServiceClient) error {
	resp, err := client.ListLikedSongs(ctx, rpc.Empty())
	if err != nil {
		return err
	}
	fmt.Printf("Liked songs (%d):\n", len(resp.Msg.Songs))
	printSongs(resp.Msg.Songs)
	return nil
}

func createPlaylist(ctx context.Context, client rpc.AccountServiceClient, name string, songIDs []string) error {
	resp, err := client.CreatePlaylist(ctx, connect.NewRequest(&rpc.CreatePlaylistRequest{
		Name:    name,
		SongIDs: songIDs,
	}))
	if err != nil {
		return err
	}
	fmt.Println("Playlist created")
	printPlaylist(resp.Msg)
	return nil
}
