// Package main provides the player CLI for controlling playback.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/api/media"
	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/format"
	"github.com/osa030/melodia/internal/infra/logger"
)

var (
	app     = kingpin.New("melodia-player", "Melodia player client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token   = app.Flag("token", "Bearer token (or set MELODIA_TOKEN env)").Envar("MELODIA_TOKEN").String()
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()

	// play command
	playCmd     = app.Command("play", "Play a song")
	playSongID  = playCmd.Arg("song-id", "Song ID").Required().String()
	playContext = playCmd.Flag("context", "Queue context: playlist:<id>, artist:<id>, search:<query>, liked, all or empty for the song alone").Short('c').String()

	toggleCmd  = app.Command("toggle", "Toggle play/pause")
	nextCmd    = app.Command("next", "Skip to the next song")
	prevCmd    = app.Command("prev", "Go back to the previous song (wraps to the last)")
	shuffleCmd = app.Command("shuffle", "Toggle shuffle")
	repeatCmd  = app.Command("repeat", "Cycle repeat mode (off, all, one)")

	// seek command
	seekCmd      = app.Command("seek", "Seek within the current song")
	seekPosition = seekCmd.Arg("position", "Position (e.g. 1m30s or 90s)").Required().Duration()

	// volume command
	volumeCmd   = app.Command("volume", "Set the volume")
	volumeLevel = volumeCmd.Arg("level", "Volume between 0 and 1").Required().Float64()

	stateCmd = app.Command("state", "Show the current player state").Alias("status")
	queueCmd = app.Command("queue", "Show the play queue")
	watchCmd = app.Command("watch", "Follow player state changes")

	// upload command
	uploadCmd      = app.Command("upload", "Upload an audio file to the catalog")
	uploadFile     = uploadCmd.Arg("file", "Audio file").Required().ExistingFile()
	uploadTitle    = uploadCmd.Flag("title", "Song title (default: tag or file name)").String()
	uploadArtist   = uploadCmd.Flag("artist", "Artist name (default: tag)").String()
	uploadCover    = uploadCmd.Flag("cover-url", "Cover image URL").String()
	uploadDuration = uploadCmd.Flag("duration", "Song duration when the file has no length tag").Duration()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if closer, err := logger.Init(logger.FromFlags(*verbose, "", true)); err == nil {
		defer closer.Close()
	}

	var opts []connect.ClientOption
	if *token != "" {
		opts = append(opts, rpc.WithBearerToken(*token))
	}
	client := rpc.NewPlayerServiceClient(http.DefaultClient, *server, opts...)

	ctx := context.Background()

	var err error
	switch command {
	case playCmd.FullCommand():
		err = showState(client.Play(ctx, connect.NewRequest(&rpc.PlayRequest{SongID: *playSongID, Context: *playContext})))
	case toggleCmd.FullCommand():
		err = showState(client.TogglePlayPause(ctx, rpc.Empty()))
	case nextCmd.FullCommand():
		err = showState(client.Next(ctx, rpc.Empty()))
	case prevCmd.FullCommand():
		err = showState(client.Previous(ctx, rpc.Empty()))
	case shuffleCmd.FullCommand():
		err = showState(client.ToggleShuffle(ctx, rpc.Empty()))
	case repeatCmd.FullCommand():
		err = showState(client.ToggleRepeat(ctx, rpc.Empty()))
	case seekCmd.FullCommand():
		err = showState(client.Seek(ctx, connect.NewRequest(&rpc.SeekRequest{PositionMs: seekPosition.Milliseconds()})))
	case volumeCmd.FullCommand():
		err = showState(client.SetVolume(ctx, connect.NewRequest(&rpc.SetVolumeRequest{Volume: *volumeLevel})))
	case stateCmd.FullCommand():
		err = showState(client.GetState(ctx, rpc.Empty()))
	case queueCmd.FullCommand():
		err = showQueue(ctx, client)
	case watchCmd.FullCommand():
		err = watch(ctx, client)
	case uploadCmd.FullCommand():
		err = upload(ctx)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func showState(resp *connect.Response[rpc.PlayerState], err error) error {
	if err != nil {
		return err
	}
	printState(resp.Msg)
	return nil
}

func printState(s *rpc.PlayerState) {
	if s.CurrentSong == nil {
		fmt.Printf("%s  (nothing loaded)\n", formatStatus(s.Status))
	} else {
		song := s.CurrentSong
		fmt.Printf("%s  %s - %s\n", formatStatus(s.Status), song.Title, song.Artist.Name)
		position := time.Duration(s.PositionMs) * time.Millisecond
		duration := time.Duration(s.DurationMs) * time.Millisecond
		fmt.Printf("  %s %s / %s\n", format.ProgressBar(position, duration, 30), format.Duration(position), format.Duration(duration))
	}
	fmt.Printf("  Volume: %s  Shuffle: %v  Repeat: %s", format.Percent(s.Volume), s.Shuffle, s.Repeat)
	if s.QueueLength > 0 {
		fmt.Printf("  Queue: %d/%d", s.QueueIndex+1, s.QueueLength)
	}
	fmt.Println()
}

func formatStatus(status string) string {
	switch status {
	case "playing":
		return "▶️  Playing"
	case "paused":
		return "⏸  Paused"
	case "idle":
		return "💤 Idle"
	default:
		return "❓ " + status
	}
}

func showQueue(ctx context.Context, client rpc.PlayerServiceClient) error {
	resp, err := client.GetQueue(ctx, rpc.Empty())
	if err != nil {
		return err
	}

	q := resp.Msg
	if len(q.Songs) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}
	fmt.Printf("Queue (%d songs):\n", len(q.Songs))
	for i, song := range q.Songs {
		marker := "  "
		if i == q.QueueIndex {
			marker = "▶ "
		}
		fmt.Printf("%s%3d. %-40s %-25s %s\n", marker, i+1, song.Title, song.Artist.Name, format.Seconds(song.DurationSeconds))
	}
	return nil
}

// watch prints the initial state and every later update. Updates with a
// sequence number not above the initial one were already reflected in it.
func watch(ctx context.Context, client rpc.PlayerServiceClient) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := client.SubscribeState(ctx, rpc.Empty())
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Println("Watching player state. Press Ctrl+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		cancel()
	}()

	var initialSeq uint64
	haveInitial := false
	for stream.Receive() {
		update := stream.Msg()
		if update.Event == rpc.EventInitialState {
			initialSeq = update.SequenceNo
			haveInitial = true
		} else if haveInitial && update.SequenceNo <= initialSeq {
			zlog.Debug().Msgf("playercli: stale update dropped: seq=%d initial=%d", update.SequenceNo, initialSeq)
			continue
		}
		fmt.Printf("\n[Sequence: %d] %s\n", update.SequenceNo, strings.ToUpper(update.Event))
		printState(&update.State)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "stream error")
	}
	return nil
}

// upload posts the file as multipart form data to the upload endpoint.
func upload(ctx context.Context) error {
	f, err := os.Open(*uploadFile)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(*uploadFile))
	if err != nil {
		return errors.Wrap(err, "failed to create form")
	}
	size, err := io.Copy(part, f)
	if err != nil {
		return errors.Wrap(err, "failed to read file")
	}
	fields := map[string]string{
		"title":     *uploadTitle,
		"artist":    *uploadArtist,
		"cover_url": *uploadCover,
	}
	if *uploadDuration > 0 {
		fields["duration_seconds"] = fmt.Sprintf("%.3f", uploadDuration.Seconds())
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return errors.Wrap(err, "failed to create form")
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to create form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(*server, "/")+media.UploadPath, &body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if *token != "" {
		req.Header.Set(rpc.AuthorizationHeader, "Bearer "+*token)
	}

	fmt.Printf("Uploading %s (%s)...\n", filepath.Base(*uploadFile), format.Bytes(size))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "upload failed")
	}
	defer resp.Body.Close()

	var result rpc.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrapf(err, "unexpected response: status=%d", resp.StatusCode)
	}

	if !result.Success {
		fmt.Printf("Rejected [%s]: %s\n", result.Code, result.Message)
		return nil
	}
	fmt.Printf("Success: %s\n", result.Message)
	if result.Song != nil {
		fmt.Printf("  ID: %s\n  Title: %s\n  Artist: %s\n  Duration: %s\n",
			result.Song.ID, result.Song.Title, result.Song.Artist.Name, format.Seconds(result.Song.DurationSeconds))
	}
	return nil
}
