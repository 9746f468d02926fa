package connect

import (
	"context"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/app/session"
)

var errStreamClosed = errors.New("stream closed")

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session *session.Manager
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager) *PlayerService {
	return &PlayerService{session: session}
}

// Ensure PlayerService implements the interface.
var _ rpc.PlayerServiceHandler = (*PlayerService)(nil)

func (s *PlayerService) state(err error) (*connect.Response[rpc.PlayerState], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	state := rpc.FromState(s.session.State())
	return connect.NewResponse(&state), nil
}

// Play starts a song within an optional context.
func (s *PlayerService) Play(
	ctx context.Context,
	req *connect.Request[rpc.PlayRequest],
) (*connect.Response[rpc.PlayerState], error) {
	if req.Msg.SongID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("song id is required"))
	}
	return s.state(s.session.Play(ctx, req.Msg.SongID, req.Msg.Context, UserID(ctx)))
}

// TogglePlayPause toggles playback.
func (s *PlayerService) TogglePlayPause(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(s.session.TogglePlayPause())
}

// Next skips to the next track.
func (s *PlayerService) Next(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(s.session.Next())
}

// Previous goes back one track.
func (s *PlayerService) Previous(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(s.session.Previous())
}

// Seek moves the playback position.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *connect.Request[rpc.SeekRequest],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(s.session.Seek(time.Duration(req.Msg.PositionMs) * time.Millisecond))
}

// SetVolume sets the volume.
func (s *PlayerService) SetVolume(
	ctx context.Context,
	req *connect.Request[rpc.SetVolumeRequest],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(s.session.SetVolume(req.Msg.Volume))
}

// ToggleShuffle flips shuffle.
func (s *PlayerService) ToggleShuffle(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(s.session.ToggleShuffle())
}

// ToggleRepeat cycles the repeat mode.
func (s *PlayerService) ToggleRepeat(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(s.session.ToggleRepeat())
}

// GetState returns the current player state.
func (s *PlayerService) GetState(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.PlayerState], error) {
	return s.state(nil)
}

// GetQueue returns the queue and the current index.
func (s *PlayerService) GetQueue(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[rpc.QueueResponse], error) {
	return connect.NewResponse(&rpc.QueueResponse{
		Songs:      rpc.FromTracks(s.session.Queue()),
		QueueIndex: s.session.State().QueueIndex,
	}), nil
}

// SubscribeState streams the initial state followed by one update per
// controller event. Updates whose sequence number is not greater than the
// initial state's describe older state.
func (s *PlayerService) SubscribeState(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
	stream *connect.ServerStream[rpc.StateUpdate],
) error {
	notifManager := s.session.Notifications()
	adapter := &stateStreamAdapter{stream: stream}

	// Hold the adapter until the initial state is out so broadcasts queue behind it.
	adapter.mu.Lock()
	subscriptionID, dropped := notifManager.Subscribe(adapter)
	defer notifManager.Unsubscribe(subscriptionID)
	defer adapter.close()

	initial := &rpc.StateUpdate{
		SequenceNo: notifManager.NextSequenceNo(),
		Event:      rpc.EventInitialState,
		State:      rpc.FromState(s.session.State()),
	}
	err := stream.Send(initial)
	adapter.mu.Unlock()
	if err != nil {
		return err
	}
	zlog.Debug().Msgf("connect: state subscriber joined: id=%s seq=%d", subscriptionID, initial.SequenceNo)

	select {
	case <-ctx.Done():
	case <-dropped:
	case <-s.session.Done():
	}
	return nil
}

// stateStreamAdapter serializes sends on a server stream and refuses them
// once the handler has returned.
type stateStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[rpc.StateUpdate]
	closed bool
}

func (a *stateStreamAdapter) Send(update *rpc.StateUpdate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errStreamClosed
	}
	return a.stream.Send(update)
}

func (a *stateStreamAdapter) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}
