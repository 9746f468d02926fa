package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

// PlayerServiceName is the fully-qualified name of the PlayerService service.
const PlayerServiceName = "melodia.v1.PlayerService"

// PlayerService procedure paths.
const (
	PlayerServicePlayProcedure            = "/melodia.v1.PlayerService/Play"
	PlayerServiceTogglePlayPauseProcedure = "/melodia.v1.PlayerService/TogglePlayPause"
	PlayerServiceNextProcedure            = "/melodia.v1.PlayerService/Next"
	PlayerServicePreviousProcedure        = "/melodia.v1.PlayerService/Previous"
	PlayerServiceSeekProcedure            = "/melodia.v1.PlayerService/Seek"
	PlayerServiceSetVolumeProcedure       = "/melodia.v1.PlayerService/SetVolume"
	PlayerServiceToggleShuffleProcedure   = "/melodia.v1.PlayerService/ToggleShuffle"
	PlayerServiceToggleRepeatProcedure    = "/melodia.v1.PlayerService/ToggleRepeat"
	PlayerServiceGetStateProcedure        = "/melodia.v1.PlayerService/GetState"
	PlayerServiceGetQueueProcedure        = "/melodia.v1.PlayerService/GetQueue"
	PlayerServiceSubscribeStateProcedure  = "/melodia.v1.PlayerService/SubscribeState"
)

// PlayerServiceHandler is implemented by the server.
type PlayerServiceHandler interface {
	Play(context.Context, *connect.Request[PlayRequest]) (*connect.Response[PlayerState], error)
	TogglePlayPause(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	Next(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	Previous(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	Seek(context.Context, *connect.Request[SeekRequest]) (*connect.Response[PlayerState], error)
	SetVolume(context.Context, *connect.Request[SetVolumeRequest]) (*connect.Response[PlayerState], error)
	ToggleShuffle(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	ToggleRepeat(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	GetState(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	GetQueue(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[QueueResponse], error)
	SubscribeState(context.Context, *connect.Request[emptypb.Empty], *connect.ServerStream[StateUpdate]) error
}

// NewPlayerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(PlayerServicePlayProcedure, connect.NewUnaryHandler(PlayerServicePlayProcedure, svc.Play, opts...))
	mux.Handle(PlayerServiceTogglePlayPauseProcedure, connect.NewUnaryHandler(PlayerServiceTogglePlayPauseProcedure, svc.TogglePlayPause, opts...))
	mux.Handle(PlayerServiceNextProcedure, connect.NewUnaryHandler(PlayerServiceNextProcedure, svc.Next, opts...))
	mux.Handle(PlayerServicePreviousProcedure, connect.NewUnaryHandler(PlayerServicePreviousProcedure, svc.Previous, opts...))
	mux.Handle(PlayerServiceSeekProcedure, connect.NewUnaryHandler(PlayerServiceSeekProcedure, svc.Seek, opts...))
	mux.Handle(PlayerServiceSetVolumeProcedure, connect.NewUnaryHandler(PlayerServiceSetVolumeProcedure, svc.SetVolume, opts...))
	mux.Handle(PlayerServiceToggleShuffleProcedure, connect.NewUnaryHandler(PlayerServiceToggleShuffleProcedure, svc.ToggleShuffle, opts...))
	mux.Handle(PlayerServiceToggleRepeatProcedure, connect.NewUnaryHandler(PlayerServiceToggleRepeatProcedure, svc.ToggleRepeat, opts...))
	mux.Handle(PlayerServiceGetStateProcedure, connect.NewUnaryHandler(PlayerServiceGetStateProcedure, svc.GetState, opts...))
	mux.Handle(PlayerServiceGetQueueProcedure, connect.NewUnaryHandler(PlayerServiceGetQueueProcedure, svc.GetQueue, opts...))
	mux.Handle(PlayerServiceSubscribeStateProcedure, connect.NewServerStreamHandler(PlayerServiceSubscribeStateProcedure, svc.SubscribeState, opts...))
	return "/" + PlayerServiceName + "/", mux
}

// PlayerServiceClient is a client for the melodia.v1.PlayerService service.
type PlayerServiceClient interface {
	Play(context.Context, *connect.Request[PlayRequest]) (*connect.Response[PlayerState], error)
	TogglePlayPause(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	Next(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	Previous(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	Seek(context.Context, *connect.Request[SeekRequest]) (*connect.Response[PlayerState], error)
	SetVolume(context.Context, *connect.Request[SetVolumeRequest]) (*connect.Response[PlayerState], error)
	ToggleShuffle(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	ToggleRepeat(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	GetState(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error)
	GetQueue(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[QueueResponse], error)
	SubscribeState(context.Context, *connect.Request[emptypb.Empty]) (*connect.ServerStreamForClient[StateUpdate], error)
}

type playerServiceClient struct {
	play            *connect.Client[PlayRequest, PlayerState]
	togglePlayPause *connect.Client[emptypb.Empty, PlayerState]
	next            *connect.Client[emptypb.Empty, PlayerState]
	previous        *connect.Client[emptypb.Empty, PlayerState]
	seek            *connect.Client[SeekRequest, PlayerState]
	setVolume       *connect.Client[SetVolumeRequest, PlayerState]
	toggleShuffle   *connect.Client[emptypb.Empty, PlayerState]
	toggleRepeat    *connect.Client[emptypb.Empty, PlayerState]
	getState        *connect.Client[emptypb.Empty, PlayerState]
	getQueue        *connect.Client[emptypb.Empty, QueueResponse]
	subscribeState  *connect.Client[emptypb.Empty, StateUpdate]
}

// NewPlayerServiceClient constructs a client for the melodia.v1.PlayerService service.
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &playerServiceClient{
		play:            connect.NewClient[PlayRequest, PlayerState](httpClient, baseURL+PlayerServicePlayProcedure, opts...),
		togglePlayPause: connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceTogglePlayPauseProcedure, opts...),
		next:            connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceNextProcedure, opts...),
		previous:        connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServicePreviousProcedure, opts...),
		seek:            connect.NewClient[SeekRequest, PlayerState](httpClient, baseURL+PlayerServiceSeekProcedure, opts...),
		setVolume:       connect.NewClient[SetVolumeRequest, PlayerState](httpClient, baseURL+PlayerServiceSetVolumeProcedure, opts...),
		toggleShuffle:   connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceToggleShuffleProcedure, opts...),
		toggleRepeat:    connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceToggleRepeatProcedure, opts...),
		getState:        connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceGetStateProcedure, opts...),
		getQueue:        connect.NewClient[emptypb.Empty, QueueResponse](httpClient, baseURL+PlayerServiceGetQueueProcedure, opts...),
		subscribeState:  connect.NewClient[emptypb.Empty, StateUpdate](httpClient, baseURL+PlayerServiceSubscribeStateProcedure, opts...),
	}
}

func (c *playerServiceClient) Play(ctx context.Context, req *connect.Request[PlayRequest]) (*connect.Response[PlayerState], error) {
	return c.play.CallUnary(ctx, req)
}

func (c *playerServiceClient) TogglePlayPause(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.togglePlayPause.CallUnary(ctx, req)
}

func (c *playerServiceClient) Next(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.next.CallUnary(ctx, req)
}

func (c *playerServiceClient) Previous(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.previous.CallUnary(ctx, req)
}

func (c *playerServiceClient) Seek(ctx context.Context, req *connect.Request[SeekRequest]) (*connect.Response[PlayerState], error) {
	return c.seek.CallUnary(ctx, req)
}

func (c *playerServiceClient) SetVolume(ctx context.Context, req *connect.Request[SetVolumeRequest]) (*connect.Response[PlayerState], error) {
	return c.setVolume.CallUnary(ctx, req)
}

func (c *playerServiceClient) ToggleShuffle(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.toggleShuffle.CallUnary(ctx, req)
}

func (c *playerServiceClient) ToggleRepeat(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.toggleRepeat.CallUnary(ctx, req)
}

func (c *playerServiceClient) GetState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *playerServiceClient) GetQueue(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[QueueResponse], error) {
	return c.getQueue.CallUnary(ctx, req)
}

func (c *playerServiceClient) SubscribeState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.ServerStreamForClient[StateUpdate], error) {
	return c.subscribeState.CallServerStream(ctx, req)
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)
}

func withClientCodec(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
}

// Empty returns a request with an empty message.
func Empty() *connect.Request[emptypb.Empty] {
	return connect.NewRequest(&emptypb.Empty{})
}
