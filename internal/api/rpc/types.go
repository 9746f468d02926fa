package rpc

// Artist is an artist summary.
type Artist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Followers int    `json:"followers"`
}

// Song is a catalog song.
type Song struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          Artist `json:"artist"`
	CoverURL        string `json:"coverUrl"`
	AudioURL        string `json:"audioUrl"`
	DurationSeconds int64  `json:"duration"`
	Plays           int    `json:"plays"`
	Likes           int    `json:"likes"`
	CreatedAt       string `json:"createdAt"`
}

// Playlist is a playlist with its songs in order.
type Playlist struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	CoverURL             string `json:"coverUrl"`
	OwnerID              string `json:"ownerId,omitempty"`
	Songs                []Song `json:"songs"`
	Likes                int    `json:"likes"`
	TotalDurationSeconds int64  `json:"totalDuration"`
	CreatedAt            string `json:"createdAt"`
}

// User is a public user profile.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatarUrl"`
	CoverURL   string `json:"coverUrl,omitempty"`
	Bio        string `json:"bio,omitempty"`
	Followers  int    `json:"followers"`
	Following  int    `json:"following"`
	TotalPlays int    `json:"totalPlays"`
	CreatedAt  string `json:"createdAt"`
}

// PlayerState is a snapshot of the playback controller.
type PlayerState struct {
	CurrentSong *Song   `json:"currentSong,omitempty"`
	Status      string  `json:"status"`
	IsPlaying   bool    `json:"isPlaying"`
	PositionMs  int64   `json:"positionMs"`
	DurationMs  int64   `json:"durationMs"`
	Volume      float64 `json:"volume"`
	Shuffle     bool    `json:"shuffle"`
	Repeat      string  `json:"repeat"`
	QueueIndex  int     `json:"queueIndex"`
	QueueLength int     `json:"queueLength"`
}

// StateUpdate is one message of the state stream.
type StateUpdate struct {
	SequenceNo uint64      `json:"sequenceNo"`
	Event      string      `json:"event"`
	State      PlayerState `json:"state"`
}

// EventInitialState marks the first message of a state stream.
const EventInitialState = "initial_state"

// Player requests

type PlayRequest struct {
	SongID  string `json:"songId"`
	Context string `json:"context,omitempty"`
}

type SeekRequest struct {
	PositionMs int64 `json:"positionMs"`
}

type SetVolumeRequest struct {
	Volume float64 `json:"volume"`
}

type QueueResponse struct {
	Songs      []Song `json:"songs"`
	QueueIndex int    `json:"queueIndex"`
}

// Catalog requests

type IDRequest struct {
	ID string `json:"id"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SongList struct {
	Songs []Song `json:"songs"`
}

type PlaylistList struct {
	Playlists []Playlist `json:"playlists"`
}

type ArtistDetail struct {
	Artist Artist `json:"artist"`
	Songs  []Song `json:"songs"`
}

type SearchResponse struct {
	Songs     []Song     `json:"songs"`
	Playlists []Playlist `json:"playlists"`
	Artists   []Artist   `json:"artists"`
}

// Account requests

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateProfileRequest holds the fields to change; nil fields are kept.
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	CoverURL  *string `json:"coverUrl,omitempty"`
}

type SongRequest struct {
	SongID string `json:"songId"`
}

type CreatePlaylistRequest struct {
	Name    string   `json:"name"`
	SongIDs []string `json:"songIds"`
}

// UploadResponse is the JSON body returned by the upload endpoint.
type UploadResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Song    *Song  `json:"song,omitempty"`
}
