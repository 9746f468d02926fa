// Package media serves song uploads and the uploaded audio files over plain HTTP.
package media

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/app/filter"
	"github.com/osa030/melodia/internal/domain/track"
	"github.com/osa030/melodia/internal/infra/audiotag"
)

const (
	// UploadPath accepts multipart song uploads.
	UploadPath = "/upload"
	// FilesPrefix serves uploaded audio files.
	FilesPrefix = "/media/"

	// UnknownArtist is used when neither the form nor the tags name an artist.
	UnknownArtist = "Unknown Artist"

	multipartMemory = 8 << 20

	// Longest duration that still fits in a time.Duration. Also rejects +Inf.
	maxDurationSeconds = float64(math.MaxInt64 / int64(time.Second))
)

// Authenticator resolves bearer tokens to user IDs.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// Catalog stores accepted songs.
type Catalog interface {
	InsertSong(ctx context.Context, t *track.Track) error
}

// Messages maps result codes to user-facing messages.
type Messages interface {
	GetMessage(code string) string
}

// Config holds media handler configuration.
type Config struct {
	MediaDir        string
	MaxRequestBytes int64
}

// Handler handles uploads and media downloads.
type Handler struct {
	config   Config
	auth     Authenticator
	chain    *filter.Chain
	catalog  Catalog
	messages Messages
}

// NewHandler creates a media handler.
func NewHandler(config Config, auth Authenticator, chain *filter.Chain, catalog Catalog, messages Messages) *Handler {
	if chain == nil {
		chain = filter.NewChain()
	}
	return &Handler{
		config:   config,
		auth:     auth,
		chain:    chain,
		catalog:  catalog,
		messages: messages,
	}
}

// Register mounts the upload and download routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+UploadPath, h.Upload)
	mux.HandleFunc("GET "+FilesPrefix+"{file}", h.Serve)
}

// Upload handles POST /upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(rpc.BearerToken(r.Header.Get(rpc.AuthorizationHeader)))
	if err != nil {
		h.writeResult(w, http.StatusUnauthorized, rpc.UploadResponse{Code: "unauthenticated", Message: "login required"})
		return
	}

	if h.config.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxRequestBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, http.StatusRequestEntityTooLarge, "file_too_large")
			return
		}
		h.writeResult(w, http.StatusBadRequest, rpc.UploadResponse{Code: "bad_request", Message: "invalid multipart form"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeResult(w, http.StatusBadRequest, rpc.UploadResponse{Code: "bad_request", Message: "file is required"})
		return
	}
	defer file.Close()

	t, err := h.describe(r, file, header.Filename)
	if err != nil {
		h.writeResult(w, http.StatusBadRequest, rpc.UploadResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	upload := filter.Upload{FileName: header.Filename, Size: header.Size, Track: t}
	if result := h.chain.Execute(r.Context(), upload); !result.Accepted {
		zlog.Info().Msgf("media: upload rejected: user=%s file=%s code=%s", userID, header.Filename, result.Code)
		h.reject(w, http.StatusUnprocessableEntity, result.Code)
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.internalError(w, errors.Wrap(err, "failed to rewind upload"))
		return
	}

	t.ID = uuid.New().String()
	t.AudioURL = t.ID + upload.Ext()
	path := filepath.Join(h.config.MediaDir, t.AudioURL)
	if err := saveFile(path, file); err != nil {
		h.internalError(w, err)
		return
	}

	if err := h.catalog.InsertSong(r.Context(), &t); err != nil {
		_ = os.Remove(path)
		h.internalError(w, err)
		return
	}

	zlog.Info().Msgf("media: upload accepted: user=%s song=%s title=%q artist=%q", userID, t.ID, t.Title, t.Artist.Name)
	song := rpc.FromTrack(t)
	h.writeResult(w, http.StatusCreated, rpc.UploadResponse{
		Success: true,
		Message: h.messages.GetMessage("success"),
		Song:    &song,
	})
}

// describe builds the song metadata. Form fields win over embedded tags,
// which win over the file name.
func (h *Handler) describe(r *http.Request, file io.ReadSeeker, fileName string) (track.Track, error) {
	info, err := audiotag.Read(file)
	if err != nil && !errors.Is(err, audiotag.ErrNoTags) {
		zlog.Debug().Err(err).Msgf("media: unreadable tags: file=%s", fileName)
	}

	t := track.Track{
		Title:    firstNonEmpty(r.FormValue("title"), info.Title, strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))),
		Artist:   track.Artist{Name: firstNonEmpty(r.FormValue("artist"), info.Artist, UnknownArtist)},
		CoverURL: strings.TrimSpace(r.FormValue("cover_url")),
		Duration: info.Duration,
	}

	if v := strings.TrimSpace(r.FormValue("duration_seconds")); v != "" {
		seconds, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(seconds) || seconds < 0 || seconds > maxDurationSeconds {
			return track.Track{}, errors.Newf("invalid duration_seconds: %q", v)
		}
		t.Duration = time.Duration(seconds * float64(time.Second))
	}
	return t, nil
}

// Serve handles GET /media/{file} with range support.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(h.config.MediaDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, name, stat.ModTime(), f)
}

func (h *Handler) reject(w http.ResponseWriter, status int, code string) {
	h.writeResult(w, status, rpc.UploadResponse{Code: code, Message: h.messages.GetMessage(code)})
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	zlog.Error().Err(err).Msg("media: upload failed")
	h.writeResult(w, http.StatusInternalServerError, rpc.UploadResponse{
		Code:    "internal",
		Message: h.messages.GetMessage("internal"),
	})
}

func (h *Handler) writeResult(w http.ResponseWriter, status int, res rpc.UploadResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		zlog.Warn().Err(err).Msg("media: failed to write response")
	}
}

func saveFile(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create media dir")
	}
	dst, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create media file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return errors.Wrap(err, "failed to write media file")
	}
	return errors.Wrap(dst.Close(), "failed to close media file")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
