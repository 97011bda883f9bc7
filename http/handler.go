package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/livestow"
)

// Response headers describing a live object.
const (
	HeaderObjectID       = "X-Object-Id"
	HeaderObjectChunks   = "X-Object-Chunks"
	HeaderObjectSize     = "X-Object-Size"
	HeaderObjectComplete = "X-Object-Complete"
	// HeaderStreamOutcome is sent as a trailer once a download ends.
	HeaderStreamOutcome = "X-Stream-Outcome"
)

type Service interface {
	Upload(ctx context.Context, name string, body io.Reader) (livestow.ObjectInfo, error)
	Open(ctx context.Context, name string) (livestow.ObjectInfo, *livestow.Stream, error)
	Finish(stream *livestow.Stream)
	Stat(ctx context.Context, name string) (livestow.ObjectInfo, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]livestow.ObjectInfo, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
}

// Handler provides HTTP handlers for live object operations.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
// GET / serves an informational page, or the object listing when the client
// asks for JSON. Every other path is an object name.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/", h.handleIndex)

	r.Group(func(r chi.Router) {
		r.Use(NameValidationMiddleware)
		r.Get("/*", h.handleGet)
		r.Head("/*", h.handleHead)
		r.Put("/*", h.handlePut)
		r.Delete("/*", h.handleDelete)
	})

	return r
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if !wantsJSON(r) {
		writeIndexPage(w)
		return
	}

	items, err := h.service.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, livestow.ListResult{Items: items})
}

// handleGet streams the object while it is being uploaded. Headers are
// flushed before the first chunk and every chunk is flushed as it is written,
// so the response uses chunked framing and ends when the stream terminates.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	name := objectName(r)

	info, stream, err := h.service.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, livestow.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not_found", "Object not found")
		} else {
			HandleError(w, err)
		}
		return
	}
	defer h.service.Finish(stream)

	header := w.Header()
	header.Set("Content-Type", "application/octet-stream")
	header.Set("Cache-Control", "no-cache, no-store")
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set(HeaderObjectID, info.ID.String())
	header.Set("Trailer", HeaderStreamOutcome)
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	_ = rc.Flush()

	ctx := r.Context()
	for {
		chunk, nextErr := stream.Next(ctx)
		if errors.Is(nextErr, io.EOF) {
			header.Set(HeaderStreamOutcome, string(stream.Outcome()))
			return
		}
		if nextErr != nil {
			slog.Debug("download stopped", "name", name, "err", nextErr)
			return
		}

		if _, writeErr := w.Write(chunk); writeErr != nil {
			slog.Debug("download write failed", "name", name, "err", writeErr)
			return
		}
		if flushErr := rc.Flush(); flushErr != nil {
			slog.Debug("download flush failed", "name", name, "err", flushErr)
			return
		}
	}
}

func (h *Handler) handleHead(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Stat(r.Context(), objectName(r))
	if err != nil {
		if errors.Is(err, livestow.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			HandleError(w, err)
		}
		return
	}

	header := w.Header()
	header.Set("Content-Type", "application/octet-stream")
	header.Set(HeaderObjectID, info.ID.String())
	header.Set(HeaderObjectChunks, strconv.Itoa(info.Chunks))
	header.Set(HeaderObjectSize, strconv.FormatInt(info.SizeBytes, 10))
	header.Set(HeaderObjectComplete, strconv.FormatBool(info.Complete))
	header.Set("Last-Modified", info.UpdatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Upload(r.Context(), objectName(r), r.Body)
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set(HeaderObjectID, info.ID.String())
	_ = WriteJSON(w, http.StatusCreated, info)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), objectName(r))
	if err != nil {
		if errors.Is(err, livestow.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not_found", "Object not found")
		} else {
			HandleError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
