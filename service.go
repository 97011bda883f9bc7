package livestow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	// DefaultStaleTimeout is how long a buffer may go without appends before
	// readers treat it as finished.
	DefaultStaleTimeout = time.Second

	// DefaultChunkSize is the largest unit read from an upload body at once.
	DefaultChunkSize = 32 * 1024
)

// Recorder receives notifications about uploads and streams.
// Implementations must be safe for concurrent use.
type Recorder interface {
	UploadStarted()
	ChunkAppended(n int)
	UploadFinished(complete bool)
	StreamStarted()
	StreamFinished(bytes int64, outcome Outcome)
	ObjectsChanged(count int)
}

type nopRecorder struct{}

func (nopRecorder) UploadStarted()                {}
func (nopRecorder) ChunkAppended(int)             {}
func (nopRecorder) UploadFinished(bool)           {}
func (nopRecorder) StreamStarted()                {}
func (nopRecorder) StreamFinished(int64, Outcome) {}
func (nopRecorder) ObjectsChanged(int)            {}

// ServiceConfig holds configuration options for LiveService.
type ServiceConfig struct {
	StaleTimeout time.Duration // Quiet period after which readers stop waiting (default: 1s)
	ChunkSize    int           // Maximum bytes per chunk read from an upload (default: 32 KiB)
	Recorder     Recorder      // Optional metrics hook
}

// LiveService ties the registry to upload and download requests.
type LiveService struct {
	registry     *Registry
	staleTimeout time.Duration
	chunkSize    int
	recorder     Recorder
}

func NewLiveService(registry *Registry, cfg ServiceConfig) (*LiveService, error) {
	if registry == nil {
		return nil, fmt.Errorf("new live service: %w: registry is required", ErrInvalidInput)
	}
	if cfg.StaleTimeout < 0 {
		return nil, fmt.Errorf("new live service: %w: negative stale timeout %s", ErrInvalidInput, cfg.StaleTimeout)
	}
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("new live service: %w: negative chunk size %d", ErrInvalidInput, cfg.ChunkSize)
	}

	staleTimeout := cfg.StaleTimeout
	if staleTimeout == 0 {
		staleTimeout = DefaultStaleTimeout
	}
	chunkSize := cfg.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &LiveService{
		registry:     registry,
		staleTimeout: staleTimeout,
		chunkSize:    chunkSize,
		recorder:     recorder,
	}, nil
}

// StaleTimeout returns the quiet period used to end streams.
func (s *LiveService) StaleTimeout() time.Duration {
	return s.staleTimeout
}

// Upload installs a new buffer under name and fills it from body.
//
// Every successful Read of body becomes one chunk, so readers see data as
// soon as the transport delivers it. When body is exhausted the buffer is
// marked complete. If reading fails or ctx is cancelled the buffer is left
// incomplete: data already appended stays readable and streams end once the
// stale timeout passes.
//
// Any buffer previously registered under name is replaced. Streams already
// reading it are not affected. The replacement happens when Upload is called,
// before the first byte arrives, so an empty body leaves an empty complete
// object in place of the old one.
//
// Returns:
//   - ObjectInfo: metadata of the new buffer after the body was consumed
//   - error: ErrInvalidInput for a bad name, or the wrapped read/context error
func (s *LiveService) Upload(ctx context.Context, name string, body io.Reader) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, fmt.Errorf("upload object: %w", err)
	}

	if !IsValidName(name) {
		return ObjectInfo{}, fmt.Errorf("upload object %q: %w", name, ErrInvalidInput)
	}

	buf := s.registry.CreateOrReplace(name)
	s.recorder.UploadStarted()
	s.recorder.ObjectsChanged(s.registry.Len())

	complete := false
	defer func() { s.recorder.UploadFinished(complete) }()

	p := make([]byte, s.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return buf.Info(), fmt.Errorf("upload object %s: %w", name, err)
		}

		n, readErr := body.Read(p)
		if n > 0 {
			buf.Append(bytes.Clone(p[:n]))
			s.recorder.ChunkAppended(n)
		}

		if errors.Is(readErr, io.EOF) {
			buf.MarkComplete()
			complete = true
			return buf.Info(), nil
		}
		if readErr != nil {
			return buf.Info(), fmt.Errorf("upload object %s: read body: %w", name, readErr)
		}
	}
}

// Open returns a stream that tails the buffer currently registered under name.
func (s *LiveService) Open(ctx context.Context, name string) (ObjectInfo, *Stream, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, nil, fmt.Errorf("open object: %w", err)
	}

	buf, err := s.registry.Lookup(name)
	if err != nil {
		return ObjectInfo{}, nil, fmt.Errorf("open object: %w", err)
	}

	s.recorder.StreamStarted()
	return buf.Info(), NewStream(buf, s.staleTimeout), nil
}

// Finish reports a stream obtained from Open as done.
func (s *LiveService) Finish(stream *Stream) {
	_, n := stream.Delivered()
	s.recorder.StreamFinished(n, stream.Outcome())
}

func (s *LiveService) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, fmt.Errorf("stat object: %w", err)
	}

	buf, err := s.registry.Lookup(name)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat object: %w", err)
	}
	return buf.Info(), nil
}

func (s *LiveService) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if name == "" {
		return fmt.Errorf("delete object: %w: name cannot be empty", ErrInvalidInput)
	}

	if err := s.registry.Delete(name); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	s.recorder.ObjectsChanged(s.registry.Len())
	return nil
}

func (s *LiveService) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return s.registry.List(prefix), nil
}
