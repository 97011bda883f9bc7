package livestow_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/sagarc03/livestow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SpyRecorder struct {
	mock.Mock
}

func (s *SpyRecorder) UploadStarted()        { s.Called() }
func (s *SpyRecorder) ChunkAppended(n int)   { s.Called(n) }
func (s *SpyRecorder) UploadFinished(c bool) { s.Called(c) }
func (s *SpyRecorder) StreamStarted()        { s.Called() }
func (s *SpyRecorder) StreamFinished(n int64, o livestow.Outcome) {
	s.Called(n, o)
}
func (s *SpyRecorder) ObjectsChanged(count int) { s.Called(count) }

// chunkReader returns each element of chunks from a separate Read call.
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func NewLiveService(t *testing.T, cfg livestow.ServiceConfig) (*livestow.LiveService, *livestow.Registry) {
	t.Helper()
	reg := livestow.NewRegistry()
	s, err := livestow.NewLiveService(reg, cfg)
	require.NoError(t, err, "new live service")
	return s, reg
}

func TestNewLiveService(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{})
		assert.Equal(t, livestow.DefaultStaleTimeout, s.StaleTimeout())
	})

	t.Run("custom timeout", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{StaleTimeout: 5 * time.Second})
		assert.Equal(t, 5*time.Second, s.StaleTimeout())
	})

	t.Run("nil registry", func(t *testing.T) {
		_, err := livestow.NewLiveService(nil, livestow.ServiceConfig{})
		assert.ErrorIs(t, err, livestow.ErrInvalidInput)
	})

	t.Run("negative timeout", func(t *testing.T) {
		_, err := livestow.NewLiveService(livestow.NewRegistry(), livestow.ServiceConfig{StaleTimeout: -time.Second})
		assert.ErrorIs(t, err, livestow.ErrInvalidInput)
	})

	t.Run("negative chunk size", func(t *testing.T) {
		_, err := livestow.NewLiveService(livestow.NewRegistry(), livestow.ServiceConfig{ChunkSize: -1})
		assert.ErrorIs(t, err, livestow.ErrInvalidInput)
	})
}

func TestLiveService_Upload(t *testing.T) {
	t.Run("each read becomes a chunk", func(t *testing.T) {
		s, reg := NewLiveService(t, livestow.ServiceConfig{})
		ctx := context.Background()

		info, err := s.Upload(ctx, "v1", &chunkReader{chunks: []string{"abc", "de", "f"}})
		require.NoError(t, err)

		assert.Equal(t, "v1", info.Name)
		assert.Equal(t, 3, info.Chunks)
		assert.Equal(t, int64(6), info.SizeBytes)
		assert.True(t, info.Complete)

		b, err := reg.Lookup("v1")
		require.NoError(t, err)
		assert.Equal(t, []byte("de"), b.ChunkAt(1))
	})

	t.Run("chunk size bounds each read", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{ChunkSize: 4})

		info, err := s.Upload(context.Background(), "sized", strings.NewReader("0123456789"))
		require.NoError(t, err)

		assert.Equal(t, 3, info.Chunks)
		assert.Equal(t, int64(10), info.SizeBytes)
	})

	t.Run("chunks do not alias the read buffer", func(t *testing.T) {
		s, reg := NewLiveService(t, livestow.ServiceConfig{ChunkSize: 2})

		_, err := s.Upload(context.Background(), "alias", iotest.OneByteReader(strings.NewReader("xyz")))
		require.NoError(t, err)

		b, err := reg.Lookup("alias")
		require.NoError(t, err)
		require.Equal(t, 3, b.Len())
		assert.Equal(t, []byte("x"), b.ChunkAt(0))
		assert.Equal(t, []byte("y"), b.ChunkAt(1))
		assert.Equal(t, []byte("z"), b.ChunkAt(2))
	})

	t.Run("empty body completes an empty object", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{})

		info, err := s.Upload(context.Background(), "empty", bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Equal(t, 0, info.Chunks)
		assert.True(t, info.Complete)
	})

	t.Run("empty body replaces existing object", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{})

		first, err := s.Upload(context.Background(), "clip", strings.NewReader("old data"))
		require.NoError(t, err)

		second, err := s.Upload(context.Background(), "clip", bytes.NewReader(nil))
		require.NoError(t, err)

		got, err := s.Stat(context.Background(), "clip")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, got.ID)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, int64(0), got.SizeBytes)
		assert.True(t, got.Complete)
	})

	t.Run("read error leaves buffer incomplete", func(t *testing.T) {
		s, reg := NewLiveService(t, livestow.ServiceConfig{})
		body := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(io.ErrUnexpectedEOF))

		info, err := s.Upload(context.Background(), "broken", body)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.False(t, info.Complete)

		b, lookupErr := reg.Lookup("broken")
		require.NoError(t, lookupErr)
		assert.Equal(t, 1, b.Len())
		assert.False(t, b.Info().Complete)
	})

	t.Run("invalid name", func(t *testing.T) {
		s, reg := NewLiveService(t, livestow.ServiceConfig{})

		_, err := s.Upload(context.Background(), "../etc/passwd", strings.NewReader("x"))
		assert.ErrorIs(t, err, livestow.ErrInvalidInput)
		assert.Equal(t, 0, reg.Len())
	})

	t.Run("context cancelled before operation", func(t *testing.T) {
		s, reg := NewLiveService(t, livestow.ServiceConfig{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Upload(ctx, "v1", strings.NewReader("x"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, reg.Len())
	})

	t.Run("records metrics", func(t *testing.T) {
		rec := new(SpyRecorder)
		rec.On("UploadStarted").Once()
		rec.On("ObjectsChanged", 1).Once()
		rec.On("ChunkAppended", 3).Once()
		rec.On("ChunkAppended", 2).Once()
		rec.On("UploadFinished", true).Once()

		s, _ := NewLiveService(t, livestow.ServiceConfig{Recorder: rec})
		_, err := s.Upload(context.Background(), "m", &chunkReader{chunks: []string{"abc", "de"}})
		require.NoError(t, err)

		rec.AssertExpectations(t)
	})
}

func TestLiveService_RoundTrip(t *testing.T) {
	s, _ := NewLiveService(t, livestow.ServiceConfig{})
	ctx := context.Background()

	_, err := s.Upload(ctx, "v1", &chunkReader{chunks: []string{"abc", "de", "f"}})
	require.NoError(t, err)

	info, stream, err := s.Open(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, info.Complete)

	var out bytes.Buffer
	for {
		chunk, nextErr := stream.Next(ctx)
		if errors.Is(nextErr, io.EOF) {
			break
		}
		require.NoError(t, nextErr)
		out.Write(chunk)
	}

	assert.Equal(t, "abcdef", out.String())
	assert.Equal(t, livestow.OutcomeComplete, stream.Outcome())
}

func TestLiveService_ConcurrentUploadAndDownload(t *testing.T) {
	s, _ := NewLiveService(t, livestow.ServiceConfig{StaleTimeout: time.Second})
	ctx := context.Background()

	pr, pw := io.Pipe()
	uploadDone := make(chan error, 1)
	go func() {
		_, err := s.Upload(ctx, "live", pr)
		uploadDone <- err
	}()

	_, err := pw.Write([]byte("first"))
	require.NoError(t, err)

	// The upload is still open; the object is already readable.
	_, stream, err := s.Open(ctx, "live")
	require.NoError(t, err)

	chunk, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), chunk)

	go func() {
		_, _ = pw.Write([]byte("second"))
		_ = pw.Close()
	}()

	chunk, err = stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), chunk)

	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, livestow.OutcomeComplete, stream.Outcome())
	require.NoError(t, <-uploadDone)
}

func TestLiveService_ReplacementIsolation(t *testing.T) {
	s, _ := NewLiveService(t, livestow.ServiceConfig{StaleTimeout: time.Hour})
	ctx := context.Background()

	pr, pw := io.Pipe()
	go func() { _, _ = s.Upload(ctx, "x", pr) }()
	_, err := pw.Write([]byte("old-1"))
	require.NoError(t, err)

	_, oldStream, err := s.Open(ctx, "x")
	require.NoError(t, err)

	_, err = s.Upload(ctx, "x", strings.NewReader("new"))
	require.NoError(t, err)

	go func() {
		_, _ = pw.Write([]byte("old-2"))
		_ = pw.Close()
	}()

	var got []string
	for {
		chunk, nextErr := oldStream.Next(ctx)
		if errors.Is(nextErr, io.EOF) {
			break
		}
		require.NoError(t, nextErr)
		got = append(got, string(chunk))
	}
	assert.Equal(t, []string{"old-1", "old-2"}, got)

	_, newStream, err := s.Open(ctx, "x")
	require.NoError(t, err)
	chunk, err := newStream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), chunk)
}

func TestLiveService_Open(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{})

		_, _, err := s.Open(context.Background(), "unknown")
		assert.ErrorIs(t, err, livestow.ErrNotFound)
	})

	t.Run("records stream lifecycle", func(t *testing.T) {
		rec := new(SpyRecorder)
		rec.On("UploadStarted")
		rec.On("ObjectsChanged", mock.Anything)
		rec.On("ChunkAppended", mock.Anything)
		rec.On("UploadFinished", true)
		rec.On("StreamStarted").Once()
		rec.On("StreamFinished", int64(2), livestow.OutcomeComplete).Once()

		s, _ := NewLiveService(t, livestow.ServiceConfig{Recorder: rec})
		ctx := context.Background()
		_, err := s.Upload(ctx, "m", strings.NewReader("hi"))
		require.NoError(t, err)

		_, stream, err := s.Open(ctx, "m")
		require.NoError(t, err)
		_, err = stream.Next(ctx)
		require.NoError(t, err)
		_, err = stream.Next(ctx)
		require.ErrorIs(t, err, io.EOF)
		s.Finish(stream)

		rec.AssertExpectations(t)
	})
}

func TestLiveService_Stat(t *testing.T) {
	s, _ := NewLiveService(t, livestow.ServiceConfig{})
	ctx := context.Background()

	_, err := s.Stat(ctx, "missing")
	assert.ErrorIs(t, err, livestow.ErrNotFound)

	_, err = s.Upload(ctx, "doc", strings.NewReader("hello"))
	require.NoError(t, err)

	info, err := s.Stat(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.SizeBytes)
	assert.True(t, info.Complete)
}

func TestLiveService_Delete(t *testing.T) {
	t.Run("unknown name without prior upload", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{})

		err := s.Delete(context.Background(), "unknown")
		assert.ErrorIs(t, err, livestow.ErrNotFound)

		_, _, err = s.Open(context.Background(), "unknown")
		assert.ErrorIs(t, err, livestow.ErrNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{})

		err := s.Delete(context.Background(), "")
		assert.ErrorIs(t, err, livestow.ErrInvalidInput)
	})

	t.Run("existing stream keeps reading", func(t *testing.T) {
		s, _ := NewLiveService(t, livestow.ServiceConfig{})
		ctx := context.Background()

		_, err := s.Upload(ctx, "gone", strings.NewReader("data"))
		require.NoError(t, err)
		_, stream, err := s.Open(ctx, "gone")
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "gone"))

		chunk, err := stream.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), chunk)

		_, err = s.Stat(ctx, "gone")
		assert.ErrorIs(t, err, livestow.ErrNotFound)
	})
}

func TestLiveService_List(t *testing.T) {
	s, _ := NewLiveService(t, livestow.ServiceConfig{})
	ctx := context.Background()

	for _, name := range []string{"b", "a", "c/d"} {
		_, err := s.Upload(ctx, name, strings.NewReader(name))
		require.NoError(t, err)
	}

	items, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Name)

	items, err = s.List(ctx, "c/")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c/d", items[0].Name)
}
