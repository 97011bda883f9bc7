package livestow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Buffer is the in-memory state of one uploaded object: an ordered list of
// immutable chunks, the time of the last append and a completion flag.
//
// A single uploader appends while any number of streams read concurrently.
// All fields are guarded by one RWMutex so a reader never observes a chunk
// list from one instant and a timestamp from another.
type Buffer struct {
	id        uuid.UUID
	name      string
	createdAt time.Time

	mu         sync.RWMutex
	chunks     [][]byte
	size       int64
	lastUpdate time.Time
	complete   bool
	// wake is closed and replaced on every mutation.
	wake chan struct{}
}

// NewBuffer returns an empty buffer for name. Its last update time starts at
// creation so an object that never receives data still goes stale.
func NewBuffer(name string) *Buffer {
	now := time.Now()
	return &Buffer{
		id:         uuid.New(),
		name:       name,
		createdAt:  now,
		lastUpdate: now,
		wake:       make(chan struct{}),
	}
}

// ID returns the identifier assigned to this upload.
func (b *Buffer) ID() uuid.UUID { return b.id }

// Name returns the registry key the buffer was created under.
func (b *Buffer) Name() string { return b.name }

// Append adds chunk to the end of the buffer and records the time.
// The buffer takes ownership of chunk; the caller must not modify it afterwards.
func (b *Buffer) Append(chunk []byte) {
	b.mu.Lock()
	b.chunks = append(b.chunks, chunk)
	b.size += int64(len(chunk))
	now := time.Now()
	if now.After(b.lastUpdate) {
		b.lastUpdate = now
	}
	b.notifyLocked()
	b.mu.Unlock()
}

// MarkComplete flags the upload as finished. Calling it more than once has no
// further effect.
func (b *Buffer) MarkComplete() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.complete {
		return
	}
	b.complete = true
	b.notifyLocked()
}

// Len returns the number of chunks at the time of the call.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chunks)
}

// ChunkAt returns the chunk at index i. Indices are stable once written;
// i must be less than a previously observed Len.
func (b *Buffer) ChunkAt(i int) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.chunks[i]
}

// IsStale reports whether readers should stop waiting: either the upload
// was marked complete or nothing was appended for longer than timeout.
func (b *Buffer) IsStale(now time.Time, timeout time.Duration) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.staleLocked(now, timeout)
}

// Info returns a consistent snapshot of the buffer's metadata.
func (b *Buffer) Info() ObjectInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return ObjectInfo{
		ID:        b.id,
		Name:      b.name,
		Chunks:    len(b.chunks),
		SizeBytes: b.size,
		Complete:  b.complete,
		CreatedAt: b.createdAt,
		UpdatedAt: b.lastUpdate,
	}
}

// bufferState is everything a stream needs to decide its next move, read
// under a single lock acquisition.
type bufferState struct {
	length     int
	chunk      []byte
	lastUpdate time.Time
	complete   bool
	stale      bool
	wake       <-chan struct{}
}

// state returns the chunk at index next, if present, together with the
// liveness fields and the channel that will be closed on the next mutation.
// stale is evaluated with the same rule as IsStale.
func (b *Buffer) state(next int, timeout time.Duration) bufferState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := bufferState{
		length:     len(b.chunks),
		lastUpdate: b.lastUpdate,
		complete:   b.complete,
		stale:      b.staleLocked(time.Now(), timeout),
		wake:       b.wake,
	}
	if next < len(b.chunks) {
		st.chunk = b.chunks[next]
	}
	return st
}

func (b *Buffer) staleLocked(now time.Time, timeout time.Duration) bool {
	return b.complete || now.Sub(b.lastUpdate) > timeout
}

func (b *Buffer) notifyLocked() {
	close(b.wake)
	b.wake = make(chan struct{})
}
