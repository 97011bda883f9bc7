package livestow

import (
	"context"
	"io"
	"time"
)

// minStaleRecheck bounds how soon a waiting stream re-evaluates staleness
// when the deadline has been reached but not yet passed.
const minStaleRecheck = time.Millisecond

// PollState is the result of a single non-blocking Stream.Poll.
type PollState int

const (
	// PollChunk means a chunk was returned and the cursor advanced.
	PollChunk PollState = iota
	// PollPending means the stream is caught up but the buffer is still live.
	PollPending
	// PollDone means the stream has terminated and will never produce again.
	PollDone
)

func (s PollState) String() string {
	switch s {
	case PollChunk:
		return "chunk"
	case PollPending:
		return "pending"
	case PollDone:
		return "done"
	default:
		return "unknown"
	}
}

// Stream is a forward-only cursor over one Buffer. It yields every chunk in
// append order, waits while the upload is live and ends once the buffer is
// complete or has been quiet for longer than the stale timeout.
//
// A Stream belongs to a single consumer and is not safe for concurrent use.
// Once terminated it stays terminated even if the buffer later grows.
type Stream struct {
	buf     *Buffer
	timeout time.Duration

	next      int
	delivered int64
	done      bool
	outcome   Outcome
}

// NewStream returns a stream positioned at the first chunk of b.
func NewStream(b *Buffer, timeout time.Duration) *Stream {
	return &Stream{
		buf:     b,
		timeout: timeout,
		outcome: OutcomePending,
	}
}

// Poll performs one non-blocking pull.
func (s *Stream) Poll() ([]byte, PollState) {
	chunk, state, _ := s.poll()
	return chunk, state
}

// Next blocks until the next chunk is available and returns it. It returns
// io.EOF once the stream has terminated and ctx.Err() if ctx is cancelled
// while waiting.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, state, st := s.poll()
		switch state {
		case PollChunk:
			return chunk, nil
		case PollDone:
			return nil, io.EOF
		}

		wait := time.Until(st.lastUpdate.Add(s.timeout))
		if wait < minStaleRecheck {
			wait = minStaleRecheck
		}
		if timer == nil {
			timer = time.NewTimer(wait)
		} else {
			timer.Reset(wait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-st.wake:
		case <-timer.C:
		}
	}
}

// Outcome reports why the stream ended. It is OutcomePending until the
// stream terminates.
func (s *Stream) Outcome() Outcome {
	return s.outcome
}

// Delivered returns how many chunks and bytes the stream has produced.
func (s *Stream) Delivered() (chunks int, bytes int64) {
	return s.next, s.delivered
}

func (s *Stream) poll() ([]byte, PollState, bufferState) {
	if s.done {
		return nil, PollDone, bufferState{}
	}

	st := s.buf.state(s.next, s.timeout)
	if s.next < st.length {
		s.next++
		s.delivered += int64(len(st.chunk))
		return st.chunk, PollChunk, st
	}

	if !st.stale {
		return nil, PollPending, st
	}
	if st.complete {
		s.terminate(OutcomeComplete)
	} else {
		s.terminate(OutcomeStale)
	}
	return nil, PollDone, st
}

func (s *Stream) terminate(o Outcome) {
	s.done = true
	s.outcome = o
}
