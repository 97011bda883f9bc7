package livestow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectInfo describes one registered object at a point in time.
type ObjectInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Chunks    int       `json:"chunks"`
	SizeBytes int64     `json:"size_bytes"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Outcome records why a stream stopped producing chunks.
type Outcome string

const (
	// OutcomePending is reported while the stream can still produce chunks.
	OutcomePending Outcome = "pending"
	// OutcomeComplete means the uploader finished and every chunk was delivered.
	OutcomeComplete Outcome = "complete"
	// OutcomeStale means the upload went quiet for longer than the stale timeout.
	// The uploader may have finished without signalling or may have died.
	OutcomeStale Outcome = "stale"
)

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomePending, OutcomeComplete, OutcomeStale:
		return true
	default:
		return false
	}
}

func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.IsValid() {
		return "", fmt.Errorf("invalid outcome: %s (valid outcomes: pending, complete, stale)", s)
	}
	return o, nil
}

type ListResult struct {
	Items []ObjectInfo `json:"items"`
}
