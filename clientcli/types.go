package clientcli

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/livestow"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string // "-" reads from Stdin
	Name      string // empty = derive from LocalPath
	Stdin     io.Reader
}

// UploadResult represents the result of uploading a single object.
type UploadResult struct {
	LocalPath string    `json:"local_path"`
	Name      string    `json:"name"`
	ID        uuid.UUID `json:"id"`
	Chunks    int       `json:"chunks"`
	Size      int64     `json:"size_bytes"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	Name      string
	LocalPath string    // empty = derive from name, "-" = Stdout
	Stdout    io.Writer // used when LocalPath is "-"
}

// DownloadResult represents the result of downloading an object.
type DownloadResult struct {
	Name      string `json:"name"`
	LocalPath string `json:"local_path"`
	ID        string `json:"id"`
	Size      int64  `json:"size_bytes"`
	// Outcome is "complete" when the upload finished or "stale" when the
	// producer went quiet. Empty if the server did not report it.
	Outcome livestow.Outcome `json:"outcome,omitempty"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Names []string
}

// DeleteResult represents the result of deleting a single object.
type DeleteResult struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListOptions configures a list operation.
type ListOptions struct {
	Prefix string
}

// ListResult contains every object the server currently holds.
type ListResult struct {
	Items []ObjectInfo `json:"items"`
}

// ObjectInfo represents metadata for a single object.
type ObjectInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Chunks    int       `json:"chunks"`
	Size      int64     `json:"size_bytes"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// serverErrorBody mirrors the JSON error envelope returned by the server.
type serverErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
