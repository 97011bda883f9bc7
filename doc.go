// Package livestow provides an in-memory live object relay.
//
// An object is uploaded as a sequence of byte chunks and can be downloaded by
// any number of readers while the upload is still running. Readers follow the
// upload as it grows and stop once the uploader signals completion or no data
// has arrived for the stale timeout.
//
// # Key Components
//
//   - Buffer: append-only chunk list with a last-update time and completion flag
//   - Stream: forward-only cursor that tails one Buffer for one reader
//   - Registry: name to Buffer mapping shared by all requests
//   - LiveService: upload, open, stat, delete and list on top of a Registry
//
// # Termination
//
// A reader cannot tell a finished upload from an abandoned one once the stale
// timeout has passed; both end the stream normally. Stream.Outcome reports
// which of the two happened for callers that care.
//
// # Example Usage
//
//	reg := livestow.NewRegistry()
//	service, err := livestow.NewLiveService(reg, livestow.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Writer
//	go service.Upload(ctx, "live/cam1.ts", body)
//
//	// Reader
//	_, stream, err := service.Open(ctx, "live/cam1.ts")
//	for {
//	    chunk, err := stream.Next(ctx)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//
// # Limitations
//
// Chunks stay in memory for the life of a buffer. There is no size cap, no
// eviction and no persistence; a replaced or deleted object is freed once the
// last stream reading it finishes.
//
// See the http package for the REST API.
package livestow
