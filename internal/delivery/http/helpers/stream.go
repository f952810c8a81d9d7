package helpers

import (
	"encoding/json"
	"iter"
	"mime"
	"net/http"
	"strings"
)

// ContentTypeNDJSON is the media type of newline-delimited JSON streams.
const ContentTypeNDJSON = "application/x-ndjson"

// WantsNDJSON reports whether the Accept header asks for an NDJSON stream.
func WantsNDJSON(r *http.Request) bool {
	for part := range strings.SplitSeq(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == ContentTypeNDJSON {
			return true
		}
	}
	return false
}

// StreamNDJSON writes each element of seq as one JSON line and flushes after
// every line, so the client sees elements as they are read. It stops when the
// request context is done or a write fails.
//
// started reports whether the 200 header has gone out. An error returned with
// started false can still be written as a normal error response.
func StreamNDJSON[T any](w http.ResponseWriter, r *http.Request, seq iter.Seq2[T, error]) (started bool, err error) {
	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	for v, err := range seq {
		if err != nil {
			return started, err
		}
		if err := r.Context().Err(); err != nil {
			return started, err
		}
		if !started {
			w.Header().Set("Content-Type", ContentTypeNDJSON)
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := enc.Encode(v); err != nil {
			return started, err
		}
		if err := rc.Flush(); err != nil {
			return started, err
		}
	}
	if !started {
		w.Header().Set("Content-Type", ContentTypeNDJSON)
		w.WriteHeader(http.StatusOK)
		started = true
	}
	return started, r.Context().Err()
}
