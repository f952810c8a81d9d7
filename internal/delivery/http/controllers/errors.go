package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"conferencegateway/internal/delivery/http/helpers"
	"conferencegateway/internal/domain"
)

// writeServiceError maps a service error onto the API error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFound)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidCriteria):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrStaleUpdate):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// finishStream reports the outcome of an NDJSON stream. Before the first line
// the error is still written as a JSON error response; after it the status is
// already sent, so the error is only logged. A client that went away is not an error.
func finishStream(w http.ResponseWriter, r *http.Request, logger *slog.Logger, started bool, err error) {
	switch {
	case err == nil:
	case r.Context().Err() != nil:
		logger.DebugContext(r.Context(), "stream aborted by client", "path", r.URL.Path, "err", err)
	case !started:
		writeServiceError(w, r, logger, err, "not found")
	default:
		logger.ErrorContext(r.Context(), "stream failed", "path", r.URL.Path, "err", err)
	}
}

// pathID parses the {name} path value as an entity id. On failure it writes a
// 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// matchBodyID checks that the body id is present and equal to the path id.
func matchBodyID(w http.ResponseWriter, pathID int64, bodyID *int64) bool {
	if bodyID == nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "id is required in body")
		return false
	}
	if *bodyID != pathID {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "body id does not match path id")
		return false
	}
	return true
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func setTotalCount(w http.ResponseWriter, total int64) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
}
