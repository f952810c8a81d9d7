package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"conferencegateway/internal/delivery/http/helpers"
	"conferencegateway/internal/domain"
)

// SessionRequest is the request body for POST, PUT and PATCH on /api/sessions.
// For PATCH every field except id is optional; omitted fields keep their stored value.
type SessionRequest struct {
	ID            *int64    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDateTime time.Time `json:"start_date_time"`
	EndDateTime   time.Time `json:"end_date_time"`
}

// Validate implements Validator.
func (s SessionRequest) Validate() []string {
	var errs []string
	if !s.StartDateTime.IsZero() && !s.EndDateTime.IsZero() && s.EndDateTime.Before(s.StartDateTime) {
		errs = append(errs, "end_date_time must not be before start_date_time")
	}
	return errs
}

func (s SessionRequest) toDomain() *domain.Session {
	session := domain.NewSession(s.Title, s.Description, s.StartDateTime, s.EndDateTime)
	session.ID = s.ID
	return session
}

// SessionSuccessResponse is the success response envelope for a single session.
type SessionSuccessResponse struct {
	Data  *domain.Session   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListSessionsResponse is the data payload for GET /api/sessions (200).
type ListSessionsResponse struct {
	Items      []*domain.Session      `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListSessionsSuccessResponse is the success response envelope for GET /api/sessions (200).
type ListSessionsSuccessResponse struct {
	Data  ListSessionsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type SessionController struct {
	Logger  *slog.Logger
	Service domain.SessionService
}

func NewSessionController(logger *slog.Logger, svc domain.SessionService) *SessionController {
	return &SessionController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateSession godoc
// @Summary Create a session
// @Description Creates a session. The id is assigned by storage and must not be sent.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body SessionRequest true "Session without id"
// @Success 201 {object} controllers.SessionSuccessResponse "data contains the created session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/sessions [post]
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.Create(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "session not found")
		return
	}
	w.Header().Set("Location", "/api/sessions/"+formatID(session.ID))
	helpers.WriteJSONSuccess(w, http.StatusCreated, session)
}

// UpdateSession godoc
// @Summary Replace a session
// @Description Overwrites every field of the session. The body id must equal the path id.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param session body SessionRequest true "Complete session"
// @Success 200 {object} controllers.SessionSuccessResponse "data contains the updated session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (row changed concurrently)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/sessions/{id} [put]
func (c *SessionController) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if !matchBodyID(w, id, req.ID) {
		return
	}
	session, err := c.Service.Update(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// PatchSession godoc
// @Summary Partially update a session
// @Description Updates the supplied fields of the session; omitted fields keep their stored value. The body id must equal the path id.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param session body SessionRequest true "Fields to update"
// @Success 200 {object} controllers.SessionSuccessResponse "data contains the merged session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/sessions/{id} [patch]
func (c *SessionController) PatchSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if !matchBodyID(w, id, req.ID) {
		return
	}
	session, err := c.Service.PartialUpdate(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// GetSession godoc
// @Summary Get a session by ID
// @Tags sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} controllers.SessionSuccessResponse "data contains the session"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	session, err := c.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, session)
}

// ListSessions godoc
// @Summary List sessions
// @Description Returns one page of sessions. The total is also sent in the X-Total-Count header.
// @Description With Accept: application/x-ndjson every session is streamed as one JSON line instead; paging is ignored.
// @Tags sessions
// @Produce json
// @Produce application/x-ndjson
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Param sort query []string false "column[,asc|desc], repeatable"
// @Success 200 {object} controllers.ListSessionsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown sort column)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/sessions [get]
func (c *SessionController) ListSessions(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	if helpers.WantsNDJSON(r) {
		started, err := helpers.StreamNDJSON(w, r, c.Service.Stream(r.Context(), params.Sort))
		finishStream(w, r, c.Logger, started, err)
		return
	}
	list, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "session not found")
		return
	}
	if list == nil {
		list = []*domain.Session{}
	}
	setTotalCount(w, total)
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListSessionsResponse{Items: list, Pagination: meta})
}

// DeleteSession godoc
// @Summary Delete a session
// @Description Deletes the session and every speaker link that references it.
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/sessions/{id} [delete]
func (c *SessionController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, c.Logger, err, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
