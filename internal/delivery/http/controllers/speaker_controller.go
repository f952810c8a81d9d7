package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"conferencegateway/internal/delivery/http/helpers"
	"conferencegateway/internal/domain"
)

// SpeakerRequest is the request body for POST, PUT and PATCH on /api/speakers.
// Sessions are matched by id; other session fields are ignored. For PATCH an
// omitted sessions keeps the stored links and an empty list removes them.
type SpeakerRequest struct {
	ID        *int64            `json:"id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Twitter   string            `json:"twitter"`
	Bio       string            `json:"bio"`
	Sessions  []*domain.Session `json:"sessions"`
}

func (s SpeakerRequest) toDomain() *domain.Speaker {
	speaker := domain.NewSpeaker(s.FirstName, s.LastName, s.Email, s.Twitter, s.Bio)
	speaker.ID = s.ID
	speaker.Sessions = s.Sessions
	return speaker
}

// SpeakerSuccessResponse is the success response envelope for a single speaker.
type SpeakerSuccessResponse struct {
	Data  *domain.Speaker   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListSpeakersResponse is the data payload for GET /api/speakers (200).
type ListSpeakersResponse struct {
	Items      []*domain.Speaker      `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListSpeakersSuccessResponse is the success response envelope for GET /api/speakers (200).
type ListSpeakersSuccessResponse struct {
	Data  ListSpeakersResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// SessionSpeakersSuccessResponse is the success response envelope for GET /api/sessions/{id}/speakers (200).
type SessionSpeakersSuccessResponse struct {
	Data  []*domain.Speaker `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type SpeakerController struct {
	Logger  *slog.Logger
	Service domain.SpeakerService
}

func NewSpeakerController(logger *slog.Logger, svc domain.SpeakerService) *SpeakerController {
	return &SpeakerController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateSpeaker godoc
// @Summary Create a speaker
// @Description Creates a speaker and links it to the listed sessions.
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param speaker body SpeakerRequest true "Speaker without id"
// @Success 201 {object} controllers.SpeakerSuccessResponse "data contains the created speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (also for unknown session ids)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/speakers [post]
func (c *SpeakerController) CreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req SpeakerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	speaker, err := c.Service.Create(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "speaker not found")
		return
	}
	w.Header().Set("Location", "/api/speakers/"+formatID(speaker.ID))
	helpers.WriteJSONSuccess(w, http.StatusCreated, speaker)
}

// UpdateSpeaker godoc
// @Summary Replace a speaker
// @Description Overwrites every field of the speaker and replaces its session links. The body id must equal the path id.
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Speaker ID"
// @Param speaker body SpeakerRequest true "Complete speaker"
// @Success 200 {object} controllers.SpeakerSuccessResponse "data contains the updated speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (row changed concurrently)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/speakers/{id} [put]
func (c *SpeakerController) UpdateSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SpeakerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if !matchBodyID(w, id, req.ID) {
		return
	}
	speaker, err := c.Service.Update(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "speaker not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, speaker)
}

// PatchSpeaker godoc
// @Summary Partially update a speaker
// @Description Updates the supplied fields of the speaker; omitted fields keep their stored value. The body id must equal the path id.
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Speaker ID"
// @Param speaker body SpeakerRequest true "Fields to update"
// @Success 200 {object} controllers.SpeakerSuccessResponse "data contains the merged speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/speakers/{id} [patch]
func (c *SpeakerController) PatchSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SpeakerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if !matchBodyID(w, id, req.ID) {
		return
	}
	speaker, err := c.Service.PartialUpdate(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "speaker not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, speaker)
}

// GetSpeaker godoc
// @Summary Get a speaker by ID
// @Description Returns the speaker together with its sessions.
// @Tags speakers
// @Produce json
// @Param id path int true "Speaker ID"
// @Success 200 {object} controllers.SpeakerSuccessResponse "data contains the speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/speakers/{id} [get]
func (c *SpeakerController) GetSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	speaker, err := c.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "speaker not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, speaker)
}

// ListSpeakers godoc
// @Summary List speakers
// @Description Returns one page of speakers. With eagerload=true every speaker carries its sessions.
// @Description With Accept: application/x-ndjson every speaker is streamed as one JSON line instead, without sessions; paging and eagerload are ignored.
// @Tags speakers
// @Produce json
// @Produce application/x-ndjson
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Param sort query []string false "column[,asc|desc], repeatable"
// @Param eagerload query bool false "Load sessions of every speaker"
// @Success 200 {object} controllers.ListSpeakersSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown sort column)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/speakers [get]
func (c *SpeakerController) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	if helpers.WantsNDJSON(r) {
		started, err := helpers.StreamNDJSON(w, r, c.Service.Stream(r.Context(), params.Sort))
		finishStream(w, r, c.Logger, started, err)
		return
	}
	eager, _ := strconv.ParseBool(r.URL.Query().Get("eagerload"))
	list, total, err := c.Service.List(r.Context(), params, eager)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "speaker not found")
		return
	}
	if list == nil {
		list = []*domain.Speaker{}
	}
	setTotalCount(w, total)
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListSpeakersResponse{Items: list, Pagination: meta})
}

// ListSessionSpeakers godoc
// @Summary List the speakers of a session
// @Tags sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} controllers.SessionSpeakersSuccessResponse "data contains the speakers"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/sessions/{id}/speakers [get]
func (c *SpeakerController) ListSessionSpeakers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := c.Service.ListBySession(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "session not found")
		return
	}
	if list == nil {
		list = []*domain.Speaker{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// DeleteSpeaker godoc
// @Summary Delete a speaker
// @Description Deletes the speaker's session links, then the speaker.
// @Tags speakers
// @Security BearerAuth
// @Param id path int true "Speaker ID"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/speakers/{id} [delete]
func (c *SpeakerController) DeleteSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, c.Logger, err, "speaker not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
