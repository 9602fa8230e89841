// Package api exposes the HTTP handlers for the run tracker.
package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"example.com/runtracker/internal/domain"
	"example.com/runtracker/internal/observability"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	users      *domain.UserService
	runs       *domain.RunService
	statistics *domain.StatisticsService
	validate   *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(users *domain.UserService, runs *domain.RunService, statistics *domain.StatisticsService) *Handler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		users:      users,
		runs:       runs,
		statistics: statistics,
		validate:   validate,
	}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/users", h.listUsers)
		r.Post("/users", h.createUser)
		r.Get("/users/{userId}", h.getUser)
		r.Put("/users/{userId}", h.updateUser)
		r.Delete("/users/{userId}", h.deleteUser)

		r.Post("/runs/start", h.startRun)
		r.Post("/runs/finish", h.finishRun)

		r.Get("/statistics/{userId}", h.getUserStatistics)
		r.Get("/statistics/{userId}/runs", h.getUserRuns)
	})
	router.Get("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	created, err := h.users.CreateUser(r.Context(), h.toUser(0, req))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(*created))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeUserRequest(w, r)
	if !ok {
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), h.toUser(userID, req))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*updated))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startRun(w http.ResponseWriter, r *http.Request) {
	var req RunStartRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	run, err := h.runs.StartRun(r.Context(), domain.StartRunInput{
		UserID:         req.UserID,
		StartTime:      req.StartTime,
		StartLatitude:  *req.StartLatitude,
		StartLongitude: *req.StartLongitude,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	observability.RecordRunStarted()
	writeJSON(w, http.StatusCreated, toRunResponse(*run))
}

func (h *Handler) finishRun(w http.ResponseWriter, r *http.Request) {
	var req RunFinishRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	run, err := h.runs.FinishRun(r.Context(), domain.FinishRunInput{
		UserID:          req.UserID,
		FinishTime:      req.FinishTime,
		FinishLatitude:  *req.FinishLatitude,
		FinishLongitude: *req.FinishLongitude,
		Distance:        req.Distance,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	observability.RecordRunFinished(*run.FinishTime)
	writeJSON(w, http.StatusOK, toRunResponse(*run))
}

func (h *Handler) getUserStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	window, ok := timeWindowParams(w, r)
	if !ok {
		return
	}

	stat, err := h.statistics.GetUserStatistic(r.Context(), userID, window.from, window.to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StatisticResponse{
		TotalRuns:     stat.TotalRuns,
		TotalDistance: stat.TotalDistance,
		AverageSpeed:  stat.AverageSpeed,
	})
}

func (h *Handler) getUserRuns(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	window, ok := timeWindowParams(w, r)
	if !ok {
		return
	}

	stats, err := h.statistics.GetUserRuns(r.Context(), userID, window.from, window.to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]RunStatisticResponse, 0, len(stats))
	for _, stat := range stats {
		resp = append(resp, toRunStatisticResponse(stat))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decodeUserRequest(w http.ResponseWriter, r *http.Request) (UserRequest, bool) {
	var req UserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return UserRequest{}, false
	}
	return req, true
}

func (h *Handler) toUser(id int64, req UserRequest) domain.User {
	// Format validated by the datetime tag.
	birthDate, _ := time.Parse(birthDateLayout, req.BirthDate)
	return domain.User{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Sex:       *req.Sex,
	}
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", ErrorDetails{Message: err.Error()})
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userId")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", ErrorDetails{
			Message:       "Field 'userId' must be a positive integer",
			FieldName:     "userId",
			RejectedValue: raw,
		})
		return 0, false
	}
	return userID, true
}

type timeWindow struct {
	from *time.Time
	to   *time.Time
}

func timeWindowParams(w http.ResponseWriter, r *http.Request) (timeWindow, bool) {
	var window timeWindow
	for _, param := range []struct {
		name   string
		target **time.Time
	}{
		{"from", &window.from},
		{"to", &window.to},
	} {
		raw := r.URL.Query().Get(param.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Validation failed", ErrorDetails{
				Message:       "Field '" + param.name + "' must be an RFC 3339 timestamp",
				FieldName:     param.name,
				RejectedValue: raw,
			})
			return timeWindow{}, false
		}
		*param.target = &parsed
	}
	return window, true
}

func logError(r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
