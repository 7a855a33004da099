package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/adapters/middleware"
	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

type CourseHandler struct {
	catalog    ports.CourseCatalog
	enrollment ports.EnrollmentManager
	logger     *zap.Logger
}

func NewCourseHandler(catalog ports.CourseCatalog, enrollment ports.EnrollmentManager, logger *zap.Logger) *CourseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseHandler{catalog: catalog, enrollment: enrollment, logger: logger}
}

// OpenEnrollmentRequest carries seats as raw JSON so that both 20 and "20" reach the
// service, which owns the integer check.
type OpenEnrollmentRequest struct {
	OpensOn  string          `json:"opens_on"`
	ClosesOn string          `json:"closes_on"`
	Seats    json.RawMessage `json:"seats"`
}

type SeatsResponse struct {
	HasFreeSeats bool `json:"has_free_seats"`
	SeatsLeft    int  `json:"seats_left"`
}

func (h *CourseHandler) Routes(r chi.Router, auth *middleware.AuthMiddleware) {
	r.Route("/courses", func(r chi.Router) {
		r.With(auth.RequireRole(middleware.RoleAdmin, middleware.RoleMember)).Get("/open", h.ListOpen)
		r.With(auth.RequireRole(middleware.RoleAdmin, middleware.RoleMember)).Get("/{code}/seats", h.Seats)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(middleware.RoleAdmin))
			r.Get("/", h.List)
			r.Post("/{code}/enrollment-period", h.OpenEnrollment)
		})
	})
}

// List serves GET /courses?state=planned|all; planned is the default.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		courses []domain.Course
		err     error
	)
	switch state := r.URL.Query().Get("state"); state {
	case "", "planned":
		courses, err = h.catalog.ListPlanned(r.Context())
	case "all":
		courses, err = h.catalog.ListAll(r.Context())
	default:
		writeBadRequest(w, "state must be planned or all")
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	courses, err := h.enrollment.ListOpenCourses(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if courses == nil {
		courses = []domain.OpenCourse{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) OpenEnrollment(w http.ResponseWriter, r *http.Request) {
	course, ok := h.course(w, r)
	if !ok {
		return
	}

	var req OpenEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request payload")
		return
	}
	opensOn, err := domain.ParseDate(req.OpensOn)
	if err != nil {
		writeBadRequest(w, "opens_on must be a YYYY-MM-DD date")
		return
	}
	closesOn, err := domain.ParseDate(req.ClosesOn)
	if err != nil {
		writeBadRequest(w, "closes_on must be a YYYY-MM-DD date")
		return
	}

	if err := h.enrollment.OpenEnrollment(r.Context(), course, opensOn, closesOn, seatsText(req.Seats)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) Seats(w http.ResponseWriter, r *http.Request) {
	course, ok := h.course(w, r)
	if !ok {
		return
	}

	free, err := h.catalog.SeatsRemaining(r.Context(), course)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	left, err := h.catalog.SeatsLeft(r.Context(), course)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SeatsResponse{HasFreeSeats: free, SeatsLeft: left})
}

// course resolves the {code} path parameter, writing the error response itself when it
// cannot.
func (h *CourseHandler) course(w http.ResponseWriter, r *http.Request) (*domain.Course, bool) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		writeBadRequest(w, "course code must be an integer")
		return nil, false
	}
	course, err := h.catalog.FindByCode(r.Context(), code)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	if course == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Reason: "course not found"})
		return nil, false
	}
	return course, true
}

func seatsText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
