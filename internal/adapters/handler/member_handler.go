package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/adapters/middleware"
	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

type MemberHandler struct {
	registry ports.MemberRegistry
	logger   *zap.Logger
}

func NewMemberHandler(registry ports.MemberRegistry, logger *zap.Logger) *MemberHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberHandler{registry: registry, logger: logger}
}

func (h *MemberHandler) Routes(r chi.Router, auth *middleware.AuthMiddleware) {
	r.Route("/members", func(r chi.Router) {
		r.Use(auth.RequireRole(middleware.RoleAdmin))
		r.Post("/", h.Create)
		r.Get("/{nationalID}", h.Get)
	})
}

type RegisterMemberRequest struct {
	NationalID       string `json:"national_id"`
	GivenName        string `json:"given_name"`
	Surname          string `json:"surname"`
	City             string `json:"city"`
	Center           string `json:"center"`
	Qualification    int    `json:"qualification"`
	RegistrationYear int    `json:"registration_year"`
	CardNumber       int    `json:"card_number"`
	Phone            int    `json:"phone"`
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request payload")
		return
	}

	member, err := h.registry.Register(r.Context(), &domain.Member{
		NationalID:       req.NationalID,
		GivenName:        req.GivenName,
		Surname:          req.Surname,
		City:             req.City,
		Center:           req.Center,
		Qualification:    domain.Qualification(req.Qualification),
		RegistrationYear: req.RegistrationYear,
		CardNumber:       req.CardNumber,
		Phone:            req.Phone,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.registry.FindByNationalID(r.Context(), chi.URLParam(r, "nationalID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Reason: "member not found"})
		return
	}
	writeJSON(w, http.StatusOK, member)
}
