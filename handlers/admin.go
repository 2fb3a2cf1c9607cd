package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"filmhub/models"
	"filmhub/services/admin"
)

type adminService interface {
	GetAllUsers(ctx context.Context, adminID string) ([]models.User, error)
	SetUserRole(ctx context.Context, adminID, userID string, isAdmin bool) error
	DeactivateUser(ctx context.Context, adminID, userID string) error
	ReactivateUser(ctx context.Context, adminID, userID string) error
	GetReportedReviews(ctx context.Context, adminID string) ([]models.Report, error)
	ApproveReport(ctx context.Context, reportID, adminID, resolution string) error
	RejectReport(ctx context.Context, reportID, adminID, reason string) error
	DeleteReviewByAdmin(ctx context.Context, adminID, reviewID string, movieID int, reason string) error
	CreateReport(ctx context.Context, report models.Report) (string, error)
	GetFAQs(ctx context.Context) ([]models.FAQ, error)
	CreateFAQ(ctx context.Context, adminID string, faq models.FAQ) (string, error)
	CreateSupportTicket(ctx context.Context, ticket models.SupportTicket) (string, error)
	GetUserTickets(ctx context.Context, userID string) ([]models.SupportTicket, error)
	GetAllTickets(ctx context.Context, adminID string) ([]models.SupportTicket, error)
}

var _ adminService = (*admin.Service)(nil)

type AdminHandler struct {
	Service adminService
}

func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{Service: service}
}

// adminIDFrom reads the acting admin's uid. The service re-verifies the
// privilege; this is just plumbing.
func adminIDFrom(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Admin-UID")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("adminId"))
}

func adminStatus(err error) int {
	switch {
	case errors.Is(err, admin.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, admin.ErrUserIDRequired),
		errors.Is(err, admin.ErrReportIDRequired),
		errors.Is(err, admin.ErrReviewIDRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context(), adminIDFrom(r))
	if err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		IsAdmin bool `json:"isAdmin"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.SetUserRole(r.Context(), adminIDFrom(r), userID, body.IsAdmin); err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, h.Service.DeactivateUser)
}

func (h *AdminHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, h.Service.ReactivateUser)
}

func (h *AdminHandler) toggleActive(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) error) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), adminIDFrom(r), userID); err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Service.GetReportedReviews(r.Context(), adminIDFrom(r))
	if err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

func (h *AdminHandler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	h.resolveReport(w, r, h.Service.ApproveReport)
}

func (h *AdminHandler) RejectReport(w http.ResponseWriter, r *http.Request) {
	h.resolveReport(w, r, h.Service.RejectReport)
}

func (h *AdminHandler) resolveReport(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string, string) error) {
	reportID := strings.TrimSpace(mux.Vars(r)["reportID"])
	if reportID == "" {
		http.Error(w, "report id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), reportID, adminIDFrom(r), body.Note); err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := strings.TrimSpace(mux.Vars(r)["reviewID"])
	if reviewID == "" {
		http.Error(w, "review id is required", http.StatusBadRequest)
		return
	}
	movieID, _ := strconv.Atoi(r.URL.Query().Get("movieId"))
	reason := r.URL.Query().Get("reason")

	if err := h.Service.DeleteReviewByAdmin(r.Context(), adminIDFrom(r), reviewID, movieID, reason); err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var report models.Report
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&report); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.Service.CreateReport(r.Context(), report)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *AdminHandler) FAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.Service.GetFAQs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(faqs)
}

func (h *AdminHandler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	var faq models.FAQ
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&faq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.Service.CreateFAQ(r.Context(), adminIDFrom(r), faq)
	if err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *AdminHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var ticket models.SupportTicket
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ticket); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.Service.CreateSupportTicket(r.Context(), ticket)
	if err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *AdminHandler) UserTickets(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	tickets, err := h.Service.GetUserTickets(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tickets)
}

func (h *AdminHandler) AllTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Service.GetAllTickets(r.Context(), adminIDFrom(r))
	if err != nil {
		http.Error(w, err.Error(), adminStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tickets)
}
