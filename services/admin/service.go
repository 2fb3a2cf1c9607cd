// Package admin owns moderation and support: user management, report
// resolution, the append-only audit log, support tickets and FAQs.
//
// Privileged operations verify the acting user's isAdmin flag here, at the
// service boundary, rather than trusting the caller.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"filmhub/internal/store"
	"filmhub/internal/tasks"
	"filmhub/models"
	"filmhub/services/movies"
)

const (
	colUsers    = "users"
	colReports  = "reports"
	colActions  = "admin_actions"
	colTickets  = "support_tickets"
	colFAQs     = "faqs"
	colReviews  = "reviews"
)

var (
	ErrNotAuthorized    = errors.New("admin privilege required")
	ErrUserIDRequired   = errors.New("user id is required")
	ErrReportIDRequired = errors.New("report id is required")
	ErrReviewIDRequired = errors.New("review id is required")
)

type Service struct {
	store  *store.Store
	movies *movies.Service
	tasks  *tasks.Runner
}

func NewService(st *store.Store, movieSvc *movies.Service, runner *tasks.Runner) *Service {
	return &Service{store: st, movies: movieSvc, tasks: runner}
}

// requireAdmin rejects callers whose users document does not carry the
// isAdmin flag.
func (s *Service) requireAdmin(ctx context.Context, adminID string) error {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return ErrNotAuthorized
	}

	var user models.User
	if err := s.store.Get(ctx, colUsers, adminID, &user); err != nil {
		return ErrNotAuthorized
	}
	if !user.IsAdmin {
		return ErrNotAuthorized
	}
	return nil
}

// GetAllUsers returns every user, newest account first.
func (s *Service) GetAllUsers(ctx context.Context, adminID string) ([]models.User, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.store.Find(ctx, colUsers, nil, &users); err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].UID < users[j].UID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// SetUserRole grants or revokes the admin role.
func (s *Service) SetUserRole(ctx context.Context, adminID, userID string, isAdmin bool) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	return s.store.UpdateFields(ctx, colUsers, userID, map[string]any{
		"isAdmin": isAdmin,
	})
}

// DeactivateUser marks the account inactive and stamps deactivatedAt.
func (s *Service) DeactivateUser(ctx context.Context, adminID, userID string) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	return s.store.UpdateFields(ctx, colUsers, userID, map[string]any{
		"isActive":      false,
		"deactivatedAt": time.Now().UTC(),
	})
}

// ReactivateUser clears the inactive state.
func (s *Service) ReactivateUser(ctx context.Context, adminID, userID string) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	return s.store.UpdateFields(ctx, colUsers, userID, map[string]any{
		"isActive":      true,
		"deactivatedAt": store.DeleteField,
	})
}

// GetReportedReviews returns pending review reports, newest first.
func (s *Service) GetReportedReviews(ctx context.Context, adminID string) ([]models.Report, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var reports []models.Report
	err := s.store.Find(ctx, colReports, map[string]any{
		"reportedItemType": models.ReportTypeReview,
		"status":           models.ReportStatusPending,
	}, &reports)
	if err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID < reports[j].ID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// ApproveReport resolves the report with the admin's note.
func (s *Service) ApproveReport(ctx context.Context, reportID, adminID, resolution string) error {
	return s.resolveReport(ctx, reportID, adminID, models.ReportStatusResolved, resolution)
}

// RejectReport closes the report as rejected.
func (s *Service) RejectReport(ctx context.Context, reportID, adminID, reason string) error {
	return s.resolveReport(ctx, reportID, adminID, models.ReportStatusRejected, reason)
}

func (s *Service) resolveReport(ctx context.Context, reportID, adminID, status, resolution string) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if strings.TrimSpace(reportID) == "" {
		return ErrReportIDRequired
	}

	return s.store.UpdateFields(ctx, colReports, reportID, map[string]any{
		"status":     status,
		"resolvedAt": time.Now().UTC(),
		"resolvedBy": adminID,
		"resolution": resolution,
	})
}

// DeleteReviewByAdmin removes a rule-breaking review and appends an audit
// record. The audit write is background work; its failure never fails the
// delete.
func (s *Service) DeleteReviewByAdmin(ctx context.Context, adminID, reviewID string, movieID int, reason string) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if strings.TrimSpace(reviewID) == "" {
		return ErrReviewIDRequired
	}

	if err := s.store.Delete(ctx, colReviews, reviewID); err != nil {
		return err
	}

	action := models.AdminAction{
		ID:        uuid.NewString(),
		Action:    "delete_review",
		ReviewID:  reviewID,
		MovieID:   movieID,
		AdminID:   adminID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	s.tasks.Submit(fmt.Sprintf("audit delete_review %s", reviewID), func(ctx context.Context) error {
		return s.store.Put(ctx, colActions, action.ID, action)
	})

	return nil
}

// CreateReport files a new report; any signed-in user may call this.
func (s *Service) CreateReport(ctx context.Context, report models.Report) (string, error) {
	report.ID = uuid.NewString()
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	if err := s.store.Put(ctx, colReports, report.ID, report); err != nil {
		return "", err
	}
	return report.ID, nil
}

// GetMovieTrailers is a catalog pass-through, filtered to YouTube trailers.
func (s *Service) GetMovieTrailers(ctx context.Context, movieID int) ([]models.VideoTrailer, error) {
	return s.movies.GetMovieTrailers(ctx, movieID)
}

// GetFAQs returns active FAQs in display order.
func (s *Service) GetFAQs(ctx context.Context) ([]models.FAQ, error) {
	var faqs []models.FAQ
	if err := s.store.Find(ctx, colFAQs, map[string]any{"isActive": true}, &faqs); err != nil {
		return nil, err
	}

	sort.Slice(faqs, func(i, j int) bool {
		if faqs[i].Order == faqs[j].Order {
			return faqs[i].ID < faqs[j].ID
		}
		return faqs[i].Order < faqs[j].Order
	})
	return faqs, nil
}

// CreateSupportTicket files a ticket for the calling user.
func (s *Service) CreateSupportTicket(ctx context.Context, ticket models.SupportTicket) (string, error) {
	if strings.TrimSpace(ticket.UserID) == "" {
		return "", ErrUserIDRequired
	}

	ticket.ID = uuid.NewString()
	now := time.Now().UTC()
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = models.TicketPriorityNormal
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = now
	}

	if err := s.store.Put(ctx, colTickets, ticket.ID, ticket); err != nil {
		return "", err
	}
	return ticket.ID, nil
}

// GetUserTickets returns the user's tickets, newest first.
func (s *Service) GetUserTickets(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	var tickets []models.SupportTicket
	if err := s.store.Find(ctx, colTickets, map[string]any{"userId": userID}, &tickets); err != nil {
		return nil, err
	}

	sortTickets(tickets)
	return tickets, nil
}

// GetAllTickets returns every ticket, newest first.
func (s *Service) GetAllTickets(ctx context.Context, adminID string) ([]models.SupportTicket, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var tickets []models.SupportTicket
	if err := s.store.Find(ctx, colTickets, nil, &tickets); err != nil {
		return nil, err
	}

	sortTickets(tickets)
	return tickets, nil
}

// CreateFAQ adds a help-center entry.
func (s *Service) CreateFAQ(ctx context.Context, adminID string, faq models.FAQ) (string, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return "", err
	}

	faq.ID = uuid.NewString()
	if err := s.store.Put(ctx, colFAQs, faq.ID, faq); err != nil {
		return "", err
	}
	return faq.ID, nil
}

func sortTickets(tickets []models.SupportTicket) {
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].ID < tickets[j].ID
		}
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}
