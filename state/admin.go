package state

import (
	"context"

	"filmhub/models"
	"filmhub/services/admin"
)

// AdminState is the admin panel's single state value.
type AdminState struct {
	IsLoading      bool
	Users          []models.User
	Reports        []models.Report
	Tickets        []models.SupportTicket
	Trailers       []models.VideoTrailer
	FAQs           []models.FAQ
	ErrorMessage   string
	SuccessMessage string
}

// Admin drives the moderation panel for one acting admin. Privilege
// checks happen in the admin service; a rejected call folds into the
// error message like any other failure.
type Admin struct {
	admin   *admin.Service
	adminID string
	state   *Value[AdminState]
}

func NewAdmin(svc *admin.Service, adminID string) *Admin {
	return &Admin{admin: svc, adminID: adminID, state: NewValue(AdminState{})}
}

func (a *Admin) State() *Value[AdminState] { return a.state }

func (a *Admin) LoadUsers(ctx context.Context) {
	a.begin()

	users, err := a.admin.GetAllUsers(ctx, a.adminID)
	if err != nil {
		a.fail(err)
		return
	}
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = false
		s.Users = users
		return s
	})
}

// ToggleUserRole flips the target's admin flag and reloads the user list.
func (a *Admin) ToggleUserRole(ctx context.Context, userID string, currentIsAdmin bool) {
	if err := a.admin.SetUserRole(ctx, a.adminID, userID, !currentIsAdmin); err != nil {
		a.fail(err)
		return
	}
	a.setSuccess("role updated")
	a.LoadUsers(ctx)
}

func (a *Admin) DeactivateUser(ctx context.Context, userID string) {
	if err := a.admin.DeactivateUser(ctx, a.adminID, userID); err != nil {
		a.fail(err)
		return
	}
	a.setSuccess("user deactivated")
	a.LoadUsers(ctx)
}

func (a *Admin) ReactivateUser(ctx context.Context, userID string) {
	if err := a.admin.ReactivateUser(ctx, a.adminID, userID); err != nil {
		a.fail(err)
		return
	}
	a.setSuccess("user reactivated")
	a.LoadUsers(ctx)
}

func (a *Admin) LoadReports(ctx context.Context) {
	a.begin()

	reports, err := a.admin.GetReportedReviews(ctx, a.adminID)
	if err != nil {
		a.fail(err)
		return
	}
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = false
		s.Reports = reports
		return s
	})
}

func (a *Admin) ApproveReport(ctx context.Context, reportID string) {
	if err := a.admin.ApproveReport(ctx, reportID, a.adminID, "inappropriate content removed"); err != nil {
		a.fail(err)
		return
	}
	a.setSuccess("report approved")
	a.LoadReports(ctx)
}

func (a *Admin) RejectReport(ctx context.Context, reportID string) {
	if err := a.admin.RejectReport(ctx, reportID, a.adminID, "does not violate the rules"); err != nil {
		a.fail(err)
		return
	}
	a.setSuccess("report rejected")
	a.LoadReports(ctx)
}

func (a *Admin) DeleteReview(ctx context.Context, reviewID string, movieID int) {
	if err := a.admin.DeleteReviewByAdmin(ctx, a.adminID, reviewID, movieID, "rule violation"); err != nil {
		a.fail(err)
		return
	}
	a.setSuccess("review deleted")
}

func (a *Admin) LoadMovieTrailers(ctx context.Context, movieID int) {
	a.begin()

	trailers, err := a.admin.GetMovieTrailers(ctx, movieID)
	if err != nil {
		a.fail(err)
		return
	}
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = false
		s.Trailers = trailers
		return s
	})
}

func (a *Admin) LoadFAQs(ctx context.Context) {
	a.begin()

	faqs, err := a.admin.GetFAQs(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = false
		s.FAQs = faqs
		return s
	})
}

func (a *Admin) CreateTicket(ctx context.Context, ticket models.SupportTicket) {
	if _, err := a.admin.CreateSupportTicket(ctx, ticket); err != nil {
		a.fail(err)
		return
	}
	a.setSuccess("ticket created, we will get back to you soon")
}

func (a *Admin) LoadUserTickets(ctx context.Context, userID string) {
	a.begin()

	tickets, err := a.admin.GetUserTickets(ctx, userID)
	if err != nil {
		a.fail(err)
		return
	}
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = false
		s.Tickets = tickets
		return s
	})
}

func (a *Admin) LoadAllTickets(ctx context.Context) {
	a.begin()

	tickets, err := a.admin.GetAllTickets(ctx, a.adminID)
	if err != nil {
		a.fail(err)
		return
	}
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = false
		s.Tickets = tickets
		return s
	})
}

// ResetMessages clears the transient notification fields.
func (a *Admin) ResetMessages() {
	a.state.Update(func(s AdminState) AdminState {
		s.ErrorMessage = ""
		s.SuccessMessage = ""
		return s
	})
}

func (a *Admin) begin() {
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = true
		return s
	})
}

func (a *Admin) fail(err error) {
	a.state.Update(func(s AdminState) AdminState {
		s.IsLoading = false
		s.ErrorMessage = err.Error()
		return s
	})
}

func (a *Admin) setSuccess(msg string) {
	a.state.Update(func(s AdminState) AdminState {
		s.SuccessMessage = msg
		return s
	})
}
