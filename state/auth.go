package state

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"filmhub/services/auth"
)

// Validation runs before any backend call and produces the same
// message-only error contract as a remote failure, so a consumer cannot
// tell the two apart except by message text.
var validate = validator.New()

// AuthState is the sign-in/register screen's single state value.
type AuthState struct {
	IsLoading    bool
	IsSuccess    bool
	ErrorMessage string
	UID          string
	Email        string
}

// Auth drives registration, sign-in and password recovery.
type Auth struct {
	auth  *auth.Service
	state *Value[AuthState]
}

func NewAuth(svc *auth.Service) *Auth {
	return &Auth{auth: svc, state: NewValue(AuthState{})}
}

func (a *Auth) State() *Value[AuthState] { return a.state }

// Register validates the form and creates the account. Validation failures
// never reach the backend.
func (a *Auth) Register(ctx context.Context, email, password, confirmPassword string) {
	a.begin()

	switch {
	case strings.TrimSpace(email) == "":
		a.fail("email must not be empty")
		return
	case validate.Var(email, "email") != nil:
		a.fail("enter a valid email address")
		return
	case password == "":
		a.fail("password must not be empty")
		return
	case len(password) < 6:
		a.fail("password must be at least 6 characters")
		return
	case password != confirmPassword:
		a.fail("passwords do not match")
		return
	}

	user, err := a.auth.Register(ctx, email, password)
	if err != nil {
		a.fail(err.Error())
		return
	}

	a.state.Update(func(s AuthState) AuthState {
		s.IsLoading = false
		s.IsSuccess = true
		s.ErrorMessage = ""
		s.UID = user.UID
		s.Email = user.Email
		return s
	})
}

// SignIn validates the form and authenticates.
func (a *Auth) SignIn(ctx context.Context, email, password string) {
	a.begin()

	switch {
	case strings.TrimSpace(email) == "":
		a.fail("email must not be empty")
		return
	case password == "":
		a.fail("password must not be empty")
		return
	}

	account, err := a.auth.SignIn(ctx, email, password)
	if err != nil {
		a.fail(err.Error())
		return
	}

	a.state.Update(func(s AuthState) AuthState {
		s.IsLoading = false
		s.IsSuccess = true
		s.ErrorMessage = ""
		s.UID = account.UID
		s.Email = account.Email
		return s
	})
}

// SendPasswordReset queues a recovery email for the address.
func (a *Auth) SendPasswordReset(ctx context.Context, email string) {
	a.begin()

	if strings.TrimSpace(email) == "" {
		a.fail("email must not be empty")
		return
	}

	if err := a.auth.SendPasswordReset(ctx, email); err != nil {
		a.fail(err.Error())
		return
	}

	a.state.Update(func(s AuthState) AuthState {
		s.IsLoading = false
		s.IsSuccess = true
		s.ErrorMessage = ""
		return s
	})
}

// ResetState returns the holder to its zero state, e.g. on screen exit.
func (a *Auth) ResetState() {
	a.state.Set(AuthState{})
}

func (a *Auth) begin() {
	a.state.Update(func(s AuthState) AuthState {
		s.IsLoading = true
		s.ErrorMessage = ""
		return s
	})
}

func (a *Auth) fail(msg string) {
	a.state.Update(func(s AuthState) AuthState {
		s.IsLoading = false
		s.IsSuccess = false
		s.ErrorMessage = msg
		return s
	})
}
