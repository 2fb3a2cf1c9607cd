package state

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"

	"filmhub/models"
	"filmhub/services/auth"
)

// ProfileState is the profile screen's single state value.
type ProfileState struct {
	IsLoading      bool
	IsSuccess      bool
	ErrorMessage   string
	SuccessMessage string
	User           *models.User
}

// Profile drives one signed-in user's profile screen.
type Profile struct {
	auth  *auth.Service
	uid   string
	email string
	state *Value[ProfileState]

	mu       sync.Mutex
	stopUser func()
	wg       conc.WaitGroup
}

func NewProfile(svc *auth.Service, uid, email string) *Profile {
	return &Profile{auth: svc, uid: uid, email: email, state: NewValue(ProfileState{})}
}

func (p *Profile) State() *Value[ProfileState] { return p.state }

// Load fetches the user document.
func (p *Profile) Load(ctx context.Context) {
	p.begin()

	user, err := p.auth.GetUserData(ctx, p.uid)
	if err != nil {
		p.fail("could not load user data")
		return
	}
	p.state.Update(func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.User = &user
		return s
	})
}

// UpdateDisplayName renames the profile on both the identity provider and
// the user document.
func (p *Profile) UpdateDisplayName(ctx context.Context, newName string) {
	p.begin()

	if strings.TrimSpace(newName) == "" {
		p.fail("name must not be empty")
		return
	}

	if err := p.auth.UpdateDisplayName(ctx, p.uid, newName); err != nil {
		p.fail(err.Error())
		return
	}

	p.state.Update(func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.IsSuccess = true
		s.SuccessMessage = "name updated"
		if s.User != nil {
			u := *s.User
			u.DisplayName = newName
			s.User = &u
		}
		return s
	})
}

// UpdatePassword re-authenticates with the current password before
// replacing the credential. Whatever makes re-authentication fail, the
// reported error is always the same incorrect-password message.
func (p *Profile) UpdatePassword(ctx context.Context, currentPassword, newPassword, confirmPassword string) {
	p.begin()

	switch {
	case currentPassword == "" || newPassword == "" || confirmPassword == "":
		p.fail("all fields are required")
		return
	case len(newPassword) < 6:
		p.fail("new password must be at least 6 characters")
		return
	case newPassword != confirmPassword:
		p.fail("passwords do not match")
		return
	}

	if _, err := p.auth.SignIn(ctx, p.email, currentPassword); err != nil {
		p.fail("current password is incorrect")
		return
	}

	if err := p.auth.UpdatePassword(ctx, p.uid, newPassword); err != nil {
		p.fail(err.Error())
		return
	}

	p.state.Update(func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.IsSuccess = true
		s.SuccessMessage = "password updated"
		return s
	})
}

// UpdatePhoto uploads the image and records the resulting URL.
func (p *Profile) UpdatePhoto(ctx context.Context, photo io.Reader) {
	p.begin()

	url, err := p.auth.UpdatePhoto(ctx, p.uid, photo)
	if err != nil {
		p.fail(err.Error())
		return
	}

	p.state.Update(func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.IsSuccess = true
		s.SuccessMessage = "profile photo updated"
		if s.User != nil {
			u := *s.User
			u.PhotoURL = url
			s.User = &u
		}
		return s
	})
}

// StartUserListener subscribes to live changes of the user document.
// Starting a new listener stops the previous one.
func (p *Profile) StartUserListener() {
	p.mu.Lock()
	if p.stopUser != nil {
		p.stopUser()
	}
	updates, stop := p.auth.ObserveUser(p.uid)
	p.stopUser = stop
	p.mu.Unlock()

	p.wg.Go(func() {
		for user := range updates {
			u := user
			p.state.Update(func(s ProfileState) ProfileState {
				s.User = &u
				return s
			})
		}
	})
}

// Close stops the user listener exactly once and waits for its goroutine.
func (p *Profile) Close() {
	p.mu.Lock()
	if p.stopUser != nil {
		p.stopUser()
		p.stopUser = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// ResetMessages clears the transient notification fields.
func (p *Profile) ResetMessages() {
	p.state.Update(func(s ProfileState) ProfileState {
		s.ErrorMessage = ""
		s.SuccessMessage = ""
		s.IsSuccess = false
		return s
	})
}

func (p *Profile) begin() {
	p.state.Update(func(s ProfileState) ProfileState {
		s.IsLoading = true
		s.ErrorMessage = ""
		s.SuccessMessage = ""
		return s
	})
}

func (p *Profile) fail(msg string) {
	p.state.Update(func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.ErrorMessage = msg
		return s
	})
}
