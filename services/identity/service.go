// Package identity stands in for the hosted authentication provider:
// account records with bcrypt credentials, verification emails and password
// resets reduced to issued tokens. The rest of the app treats it as an
// opaque external system; user-profile documents live elsewhere, keyed by
// the uid assigned here.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"filmhub/internal/store"
)

const colAccounts = "auth_accounts"

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailInUse         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
)

// Account is the provider-side identity record.
type Account struct {
	UID               string    `json:"uid"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"displayName"`
	PhotoURL          string    `json:"photoUrl"`
	PasswordHash      string    `json:"passwordHash"`
	Verified          bool      `json:"verified"`
	VerificationToken string    `json:"verificationToken,omitempty"`
	ResetToken        string    `json:"resetToken,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Register creates a new identity and issues a verification token. There is
// no mail transport here; the token is logged in lieu of delivery.
func (s *Service) Register(ctx context.Context, email, pass string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Account{}, ErrEmailRequired
	}
	if pass == "" {
		return Account{}, ErrPasswordRequired
	}

	var existing []Account
	if err := s.store.Find(ctx, colAccounts, map[string]any{"email": email}, &existing); err != nil {
		return Account{}, fmt.Errorf("check existing account: %w", err)
	}
	if len(existing) > 0 {
		return Account{}, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return Account{}, err
	}

	account := Account{
		UID:               uuid.NewString(),
		Email:             email,
		PasswordHash:      string(hash),
		VerificationToken: token,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.store.Put(ctx, colAccounts, account.UID, account); err != nil {
		return Account{}, err
	}

	log.Printf("[identity] verification email queued for %s", email)
	return account, nil
}

// SignIn authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, pass string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" || pass == "" {
		return Account{}, ErrInvalidCredentials
	}

	var accounts []Account
	if err := s.store.Find(ctx, colAccounts, map[string]any{"email": email}, &accounts); err != nil {
		return Account{}, fmt.Errorf("look up account: %w", err)
	}
	if len(accounts) == 0 {
		return Account{}, ErrInvalidCredentials
	}

	account := accounts[0]
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(pass)); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// SendPasswordReset issues a reset token for the account. Delivery is not
// confirmed.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	var accounts []Account
	if err := s.store.Find(ctx, colAccounts, map[string]any{"email": email}, &accounts); err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if len(accounts) == 0 {
		return ErrAccountNotFound
	}

	token, err := newToken()
	if err != nil {
		return err
	}

	if err := s.store.UpdateFields(ctx, colAccounts, accounts[0].UID, map[string]any{
		"resetToken": token,
	}); err != nil {
		return err
	}

	log.Printf("[identity] password reset email queued for %s", email)
	return nil
}

// UpdatePassword replaces the credential for an already-authenticated
// session. No re-authentication happens at this layer.
func (s *Service) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.UpdateFields(ctx, colAccounts, strings.TrimSpace(uid), map[string]any{
		"passwordHash": string(hash),
		"resetToken":   store.DeleteField,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// UpdateDisplayName updates the provider-side profile name.
func (s *Service) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	err := s.store.UpdateFields(ctx, colAccounts, strings.TrimSpace(uid), map[string]any{
		"displayName": displayName,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// UpdatePhotoURL updates the provider-side profile photo URL.
func (s *Service) UpdatePhotoURL(ctx context.Context, uid, photoURL string) error {
	err := s.store.UpdateFields(ctx, colAccounts, strings.TrimSpace(uid), map[string]any{
		"photoUrl": photoURL,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// Lookup returns the account for a uid.
func (s *Service) Lookup(ctx context.Context, uid string) (Account, error) {
	var account Account
	err := s.store.Get(ctx, colAccounts, strings.TrimSpace(uid), &account)
	if errors.Is(err, store.ErrNotFound) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newToken() (string, error) {
	token, err := password.Generate(32, 10, 0, false, true)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
