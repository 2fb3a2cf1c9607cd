// Package auth owns the identity lifecycle: registration, sign-in,
// password management and the user profile document that mirrors the
// provider-side account.
//
// Profile updates are best-effort dual writes (identity provider first,
// then the users document) with no rollback on partial failure; at least
// one side may lag until the next successful write.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"filmhub/internal/store"
	"filmhub/models"
	"filmhub/services/blob"
	"filmhub/services/identity"
)

const colUsers = "users"

var ErrUserNotFound = errors.New("user not found")

type Service struct {
	identity *identity.Service
	blob     *blob.Service
	store    *store.Store
}

func NewService(id *identity.Service, photos *blob.Service, st *store.Store) *Service {
	return &Service{identity: id, blob: photos, store: st}
}

// Register creates the identity, queues the verification email and writes
// the initial users document. The display name is derived from the local
// part of the email.
func (s *Service) Register(ctx context.Context, email, password string) (models.User, error) {
	account, err := s.identity.Register(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: localPart(account.Email),
		IsAdmin:     false,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Put(ctx, colUsers, user.UID, user); err != nil {
		return models.User{}, fmt.Errorf("create user document: %w", err)
	}

	return user, nil
}

// SignIn authenticates and returns the provider account.
func (s *Service) SignIn(ctx context.Context, email, password string) (identity.Account, error) {
	return s.identity.SignIn(ctx, email, password)
}

// SendPasswordReset queues a reset email. There is no delivery
// confirmation.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	return s.identity.SendPasswordReset(ctx, email)
}

// UpdatePassword replaces the credential. Re-authentication is the
// caller's policy, not this layer's.
func (s *Service) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	return s.identity.UpdatePassword(ctx, uid, newPassword)
}

// UpdateDisplayName writes the name to the identity provider and then the
// users document. A partial failure leaves the two sides diverged until the
// next successful update.
func (s *Service) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	if err := s.identity.UpdateDisplayName(ctx, uid, displayName); err != nil {
		return err
	}

	err := s.store.UpdateFields(ctx, colUsers, uid, map[string]any{
		"displayName": displayName,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// UpdatePhoto uploads the image, then writes the resulting public URL to
// the identity provider and the users document. Same dual-write caveat as
// UpdateDisplayName.
func (s *Service) UpdatePhoto(ctx context.Context, uid string, photo io.Reader) (string, error) {
	url, err := s.blob.StoreProfilePhoto(uid, photo)
	if err != nil {
		return "", err
	}

	if err := s.identity.UpdatePhotoURL(ctx, uid, url); err != nil {
		return "", err
	}

	err = s.store.UpdateFields(ctx, colUsers, uid, map[string]any{
		"photoUrl": url,
	})
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	return url, nil
}

// GetUserData reads the user document. The legacy-field migration runs
// first; its failure is logged and never blocks the read.
func (s *Service) GetUserData(ctx context.Context, uid string) (models.User, error) {
	if err := s.MigrateLegacyFields(ctx, uid); err != nil {
		log.Printf("[auth] legacy field migration for %s skipped: %v", uid, err)
	}

	var user models.User
	err := s.store.Get(ctx, colUsers, strings.TrimSpace(uid), &user)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// MigrateLegacyFields renames the deprecated "admin" and "active" booleans
// to their current names, deleting the old keys. Idempotent; running it on
// an already-migrated document is a no-op.
func (s *Service) MigrateLegacyFields(ctx context.Context, uid string) error {
	raw, err := s.store.RawFields(ctx, colUsers, strings.TrimSpace(uid))
	if err != nil {
		return err
	}

	updates := make(map[string]any)
	if v, ok := raw["admin"]; ok {
		isAdmin, _ := v.(bool)
		updates["isAdmin"] = isAdmin
		updates["admin"] = store.DeleteField
	}
	if v, ok := raw["active"]; ok {
		isActive := true
		if b, isBool := v.(bool); isBool {
			isActive = b
		}
		updates["isActive"] = isActive
		updates["active"] = store.DeleteField
	}

	if len(updates) == 0 {
		return nil
	}
	return s.store.UpdateFields(ctx, colUsers, uid, updates)
}

// ObserveUser pushes the decoded user document on every change. The caller
// owns the returned stop func and must invoke it on teardown.
func (s *Service) ObserveUser(uid string) (<-chan models.User, func()) {
	uid = strings.TrimSpace(uid)
	return store.Listen(s.store, colUsers, func() (models.User, bool) {
		var user models.User
		if err := s.store.Get(context.Background(), colUsers, uid, &user); err != nil {
			return models.User{}, false
		}
		return user, true
	})
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
