package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"filmhub/models"
	"filmhub/services/auth"
	"filmhub/services/blob"
	"filmhub/services/identity"
)

type authService interface {
	Register(ctx context.Context, email, password string) (models.User, error)
	SignIn(ctx context.Context, email, password string) (identity.Account, error)
	SendPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, uid, newPassword string) error
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	UpdatePhoto(ctx context.Context, uid string, photo io.Reader) (string, error)
	GetUserData(ctx context.Context, uid string) (models.User, error)
}

var _ authService = (*auth.Service)(nil)

type AuthHandler struct {
	Service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Service.Register(r.Context(), body.Email, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, identity.ErrEmailInUse):
			status = http.StatusConflict
		case errors.Is(err, identity.ErrEmailRequired), errors.Is(err, identity.ErrPasswordRequired):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.Service.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, identity.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"uid":         account.UID,
		"email":       account.Email,
		"displayName": account.DisplayName,
		"photoUrl":    account.PhotoURL,
	})
}

func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.SendPasswordReset(r.Context(), body.Email); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, identity.ErrAccountNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(mux.Vars(r)["uid"])
	if uid == "" {
		http.Error(w, "uid is required", http.StatusBadRequest)
		return
	}

	user, err := h.Service.GetUserData(r.Context(), uid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *AuthHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(mux.Vars(r)["uid"])
	if uid == "" {
		http.Error(w, "uid is required", http.StatusBadRequest)
		return
	}

	var body struct {
		DisplayName string `json:"displayName"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateDisplayName(r.Context(), uid, body.DisplayName); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, identity.ErrAccountNotFound):
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(mux.Vars(r)["uid"])
	if uid == "" {
		http.Error(w, "uid is required", http.StatusBadRequest)
		return
	}

	var body struct {
		NewPassword string `json:"newPassword"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdatePassword(r.Context(), uid, body.NewPassword); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, identity.ErrAccountNotFound):
			status = http.StatusNotFound
		case errors.Is(err, identity.ErrPasswordRequired):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto accepts a multipart form with a "photo" part and returns the
// stored public URL.
func (h *AuthHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(mux.Vars(r)["uid"])
	if uid == "" {
		http.Error(w, "uid is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.Service.UpdatePhoto(r.Context(), uid, file)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, blob.ErrNotAnImage):
			status = http.StatusUnsupportedMediaType
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, identity.ErrAccountNotFound):
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"photoUrl": url})
}
