package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmhub/internal/store"
	"filmhub/services/auth"
	"filmhub/services/blob"
	"filmhub/services/identity"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	blobSvc, err := blob.NewService(afero.NewMemMapFs(), "/uploads")
	require.NoError(t, err)

	return auth.NewService(identity.NewService(st), blobSvc, st)
}

func TestRegisterValidationMessages(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		want     string
	}{
		{"blank email", "  ", "secret1", "secret1", "email must not be empty"},
		{"malformed email", "not-an-email", "secret1", "secret1", "enter a valid email address"},
		{"blank password", "a@b.com", "", "", "password must not be empty"},
		{"short password", "a@b.com", "12345", "12345", "password must be at least 6 characters"},
		{"mismatch", "a@b.com", "secret1", "secret2", "passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holder := NewAuth(newAuthService(t))
			holder.Register(context.Background(), tt.email, tt.password, tt.confirm)

			s := holder.State().Get()
			assert.Equal(t, tt.want, s.ErrorMessage)
			assert.False(t, s.IsSuccess)
			assert.False(t, s.IsLoading)
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	holder := NewAuth(newAuthService(t))
	holder.Register(context.Background(), "new@example.com", "secret1", "secret1")

	s := holder.State().Get()
	assert.True(t, s.IsSuccess)
	assert.Empty(t, s.ErrorMessage)
	assert.NotEmpty(t, s.UID)
	assert.Equal(t, "new@example.com", s.Email)
	assert.False(t, s.IsLoading)
}

func TestSignInFoldsResult(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "known@example.com", "secret1")
	require.NoError(t, err)

	holder := NewAuth(svc)
	holder.SignIn(ctx, "known@example.com", "secret1")

	s := holder.State().Get()
	assert.True(t, s.IsSuccess)
	assert.Equal(t, user.UID, s.UID)

	holder.SignIn(ctx, "known@example.com", "wrong")
	s = holder.State().Get()
	assert.False(t, s.IsSuccess)
	assert.NotEmpty(t, s.ErrorMessage)
	assert.False(t, s.IsLoading)
}

func TestResetStateClearsEverything(t *testing.T) {
	holder := NewAuth(newAuthService(t))
	holder.Register(context.Background(), "reset@example.com", "secret1", "secret1")

	holder.ResetState()
	assert.Equal(t, AuthState{}, holder.State().Get())
}
