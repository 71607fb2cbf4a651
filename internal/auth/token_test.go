package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelohman/birthday-reminder-be/internal/models"
)

func TestGenerateToken(t *testing.T) {
	first, err := GenerateToken()
	require.NoError(t, err)
	second, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}

type staticLookup struct {
	token string
	user  models.User
}

func (s staticLookup) GetUserByAccessToken(token string) (models.User, error) {
	if token == s.token {
		return s.user, nil
	}
	return models.User{}, errors.New("no such token")
}

func TestMiddleware(t *testing.T) {
	lookup := staticLookup{
		token: "valid-token",
		user:  models.User{ID: "u1", Email: "testy@mctestersson.com"},
	}

	var gotUser models.User
	var gotOK bool
	handler := Middleware(lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotOK = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"raw token", "valid-token", http.StatusOK},
		{"bearer token", "Bearer valid-token", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"unknown token", "bogus", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotOK = models.User{}, false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.True(t, gotOK)
				assert.Equal(t, "u1", gotUser.ID)
			}
		})
	}
}
