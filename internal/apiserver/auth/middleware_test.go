package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"标准格式", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"大小写不敏感", "bearer abc", "abc"},
		{"缺少 header", "", ""},
		{"缺少前缀", "abc.def.ghi", ""},
		{"其他方案", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, bearerToken(r))
		})
	}
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc, _ := newTestService(t)
	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)
	return mux
}

func doJSON(mux http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	return rec
}

func TestAuthRoutes(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(mux, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@example.com","password":"secret1","role":"owner"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var reg struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID         string `json:"id"`
			Role       string `json:"role"`
			IsApproved bool   `json:"isApproved"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.True(t, reg.Success)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "owner", reg.User.Role)
	assert.False(t, reg.User.IsApproved)

	t.Run("登录", func(t *testing.T) {
		rec := doJSON(mux, http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"secret1"}`, "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(mux, http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"nope"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), msgInvalidCredentials)
	})

	t.Run("当前用户", func(t *testing.T) {
		rec := doJSON(mux, http.MethodGet, "/api/auth/me", "", reg.Token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), reg.User.ID)
		assert.NotContains(t, rec.Body.String(), "password")

		rec = doJSON(mux, http.MethodGet, "/api/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), msgNoToken)
	})

	t.Run("非法 JSON", func(t *testing.T) {
		rec := doJSON(mux, http.MethodPost, "/api/auth/register", `{"name":`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid JSON in request body")
	})

	t.Run("重复邮箱", func(t *testing.T) {
		rec := doJSON(mux, http.MethodPost, "/api/auth/register",
			`{"name":"Ann","email":"ann@example.com","password":"secret1"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), msgUserExists)
	})
}
