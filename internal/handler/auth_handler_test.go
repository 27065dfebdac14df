package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/middleware"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

type authServiceMock struct {
	lastLogin models.LoginRequest
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.lastLogin = req
	if req.Password != "rootwork-pass" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "jwt", ExpiresIn: 3600}, nil
}

func (m *authServiceMock) Me(ctx context.Context, claims *models.JWTClaims) (*models.AdminInfo, error) {
	if claims.AdminID == "" {
		return nil, errors.New("no admin")
	}
	return &models.AdminInfo{ID: claims.AdminID, Role: claims.Role}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)
	r := newTestRouter()
	r.POST("/auth/login", h.Login)

	w, env := performRequest(t, r, http.MethodPost, "/auth/login", []byte(`{"email":"staff@rootwork.org","password":"rootwork-pass"}`), map[string]string{"User-Agent": "ops-console"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"access_token":"jwt"`)
	assert.Equal(t, "ops-console", svc.lastLogin.UserAgent)

	w, env = performRequest(t, r, http.MethodPost, "/auth/login", []byte(`{"email":"staff@rootwork.org","password":"nope"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, env.Error.Code)

	w, _ = performRequest(t, r, http.MethodPost, "/auth/login", []byte(`{`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{})
	r := newTestRouter()
	r.GET("/auth/me", h.Me)
	r.GET("/auth/me-with-claims", func(c *gin.Context) {
		c.Set(middleware.ContextAdminKey, &models.JWTClaims{AdminID: "admin-1", Role: models.RoleSuperAdmin})
		h.Me(c)
	})

	w, _ := performRequest(t, r, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := performRequest(t, r, http.MethodGet, "/auth/me-with-claims", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"role":"SUPER_ADMIN"`)
}
