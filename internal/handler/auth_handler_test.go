package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	registerUser *model.User
	registerErr  error
	loginUser    *model.User
	loginToken   string
	loginErr     error
	seedErr      error

	lastRegister model.RegisterRequest
}

func (s *stubAuthService) Register(_ context.Context, req model.RegisterRequest) (*model.User, error) {
	s.lastRegister = req
	return s.registerUser, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (*model.User, string, error) {
	return s.loginUser, s.loginToken, s.loginErr
}

func (s *stubAuthService) Seed(_ context.Context) error {
	return s.seedErr
}

func newAuthRouter(stub *stubAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	NewAuthHandler(stub).RegisterAuthRoutes(api)
	return router
}

func TestRegisterHandler_Created(t *testing.T) {
	stub := &stubAuthService{registerUser: &model.User{ID: "u1", Email: "alice@example.com"}}
	router := newAuthRouter(stub)

	w := doRequest(router, http.MethodPost, "/api/auth/register", "",
		`{"name": "Alice", "email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User created", messageOf(t, w))
	assert.Equal(t, "alice@example.com", stub.lastRegister.Email)
}

func TestRegisterHandler_RejectsInvalidBody(t *testing.T) {
	stub := &stubAuthService{}
	router := newAuthRouter(stub)

	// Missing password; binding fails before the service is consulted
	w := doRequest(router, http.MethodPost, "/api/auth/register", "",
		`{"name": "Alice", "email": "alice@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.lastRegister.Email)
}

func TestRegisterHandler_DuplicateEmailConflicts(t *testing.T) {
	stub := &stubAuthService{registerErr: service.ErrUserAlreadyExists}
	router := newAuthRouter(stub)

	w := doRequest(router, http.MethodPost, "/api/auth/register", "",
		`{"name": "Alice", "email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists", messageOf(t, w))
}

func TestLoginHandler_ReturnsTokenAndPublicUser(t *testing.T) {
	stub := &stubAuthService{
		loginUser:  &model.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PasswordHash: "hashed", Role: model.RoleUser},
		loginToken: "signed-token",
	}
	router := newAuthRouter(stub)

	w := doRequest(router, http.MethodPost, "/api/auth/login", "",
		`{"email": "alice@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string           `json:"token"`
		User  model.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "signed-token", body.Token)
	assert.Equal(t, "u1", body.User.ID)
	assert.NotContains(t, w.Body.String(), "hashed")
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	stub := &stubAuthService{loginErr: service.ErrInvalidCredentials}
	router := newAuthRouter(stub)

	w := doRequest(router, http.MethodPost, "/api/auth/login", "",
		`{"email": "alice@example.com", "password": "wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", messageOf(t, w))
}

func TestSeedHandler_OK(t *testing.T) {
	router := newAuthRouter(&stubAuthService{})

	w := doRequest(router, http.MethodPost, "/api/auth/seed", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Database seeded", messageOf(t, w))
}
