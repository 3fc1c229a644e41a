package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/service"
	"taskboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTodoService lets each test script the service layer's answers and
// inspect what the handler passed down.
type stubTodoService struct {
	listPage  *model.TodoPage
	listErr   error
	lastQuery model.ListTodosQuery

	todo      *model.Todo
	todoErr   error
	deleteErr error

	lastPrincipal model.Principal
	lastID        string
	lastCreate    model.CreateTodoRequest
	lastUpdate    model.UpdateTodoRequest
}

func (s *stubTodoService) ListTodos(_ context.Context, principal model.Principal, query model.ListTodosQuery) (*model.TodoPage, error) {
	s.lastPrincipal = principal
	s.lastQuery = query
	return s.listPage, s.listErr
}

func (s *stubTodoService) CreateTodo(_ context.Context, principal model.Principal, req model.CreateTodoRequest) (*model.Todo, error) {
	s.lastPrincipal = principal
	s.lastCreate = req
	return s.todo, s.todoErr
}

func (s *stubTodoService) GetTodoByID(_ context.Context, principal model.Principal, todoID string) (*model.Todo, error) {
	s.lastPrincipal = principal
	s.lastID = todoID
	return s.todo, s.todoErr
}

func (s *stubTodoService) UpdateTodo(_ context.Context, principal model.Principal, todoID string, req model.UpdateTodoRequest) (*model.Todo, error) {
	s.lastPrincipal = principal
	s.lastID = todoID
	s.lastUpdate = req
	return s.todo, s.todoErr
}

func (s *stubTodoService) DeleteTodo(_ context.Context, principal model.Principal, todoID string) error {
	s.lastPrincipal = principal
	s.lastID = todoID
	return s.deleteErr
}

var testJWT = utils.NewJWTUtil("handler-test-secret", 1)

func newTodoRouter(stub *stubTodoService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	NewTodoHandler(stub).RegisterTodoRoutes(api, middleware.JWTAuthMiddleware(testJWT))
	return router
}

func authHeader(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := testJWT.GenerateToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path, auth, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestListTodos_RequiresToken(t *testing.T) {
	router := newTodoRouter(&stubTodoService{})

	w := doRequest(router, http.MethodGet, "/api/todos", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header required", messageOf(t, w))
}

func TestListTodos_RejectsMalformedToken(t *testing.T) {
	router := newTodoRouter(&stubTodoService{})

	w := doRequest(router, http.MethodGet, "/api/todos", "Bearer not-a-jwt", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", messageOf(t, w))
}

func TestListTodos_PassesQueryAndPrincipal(t *testing.T) {
	stub := &stubTodoService{listPage: &model.TodoPage{Items: []model.Todo{}, Total: 0}}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodGet,
		"/api/todos?status=PENDING&title=dog&page=2&limit=5&orderBy=dueTime&order=desc",
		authHeader(t, "u1", model.RoleUser), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Principal{UserID: "u1", Role: model.RoleUser}, stub.lastPrincipal)
	assert.Equal(t, "PENDING", stub.lastQuery.Status)
	assert.Equal(t, "dog", stub.lastQuery.Title)
	assert.Equal(t, "2", stub.lastQuery.Page)
	assert.Equal(t, "5", stub.lastQuery.Limit)
	assert.Equal(t, "dueTime", stub.lastQuery.OrderBy)
	assert.Equal(t, "desc", stub.lastQuery.Order)

	var page model.TodoPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Total)
	assert.NotNil(t, page.Items)
}

func TestListTodos_ValidationErrorBecomes400(t *testing.T) {
	stub := &stubTodoService{listErr: &service.ValidationError{Message: "Invalid orderBy field"}}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodGet, "/api/todos?orderBy=password",
		authHeader(t, "u1", model.RoleUser), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid orderBy field", messageOf(t, w))
}

func TestGetTodo_NotFoundBecomes404(t *testing.T) {
	stub := &stubTodoService{todoErr: service.ErrTodoNotFound}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodGet, "/api/todos/t1",
		authHeader(t, "u1", model.RoleUser), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Todo not found", messageOf(t, w))
	assert.Equal(t, "t1", stub.lastID)
}

func TestCreateTodo_Created(t *testing.T) {
	stub := &stubTodoService{todo: &model.Todo{ID: "t1", Title: "Buy groceries", Status: model.StatusBacklog, OwnerID: "u1"}}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodPost, "/api/todos",
		authHeader(t, "u1", model.RoleUser), `{"title": "Buy groceries"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Buy groceries", stub.lastCreate.Title)

	var created model.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "t1", created.ID)
}

func TestCreateTodo_EmptyBodyReaches400(t *testing.T) {
	stub := &stubTodoService{todoErr: &service.ValidationError{Message: "Title is required"}}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodPost, "/api/todos",
		authHeader(t, "u1", model.RoleUser), `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", messageOf(t, w))
}

func TestUpdateTodo_PatchAndPutBothRoute(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		stub := &stubTodoService{todo: &model.Todo{ID: "t1", Title: "Renamed"}}
		router := newTodoRouter(stub)

		w := doRequest(router, method, "/api/todos/t1",
			authHeader(t, "u1", model.RoleUser), `{"title": "Renamed", "description": null}`)

		assert.Equal(t, http.StatusOK, w.Code, method)
		assert.Equal(t, "t1", stub.lastID, method)
		assert.True(t, stub.lastUpdate.Title.HasValue(), method)
		assert.Equal(t, "Renamed", stub.lastUpdate.Title.Value, method)
		assert.True(t, stub.lastUpdate.Description.Set, method)
		assert.True(t, stub.lastUpdate.Description.Null, method)
		assert.False(t, stub.lastUpdate.Status.Set, method)
	}
}

func TestUpdateTodo_NonOwnerGets404(t *testing.T) {
	stub := &stubTodoService{todoErr: service.ErrTodoNotFound}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodPut, "/api/todos/t1",
		authHeader(t, "intruder", model.RoleUser), `{"title": "Hijack"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Todo not found", messageOf(t, w))
}

func TestDeleteTodo_OK(t *testing.T) {
	stub := &stubTodoService{}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodDelete, "/api/todos/t1",
		authHeader(t, "u1", model.RoleUser), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Todo deleted", messageOf(t, w))
	assert.Equal(t, "t1", stub.lastID)
}

func TestDeleteTodo_UnexpectedErrorBecomes500(t *testing.T) {
	stub := &stubTodoService{deleteErr: errors.New("connection reset")}
	router := newTodoRouter(stub)

	w := doRequest(router, http.MethodDelete, "/api/todos/t1",
		authHeader(t, "u1", model.RoleUser), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to delete todo", messageOf(t, w))
}
