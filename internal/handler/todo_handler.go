package handler

import (
	"errors"
	"log"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// TodoHandler handles todo related requests
type TodoHandler struct {
	service service.TodoService
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(s service.TodoService) *TodoHandler {
	return &TodoHandler{service: s}
}

// requirePrincipal fetches the principal set by the auth middleware and
// rejects the request if it is somehow absent.
func requirePrincipal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return model.Principal{}, false
	}
	return principal, true
}

// respondTodoError maps service errors onto HTTP responses. Validation
// failures surface their message verbatim; anything unexpected is logged
// and genericized.
func respondTodoError(c *gin.Context, err error, fallback string) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrTodoNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Message})
	default:
		log.Printf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	query := model.ListTodosQuery{
		UserID:    c.Query("userId"),
		Status:    c.Query("status"),
		Title:     c.Query("title"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		OrderBy:   c.Query("orderBy"),
		Order:     c.Query("order"),
	}

	page, err := h.service.ListTodos(c.Request.Context(), principal, query)
	if err != nil {
		respondTodoError(c, err, "Failed to retrieve todos")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req model.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	todo, err := h.service.CreateTodo(c.Request.Context(), principal, req)
	if err != nil {
		respondTodoError(c, err, "Failed to create todo")
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) GetTodoByID(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	todo, err := h.service.GetTodoByID(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondTodoError(c, err, "Failed to retrieve todo")
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req model.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	todo, err := h.service.UpdateTodo(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		respondTodoError(c, err, "Failed to update todo")
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTodo(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondTodoError(c, err, "Failed to delete todo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
}

// RegisterTodoRoutes registers todo routes
func (h *TodoHandler) RegisterTodoRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	todoRoutes := rg.Group("/todos")
	todoRoutes.Use(authMW) // All routes in this group require authentication
	{
		todoRoutes.GET("", h.ListTodos)
		todoRoutes.POST("", h.CreateTodo)
		todoRoutes.GET("/:id", h.GetTodoByID)
		// Partial update is accepted under both verbs; clients differ
		todoRoutes.PUT("/:id", h.UpdateTodo)
		todoRoutes.PATCH("/:id", h.UpdateTodo)
		todoRoutes.DELETE("/:id", h.DeleteTodo)
	}
}
