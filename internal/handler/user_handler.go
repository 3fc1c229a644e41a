package handler

import (
	"errors"
	"log"
	"net/http"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user listing and profile requests
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	user, err := h.service.GetMe(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// The token outlived its user record
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}
		log.Printf("Error loading current user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	userRoutes := rg.Group("/users")
	userRoutes.Use(authMW)
	{
		userRoutes.GET("/me", h.GetMe)
		userRoutes.GET("", adminMW, h.ListUsers)
	}
}
