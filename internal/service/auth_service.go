package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Seed(ctx context.Context) error
}

type authService struct {
	userRepo repository.UserRepository
	todoRepo repository.TodoRepository
	jwtUtil  *utils.JWTUtil
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, todoRepo repository.TodoRepository, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		userRepo: userRepo,
		todoRepo: todoRepo,
		jwtUtil:  jwtUtil,
	}
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	existingUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userRole := model.RoleUser // Default role

	// Check for initial admin setup via environment variable
	initialAdminEmail := os.Getenv("INITIAL_ADMIN_EMAIL")
	if initialAdminEmail != "" && req.Email == initialAdminEmail {
		userRole = model.RoleAdmin
		log.Printf("INFO: User %s is being registered as ADMIN via INITIAL_ADMIN_EMAIL.", req.Email)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         userRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The pre-check races against concurrent registrations; the unique
		// index on email is the real guarantee.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials // User not found
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials // Password mismatch
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Seed wipes and reseeds the database with fixed demo accounts and a few
// todos. Wired to an unauthenticated endpoint for development use only.
func (s *authService) Seed(ctx context.Context) error {
	// Todos first, they reference users
	if err := s.todoRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}
	if err := s.userRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	password := getenvDefault("SEED_DEMO_PASSWORD", "ChangeMe123!")
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	now := time.Now()
	admin := &model.User{
		ID:           uuid.NewString(),
		Name:         getenvDefault("SEED_ADMIN_NAME", "Demo Admin"),
		Email:        getenvDefault("SEED_ADMIN_EMAIL", "admin@todo.dev"),
		PasswordHash: hashedPassword,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         getenvDefault("SEED_USER_NAME", "Demo User"),
		Email:        getenvDefault("SEED_USER_EMAIL", "user@todo.dev"),
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour) // Overdue
	todos := []*model.Todo{
		{ID: uuid.NewString(), Title: "Buy groceries", Status: model.StatusPending, DueTime: &tomorrow, OwnerID: user.ID, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Title: "Walk the dog", Status: model.StatusInProgress, DueTime: &yesterday, OwnerID: user.ID, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), Title: "Finish project", Status: model.StatusCompleted, OwnerID: user.ID, CreatedAt: now, UpdatedAt: now},
	}
	for _, t := range todos {
		if err := s.todoRepo.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to seed todo %q: %w", t.Title, err)
		}
	}

	return nil
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
