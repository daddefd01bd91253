package services

import (
	"fmt"

	"github.com/dealscout/bizfinder-pipeline/internal/auth"
	apperrors "github.com/dealscout/bizfinder-pipeline/internal/errors"
	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
	"github.com/dealscout/bizfinder-pipeline/pkg/config"
)

// authServiceImpl implements AuthService
type authServiceImpl struct {
	repos      *repository.Repositories
	jwtService *auth.JWTService
}

// newAuthService creates a new auth service implementation
func newAuthService(repos *repository.Repositories, cfg *config.Config) AuthService {
	return &authServiceImpl{
		repos:      repos,
		jwtService: auth.NewJWTService(cfg.JWTSecret),
	}
}

// Login authenticates a user and returns a signed token
func (s *authServiceImpl) Login(email, password string) (*models.LoginResponse, error) {
	user, err := s.repos.User.GetByEmail(email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	claims := auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	token, _, err := s.jwtService.GenerateToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{Token: token, User: *user}, nil
}

// Register creates a new user account
func (s *authServiceImpl) Register(req *models.CreateUserRequest) (*models.User, error) {
	if _, err := s.repos.User.GetByEmail(req.Email); err == nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleReviewer
	}
	if role != models.RoleAdmin && role != models.RoleReviewer {
		return nil, apperrors.Validation(fmt.Sprintf("unknown role %q", role), nil)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         string(role),
	}
	if err := s.repos.User.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateToken resolves a token back to its user
func (s *authServiceImpl) ValidateToken(token string) (*models.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.repos.User.GetByID(claims.UserID)
}
