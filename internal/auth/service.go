package auth

import (
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/clearance-management/internal"
	"github.com/frahmantamala/clearance-management/internal/user"
)

// Service is the main auth service with dependencies
type Service struct {
	users          user.Repository
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(users user.Repository, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Register creates a new account. The role is always RoleUser: there is no
// self-service path to admin.
func (s *Service) Register(dto RegisterDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("registration validation failed", "username", dto.Username)
		return nil, err
	}

	username := strings.TrimSpace(dto.Username)
	email := strings.TrimSpace(dto.Email)

	exists, err := s.users.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		s.logger.Error("failed to check existing user", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}
	if exists {
		return nil, internal.ErrDuplicateUser
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	u := &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
	}

	if err := s.users.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", username)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", username)
	return u, nil
}

// Authenticate validates credentials and returns a token plus the identity
// slice the client stores.
func (s *Service) Authenticate(dto LoginDTO) (LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return LoginResponse{}, err
	}

	u, err := s.users.GetByUsername(strings.TrimSpace(dto.Username))
	if err != nil {
		// same error as a bad password so usernames cannot be probed
		return LoginResponse{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return LoginResponse{}, internal.ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(u.ID)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "user_id", u.ID)
		return LoginResponse{}, internal.NewInternalError("failed to generate token", err)
	}

	s.logger.Info("user authenticated", "user_id", u.ID, "username", u.Username)

	return LoginResponse{
		Token: token,
		User: UserPayload{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
		},
	}, nil
}

// ValidateAccessToken validates the token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ResolveUser loads the account a validated token refers to. Fails when the
// account was deleted after the token was issued.
func (s *Service) ResolveUser(claims *Claims) (*user.User, error) {
	u, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, internal.NewUnauthorizedError("Invalid token. User not found.", internal.ErrCodeInvalidToken)
	}
	return u, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
