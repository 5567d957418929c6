package user

import (
	"log/slog"

	"github.com/frahmantamala/clearance-management/internal"
)

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	GetAll() ([]*User, error)
	Delete(id int64) error
	Count() (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// ListUsers returns every account, newest first, for the admin user table.
func (s *Service) ListUsers() ([]ListEntry, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	entries := make([]ListEntry, len(users))
	for i, u := range users {
		entries[i] = u.ToListEntry()
	}
	return entries, nil
}

// DeleteUser removes an account. Clearance requests the user submitted are
// kept; projections show their requester as "Unknown" afterwards.
func (s *Service) DeleteUser(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}
