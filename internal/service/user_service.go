package service

import (
	"context"
	"errors"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/logging"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const emailNotUniqueMessage = "Email must be unique"

type UserService struct {
	repo   domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(repo domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logging.Component(logger, "user_service"),
	}
}

func (s *UserService) Create(ctx context.Context, req models.NewUser) (*models.User, error) {
	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			s.logger.Warn().Str("email", user.Email).Msg("Duplicate email on create")
			return nil, domain.Conflictf(emailNotUniqueMessage)
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("User created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, userNotFoundMessage, id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// Update merges the non-nil fields of upd into the stored user.
func (s *UserService) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(user)
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			s.logger.Warn().Int64("user_id", id).Str("email", user.Email).Msg("Duplicate email on update")
			return nil, domain.Conflictf(emailNotUniqueMessage)
		case errors.Is(err, database.ErrNotFound):
			return nil, domain.NotFoundf(userNotFoundMessage, id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return notFoundOr(err, userNotFoundMessage, id)
	}
	s.logger.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}

// requireUser fails with not-found when the user does not exist.
func requireUser(ctx context.Context, repo domain.UserRepository, id int64) error {
	exists, err := repo.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NotFoundf(userNotFoundMessage, id)
	}
	return nil
}
