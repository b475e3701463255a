package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type userService struct {
	users    repository.UserRepo
	observer UseCaseObserver
}

func NewUserService(users repository.UserRepo, observers ...UseCaseObserver) UserService {
	return &userService{users: users, observer: useCaseObserverOrNoop(observers)}
}

func (s *userService) Create(ctx context.Context, u *domain.User) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "create-user", startedAt, nil, &err)

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)
	if err = u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = startedAt
	return s.users.Create(ctx, u)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(email))
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
