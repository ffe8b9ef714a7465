package command

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/events"
	"github.com/clearledger/server/internal/models"
	"github.com/clearledger/server/internal/utils"
)

// UserWriter is the write-side store for users.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) error
}

type UserCommandService struct {
	users     UserWriter
	publisher EventPublisher
}

func NewUserCommandService(users UserWriter, publisher EventPublisher) *UserCommandService {
	return &UserCommandService{users: users, publisher: publisher}
}

func (s *UserCommandService) RegisterUser(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, error) {
	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}); err != nil {
		log.Printf("Failed to publish user.registered event: %v", err)
	}
	return user, nil
}
