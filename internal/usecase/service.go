package usecase

import (
	"user-activation/internal/data/repository"
	"user-activation/pkg/mailer"
	"user-activation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	User UserService
}

func NewService(
	repo *repository.Repository,
	sender mailer.Sender,
	config *utils.Config,
	log *zap.Logger,
	opts ...Option,
) *Service {
	return &Service{
		User: NewUserService(repo.User, sender, config, log, opts...),
	}
}
