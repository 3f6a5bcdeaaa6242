package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-activation/internal/data/entity"
	"user-activation/internal/data/repository"
	"user-activation/internal/dto/request"
	"user-activation/internal/dto/response"
	"user-activation/pkg/database"
	"user-activation/pkg/mailer"
	"user-activation/pkg/utils"

	"go.uber.org/zap"
)

const defaultNotifyTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error)
	Activate(ctx context.Context, email, password, code string) error
}

type userService struct {
	userRepo      repository.UserRepository
	codes         *ActivationCodes
	sender        mailer.Sender
	notifyTimeout time.Duration
	now           func() time.Time
	log           *zap.Logger
}

// Option customises a UserService.
type Option func(*userService)

// WithClock replaces time.Now, mostly for tests that need to move past the TTL.
func WithClock(now func() time.Time) Option {
	return func(s *userService) {
		s.now = now
	}
}

func NewUserService(
	userRepo repository.UserRepository,
	sender mailer.Sender,
	config *utils.Config,
	log *zap.Logger,
	opts ...Option,
) UserService {
	s := &userService{
		userRepo:      userRepo,
		codes:         NewActivationCodes(config.Activation.TTL()),
		sender:        sender,
		notifyTimeout: config.Email.Timeout,
		now:           time.Now,
		log:           log.With(zap.String("service", "user")),
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	// 2. Hash password
	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("process password: %w", err)
	}

	// 3. Generate activation code
	now := s.now().UTC()
	code := s.codes.GenerateCode()
	expiresAt := s.codes.ExpirationTime(now)

	user := &entity.User{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:               req.Email,
		PasswordHash:        passwordHash,
		IsActive:            false,
		ActivationCode:      &code,
		ActivationExpiresAt: &expiresAt,
	}

	// 4. Save user, the unique constraint decides concurrent duplicates
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.log.Warn("Email already registered", zap.String("email", req.Email))
			return nil, ErrUserAlreadyExists
		}
		return nil, s.storageError(err, "create user")
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.Time("activation_expires_at", expiresAt),
	)

	// 5. Deliver the code. The user row stays even when delivery fails.
	s.notify(ctx, user.Email, code)

	resp := response.RegisterToResponse(user)
	return &resp, nil
}

// Activate checks, in order: the user exists, the password matches, the
// account is not active yet, the code has not expired, the code matches.
// Nothing about the account state is revealed before the password is verified.
func (s *userService) Activate(ctx context.Context, email, password, code string) error {
	// 1. Find user
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return s.storageError(err, "find user")
	}
	if user == nil {
		return ErrUserNotFound
	}

	// 2. Check password
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.log.Warn("Invalid password on activation", zap.String("user_id", user.ID.String()))
		return ErrInvalidCredentials
	}

	// 3. Check if already active
	if user.IsActive {
		return ErrAlreadyActive
	}

	// 4. Check expiration
	if user.IsActivationCodeExpired(s.now()) {
		return ErrCodeExpired
	}

	// 5. Check code
	if !user.MatchesActivationCode(code) {
		s.log.Warn("Invalid activation code", zap.String("user_id", user.ID.String()))
		return ErrInvalidCode
	}

	// 6. Activate
	if err := s.userRepo.Activate(ctx, email); err != nil {
		return s.storageError(err, "activate user")
	}

	s.log.Info("User activated",
		zap.String("user_id", user.ID.String()),
		zap.String("email", email))

	return nil
}

// ==================== HELPER METHODS ====================

func (s *userService) notify(ctx context.Context, email, code string) {
	// keep delivering even if the client hangs up after the row is written
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.sender.SendActivationCode(ctx, email, code); err != nil {
		s.log.Error("Failed to deliver activation code", zap.Error(err), zap.String("email", email))
	}
}

func (s *userService) storageError(err error, operation string) error {
	if errors.Is(err, database.ErrPoolTimeout) {
		s.log.Error("Database pool exhausted", zap.Error(err), zap.String("operation", operation))
		return fmt.Errorf("%s: %w", operation, ErrServiceUnavailable)
	}
	s.log.Error("Failed to "+operation, zap.Error(err))
	return fmt.Errorf("%s: %w", operation, err)
}
