package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/dto"
	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
)

var (
	// ErrUserNotFound indicates a user could not be found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles registration, login, and streak bookkeeping.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
	// CheckStreak applies the streak policy outside of login, persisting
	// any change. Used by clients that keep a session open across days.
	CheckStreak(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users        repository.UserRepository
	achievements AchievementService
	streak       StreakPolicy
	validator    *validator.Validate
	jwtSecret    string
	jwtExpiry    time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users repository.UserRepository, achievements AchievementService, streak StreakPolicy, validate *validator.Validate, jwtSecret string, jwtExpiry time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:        users,
		achievements: achievements,
		streak:       streak,
		validator:    validate,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
		logger:       logger.With().Str("component", "auth_service").Logger(),
		now:          time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: string(hash),
		Level:        1,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user registered")

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	now := s.now()
	streak, outcome := s.streak.Apply(user.Streak, user.LastLogin, now)
	user.Streak = streak
	user.LastLogin = &now

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	// A streak extension can unlock streak achievements; reconcile, but do
	// not fail the login over it.
	if outcome == StreakExtended || outcome == StreakStarted {
		if err := s.achievements.Sync(ctx, user.ID); err != nil {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("achievement sync failed after login")
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Int("streak", user.Streak).Msg("user logged in")

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) CheckStreak(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	now := s.now()
	streak, outcome := s.streak.Apply(user.Streak, user.LastLogin, now)
	if outcome == StreakUnchanged {
		return dto.NewUserResponse(user), nil
	}

	user.Streak = streak
	user.LastLogin = &now

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	if outcome == StreakExtended || outcome == StreakStarted {
		if err := s.achievements.Sync(ctx, user.ID); err != nil {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("achievement sync failed after streak check")
		}
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.jwtExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
