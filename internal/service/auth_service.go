package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

// ErrInvalidCredentials indicates an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 12 * time.Hour

// AuthService authenticates principals and issues JWTs. Successful logins
// and logouts are recorded on the audit trail.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, ip, userAgent string) (dto.LoginResponse, error)
	Logout(ctx context.Context, actor *models.User, ip, userAgent string)
}

type authService struct {
	users    repository.UserRepository
	recorder *audit.Recorder
	secret   string
	logger   zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, recorder *audit.Recorder, secret string, logger zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		recorder: recorder,
		secret:   secret,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, ip, userAgent string) (dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().Err(err).Msg("failed to look up user")
		}
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		return dto.LoginResponse{}, err
	}

	s.recorder.RecordEntry(ctx, audit.Entry{
		Actor:     user,
		Action:    "Logged in",
		Category:  models.CategoryLogin,
		IPAddress: ip,
		UserAgent: userAgent,
	})

	return dto.LoginResponse{Token: token, User: dto.NewUserResponse(*user)}, nil
}

func (s *authService) Logout(ctx context.Context, actor *models.User, ip, userAgent string) {
	s.recorder.RecordEntry(ctx, audit.Entry{
		Actor:     actor,
		Action:    "Logged out",
		Category:  models.CategoryLogout,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"tag":   user.Tag.String(),
		"role":  user.Role,
		"name":  user.Name,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
