// Package service implements credential checks and access token issuance.
package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"dentallead_backend/internal/auth/repository"
	"dentallead_backend/internal/auth/transport"
	"dentallead_backend/platform/apperr"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/httpkit"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/validator"
)

const invalidCredentialsMessage = "invalid email or password"

// Service implements the auth module use cases.
type Service struct {
	repo      repository.Repository
	validator *validator.Validator
	cfg       config.AuthServiceConfig
	log       *logger.Logger
	now       func() time.Time
}

// New creates the auth service.
func New(repo repository.Repository, val *validator.Validator, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, validator: val, cfg: cfg, log: log, now: time.Now}
}

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Login verifies credentials and issues an access token. Lookup and compare
// failures both surface as the same unauthorized error so the endpoint does
// not leak which emails exist.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return transport.LoginResponse{}, apperr.Validation("invalid login payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("login", req.Email, false, "unknown email")
			return transport.LoginResponse{}, apperr.Unauthorized(invalidCredentialsMessage)
		}
		return transport.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return transport.LoginResponse{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	token, err := s.issueAccessToken(user)
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to issue token", err)
	}

	s.log.AuthEvent("login", user.Email, true, "")

	return transport.LoginResponse{
		OK:          true,
		AccessToken: token,
		Role:        user.Role,
		ClinicID:    user.ClinicID,
	}, nil
}

// issueAccessToken signs an HS256 access token carrying the role and, for
// clinic users, the clinic binding the panel routes are scoped by.
func (s *Service) issueAccessToken(user repository.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"type": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
	}
	if user.ClinicID != nil {
		claims["clinic_id"] = user.ClinicID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

// CreateUser registers an account. Clinic users must name their clinic,
// admin users must not.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (repository.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return repository.User{}, apperr.Validation("invalid user payload").
			WithCode("VALIDATION_ERROR").
			WithDetails(validator.Issues(err))
	}
	if (req.Role == httpkit.RoleClinic) != (req.ClinicID != nil) {
		return repository.User{}, apperr.Validation("clinic users require a clinic id, admin users must not have one").
			WithCode("VALIDATION_ERROR")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	return s.repo.Create(ctx, repository.CreateParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		ClinicID:     req.ClinicID,
	})
}
