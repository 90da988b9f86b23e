package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
)

// Registration is a self-service sign-up request.
type Registration struct {
	FullName string
	Address  string
	Phone    string
	Email    string
	Login    string
	Password string
	Confirm  string
}

// AuthService registers and authenticates farmers.
type AuthService struct {
	farmers FarmerRepository
	events  recorder
	logger  *slog.Logger
}

func NewAuthService(farmers FarmerRepository, events EventPublisher, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{farmers: farmers, events: newRecorder(events, logger), logger: logger}
}

// Validate returns every problem with the registration, or nil.
func (r Registration) Validate() error {
	password := cleanPassword(r.Password)
	var p problems
	p.add(strings.TrimSpace(r.FullName) != "", "full name is required")
	p.add(strings.TrimSpace(r.Login) != "", "login is required")
	p.add(password != "", "password is required")
	p.add(password == cleanPassword(r.Confirm), "passwords do not match")
	if password != "" {
		p = append(p, CheckPassword(password)...)
	}
	return p.err()
}

// Register creates a farmer account. Self-registered accounts always get
// the farmer role. It returns a *ValidationError for bad input and
// store.ErrDuplicateLogin when the login is taken.
func (s *AuthService) Register(ctx context.Context, reg Registration) (types.Farmer, error) {
	if err := reg.Validate(); err != nil {
		return types.Farmer{}, err
	}

	login := strings.TrimSpace(reg.Login)
	if _, err := s.farmers.GetByLogin(ctx, login); err == nil {
		return types.Farmer{}, store.ErrDuplicateLogin
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Farmer{}, err
	}

	farmer, err := s.farmers.Create(ctx, types.Farmer{
		FullName:     strings.TrimSpace(reg.FullName),
		Address:      strings.TrimSpace(reg.Address),
		Phone:        strings.TrimSpace(reg.Phone),
		Email:        strings.TrimSpace(reg.Email),
		Login:        login,
		PasswordHash: store.HashPassword(cleanPassword(reg.Password)),
		Role:         types.RoleFarmer,
	})
	if err != nil {
		return types.Farmer{}, err
	}
	s.events.record(ctx, entityFarmer, types.ActionCreated, farmer.ID, farmer.ID)
	return farmer, nil
}

// Authenticate returns the farmer whose login and password match. Both
// values are trimmed before the comparison.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (types.Farmer, error) {
	login = strings.TrimSpace(login)
	password = cleanPassword(password)
	if login == "" || password == "" {
		return types.Farmer{}, ErrInvalidCredentials
	}

	farmer, err := s.farmers.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Farmer{}, ErrInvalidCredentials
		}
		return types.Farmer{}, err
	}

	hash := store.HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(farmer.PasswordHash)) != 1 {
		s.logger.InfoContext(ctx, "rejected login", "login", login)
		return types.Farmer{}, ErrInvalidCredentials
	}
	return farmer, nil
}
