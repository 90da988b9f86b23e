package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
)

const defaultTokenTTL = 24 * time.Hour

// FarmerLookup loads the authenticated farmer.
type FarmerLookup interface {
	Get(ctx context.Context, id int) (types.Farmer, error)
}

// AuthHandler provides JWT authentication endpoints.
type AuthHandler struct {
	authService *services.AuthService
	farmers     FarmerLookup
	secret      []byte
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, farmers FarmerLookup, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		farmers:     farmers,
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's farmer id in the request context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		farmerID, err := farmerIDFromToken(raw, h.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withFarmerID(r.Context(), farmerID)))
	})
}

// RequireAdmin lets through only authenticated administrators. It must run
// after RequireAuth.
func RequireAdmin(farmers FarmerLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			farmer, ok := currentFarmer(w, r, farmers)
			if !ok {
				return
			}
			if farmer.Role != types.RoleAdmin {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentFarmer loads the farmer behind the request token. A token whose
// farmer has since been deleted is treated as unauthenticated.
func currentFarmer(w http.ResponseWriter, r *http.Request, farmers FarmerLookup) (types.Farmer, bool) {
	farmerID, ok := farmerIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return types.Farmer{}, false
	}
	farmer, err := farmers.Get(r.Context(), farmerID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return types.Farmer{}, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to load farmer")
		return types.Farmer{}, false
	}
	return farmer, true
}

// Register creates a farmer account and returns a JWT.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	farmer, err := h.authService.Register(r.Context(), services.Registration{
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		Login:    req.Login,
		Password: req.Password,
		Confirm:  req.ConfirmPassword,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "farmer", "failed to register")
		return
	}

	token, err := issueToken(farmer.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, Farmer: farmer})
}

// Login verifies credentials and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Login) == "" || strings.TrimSpace(req.Password) == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	farmer, err := h.authService.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to authenticate", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := issueToken(farmer.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Farmer: farmer})
}

// Me returns the current authenticated farmer.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if farmer, ok := currentFarmer(w, r, h.farmers); ok {
		writeJSON(w, http.StatusOK, farmer)
	}
}

type RegisterRequest struct {
	FullName        string `json:"full_name"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Login           string `json:"login"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token  string       `json:"token"`
	Farmer types.Farmer `json:"farmer"`
}

func issueToken(farmerID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(farmerID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// farmerIDFromToken verifies an HS256 token and returns its subject.
func farmerIDFromToken(raw string, secret []byte) (int, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	farmerID, err := strconv.Atoi(claims.Subject)
	if err != nil || farmerID < 1 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return farmerID, nil
}

func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("missing bearer token")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
