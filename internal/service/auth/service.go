package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sevenpm/date-backend/internal/app"
	"github.com/sevenpm/date-backend/internal/db"
	svcErr "github.com/sevenpm/date-backend/internal/errors"
	"github.com/sevenpm/date-backend/internal/middleware"
	"github.com/sevenpm/date-backend/internal/repository"
)

const jwtExpDays = 365

// Service implements signup/login and token validation. The user id inside
// the JWT is the ambient identity every other service trusts.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewAuthService creates a new Auth service with dependencies from AppContext.
func NewAuthService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Signup creates a user and returns a signed token.
func (s *Service) Signup(ctx context.Context, email, password string) (*db.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", svcErr.InvalidArgument("a valid email is required")
	}
	if len(password) < 8 {
		return nil, "", svcErr.InvalidArgument("password must be at least 8 characters")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", svcErr.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &db.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
		LastLoginAt:  time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*db.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", svcErr.Unauthorized("invalid credentials")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", svcErr.Unauthorized("invalid credentials")
	}

	_ = s.userRepo.TouchLogin(ctx, user.ID)

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateJWT signs a token carrying the user id.
func (s *Service) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.appCtx.Cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT validates a token and returns the user id. Satisfies
// middleware.TokenValidator.
func (s *Service) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appCtx.Cfg.JWT.Secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}
	return userID, nil
}

// RegisterDevice stores the caller's APNs device token.
func (s *Service) RegisterDevice(ctx context.Context, userID, pushToken string) error {
	if strings.TrimSpace(pushToken) == "" {
		return svcErr.InvalidArgument("push_token is required")
	}
	return s.userRepo.SetPushToken(ctx, userID, pushToken)
}

// --- HTTP handlers ---

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	user, token, err := s.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		s.appCtx.Logger.Error("signup failed", "err", err)
		svcErr.Respond(w, err)
		return
	}

	s.appCtx.Logger.Info("user signed up", "user", user.ID)
	respondJSON(w, http.StatusCreated, authResponse{UserID: user.ID, Token: token})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	user, token, err := s.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		svcErr.Respond(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{UserID: user.ID, Token: token})
}

func (s *Service) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PushToken string `json:"push_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Respond(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	userID := middleware.UserID(r.Context())
	if err := s.RegisterDevice(r.Context(), userID, req.PushToken); err != nil {
		svcErr.Respond(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
