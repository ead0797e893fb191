package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amiraly/banksim/pkg/config"
	"github.com/amiraly/banksim/pkg/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session roles carried in token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrInvalidToken is returned when a session token fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the decoded session identity for the HTTP surface.
type Claims struct {
	AccountNumber int64
	Username      string
	Role          string
}

// AuthService issues and verifies JWT session tokens on top of the bank's
// credential checks.
type AuthService struct {
	bank   *BankService
	cfg    config.Jwt
	logger *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(bank *BankService, cfg config.Jwt, logger *slog.Logger) *AuthService {
	return &AuthService{bank: bank, cfg: cfg, logger: logger}
}

// Login authenticates a user and returns the account with a session token.
func (s *AuthService) Login(username, password string) (*domain.Account, string, error) {
	a, err := s.bank.Login(username, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.generateToken(a.Number(), a.Username(), RoleUser)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user session issued", "username", username)
	return a, token, nil
}

// AdminLogin authenticates against the configured admin credentials and
// returns an admin session token.
func (s *AuthService) AdminLogin(username, password string) (string, error) {
	if err := s.bank.AdminLogin(username, password); err != nil {
		s.logger.Warn("admin login failed", "username", username)
		return "", err
	}
	token, err := s.generateToken(0, username, RoleAdmin)
	if err != nil {
		return "", err
	}
	s.logger.Info("admin session issued", "username", username)
	return token, nil
}

// ParseToken verifies a session token and extracts its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	out := &Claims{}
	if number, ok := claims["account_number"].(float64); ok {
		out.AccountNumber = int64(number)
	}
	if username, ok := claims["username"].(string); ok {
		out.Username = username
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if out.Role == "" {
		return nil, ErrInvalidToken
	}
	return out, nil
}

func (s *AuthService) generateToken(number int64, username, role string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["account_number"] = number
	claims["username"] = username
	claims["role"] = role
	claims["jti"] = uuid.NewString()
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}
