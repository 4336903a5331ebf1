package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var ErrInvalidCredentials = market.NewError(market.CodeUnauthorized, "invalid email or password")

// Service: register/login + session opaque token di Redis.
type Service struct {
	Users *market.UserRepo
	Redis *redis.Client
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func ValidateRegistration(email, name, password string) *market.Error {
	var details []string
	if !strings.Contains(email, "@") {
		details = append(details, "invalid email")
	}
	if strings.TrimSpace(name) == "" {
		details = append(details, "name is required")
	}
	if len(password) < minPasswordLen {
		details = append(details, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(details) > 0 {
		return market.NewError(market.CodeValidation, "invalid registration", details...)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*market.User, error) {
	if verr := ValidateRegistration(email, name, password); verr != nil {
		return nil, verr
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, market.WrapInternal(err, "hash password")
	}
	return s.Users.Create(ctx, strings.ToLower(email), name, hash)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *market.User, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", nil, err
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.Redis.Set(ctx, key, u.ID, redisx.TTLSession).Err(); err != nil {
		return "", nil, market.WrapInternal(err, "store session")
	}
	return token, u, nil
}

// UserID resolve token -> user id; token tak dikenal = unauthorized.
func (s *Service) UserID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", market.NewError(market.CodeUnauthorized, "missing token")
	}
	key := fmt.Sprintf(redisx.KeySession, token)
	id, err := s.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", market.NewError(market.CodeUnauthorized, "invalid or expired token")
	}
	if err != nil {
		return "", market.WrapInternal(err, "session lookup")
	}
	return id, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.Redis.Del(ctx, key).Err(); err != nil {
		return market.WrapInternal(err, "delete session")
	}
	return nil
}
