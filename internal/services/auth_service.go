package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"simplecrud/internal/domain"
	"simplecrud/internal/domain/models"
	"simplecrud/internal/utils"
)

const defaultTokenTTL = 24 * time.Hour

var errBadCredentials = domain.UnauthorizedError{Msg: "Email/username atau password salah"}

// UserFinder looks a user up by email or username.
type UserFinder interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
}

// AuthService checks passwords and issues and verifies HS256 tokens.
type AuthService struct {
	Users  UserFinder
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login verifies login and password and returns a signed token for the user.
func (s AuthService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	u, err := s.Users.FindByLogin(ctx, login)
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return "", nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, errBadCredentials
	}
	if u.Status != "" && u.Status != "active" {
		return "", nil, domain.UnauthorizedError{Msg: "akun tidak aktif"}
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "login", "user_id="+u.ResourceID())
	return token, u, nil
}

// IssueToken signs a token carrying user_id, role and exp.
func (s AuthService) IssueToken(u *models.User) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"exp":     s.now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies raw and returns the actor it was issued for.
func (s AuthService) ParseToken(raw string) (domain.Actor, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, domain.UnauthorizedError{Msg: "token kedaluwarsa"}
		}
		return domain.Actor{}, domain.UnauthorizedError{Msg: "token tidak valid"}
	}

	var actor domain.Actor
	if id, ok := claims["user_id"].(float64); ok {
		actor.UserID = int64(id)
	}
	actor.Role, _ = claims["role"].(string)
	if actor.UserID == 0 {
		return domain.Actor{}, domain.UnauthorizedError{Msg: "token tidak valid"}
	}
	return actor, nil
}
