package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

const defaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenInvalid возвращается при любой проблеме с подписью или форматом токена.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired возвращается для просроченного токена.
	ErrTokenExpired = errors.New("token is expired")
)

// Claims переносит идентификатор и роль актора в JWT.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет HMAC-подписанные JWT.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue выпускает токен для актора.
func (m *TokenManager) Issue(actor domain.Actor) (string, error) {
	if actor.ID == "" {
		return "", errors.New("actor id is required")
	}
	if _, err := domain.ParseRole(string(actor.Role)); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse проверяет токен и возвращает актора.
func (m *TokenManager) Parse(raw string) (domain.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, ErrTokenExpired
		}
		return domain.Actor{}, ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Actor{}, ErrTokenInvalid
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, ErrTokenInvalid
	}

	return domain.Actor{ID: claims.Subject, Role: role}, nil
}
