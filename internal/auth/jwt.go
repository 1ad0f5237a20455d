package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

const (
	CookieName = "whfood_session"
	sessionTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Session is what the session cookie carries about the signed-in user.
type Session struct {
	UserID int64
	Role   domain.Role
	Name   string
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: sessionTTL, now: time.Now}
}

func (t *Tokens) Issue(s Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(s.UserID, 10),
		"role":    string(s.Role),
		"name":    s.Name,
		"exp":     t.now().Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(raw string) (Session, error) {
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	rawID, _ := claims["user_id"].(string)
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return Session{}, ErrInvalidToken
	}
	role := domain.Role(asString(claims["role"]))
	if !role.Valid() {
		return Session{}, ErrInvalidToken
	}

	return Session{UserID: id, Role: role, Name: asString(claims["name"])}, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
