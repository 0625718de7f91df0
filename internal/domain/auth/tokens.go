package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	UserID   string `json:"uid"`
	RoleID   string `json:"rid"`
	RoleName string `json:"role"`
	jwt.RegisteredClaims
}

// ManagerLinkClaims carries the manager code a team link is scoped to.
type ManagerLinkClaims struct {
	ManagerCode string `json:"mc"`
	jwt.RegisteredClaims
}

const managerLinkSubject = "manager-link"

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken signs a session token. sessionID becomes the jti so the
// session row can be revoked independently of the token lifetime.
func GenerateToken(secret string, claims Claims, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        sessionID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, hmacKey(secret))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func GenerateManagerLink(secret, managerCode string, ttl time.Duration) (string, time.Time, error) {
	code := strings.TrimSpace(managerCode)
	if code == "" {
		return "", time.Time{}, ErrInvalidManagerCode
	}
	now := time.Now()
	expires := now.Add(ttl)
	claims := ManagerLinkClaims{
		ManagerCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   managerLinkSubject,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseManagerLink returns the manager code of a valid, unexpired link token.
func ParseManagerLink(secret, tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrInvalidManagerLink
	}
	token, err := jwt.ParseWithClaims(tokenString, &ManagerLinkClaims{}, hmacKey(secret))
	if err != nil {
		return "", ErrInvalidManagerLink
	}
	claims, ok := token.Claims.(*ManagerLinkClaims)
	if !ok || !token.Valid || claims.Subject != managerLinkSubject {
		return "", ErrInvalidManagerLink
	}
	code := strings.TrimSpace(claims.ManagerCode)
	if code == "" {
		return "", ErrInvalidManagerLink
	}
	return code, nil
}

func hmacKey(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}
}
