package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"leadsboard/server/internal/models"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("username/password is incorrect")
	// ErrInvalidToken is returned when a session token fails validation.
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// Claims are the session token payload.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles credential verification and session tokens.
type Service struct {
	secret []byte
	expiry time.Duration
	cost   int
	logger *logrus.Logger
}

func NewService(secret string, expiry time.Duration, cost int, logger *logrus.Logger) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		secret: []byte(secret),
		expiry: expiry,
		cost:   cost,
		logger: logger,
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// EnsureHashed fills Hashed_Password for user rows that only carry the
// imported plaintext. Rows that already have a hash are left untouched so
// a credential is hashed at most once. Returns whether anything changed
// and must be persisted.
func (s *Service) EnsureHashed(users []models.User) ([]models.User, bool, error) {
	changed := false
	for i, u := range users {
		if u.HashedPassword != "" || u.Password == "" {
			continue
		}
		hashed, err := s.HashPassword(u.Password)
		if err != nil {
			return nil, false, err
		}
		users[i].HashedPassword = hashed
		changed = true
	}
	if changed {
		s.logger.Info("Hashed imported user credentials")
	}
	return users, changed, nil
}

// Authenticate matches an email/password pair against the users worksheet.
// Rows missing any credential field are not eligible for login.
func (s *Service) Authenticate(users []models.User, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	for _, u := range users {
		if u.Name == "" || u.Email == "" || u.HashedPassword == "" {
			continue
		}
		if strings.TrimSpace(u.Email) != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
			return models.User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return models.User{}, ErrInvalidCredentials
}

// IssueToken creates a signed session token for the user.
func (s *Service) IssueToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
