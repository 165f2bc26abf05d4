package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid covers every way a presented token can fail: bad
// signature, malformed structure, or past expiry. Callers map it to 401.
var ErrTokenInvalid = errors.New("token invalid")

const issuer = "auth-gateway"

// Pair is the credential set handed to a client at login. The access token
// always expires before the refresh token.
type Pair struct {
	AccessToken   string
	AccessExpiry  time.Time
	RefreshToken  string
	RefreshExpiry time.Time
}

type claims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens. It holds no per-request
// state; all methods are safe for concurrent use.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL reports the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// Issue produces a signed access/refresh pair carrying subject.
func (s *Service) Issue(subject string) (Pair, error) {
	now := s.now()

	accessExpiry := now.Add(s.accessTTL)
	access, err := s.sign(subject, now, accessExpiry)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshExpiry := now.Add(s.refreshTTL)
	refresh, err := s.sign(subject, now, refreshExpiry)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return Pair{
		AccessToken:   access,
		AccessExpiry:  accessExpiry,
		RefreshToken:  refresh,
		RefreshExpiry: refreshExpiry,
	}, nil
}

// Validate returns the subject of a structurally valid, correctly signed,
// unexpired token, or ErrTokenInvalid. Pure function of the token, the
// secret, and the clock; no I/O.
func (s *Service) Validate(tokenString string) (string, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}
	if c.Subject == "" {
		return "", ErrTokenInvalid
	}
	return c.Subject, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same subject. The refresh token itself is not rotated.
func (s *Service) Refresh(refreshToken string) (string, time.Time, error) {
	subject, err := s.Validate(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	expiry := now.Add(s.accessTTL)
	access, err := s.sign(subject, now, expiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return access, expiry, nil
}

func (s *Service) sign(subject string, issuedAt, expiresAt time.Time) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}
