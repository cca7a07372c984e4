// Package token issues and verifies the compact signed identity tokens
// handed to the HTTP boundary. Tokens are signed, not encrypted: claims
// are readable by anyone, only integrity is protected.
package token

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Party4Bread/academy-core-go/pkg/utilities"
)

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// ConfigFromEnv reads signer config from env vars.
func ConfigFromEnv() Config {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		secret = "SECRET"
	}
	issuer := os.Getenv("TOKEN_ISSUER")
	if issuer == "" {
		issuer = "academy-core"
	}
	ttl := 10 * time.Minute
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			ttl = parsed
		}
	}
	return Config{Secret: secret, Issuer: issuer, TTL: ttl}
}

// AcademyClaims is the minimal identity set for an academy token.
type AcademyClaims struct {
	AcademyName string `json:"academyName"`
	jwt.RegisteredClaims
}

// StudentClaims is the minimal identity set for a student token.
type StudentClaims struct {
	StudentID     string    `json:"studentID"`
	LastLoginTime time.Time `json:"lastLoginTime"`
	Academy       string    `json:"academy"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 tokens bound to a server-held secret.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSigner(cfg Config) *Signer {
	return &Signer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: cfg.TTL}
}

// TTL returns the configured token lifetime.
func (s *Signer) TTL() time.Duration { return s.ttl }

// IssueAcademy signs a token carrying academy identity claims.
func (s *Signer) IssueAcademy(id, academyName string) (string, error) {
	claims := AcademyClaims{
		AcademyName:      academyName,
		RegisteredClaims: s.registered(id),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssueStudent signs a token carrying student identity claims.
func (s *Signer) IssueStudent(id, studentID, academyID string, lastLoginTime time.Time) (string, error) {
	claims := StudentClaims{
		StudentID:        studentID,
		LastLoginTime:    lastLoginTime,
		Academy:          academyID,
		RegisteredClaims: s.registered(id),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) registered(subject string) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		ID:        utilities.NewSnowflakeID(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
}

// ParseAcademy verifies an academy token and returns its claims.
func (s *Signer) ParseAcademy(tokenString string) (*AcademyClaims, error) {
	var claims AcademyClaims
	if err := s.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// ParseStudent verifies a student token and returns its claims.
func (s *Signer) ParseStudent(tokenString string) (*StudentClaims, error) {
	var claims StudentClaims
	if err := s.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (s *Signer) parse(tokenString string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return err
	}
	if !tok.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
