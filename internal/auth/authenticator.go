// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/metrics"
)

// ErrUnauthorized is returned for any rejected caller.
var ErrUnauthorized = errors.New("unauthorized")

// Credential kinds
const (
	MethodSecret    = "secret"
	MethodJWT       = "jwt"
	MethodScheduler = "scheduler"
)

// Failure reasons, used as metric labels.
const (
	ReasonMissing            = "missing"
	ReasonInvalidSecret      = "invalid_secret"
	ReasonInvalidToken       = "invalid_token"
	ReasonBadSchedulerHeader = "bad_scheduler_header"
)

// Caller identifies an authenticated trigger invocation.
type Caller struct {
	Method  string
	Subject string
}

// Claims are the JWT claims accepted for refresh calls.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator checks refresh trigger credentials.
type Authenticator struct {
	secret          []byte
	issuer          string
	schedulerHeader string
	schedulerValue  []byte
	schedulerOn     bool
}

// NewAuthenticator creates an authenticator from cfg. The refresh secret is
// required.
func NewAuthenticator(cfg config.SecurityConfig) (*Authenticator, error) {
	if cfg.RefreshSecret == "" {
		return nil, errors.New("refresh secret is required")
	}
	return &Authenticator{
		secret:          []byte(cfg.RefreshSecret),
		issuer:          cfg.JWTIssuer,
		schedulerHeader: http.CanonicalHeaderKey(cfg.SchedulerHeader),
		schedulerValue:  []byte(cfg.SchedulerHeaderValue),
		schedulerOn:     cfg.SchedulerHeaderEnabled && cfg.SchedulerHeader != "",
	}, nil
}

// Authenticate accepts the request or returns an error wrapping
// ErrUnauthorized.
func (a *Authenticator) Authenticate(r *http.Request) (Caller, error) {
	reason := ReasonMissing

	if token, ok := bearerToken(r); ok {
		caller, err := a.checkBearer(token)
		if err == nil {
			return caller, nil
		}
		reason = err.Error()
	}

	if a.schedulerOn {
		if got := r.Header.Get(a.schedulerHeader); got != "" {
			if subtle.ConstantTimeCompare([]byte(got), a.schedulerValue) == 1 {
				return Caller{Method: MethodScheduler, Subject: "scheduler"}, nil
			}
			if reason == ReasonMissing {
				reason = ReasonBadSchedulerHeader
			}
		}
	}

	metrics.AuthFailures.WithLabelValues(reason).Inc()
	return Caller{}, fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

// checkBearer returns the failure reason as the error text.
func (a *Authenticator) checkBearer(token string) (Caller, error) {
	if subtle.ConstantTimeCompare([]byte(token), a.secret) == 1 {
		return Caller{Method: MethodSecret, Subject: "shared-secret"}, nil
	}
	if a.issuer == "" || strings.Count(token, ".") != 2 {
		return Caller{}, errors.New(ReasonInvalidSecret)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		return Caller{}, errors.New(ReasonInvalidToken)
	}
	return Caller{Method: MethodJWT, Subject: claims.Subject}, nil
}

// ValidateToken parses an HS256 token signed with the refresh secret.
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// IssueToken signs a token for subject that expires after ttl. It requires
// a configured issuer.
func (a *Authenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	if a.issuer == "" {
		return "", errors.New("jwt issuer is not configured")
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}
