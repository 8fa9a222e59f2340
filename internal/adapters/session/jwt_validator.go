package session

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/ports"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims issued by the identity provider. Older tokens carry the user in
// user_id instead of sub.
type Claims struct {
	UserID any `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator checks HS256 tokens signed with a shared secret.
type JWTValidator struct {
	secret  []byte
	issuer  string
	revoker ports.TokenRevoker
}

type ValidatorOption func(*JWTValidator)

// WithIssuer requires the iss claim to match.
func WithIssuer(iss string) ValidatorOption {
	return func(v *JWTValidator) { v.issuer = iss }
}

// WithRevoker rejects tokens that were logged out before they expired.
func WithRevoker(r ports.TokenRevoker) ValidatorOption {
	return func(v *JWTValidator) { v.revoker = r }
}

func NewJWTValidator(secret string, opts ...ValidatorOption) (*JWTValidator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	v := &JWTValidator{secret: []byte(secret)}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *JWTValidator) Validate(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("validate session: empty token: %w", ports.ErrUnauthenticated)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("validate session: %v: %w", err, ports.ErrUnauthenticated)
	}

	s := &domain.Session{
		Subject: claims.Subject,
		TokenID: claims.ID,
	}
	if s.Subject == "" && claims.UserID != nil {
		s.Subject = fmt.Sprint(claims.UserID)
	}
	if s.Subject == "" {
		return nil, fmt.Errorf("validate session: token has no subject: %w", ports.ErrUnauthenticated)
	}
	if s.TokenID == "" {
		s.TokenID = fingerprint(token)
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}

	if v.revoker != nil {
		revoked, err := v.revoker.IsRevoked(ctx, s.TokenID)
		if err != nil {
			return nil, fmt.Errorf("validate session: check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("validate session: token revoked: %w", ports.ErrUnauthenticated)
		}
	}

	return s, nil
}

// fingerprint identifies tokens issued without a jti.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
