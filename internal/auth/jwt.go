package auth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ErrUnauthenticated is returned when a request carries no usable credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator yields the authenticated subject of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// JWTVerifier validates ES256 bearer tokens against a single public key.
type JWTVerifier struct {
	publicKey *ecdsa.PublicKey
	issuer    string
}

// NewJWTVerifierFromPEM creates a verifier from a PEM-encoded ECDSA public key.
// When issuer is not empty the iss claim must match it.
func NewJWTVerifierFromPEM(publicKeyPEM, issuer string) (*JWTVerifier, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not provided")
	}

	publicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT public key: %w", err)
	}

	return &JWTVerifier{publicKey: publicKey, issuer: issuer}, nil
}

// Authenticate extracts the bearer token from r and returns its subject.
func (v *JWTVerifier) Authenticate(r *http.Request) (string, error) {
	tokenStr, ok := bearerToken(r)
	if !ok {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	return v.Verify(tokenStr)
}

// Verify checks the signature and expiry of tokenStr and returns the subject claim.
func (v *JWTVerifier) Verify(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.publicKey, nil
	}, opts...)
	if err != nil {
		log.Debug().Err(err).Msg("JWT parse error")
		return "", fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	return claims.Subject, nil
}

// StaticSubject authenticates every request as the same subject. Development only.
type StaticSubject string

// Authenticate returns the fixed subject.
func (s StaticSubject) Authenticate(*http.Request) (string, error) {
	if s == "" {
		return "", ErrUnauthenticated
	}
	return string(s), nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
