// Package jwtclaims decodes bearer tokens into session claims.
//
// Three trust modes are supported: unverified (claims are read without a
// signature check and the backend remains the authority), HMAC, and remote
// JWKS. Every mode applies the same fail-closed schema check.
package jwtclaims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
)

var (
	// ErrMalformedToken is returned when the token is not a parseable JWT.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidClaims is returned when the payload violates the claims schema.
	ErrInvalidClaims = errors.New("invalid token claims")
	// ErrSignature is returned when signature verification fails.
	ErrSignature = errors.New("token signature rejected")
)

// maxExpiry caps exp claims. Later instants overflow time.Unix and cannot be
// written as cookie or Postgres timestamps.
var maxExpiry = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Mode names the trust mode of a Decoder.
type Mode string

const (
	ModeUnverified Mode = "none"
	ModeHMAC       Mode = "hmac"
	ModeJWKS       Mode = "jwks"
)

// KeySet verifies a compact JWS and returns its payload.
// *oidc.RemoteKeySet satisfies it.
type KeySet interface {
	VerifySignature(ctx context.Context, jwt string) ([]byte, error)
}

// Decoder implements ports.TokenDecoder.
type Decoder struct {
	mode   Mode
	parser *jwt.Parser
	secret []byte
	keys   KeySet
}

// NewUnverified returns a decoder that reads claims without checking the signature.
func NewUnverified() *Decoder {
	return &Decoder{mode: ModeUnverified, parser: jwt.NewParser()}
}

// NewHMAC returns a decoder that requires an HS256/384/512 signature made with secret.
func NewHMAC(secret []byte) (*Decoder, error) {
	if len(secret) == 0 {
		return nil, errors.New("hmac decoder requires a secret")
	}
	return &Decoder{
		mode: ModeHMAC,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			// Expiry is judged by the session manager, not the decoder.
			jwt.WithoutClaimsValidation(),
		),
		secret: secret,
	}, nil
}

// NewJWKS returns a decoder that verifies signatures against keys.
func NewJWKS(keys KeySet) (*Decoder, error) {
	if keys == nil {
		return nil, errors.New("jwks decoder requires a key set")
	}
	return &Decoder{mode: ModeJWKS, keys: keys}, nil
}

// Mode reports the decoder's trust mode.
func (d *Decoder) Mode() Mode { return d.mode }

// Decode returns the claims carried by token.
func (d *Decoder) Decode(ctx context.Context, token string) (domainauth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Claims{}, ErrMalformedToken
	}

	switch d.mode {
	case ModeUnverified:
		claims := jwt.MapClaims{}
		if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
			return domainauth.Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
		}
		return claimsFromMap(claims)
	case ModeHMAC:
		claims := jwt.MapClaims{}
		_, err := d.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return d.secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenMalformed) {
				return domainauth.Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
			}
			return domainauth.Claims{}, fmt.Errorf("%w: %w", ErrSignature, err)
		}
		return claimsFromMap(claims)
	case ModeJWKS:
		payload, err := d.keys.VerifySignature(ctx, token)
		if err != nil {
			return domainauth.Claims{}, fmt.Errorf("%w: %w", ErrSignature, err)
		}
		claims := map[string]any{}
		if err := json.Unmarshal(payload, &claims); err != nil {
			return domainauth.Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
		}
		return claimsFromMap(claims)
	}
	return domainauth.Claims{}, fmt.Errorf("unsupported decoder mode %q", d.mode)
}

// ExpiresAt reads only the exp claim without verifying anything. Stores use it
// to size TTLs.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := numericTime(claims["exp"])
	if err != nil {
		return time.Time{}, false
	}
	return exp, true
}

func claimsFromMap(m map[string]any) (domainauth.Claims, error) {
	sub, _ := m["sub"].(string)
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return domainauth.Claims{}, fmt.Errorf("%w: sub must be a non-empty string", ErrInvalidClaims)
	}

	rawRole, ok := m["role"].(string)
	if !ok {
		return domainauth.Claims{}, fmt.Errorf("%w: role must be a string", ErrInvalidClaims)
	}
	// Exact match: a token claiming "HR" is not an hr token.
	role := domainauth.Role(rawRole)
	if !role.Valid() {
		return domainauth.Claims{}, fmt.Errorf("%w: %w: %q", ErrInvalidClaims, domainauth.ErrInvalidRole, rawRole)
	}

	exp, err := numericTime(m["exp"])
	if err != nil {
		return domainauth.Claims{}, fmt.Errorf("%w: exp %w", ErrInvalidClaims, err)
	}

	name, _ := m["name"].(string)
	email, _ := m["email"].(string)
	return domainauth.Claims{
		Subject:   sub,
		Role:      role,
		ExpiresAt: exp,
		Name:      name,
		Email:     email,
	}, nil
}

// numericTime accepts only JSON numbers of epoch seconds. Values past
// maxExpiry are clamped to it.
func numericTime(v any) (time.Time, error) {
	var secs float64
	switch n := v.(type) {
	case float64:
		secs = n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return time.Time{}, errors.New("must be numeric")
		}
		secs = f
	case nil:
		return time.Time{}, errors.New("is required")
	default:
		return time.Time{}, errors.New("must be numeric")
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs <= 0 {
		return time.Time{}, errors.New("out of range")
	}
	if secs >= float64(maxExpiry.Unix()) {
		return maxExpiry, nil
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
}
