package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ErrInvalidExternalToken is returned for any verification failure of an
// external identity token, including a missing email claim.
var ErrInvalidExternalToken = errors.New("invalid external identity token")

// ExternalIdentity is the claim subset extracted from a verified external
// identity token.
type ExternalIdentity struct {
	Subject string // immutable provider object id
	Email   string
	Name    string
}

// FederatedVerifier verifies RS256 identity tokens issued by an external
// provider (Microsoft Entra). Signing keys are fetched from the provider's
// JWKS endpoint and cached by kid for an hour.
type FederatedVerifier struct {
	jwksURL    string
	audience   string
	issuer     string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

// NewFederatedVerifier creates a verifier pinned to the given JWKS endpoint,
// audience and issuer.
func NewFederatedVerifier(jwksURL, audience, issuer string, httpClient *http.Client) *FederatedVerifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &FederatedVerifier{
		jwksURL:    jwksURL,
		audience:   audience,
		issuer:     issuer,
		httpClient: httpClient,
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// Verify checks the token signature, audience, issuer and expiry, then
// extracts the identity claims. Any failure maps to ErrInvalidExternalToken;
// the underlying cause is logged, not surfaced.
func (v *FederatedVerifier) Verify(ctx context.Context, tokenStr string) (*ExternalIdentity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodRS256 {
			return nil, errors.New("invalid signing method")
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return v.publicKey(ctx, kid)
	},
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		log.Debug().Err(err).Msg("External token verification failed")
		return nil, ErrInvalidExternalToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidExternalToken
	}

	email, _ := claims["preferred_username"].(string)
	if email == "" {
		email, _ = claims["email"].(string)
	}
	if email == "" {
		log.Debug().Msg("External token has no email claim")
		return nil, ErrInvalidExternalToken
	}

	subject, _ := claims["oid"].(string)
	if subject == "" {
		subject, _ = claims["sub"].(string)
	}
	name, _ := claims["name"].(string)

	return &ExternalIdentity{
		Subject: subject,
		Email:   strings.ToLower(email),
		Name:    name,
	}, nil
}

// publicKey returns the RSA key for kid, refreshing the JWKS cache when the
// kid is unknown or the cache expired.
func (v *FederatedVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Now().Before(v.expiresAt)
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok = v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("kid not found in JWKS: %s", kid)
	}
	return key, nil
}

func (v *FederatedVerifier) refreshKeys(ctx context.Context) error {
	log.Debug().Str("jwks_url", v.jwksURL).Msg("Fetching JWKS")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create JWKS request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS request failed: %s", resp.Status)
	}

	var jwks struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, jwk := range jwks.Keys {
		kid, ok := jwk["kid"].(string)
		if !ok {
			log.Warn().Msg("JWK missing kid")
			continue
		}
		key, err := parseRSAJWK(jwk)
		if err != nil {
			log.Warn().Err(err).Str("kid", kid).Msg("Failed to parse JWK")
			continue
		}
		keys[kid] = key
	}

	v.mu.Lock()
	v.keys = keys
	v.expiresAt = time.Now().Add(1 * time.Hour)
	v.mu.Unlock()

	log.Info().Int("total_keys", len(keys)).Msg("Cached JWKS")
	return nil
}

// parseRSAJWK parses a JWK (JSON Web Key) into an RSA public key.
func parseRSAJWK(jwk map[string]any) (*rsa.PublicKey, error) {
	kty, ok := jwk["kty"].(string)
	if !ok || kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type: %v", kty)
	}

	nStr, ok := jwk["n"].(string)
	if !ok {
		return nil, errors.New("missing modulus")
	}
	eStr, ok := jwk["e"].(string)
	if !ok {
		return nil, errors.New("missing exponent")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(nStr, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(eStr, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
