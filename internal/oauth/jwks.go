package oauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/questly/auth-service/internal/logger"
)

// KeyProvider resolves a provider signing key by its key ID.
type KeyProvider interface {
	GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// ErrUnknownKey is returned when a key ID is absent from the provider's
// key set even after a refresh.
var ErrUnknownKey = errors.New("unknown signing key id")

// JWKSCache caches a provider's JSON Web Key Set in memory. Providers rotate
// keys infrequently, so the set is only re-fetched when a lookup misses.
// Concurrent misses may each fetch independently; the fetch is idempotent.
type JWKSCache struct {
	url    string
	client *http.Client

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewJWKSCache creates a cache backed by the given JWKS endpoint.
func NewJWKSCache(url string) *JWKSCache {
	return &JWKSCache{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the public key for the given key ID, refreshing the cached
// set on a miss.
func (c *JWKSCache) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	key, ok = c.keys[kid]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownKey
	}

	return key, nil
}

// jwk is a single RSA key entry in a JWKS document.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// refresh fetches the key set and replaces the cached keys.
func (c *JWKSCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Log.Errorw("failed to fetch provider key set", "url", c.url, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Errorw("unexpected key set response", "url", c.url, "status", resp.StatusCode)
		return fmt.Errorf("jwks fetch returned status %d", resp.StatusCode)
	}

	var doc jwks
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			logger.Log.Errorw("failed to parse provider key", "kid", k.Kid, "err", err)
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()

	return nil
}

// publicKey decodes the base64url modulus and exponent into an RSA key.
func (k jwk) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
