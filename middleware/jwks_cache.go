package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/tripsplit/tripsplit-backend/logger"
)

// ErrJWKSKeyNotFound is returned when no key in the JWKS carries the kid.
var ErrJWKSKeyNotFound = errors.New("jwks key not found")

// minJWKSRefreshInterval throttles fetches triggered by unknown kids.
const minJWKSRefreshInterval = 30 * time.Second

// JWKSCache keeps the public keys of an identity provider keyed by kid.
// An unknown kid forces a refresh, so rotated keys are picked up before ttl
// expires.
type JWKSCache struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]jwk.Key
	expiresAt time.Time

	// refreshMu serialises fetches; lastFetch is guarded by it.
	refreshMu sync.Mutex
	lastFetch time.Time
}

func NewJWKSCache(url string, ttl time.Duration, client *http.Client) *JWKSCache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSCache{
		url:        url,
		ttl:        ttl,
		httpClient: client,
		keys:       map[string]jwk.Key{},
	}
}

// PublicKey returns the raw public key (*rsa.PublicKey, *ecdsa.PublicKey,
// ed25519.PublicKey) for kid.
func (c *JWKSCache) PublicKey(ctx context.Context, kid string) (interface{}, error) {
	key, err := c.getKey(ctx, kid)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to extract public key %s: %w", kid, err)
	}
	return raw, nil
}

func (c *JWKSCache) getKey(ctx context.Context, kid string) (jwk.Key, error) {
	c.mu.RLock()
	key, found := c.keys[kid]
	fresh := time.Now().Before(c.expiresAt)
	c.mu.RUnlock()
	if found && fresh {
		return key, nil
	}

	if err := c.refresh(ctx); err != nil {
		if found {
			// Keep serving the cached key while the provider is unreachable.
			logger.GetLogger().Warnw("JWKS refresh failed, using cached key", "kid", kid, "error", err)
			return key, nil
		}
		return nil, err
	}

	c.mu.RLock()
	key, found = c.keys[kid]
	c.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrJWKSKeyNotFound, kid)
	}
	return key, nil
}

// refresh fetches the key set unless another fetch happened within
// minJWKSRefreshInterval.
func (c *JWKSCache) refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if !c.lastFetch.IsZero() && time.Since(c.lastFetch) < minJWKSRefreshInterval {
		return nil
	}
	c.lastFetch = time.Now()

	log := logger.GetLogger()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create JWKS request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS from %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read JWKS response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make(map[string]jwk.Key, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, _ := set.Key(i)
		if key.KeyID() == "" {
			log.Warn("Skipping JWK without kid")
			continue
		}
		keys[key.KeyID()] = key
	}

	c.mu.Lock()
	c.keys = keys
	c.expiresAt = time.Now().Add(c.ttl)
	c.mu.Unlock()

	log.Infow("JWKS cache refreshed", "url", c.url, "keys", len(keys))
	return nil
}
