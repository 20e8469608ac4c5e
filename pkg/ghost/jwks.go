package ghost

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/forumbridge/forumbridge/pkg/observability"
)

// TokenVerifier verifies member identity JWTs (RS512) against the key set
// Ghost publishes at /members/.well-known/jwks.json.
//
// The key set is fetched lazily on the first verification and cached for the
// process lifetime. A kid that is not in the cached set fails verification;
// the set is never re-fetched, so key rotation on the Ghost side requires a
// restart of the bridge.
type TokenVerifier struct {
	client  *Client
	jwksURL string
	issuer  string
	metrics *observability.Metrics

	group singleflight.Group
	mu    sync.RWMutex
	keys  map[string]*rsa.PublicKey // nil until the first successful fetch
}

// NewTokenVerifier creates a verifier bound to the client's Ghost instance.
// The required token issuer is the public members API base.
func NewTokenVerifier(client *Client, metrics *observability.Metrics) *TokenVerifier {
	return &TokenVerifier{
		client:  client,
		jwksURL: client.ResolvePublic("/members/.well-known/jwks.json"),
		issuer:  client.ResolvePublic("/members/api"),
		metrics: metrics,
	}
}

// VerifyMemberToken verifies the token's signature, algorithm and issuer and
// returns the subject claim, which Ghost sets to the member's email.
func (v *TokenVerifier) VerifyMemberToken(ctx context.Context, raw string) (string, error) {
	keys, err := v.ensureKeys(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching members key set: %w", err)
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("no key with kid %q in members key set", kid)
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"RS512"}), jwt.WithIssuer(v.issuer))
	if err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", errors.New("token has no subject claim")
	}
	return claims.Subject, nil
}

// ensureKeys returns the cached key set, populating it on first use.
// Concurrent first callers are collapsed into a single fetch; a failed fetch
// is not cached and the next request retries.
func (v *TokenVerifier) ensureKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.RLock()
	keys := v.keys
	v.mu.RUnlock()
	if keys != nil {
		return keys, nil
	}

	result, err, _ := v.group.Do("jwks", func() (interface{}, error) {
		// Re-check under the flight: a racing caller may have populated.
		v.mu.RLock()
		cached := v.keys
		v.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		fetched, err := v.fetch(ctx)
		v.metrics.ObserveJWKSFetch(err)
		if err != nil {
			return nil, err
		}

		v.mu.Lock()
		v.keys = fetched
		v.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]*rsa.PublicKey), nil
}

func (v *TokenVerifier) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: jwks endpoint answered %d", ErrUpstream, resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: decoding jwks: %v", ErrUpstream, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, key := range set.Keys {
		pub, ok := key.Key.(*rsa.PublicKey)
		if !ok {
			continue
		}
		keys[key.KeyID] = pub
	}
	if len(keys) == 0 {
		return nil, errors.New("members key set contains no RSA keys")
	}
	return keys, nil
}
