package ghost

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// adminToken mints the short-lived HS256 token the Admin API expects: signed
// with the decoded key secret, `kid` set to the key id, audience `/admin`.
func (c *Client) adminToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin",
	})
	token.Header["kid"] = c.keyID
	return token.SignedString(c.keySecret)
}
