package ghost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "6245e5c0a1b2c3d4e5f60718:aa11bb22cc33dd44ee55ff66"

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{
		PublicURL:  srv.URL,
		APIKey:     testAdminKey,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return client, srv
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{PublicURL: "https://blog.example.com", APIKey: "no-separator"})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{PublicURL: "https://blog.example.com", APIKey: "id:not-hex!"})
	assert.Error(t, err)

	client, err := NewClient(ClientConfig{PublicURL: "https://blog.example.com", APIKey: "id:deadbeef"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestResolvePreservesSubdirectory(t *testing.T) {
	client, err := NewClient(ClientConfig{PublicURL: "https://example.com/blog"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/blog/members/api/member", client.ResolvePublic("/members/api/member"))
	assert.Equal(t, "https://example.com/blog#/portal/account", client.PortalAccountURL())
}

func TestResolveAdminDefaultsToPublic(t *testing.T) {
	client, err := NewClient(ClientConfig{PublicURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/ghost/api/admin/members", client.ResolveAdmin("/ghost/api/admin/members"))

	client, err = NewClient(ClientConfig{
		PublicURL: "https://example.com",
		AdminURL:  "https://admin.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com/ghost/api/admin/members", client.ResolveAdmin("/ghost/api/admin/members"))
}

func TestMemberFromCookie(t *testing.T) {
	var gotCookie atomic.Value
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/members/api/member", r.URL.Path)
		gotCookie.Store(r.Header.Get("Cookie"))
		json.NewEncoder(w).Encode(Member{UUID: "u1", Email: "a@b.com"})
	}))

	member, err := client.MemberFromCookie(context.Background(), "ghost-members-ssr=tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", member.UUID)
	assert.Equal(t, "a@b.com", member.Email)
	assert.Equal(t, "ghost-members-ssr=tok", gotCookie.Load())
}

func TestMemberFromCookieStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"no session", http.StatusNoContent, ErrNotLoggedIn},
		{"server error", http.StatusInternalServerError, ErrUpstream},
		{"unexpected redirect", http.StatusBadRequest, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.MemberFromCookie(context.Background(), "c=1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMemberByEmail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "email:a@b.com", r.URL.Query().Get("filter"))

		authorization := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(authorization, "Ghost "))

		// The admin token must be HS256-signed with the decoded key secret
		// and carry the key id so Ghost can look the key up.
		raw := strings.TrimPrefix(authorization, "Ghost ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			assert.Equal(t, "6245e5c0a1b2c3d4e5f60718", token.Header["kid"])
			return []byte{0xaa, 0x11, 0xbb, 0x22, 0xcc, 0x33, 0xdd, 0x44, 0xee, 0x55, 0xff, 0x66}, nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/admin"))
		require.NoError(t, err)
		require.True(t, token.Valid)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"members": []Member{{UUID: "u1", Email: "a@b.com"}},
		})
	}))

	member, err := client.MemberByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", member.UUID)
}

func TestMemberByEmailNotFound(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		members []Member
	}{
		{"endpoint 404", http.StatusNotFound, nil},
		{"zero matches", http.StatusOK, []Member{}},
		{"ambiguous matches", http.StatusOK, []Member{{UUID: "u1"}, {UUID: "u2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
					return
				}
				json.NewEncoder(w).Encode(map[string]interface{}{"members": tt.members})
			}))

			_, err := client.MemberByEmail(context.Background(), "a@b.com")
			assert.ErrorIs(t, err, ErrMemberNotFound)
		})
	}
}

func TestMemberByEmailUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.MemberByEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberByEmailRequiresAPIKey(t *testing.T) {
	client, err := NewClient(ClientConfig{PublicURL: "https://example.com"})
	require.NoError(t, err)

	_, err = client.MemberByEmail(context.Background(), "a@b.com")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	// Any HTTP response means the instance is reachable.
	assert.NoError(t, client.Ping(context.Background()))

	unreachable, err := NewClient(ClientConfig{PublicURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	assert.Error(t, unreachable.Ping(context.Background()))
}
