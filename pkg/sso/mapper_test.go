package sso

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumbridge/forumbridge/pkg/ghost"
)

func TestMapMember(t *testing.T) {
	member := &ghost.Member{
		UUID:        "member-uuid-1",
		Email:       "jamie@example.com",
		Name:        "Jamie Example",
		AvatarImage: "https://gravatar.com/avatar/abc?s=250&d=blank",
		Subscriptions: []ghost.Subscription{
			{Tier: &ghost.Tier{Slug: "Gold Tier", Active: true}},
			{Tier: &ghost.Tier{Slug: "lapsed", Active: false}},
			{Tier: nil},
		},
	}

	out := MapMember(member, "nonce-123")
	require.NotNil(t, out)

	assert.Equal(t, "nonce-123", out.Nonce)
	assert.Equal(t, "jamie@example.com", out.Email)
	assert.Equal(t, "member-uuid-1", out.ExternalID)
	assert.Equal(t, "Jamie Example", out.Name)
	assert.Equal(t, "gold-tier", out.AddGroups)
	assert.Equal(t, "https://gravatar.com/avatar/abc?d=identicon&s=250", out.AvatarURL)
}

func TestMapMemberOmitsOptionalFields(t *testing.T) {
	member := &ghost.Member{
		UUID:        "member-uuid-2",
		Email:       "no-name@example.com",
		AvatarImage: "https://example.com/avatar.png",
	}

	out := MapMember(member, "n")

	assert.Empty(t, out.Name)
	assert.Empty(t, out.AddGroups)
	assert.Equal(t, "https://example.com/avatar.png", out.AvatarURL)
}

func TestMapMemberJoinsMultipleActiveTiers(t *testing.T) {
	member := &ghost.Member{
		UUID:  "member-uuid-3",
		Email: "multi@example.com",
		Subscriptions: []ghost.Subscription{
			{Tier: &ghost.Tier{Slug: "Gold Tier", Active: true}},
			{Tier: &ghost.Tier{Slug: "Founders Club!", Active: true}},
		},
	}

	out := MapMember(member, "n")

	assert.Equal(t, "gold-tier,founders-club", out.AddGroups)
}

func TestNormalizeAvatar(t *testing.T) {
	tests := []struct {
		name   string
		avatar string
		want   string
	}{
		{
			name:   "gravatar d=blank rewritten",
			avatar: "https://gravatar.com/avatar/abc?d=blank",
			want:   "https://gravatar.com/avatar/abc?d=identicon",
		},
		{
			name:   "gravatar default=blank rewritten",
			avatar: "https://gravatar.com/avatar/abc?default=blank",
			want:   "https://gravatar.com/avatar/abc?default=identicon",
		},
		{
			name:   "blank is matched case-insensitively",
			avatar: "https://gravatar.com/avatar/abc?d=Blank",
			want:   "https://gravatar.com/avatar/abc?d=identicon",
		},
		{
			name:   "gravatar subdomain rewritten",
			avatar: "https://www.gravatar.com/avatar/abc?d=blank",
			want:   "https://www.gravatar.com/avatar/abc?d=identicon",
		},
		{
			name:   "gravatar with other default untouched",
			avatar: "https://gravatar.com/avatar/abc?d=mp",
			want:   "https://gravatar.com/avatar/abc?d=mp",
		},
		{
			name:   "gravatar without default untouched",
			avatar: "https://gravatar.com/avatar/abc",
			want:   "https://gravatar.com/avatar/abc",
		},
		{
			name:   "non-gravatar host untouched",
			avatar: "https://cdn.example.com/avatar?d=blank",
			want:   "https://cdn.example.com/avatar?d=blank",
		},
		{
			name:   "empty avatar untouched",
			avatar: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAvatar(tt.avatar))
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Gold Tier", "gold-tier"},
		{"gold-tier", "gold-tier"},
		{"  Founders   Club!  ", "founders-club"},
		{"UPPER", "upper"},
		{"a&b--c", "a-b-c"},
		{"2024 Supporters", "2024-supporters"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}
