package sso

import (
	"net/url"
	"strings"

	"github.com/forumbridge/forumbridge/pkg/ghost"
	"github.com/forumbridge/forumbridge/pkg/payload"
)

const (
	gravatarHost = "gravatar.com"

	// https://en.gravatar.com/site/implement/images/#default-image
	blankImage     = "blank"
	identiconImage = "identicon"
)

// MapMember converts an authenticated member into the outbound SSO payload,
// round-tripping the forum's nonce verbatim.
func MapMember(member *ghost.Member, nonce string) *payload.Outbound {
	out := &payload.Outbound{
		Nonce:      nonce,
		Email:      member.Email,
		ExternalID: member.UUID,
		AvatarURL:  normalizeAvatar(member.AvatarImage),
	}

	if member.Name != "" {
		out.Name = member.Name
	}

	// If a group doesn't exist yet, Discourse won't create it; the member can
	// re-auth once it has been created manually.
	var groups []string
	for _, sub := range member.Subscriptions {
		if sub.Tier != nil && sub.Tier.Active {
			groups = append(groups, Slug(sub.Tier.Slug))
		}
	}
	if len(groups) > 0 {
		out.AddGroups = strings.Join(groups, ",")
	}

	return out
}

// normalizeAvatar rewrites a gravatar URL whose default-image parameter is
// the "blank" sentinel to use "identicon" instead, so members without an
// uploaded avatar don't surface a literally blank image on the forum.
// Non-gravatar URLs pass through untouched.
func normalizeAvatar(avatar string) string {
	parsed, err := url.Parse(avatar)
	if err != nil || !strings.HasSuffix(parsed.Hostname(), gravatarHost) {
		return avatar
	}

	q := parsed.Query()
	changed := false
	for _, param := range []string{"d", "default"} {
		if strings.EqualFold(q.Get(param), blankImage) {
			q.Set(param, identiconImage)
			changed = true
		}
	}
	if !changed {
		return avatar
	}

	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// Slug lower-cases a tier slug and maps every run of non-alphanumeric
// characters to a single dash, the transform Discourse applies to group
// names. Order and duplicates are preserved by the caller.
func Slug(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
