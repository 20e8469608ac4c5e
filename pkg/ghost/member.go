// Package ghost is the client for the Ghost member system: member lookup via
// the public members API (cookie session) and the Admin API (by email), and
// verification of member identity JWTs against the published JWKS.
package ghost

// Member is a Ghost member with its subscriptions, as returned by both the
// member-self endpoint and the Admin API browse endpoint. Unknown fields in
// the upstream JSON are ignored.
type Member struct {
	UUID          string         `json:"uuid"`
	Email         string         `json:"email"`
	Name          string         `json:"name,omitempty"`
	AvatarImage   string         `json:"avatar_image,omitempty"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// Subscription is a member's subscription to a tier. Tier is nil for
// subscriptions without an attached product.
type Subscription struct {
	Tier *Tier `json:"tier"`
}

// Tier is a Ghost subscription product.
type Tier struct {
	Slug   string `json:"slug"`
	Active bool   `json:"active"`
}

// membersEnvelope is the Admin API browse response wrapper.
type membersEnvelope struct {
	Members []Member `json:"members"`
}
