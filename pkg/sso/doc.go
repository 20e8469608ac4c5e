// Package sso implements the bridge's SSO protocol engine for Discourse
// connect-style single sign-on against a Ghost member system.
//
// # Overview
//
// Discourse redirects a visitor here with a signed, base64-encoded payload
// (`sso` and `sig` query parameters). The bridge re-authenticates the visitor
// against Ghost, enriches the identity with subscription-tier membership, and
// answers with a freshly signed payload Discourse trusts to log the visitor
// in and place them into the matching groups.
//
// # Flows
//
// Exactly one of two mutually exclusive flows is mounted per deployment:
//
// Session flow: the visitor's Ghost session cookie is forwarded to the
// public members API. The response is an HTTP redirect back to the forum's
// return URL.
//
// JWT flow: designed to be called cross-origin from a browser client served
// on the Ghost origin. The first, proof-less request is answered with a
// redirect to that client page carrying the sso/sig pair; the client then
// re-submits with `from_client` set and a `GhostMember <jwt>` authorization
// header proving membership. The response is JSON carrying the signed
// redirect URL; the browser performs the navigation itself. The two round
// trips are correlated only by the repeated sso/sig values, bounded by the
// outer signature's validity.
//
// # Related Packages
//
//   - pkg/payload: payload codec and HMAC signature scheme
//   - pkg/ghost: member lookup and member JWT verification
package sso
