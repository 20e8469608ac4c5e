package ghost

import "errors"

var (
	// ErrNotLoggedIn means the forwarded cookie does not belong to a member
	// session (the members API answered 204).
	ErrNotLoggedIn = errors.New("ghost: member not logged in")

	// ErrMemberNotFound means the Admin API lookup matched no single member.
	ErrMemberNotFound = errors.New("ghost: member not found")

	// ErrUpstream means a Ghost API call failed or answered with an
	// unexpected status.
	ErrUpstream = errors.New("ghost: upstream request failed")
)
