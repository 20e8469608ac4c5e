// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON responses, protocol error
// bodies, query parameter parsing, and common HTTP middleware patterns.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteMessage(w, http.StatusOK, "Signed in")
//
// Error responses:
//
//	httputil.WriteBadRequest(w, "Unable to verify signature")
//	httputil.WriteUnauthorized(w, "Client Error: Missing JWT to prove membership")
//	httputil.WriteNotFound(w, "Unable to authenticate member")
//	httputil.WriteInternalError(w, "Unable to get your member information")
//
// All protocol bodies share the `{"message": ...}` shape.
//
// # Request Parsing
//
// Query parameters:
//
//	sso, ok := httputil.SingleQueryParam(r, "sso")
//	fromClient := httputil.HasQueryParam(r, "from_client")
//
// SingleQueryParam rejects repeated parameters, which the SSO transport
// treats the same as missing ones.
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//	)
//
// # Related Packages
//
//   - pkg/sso: The flow handlers built on these helpers
package httputil
