package httputil

import "net/http"

// SingleQueryParam returns the value of a query parameter that must appear
// exactly once. Missing or repeated parameters report false; the SSO protocol
// treats both the same way.
func SingleQueryParam(r *http.Request, key string) (string, bool) {
	values, ok := r.URL.Query()[key]
	if !ok || len(values) != 1 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

// HasQueryParam reports whether a query parameter is present at all,
// regardless of its value. Used for presence-flag parameters.
func HasQueryParam(r *http.Request, key string) bool {
	return r.URL.Query().Has(key)
}
