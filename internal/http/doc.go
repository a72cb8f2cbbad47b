// Package http provides the HTTP client shared by the catalog providers, the
// preview backends and the artwork renderer.
//
// Every request carries the configured User-Agent and honors the caller's
// context. Non-2xx responses are reported as *StatusError so callers can react
// to specific codes:
//
//	err := client.GetJSON(ctx, searchURL, header, &out)
//	if http.IsStatus(err, 401) {
//	    // token expired
//	}
//
// Catalog fetches use GetJSONWithRetry, which backs off exponentially the way
// the settings describe (cooldown * exponent^attempt seconds).
package http
