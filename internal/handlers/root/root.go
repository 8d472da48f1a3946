// Package root serves the service's only route.
package root

import "net/http"

// Handler returns an http.HandlerFunc that answers with 204 No Content.
// The request is not inspected.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
