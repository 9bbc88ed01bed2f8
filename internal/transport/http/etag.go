package http

import (
	"net/http"
	"strings"
)

// setETag sets the entity tag for fingerprint and reports whether the
// request's If-None-Match already carries it. In that case a 304 has been
// written and the caller must stop.
func setETag(w http.ResponseWriter, r *http.Request, fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	tag := `"` + fingerprint + `"`
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")

	inm := r.Header.Get("If-None-Match")
	if inm == "" {
		return false
	}
	for _, candidate := range strings.Split(inm, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == tag || candidate == "*" {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}
