package arbordb

import (
	"errors"
	"fmt"
	"strings"
)

// defaultDomain is appended to bare store identifiers.
const defaultDomain = "arbordb.io"

// documentSuffix is the REST convention for addressing a node as a JSON
// document.
const documentSuffix = ".json"

// NormalizeDatabaseURL resolves the configured store reference to a base URL.
// A bare identifier becomes https://<id>.arbordb.io; a full URL keeps its
// host with trailing slashes stripped, forced to https unless it explicitly
// uses plain http.
func NormalizeDatabaseURL(raw string) (string, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return "", errors.New("arbordb: database URL is required")
	}

	scheme := "https"
	hadScheme := false
	if idx := strings.Index(ref, "://"); idx >= 0 {
		// Plain http is kept for local sandboxes; anything else is forced to
		// https.
		if ref[:idx] == "http" {
			scheme = "http"
		}
		ref = ref[idx+3:]
		hadScheme = true
	}
	ref = strings.TrimRight(ref, "/")
	if ref == "" {
		return "", fmt.Errorf("arbordb: invalid database URL %q", raw)
	}
	if strings.ContainsAny(ref, " \t") {
		return "", fmt.Errorf("arbordb: invalid database URL %q", raw)
	}

	// Only bare identifiers get the fixed domain; a URL that carried a scheme
	// keeps its host as given, dot-less ones like localhost included.
	if !hadScheme && !strings.Contains(ref, ".") {
		ref = ref + "." + defaultDomain
	}
	return scheme + "://" + ref, nil
}

// resourcePath maps a logical node path to the REST resource path, stripping
// leading and trailing slashes and appending the document suffix. The store
// root is addressed as "/.json".
func resourcePath(path string) string {
	return "/" + strings.Trim(path, "/") + documentSuffix
}
