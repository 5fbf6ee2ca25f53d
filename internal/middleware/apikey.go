// AngelaMos | 2026
// apikey.go

package middleware

import (
	"net/http"
	"strings"
)

const APIKeyHeader = "Api-Key"

// GetAPIKey returns the catalog key presented by the caller, or "" for
// anonymous access.
func GetAPIKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}
