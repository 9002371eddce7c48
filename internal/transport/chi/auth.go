package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
)

// Probes stay open so orchestrators and scrapers need no credentials.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type apiKey struct {
	digest [sha256.Size]byte
	id     string // short digest prefix, safe to log
}

// BearerAuthMiddleware rejects requests without a configured API key in the
// Authorization header. Empty keys are ignored; with none left auth is off.
// The matched key's id is added to the request's log line.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([]apiKey, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k == "" {
			continue
		}
		sum := sha256.Sum256([]byte(k))
		keys = append(keys, apiKey{digest: sum, id: hex.EncodeToString(sum[:4])})
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
				return
			}
			id, ok := matchKey(keys, token)
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}
			logpkg.AddFields(r.Context(), zap.String("api_key_id", id))
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// matchKey compares digests so every comparison has the same length, and
// checks all keys so timing does not reveal which one matched.
func matchKey(keys []apiKey, token string) (string, bool) {
	sum := sha256.Sum256([]byte(token))
	id := ""
	for i := range keys {
		if subtle.ConstantTimeCompare(keys[i].digest[:], sum[:]) == 1 {
			id = keys[i].id
		}
	}
	return id, id != ""
}
