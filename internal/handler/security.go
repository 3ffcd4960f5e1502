package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/xenking/storefront-pricing/internal/domain/auth"
)

// APIKeyAuth returns a middleware authenticating requests via the api_key
// header. Keys are stored as HMAC-SHA256 hashes under a server-side pepper;
// the final comparison is constant-time to avoid timing side-channels even
// when the repository returns a stale row.
func APIKeyAuth(apikeys auth.Repository, pepper []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("api_key")
			if key == "" {
				writeError(w, http.StatusUnauthorized, "missing api key")
				return
			}

			mac := hmac.New(sha256.New, pepper)
			mac.Write([]byte(key))
			sum := mac.Sum(nil)

			info, err := apikeys.FindByHash(r.Context(), hex.EncodeToString(sum))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			stored, err := hex.DecodeString(info.KeyHash)
			if err != nil || subtle.ConstantTimeCompare(sum, stored) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
