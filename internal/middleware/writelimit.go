package middleware

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/agora-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Content creation limits. Signed-in profiles: 30/min, burst 10.
// Anonymous callers (feedback, ad events): 10/min, burst 5.
const (
	writeAuthBurst = 10
	writeAnonBurst = 5
)

var (
	writeAuthLimiters = newLimiterSet(rate.Limit(0.5), writeAuthBurst)
	writeAnonLimiters = newLimiterSet(rate.Limit(0.17), writeAnonBurst)
)

// WriteRateLimit throttles non-GET requests, keyed by profile when the caller
// is signed in and by IP otherwise. Mount it after Authenticate.
func WriteRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		set, limit, key := writeAnonLimiters, writeAnonBurst, "ip:"+clientip.LimitKey(r)
		if userID, ok := UserIDFrom(r.Context()); ok {
			set, limit, key = writeAuthLimiters, writeAuthBurst, "user:"+userID.String()
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		if !set.allow(key) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeJSONError(w, http.StatusTooManyRequests, "You are posting too quickly. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
