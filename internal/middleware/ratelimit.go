package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/pkg/clientip"
	"go.uber.org/zap"
)

const (
	RateLimitKeyPrefix = "ratelimit:"
	BlockedIPKeyPrefix = "blocked_ip:"
)

// WindowLimit is a fixed-window counter shared across instances through Redis.
// Exceeding Max within Window blocks the IP for Block.
type WindowLimit struct {
	Name   string
	Window time.Duration
	Max    int64
	Block  time.Duration
}

// AdEventLimit guards impression and click endpoints against inflation.
var AdEventLimit = WindowLimit{Name: "ads", Window: 2 * time.Minute, Max: 60, Block: time.Hour}

// ReportLimit caps report submissions.
var ReportLimit = WindowLimit{Name: "report", Window: 10 * time.Minute, Max: 20, Block: 24 * time.Hour}

// RedisRateLimit enforces l per client IP. It fails open when Redis is
// unavailable.
func RedisRateLimit(l WindowLimit) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := database.RedisClient
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()

			ip := clientip.LimitKey(r)
			blockedKey := BlockedIPKeyPrefix + l.Name + ":" + ip
			if n, err := client.Exists(ctx, blockedKey).Result(); err == nil && n > 0 {
				writeJSONError(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
				return
			}

			key := RateLimitKeyPrefix + l.Name + ":" + ip
			pipe := client.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, l.Window)
			if _, err := pipe.Exec(ctx); err != nil {
				zap.L().Warn("rate limit check failed", zap.String("limit", l.Name), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			count := incr.Val()
			if count > l.Max {
				client.Set(ctx, blockedKey, "1", l.Block)
				w.Header().Set("Retry-After", strconv.Itoa(int(l.Block.Seconds())))
				writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.Max, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(l.Max-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
