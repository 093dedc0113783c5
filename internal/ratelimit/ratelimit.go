package ratelimit

import (
	"fmt"

	"codeberg.org/kbase/server/internal/auth"
	"codeberg.org/kbase/server/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const storePrefix = "kbase:ratelimit"

// builds a limiter from a formatted rate such as "20-M". requests are
// counted in redis when a client is given, otherwise in process memory.
func New(formatted string, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}

	options := limiter.StoreOptions{Prefix: storePrefix}

	var store limiter.Store

	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, options)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(options)
	}

	return limiter.New(store, rate), nil
}

// limits authenticated callers per user id, anonymous ones per client ip.
// must run after auth middleware.
func Middleware(l *limiter.Limiter) gin.HandlerFunc {
	return mgin.NewMiddleware(l,
		mgin.WithKeyGetter(keyFor),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "rate limit exceeded, try again later")
		}),
	)
}

func keyFor(c *gin.Context) string {
	if userID, ok := auth.GetUserID(c); ok {
		return "user:" + userID
	}

	return "ip:" + c.ClientIP()
}
