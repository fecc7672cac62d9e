package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/clientlane/crm-server-go/internal/config"
	redisclient "github.com/clientlane/crm-server-go/internal/redis"
	"github.com/clientlane/crm-server-go/internal/util"
)

// attemptScript is a Lua script for sliding window counting of portal
// password attempts.
var attemptScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local resetAt = now + window
return {1, resetAt}
`)

// AttemptLimiter throttles portal password attempts per client IP and slug.
// Failures to reach Redis deny the attempt; a password oracle must not open
// up just because the limiter store is down.
type AttemptLimiter struct {
	client *redis.Client
}

func NewAttemptLimiter(client *redisclient.Client) *AttemptLimiter {
	return &AttemptLimiter{client: client.Client}
}

func (l *AttemptLimiter) Allow(ctx context.Context, ip, slug string) (allowed bool, resetAt time.Time) {
	now := time.Now().Unix()
	key := redisclient.PortalAttemptKey(ip, slug)
	window := config.PortalAttemptWindow

	result, err := attemptScript.Run(
		ctx,
		l.client,
		[]string{key},
		now,
		int64(window.Seconds()),
		config.PortalAttemptLimit,
	).Int64Slice()

	if err != nil {
		log.Warn().Err(err).Str("slug", util.MaskSlug(slug)).Msg("portal attempt limiter check failed, denying attempt")
		return false, time.Now().Add(window)
	}

	if len(result) != 2 {
		log.Warn().Str("slug", util.MaskSlug(slug)).Msg("unexpected attempt limiter result, denying attempt")
		return false, time.Now().Add(window)
	}

	return result[0] == 1, time.Unix(result[1], 0)
}
