package utils

import (
	"context"
	"sync"
	"time"
)

var (
	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.RWMutex
)

// BlacklistToken revokes token until expiry.
func BlacklistToken(token string, expiry time.Time) {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	blacklistedTokens[token] = expiry
}

func IsTokenBlacklisted(token string) bool {
	blacklistMutex.RLock()
	expiry, exists := blacklistedTokens[token]
	blacklistMutex.RUnlock()

	return exists && time.Now().Before(expiry)
}

// PurgeExpiredTokens drops blacklist entries whose token would have expired anyway.
func PurgeExpiredTokens(now time.Time) int {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()

	removed := 0
	for token, expiry := range blacklistedTokens {
		if !now.Before(expiry) {
			delete(blacklistedTokens, token)
			removed++
		}
	}
	return removed
}

// StartBlacklistCleanup purges expired tokens every interval until ctx is done.
func StartBlacklistCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				if n := PurgeExpiredTokens(now); n > 0 {
					InfoLogger.Debugf("Purged %d expired tokens from blacklist", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
