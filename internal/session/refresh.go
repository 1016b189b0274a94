package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sink stores a refreshed token, typically a *CookieStore.
type Sink interface {
	SetAuthCookie(token string, ttl time.Duration)
}

// SetupTokenRefresh refreshes the token right away and then every interval,
// storing each new token in sink with ttl as its lifetime. A failed refresh is
// logged and the old cookie is left in place. The returned cancel stops the
// schedule, aborts an in-flight refresh and waits for it; it is safe to call
// more than once.
func SetupTokenRefresh(ctx context.Context, id TokenGetter, sink Sink, interval, ttl time.Duration, log *zap.Logger) (func(), error) {
	if interval <= 0 || interval >= ttl {
		return nil, fmt.Errorf("session: refresh interval %s must be positive and shorter than token ttl %s", interval, ttl)
	}

	ctx, stopRefresh := context.WithCancel(ctx)
	refresh := func() {
		token, err := id.Token(ctx, true)
		if err != nil {
			log.Warn("token refresh failed", zap.Error(err))
			return
		}
		sink.SetAuthCookie(token, ttl)
		log.Debug("token refreshed", zap.Duration("ttl", ttl))
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc("@every "+interval.String(), refresh); err != nil {
		stopRefresh()
		return nil, fmt.Errorf("session: schedule refresh: %w", err)
	}

	refresh()
	c.Start()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopRefresh()
			<-c.Stop().Done()
		})
	}, nil
}
