// Package sweep periodically persists EXPIRED for active licenses past their deadline.
package sweep

import (
	"context"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/keybox-dev/keybox-go/internal/refresh"
)

// Expirer is the part of the license service the sweep drives.
type Expirer interface {
	ExpireLicenses(ctx context.Context) (int64, error)
}

// Sweeper runs Expirer on a fixed interval.
type Sweeper struct {
	manager *refresh.Manager
}

// New creates a stopped sweeper.
func New(expirer Expirer, interval time.Duration, logger log.Logger) *Sweeper {
	task := refresh.TaskFunc(func(ctx context.Context) error {
		_, err := expirer.ExpireLicenses(ctx)
		return err
	})

	return &Sweeper{manager: refresh.New("expiry sweep", task, interval, logger)}
}

// Start runs one sweep right away, then one every interval until ctx is done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.manager.RunNow(ctx)
	s.manager.Start(ctx)
}

// Stop halts the sweep and waits for the ticking goroutine to exit.
func (s *Sweeper) Stop() {
	done := s.manager.Done()
	s.manager.Shutdown()

	if done != nil {
		<-done
	}
}
