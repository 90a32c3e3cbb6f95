// Package events delivers WinnerSelected notifications to observers.
package events

import (
	"context"
	"sync"

	"raffle/internal/raffle/models"
	dErrors "raffle/pkg/domain-errors"
)

// Channel publishes notifications onto a buffered Go channel.
type Channel struct {
	mu     sync.RWMutex
	ch     chan models.WinnerSelected
	closed bool
}

func NewChannel(buffer int) *Channel {
	return &Channel{ch: make(chan models.WinnerSelected, buffer)}
}

// Events returns the receive side. It is closed by Close.
func (c *Channel) Events() <-chan models.WinnerSelected {
	return c.ch
}

// PublishWinnerSelected blocks until the event is buffered or ctx is done.
func (c *Channel) PublishWinnerSelected(ctx context.Context, event models.WinnerSelected) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return dErrors.New(dErrors.CodeInternal, "event channel closed")
	}
	select {
	case c.ch <- event:
		return nil
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "publish winner selected")
	}
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}
