// Package notify delivers committed field changes to the sync collaborator
// without ever blocking the schema engine.
package notify

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/gridfields/internal/logging"
	"github.com/mesh-intelligence/gridfields/internal/metrics"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// DefaultBuffer is the channel capacity used when none is configured.
const DefaultBuffer = 256

var (
	_ types.Notifier = (*Channel)(nil)
	_ types.Notifier = Discard{}
)

// Channel hands changes to a buffered channel. When the buffer is full the
// change is dropped, logged, and counted.
type Channel struct {
	ch      chan types.FieldChange
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// NewChannel returns a Channel with the given buffer size (DefaultBuffer if
// size <= 0). logger and rec may be nil.
func NewChannel(size int, logger *zap.Logger, rec *metrics.Recorder) *Channel {
	if size <= 0 {
		size = DefaultBuffer
	}
	return &Channel{
		ch:      make(chan types.FieldChange, size),
		logger:  logging.OrNop(logger),
		metrics: rec,
	}
}

// Notify enqueues change without blocking.
func (c *Channel) Notify(change types.FieldChange) {
	select {
	case c.ch <- change:
	default:
		c.metrics.NotificationDropped()
		c.logger.Warn("dropping field change notification",
			zap.String("grid_id", change.GridID),
			zap.String("field_id", change.FieldID),
			zap.String("kind", string(change.Kind)),
		)
	}
}

// Changes returns the receive side of the channel.
func (c *Channel) Changes() <-chan types.FieldChange {
	return c.ch
}

// Drain returns every change currently buffered without waiting for more.
func (c *Channel) Drain() []types.FieldChange {
	var out []types.FieldChange
	for {
		select {
		case change := <-c.ch:
			out = append(out, change)
		default:
			return out
		}
	}
}

// Discard ignores every change.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(types.FieldChange) {}
