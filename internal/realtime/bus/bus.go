package bus

import (
	"context"

	"github.com/yungbote/storygrid-backend/internal/realtime"
)

// Bus fans SSE messages out across API instances. Every instance runs a
// forwarder that replays received messages into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
