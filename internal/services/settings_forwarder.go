package services

import (
	"context"

	"github.com/yungbote/storygrid-backend/internal/realtime"
	"github.com/yungbote/storygrid-backend/internal/settings"
)

// ForwardSettingsChanges relays every committed settings change to the
// owner's realtime channel. The returned func stops forwarding.
func ForwardSettingsChanges(svc settings.Service, emit SSEEmitter) (stop func()) {
	return svc.Subscribe(settings.Wildcard, func(ch settings.Change) {
		emit.Emit(context.Background(), realtime.SSEMessage{
			Channel: realtime.UserChannel(ch.Owner),
			Event:   realtime.SSEEventSettingsChanged,
			Data: map[string]any{
				"key":   ch.Key,
				"value": ch.Value,
			},
		})
	})
}
