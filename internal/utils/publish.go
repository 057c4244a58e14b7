package utils

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// DeviceEventsChannel — канал Redis между рутиной и диспетчером уведомлений.
const DeviceEventsChannel = "device_events"

type DeviceEvent struct {
	DeviceID  string            `json:"device_id"`
	OwnerID   string            `json:"owner_id"`
	EventType string            `json:"event_type"`
	Message   string            `json:"message"`
	ExtraData map[string]string `json:"extra_data,omitempty"`
}

// PublishDeviceEvent публикует событие устройства. Ошибки публикации не
// фатальны — уведомление вторично по отношению к самой операции.
func PublishDeviceEvent(ctx context.Context, rdb *redis.Client, event DeviceEvent) {
	if rdb == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[EVENTS] Failed to marshal device event: %v", err)
		return
	}
	if err := rdb.Publish(ctx, DeviceEventsChannel, data).Err(); err != nil {
		log.Printf("[EVENTS] Failed to publish device event: %v", err)
	}
}
