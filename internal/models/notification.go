package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	TypeMidnightReset NotificationType = "midnight_reset"
	TypeDeviceEvent   NotificationType = "device_event"
	TypeSystemMessage NotificationType = "system_message"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string            `bson:"owner_id" json:"owner_id"`
	DeviceID  string            `bson:"device_id" json:"device_id"`
	Title     string            `bson:"title" json:"title"`
	Message   string            `bson:"message" json:"message"`
	Type      NotificationType  `bson:"type" json:"type"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}
