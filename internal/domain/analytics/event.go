package analytics

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventView          EventType = "view"
	EventWhatsAppClick EventType = "whatsapp_click"
	EventPhoneClick    EventType = "phone_click"
	EventButtonClick   EventType = "button_click"
)

var eventTypes = []EventType{EventView, EventWhatsAppClick, EventPhoneClick, EventButtonClick}

func ParseEventType(s string) (EventType, error) {
	for _, t := range eventTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// Event is one engagement signal recorded from a public page.
type Event struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	PageID    string         `gorm:"size:36;not null;index" json:"page_id" bson:"page_id"`
	OwnerID   string         `gorm:"size:36;not null;index" json:"owner_id" bson:"owner_id"`
	Type      string         `gorm:"column:event_type;not null;index" json:"event_type" bson:"event_type"`
	Metadata  datatypes.JSON `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at" bson:"created_at"`
}

func (e *Event) RecordID() string      { return e.ID }
func (e *Event) SetRecordID(id string) { e.ID = id }
