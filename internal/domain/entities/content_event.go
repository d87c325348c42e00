package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ContentEventType is the kind of change a content event reports.
type ContentEventType string

const (
	ContentEventCreated   ContentEventType = "created"
	ContentEventUpdated   ContentEventType = "updated"
	ContentEventDeleted   ContentEventType = "deleted"
	ContentEventReordered ContentEventType = "reordered"
)

// ContentKind names the record family that changed.
type ContentKind string

const (
	ContentKindBlock   ContentKind = "block"
	ContentKindDoctor  ContentKind = "doctor"
	ContentKindHoliday ContentKind = "holiday"
)

// ContentEvent tells subscribers that a page's content changed. Subscribers
// re-fetch the page; the event carries no delta beyond the changed field names.
type ContentEvent struct {
	ID            string                 `json:"id"`
	Page          string                 `json:"page"`
	Kind          ContentKind            `json:"kind"`
	EntityID      string                 `json:"entity_id"`
	EventType     ContentEventType       `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewContentEvent creates a new content event
func NewContentEvent(page string, kind ContentKind, entityID string, eventType ContentEventType, changedFields map[string]interface{}) *ContentEvent {
	return &ContentEvent{
		ID:            newEventID(),
		Page:          page,
		Kind:          kind,
		EntityID:      entityID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}

func newEventID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().Format("20060102150405.000000")
	}
	return time.Now().Format("20060102150405") + "-" + hex.EncodeToString(buf)
}
