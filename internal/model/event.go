package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Event is an audit row written in the same transaction as the change it
// describes. The payload is the message that was later published to NATS.
type Event struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	ProjectID string          `json:"project_id"`
	EntityID  string          `json:"entity_id"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Action is the topic without its "gestor." namespace, e.g.
// "dependency.created".
func (e *Event) Action() string {
	return strings.TrimPrefix(e.Topic, "gestor.")
}
