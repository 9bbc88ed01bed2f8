// Package events contains the event contracts pushed to dashboard pages over WebSocket.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDatasetReloaded tells open pages that the source table changed.
	MessageTypeDatasetReloaded MessageType = "dataset:reloaded"
	// MessageTypeDatasetUnavailable tells open pages that the source file disappeared.
	MessageTypeDatasetUnavailable MessageType = "dataset:unavailable"

	// MessageTypeConnect greets a newly registered page.
	MessageTypeConnect MessageType = "connect"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetChange is the payload of dataset messages
type DatasetChange struct {
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Records     int    `json:"records"`
	Reason      string `json:"reason"` // api|watcher
}

// NewDatasetMessage builds a dataset message of the given type
func NewDatasetMessage(msgType MessageType, change DatasetChange) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
		},
		Data: change,
	}
}
