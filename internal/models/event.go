package models

import (
	"encoding/json"
	"time"
)

// Event represents an AWS EventBridge event. Detail carries the inbound message object.
type Event struct {
	ID         string          `json:"id"`
	Time       time.Time       `json:"time"`
	Region     string          `json:"region"`
	Source     string          `json:"source"`
	Account    string          `json:"account"`
	Version    string          `json:"version"`
	Detail     json.RawMessage `json:"detail"`
	DetailType string          `json:"detail-type"`
	Resources  []string        `json:"resources"`
}
