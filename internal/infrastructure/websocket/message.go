package websocket

import (
	"encoding/json"
	"time"
)

const (
	MessageTypeGrievances  = "grievances"
	MessageTypeSocialPosts = "social_posts"
	MessageTypeError       = "error"
)

const (
	TopicMyGrievances    = "grievances:mine"
	TopicAdminGrievances = "grievances:admin"
	TopicSocialFeed      = "social"
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func NewMessage(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
