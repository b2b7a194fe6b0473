package entity

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single conversation turn. Content is either plain text or a
// list of typed parts (e.g. image_url attachments), matching the wire format
// the chat clients send.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// Content marshals as a bare JSON string when Parts is empty, otherwise as an
// array of typed parts.
type Content struct {
	Text  string
	Parts []ContentPart
}

type ContentPart struct {
	Type     string    `json:"type"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Content: Content{Text: text}}
}

// IsText reports whether the message carries plain text content only.
func (m Message) IsText() bool {
	return len(m.Content.Parts) == 0
}

func (c Content) MarshalJSON() ([]byte, error) {
	if len(c.Parts) > 0 {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.Parts = nil
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	c.Text = ""
	c.Parts = parts
	return nil
}

// Conversation is one saved chat, owned by a single user partition.
type Conversation struct {
	Id        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// Identity is the result of validating a session credential.
type Identity struct {
	Username     string
	Origin       string
	PartitionKey string
}
