package forms

import (
	"strings"

	"lagospaces/server/internal/models"
)

// MessageForm is a chat message composed in the conversation view
type MessageForm struct {
	Content     string              `json:"content" validate:"required,max=2000"`
	Attachments []models.Attachment `json:"attachments"`
}

var messageMessages = messages{
	"content.required": "Message cannot be empty",
	"content.max":      "Message must be at most 2000 characters",
}

func (f *MessageForm) Validate() error {
	f.Content = strings.TrimSpace(f.Content)
	return merge(check(f, messageMessages))
}
