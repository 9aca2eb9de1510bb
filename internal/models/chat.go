package models

import "time"

type Chat struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"-" gorm:"index"`
	ParticipantID string    `json:"participant_id"`
	Participant   *ChatUser `json:"user,omitempty" gorm:"-"`
	UnreadCount   int       `json:"unread_count" gorm:"-"`
	LastMessage   *Message  `json:"last_message,omitempty" gorm:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChatUser is the other side of a conversation
type ChatUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	IsVerified bool   `json:"is_verified"`
	IsOnline   bool   `json:"is_online"`
	LastSeen   string `json:"last_seen,omitempty"`
}

type Message struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	ChatID       string       `json:"chat_id" gorm:"index"`
	Content      string       `json:"content"`
	Timestamp    time.Time    `json:"timestamp"`
	IsOwnMessage bool         `json:"is_own_message"`
	IsRead       bool         `json:"is_read"`
	Attachments  []Attachment `json:"attachments,omitempty" gorm:"serializer:json"`
}

type Attachment struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url,omitempty"`
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}
