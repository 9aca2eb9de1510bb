package database

import (
	"fmt"
	"sort"
	"time"

	"lagospaces/server/internal/models"

	"gorm.io/gorm"
)

// GetChats lists a user's conversations with the participant card, last message and unread count,
// most recent activity first
func (d *Database) GetChats(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := d.db.Where("user_id = ?", userID).Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to load chats: %w", err)
	}

	for i := range chats {
		var participant models.User
		if err := d.db.First(&participant, "id = ?", chats[i].ParticipantID).Error; err == nil {
			chats[i].Participant = &models.ChatUser{
				ID:         participant.ID,
				Name:       participant.Name,
				Avatar:     participant.Avatar,
				IsVerified: participant.IsVerified,
				IsOnline:   participant.IsOnline,
				LastSeen:   participant.LastSeen,
			}
		}

		var last models.Message
		err := d.db.Where("chat_id = ?", chats[i].ID).Order("timestamp DESC").Limit(1).Find(&last).Error
		if err != nil {
			return nil, err
		}
		if last.ID != "" {
			chats[i].LastMessage = &last
		}

		var unread int64
		if err := d.db.Model(&models.Message{}).
			Where("chat_id = ? AND is_own_message = ? AND is_read = ?", chats[i].ID, false, false).
			Count(&unread).Error; err != nil {
			return nil, err
		}
		chats[i].UnreadCount = int(unread)
	}

	sortChatsByActivity(chats)
	return chats, nil
}

func sortChatsByActivity(chats []models.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		return lastActivity(chats[i]).After(lastActivity(chats[j]))
	})
}

func lastActivity(c models.Chat) time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.Timestamp
	}
	return c.CreatedAt
}

// GetChat loads a conversation owned by userID
func (d *Database) GetChat(userID, chatID string) (*models.Chat, error) {
	var chat models.Chat
	if err := d.db.First(&chat, "id = ? AND user_id = ?", chatID, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

// GetMessages returns the conversation oldest first and marks incoming messages as read
func (d *Database) GetMessages(userID, chatID string) ([]models.Message, error) {
	if _, err := d.GetChat(userID, chatID); err != nil {
		return nil, err
	}

	var messages []models.Message
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Order("timestamp ASC").Find(&messages).Error; err != nil {
			return err
		}
		return tx.Model(&models.Message{}).
			Where("chat_id = ? AND is_own_message = ? AND is_read = ?", chatID, false, false).
			Update("is_read", true).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

// AppendMessage stores an outgoing message in a conversation owned by userID
func (d *Database) AppendMessage(userID string, message *models.Message) error {
	if _, err := d.GetChat(userID, message.ChatID); err != nil {
		return err
	}
	message.IsOwnMessage = true
	if err := d.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}
