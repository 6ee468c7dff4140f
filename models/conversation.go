package models

import "time"

// ConversationType discriminates chat threads. Only direct exists today;
// the column is groundwork for group chats.
type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

// Conversation is a chat thread. The participant list is the set of
// ConversationMember rows; for direct threads it is always exactly two.
type Conversation struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Type          ConversationType `gorm:"size:16;not null;default:'direct'" json:"type"`
	LastMessageAt *time.Time       `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ConversationMember holds per-participant state. UnreadCount is a cached
// counter owned exclusively by SendMessage (increment) and MarkRead (reset);
// no other code path may touch it.
type ConversationMember struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	ConversationID uint       `gorm:"not null;uniqueIndex:idx_conv_member" json:"conversation_id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_conv_member;index" json:"user_id"`
	UnreadCount    int        `gorm:"not null;default:0" json:"unread_count"`
	LastReadAt     *time.Time `json:"last_read_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Message in a conversation. Read receipts live in message_reads; the sender
// gets one in the same transaction as the insert.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"index;not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Sender         User      `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// MessageRead records that a user has seen a message.
type MessageRead struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_message_read" json:"message_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_message_read;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
