package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

// ConversationService owns direct-message threads, their unread counters and
// read receipts.
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// ConversationView is one thread from the viewer's perspective.
type ConversationView struct {
	models.Conversation
	OtherUser   *AuthorSummary `json:"other_user,omitempty"`
	LastMessage *MessageView   `json:"last_message,omitempty"`
	UnreadCount int            `json:"unread_count"`
}

// MessageView is a message with its sender and read receipts attached.
type MessageView struct {
	models.Message
	Sender *AuthorSummary `json:"sender"`
	ReadBy []uint         `json:"read_by"`
}

// GetOrCreateDirect returns the direct thread between two users, creating it
// on first contact. The lookup is symmetric, so the same thread is found
// regardless of which side initiates.
func (s *ConversationService) GetOrCreateDirect(userID, otherID uint) (*ConversationView, error) {
	if userID == otherID {
		return nil, apperrors.ErrSelfConversation
	}
	var other models.User
	if err := s.db.First(&other, otherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load user", err)
	}

	var convID uint
	err := s.db.Table("conversation_members AS a").
		Select("a.conversation_id").
		Joins("JOIN conversation_members AS b ON a.conversation_id = b.conversation_id").
		Joins("JOIN conversations AS c ON c.id = a.conversation_id").
		Where("a.user_id = ? AND b.user_id = ? AND c.type = ?", userID, otherID, models.ConversationDirect).
		Limit(1).
		Scan(&convID).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "find conversation", err)
	}

	if convID == 0 {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			conv := models.Conversation{Type: models.ConversationDirect}
			if err := tx.Create(&conv).Error; err != nil {
				return err
			}
			members := []models.ConversationMember{
				{ConversationID: conv.ID, UserID: userID},
				{ConversationID: conv.ID, UserID: otherID},
			}
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
			convID = conv.ID
			return nil
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "create conversation", err)
		}
	}

	return s.view(convID, userID)
}

// SendMessage appends to a thread the sender belongs to. The insert, the
// sender's own read receipt, the thread timestamp and every other member's
// unread counter move in one transaction.
func (s *ConversationService) SendMessage(senderID, conversationID uint, content string) (*MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if err := s.requireMember(conversationID, senderID); err != nil {
		return nil, err
	}

	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        utils.Sanitize(content),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.MessageRead{MessageID: message.ID, UserID: senderID}).Error; err != nil {
			return err
		}
		now := time.Now()
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("last_message_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ? AND user_id <> ?", conversationID, senderID).
			Update("unread_count", gorm.Expr("unread_count + 1")).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "send message", err)
	}

	views, err := s.enrichMessages([]models.Message{message})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// MarkRead resets the viewer's unread counter and backfills read receipts for
// every message in the thread they had not seen yet.
func (s *ConversationService) MarkRead(userID, conversationID uint) error {
	if err := s.requireMember(conversationID, userID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, userID).
			Updates(map[string]interface{}{"unread_count": 0, "last_read_at": now}).Error; err != nil {
			return err
		}

		var unseen []uint
		if err := tx.Model(&models.Message{}).
			Where("conversation_id = ?", conversationID).
			Where("id NOT IN (?)", tx.Model(&models.MessageRead{}).
				Select("message_id").Where("user_id = ?", userID)).
			Pluck("id", &unseen).Error; err != nil {
			return err
		}
		for _, msgID := range unseen {
			receipt := models.MessageRead{MessageID: msgID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipt).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "mark read", err)
	}
	return nil
}

// ListConversations returns the viewer's threads, most recent activity first.
func (s *ConversationService) ListConversations(userID uint) ([]ConversationView, error) {
	var memberships []models.ConversationMember
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list memberships", err)
	}
	if len(memberships) == 0 {
		return []ConversationView{}, nil
	}

	ids := make([]uint, 0, len(memberships))
	unread := make(map[uint]int, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ConversationID)
		unread[m.ConversationID] = m.UnreadCount
	}

	var convs []models.Conversation
	if err := s.db.Find(&convs, ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load conversations", err)
	}

	var others []models.ConversationMember
	if err := s.db.Where("conversation_id IN ? AND user_id <> ?", ids, userID).
		Find(&others).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load peers", err)
	}
	otherByConv := make(map[uint]uint, len(others))
	peerIDs := make([]uint, 0, len(others))
	for _, m := range others {
		otherByConv[m.ConversationID] = m.UserID
		peerIDs = append(peerIDs, m.UserID)
	}
	peers, err := authorSummaries(s.db, utils.UniqueUint(peerIDs))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load peer profiles", err)
	}

	lastMessages, err := s.lastMessages(ids)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		view := ConversationView{
			Conversation: c,
			UnreadCount:  unread[c.ID],
			LastMessage:  lastMessages[c.ID],
		}
		if peerID, ok := otherByConv[c.ID]; ok {
			view.OtherUser = peers[peerID]
		}
		views = append(views, view)
	}

	// Most recently active first; threads without messages sink to the end.
	for i := 0; i < len(views); i++ {
		for j := i + 1; j < len(views); j++ {
			if laterThan(views[j].LastMessageAt, views[i].LastMessageAt) {
				views[i], views[j] = views[j], views[i]
			}
		}
	}
	return views, nil
}

// ListMessages returns a thread's messages oldest first, members only.
func (s *ConversationService) ListMessages(userID, conversationID uint, limit int) ([]MessageView, error) {
	if err := s.requireMember(conversationID, userID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, 100, 500)

	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list messages", err)
	}
	return s.enrichMessages(messages)
}

// UnreadTotal sums unread counters across the viewer's threads.
func (s *ConversationService) UnreadTotal(userID uint) (int64, error) {
	var total int64
	err := s.db.Model(&models.ConversationMember{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(unread_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, "sum unread", err)
	}
	return total, nil
}

func (s *ConversationService) requireMember(conversationID, userID uint) error {
	var n int64
	if err := s.db.Model(&models.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&n).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "check membership", err)
	}
	if n == 0 {
		var exists int64
		if err := s.db.Model(&models.Conversation{}).
			Where("id = ?", conversationID).Count(&exists).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "load conversation", err)
		}
		if exists == 0 {
			return apperrors.ErrConversationNotFound
		}
		return apperrors.Forbidden("not a member of this conversation")
	}
	return nil
}

func (s *ConversationService) view(conversationID, viewerID uint) (*ConversationView, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load conversation", err)
	}

	view := ConversationView{Conversation: conv}

	var member models.ConversationMember
	if err := s.db.Where("conversation_id = ? AND user_id = ?", conversationID, viewerID).
		First(&member).Error; err == nil {
		view.UnreadCount = member.UnreadCount
	}

	var other models.ConversationMember
	if err := s.db.Where("conversation_id = ? AND user_id <> ?", conversationID, viewerID).
		First(&other).Error; err == nil {
		var peer models.User
		if err := s.db.First(&peer, other.UserID).Error; err == nil {
			view.OtherUser = summarize(&peer)
		}
	}

	last, err := s.lastMessages([]uint{conversationID})
	if err != nil {
		return nil, err
	}
	view.LastMessage = last[conversationID]
	return &view, nil
}

func (s *ConversationService) lastMessages(conversationIDs []uint) (map[uint]*MessageView, error) {
	out := map[uint]*MessageView{}
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var messages []models.Message
	if err := s.db.Where("conversation_id IN ?", conversationIDs).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load last messages", err)
	}
	latest := make([]models.Message, 0, len(conversationIDs))
	seen := map[uint]bool{}
	for _, m := range messages {
		if seen[m.ConversationID] {
			continue
		}
		seen[m.ConversationID] = true
		latest = append(latest, m)
	}
	views, err := s.enrichMessages(latest)
	if err != nil {
		return nil, err
	}
	for i := range views {
		v := views[i]
		out[v.ConversationID] = &v
	}
	return out, nil
}

func (s *ConversationService) enrichMessages(messages []models.Message) ([]MessageView, error) {
	views := make([]MessageView, 0, len(messages))
	if len(messages) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(messages))
	senderIDs := make([]uint, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
		senderIDs = append(senderIDs, m.SenderID)
	}

	senders, err := authorSummaries(s.db, utils.UniqueUint(senderIDs))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load senders", err)
	}

	var receipts []models.MessageRead
	if err := s.db.Where("message_id IN ?", ids).Find(&receipts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load read receipts", err)
	}
	readBy := map[uint][]uint{}
	for _, r := range receipts {
		readBy[r.MessageID] = append(readBy[r.MessageID], r.UserID)
	}

	for _, m := range messages {
		rb := readBy[m.ID]
		if rb == nil {
			rb = []uint{}
		}
		views = append(views, MessageView{
			Message: m,
			Sender:  senders[m.SenderID],
			ReadBy:  rb,
		})
	}
	return views, nil
}

func laterThan(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
