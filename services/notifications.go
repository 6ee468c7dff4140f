package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

// Notification type tags.
const (
	NotifyCigaretteCall = "cigarette_call"
	NotifyBadge         = "badge"
	NotifyAnswer        = "answer"
)

// NotificationService owns the in-app notification feed and the group
// broadcast fan-out.
type NotificationService struct {
	db            *gorm.DB
	membership    *MembershipService
	conversations *ConversationService
	broadcastText string
}

func NewNotificationService(db *gorm.DB, membership *MembershipService, conversations *ConversationService, broadcastText string) *NotificationService {
	return &NotificationService{
		db:            db,
		membership:    membership,
		conversations: conversations,
		broadcastText: broadcastText,
	}
}

// BroadcastResult reports how far a fan-out reached.
type BroadcastResult struct {
	GroupID   uint `json:"group_id"`
	Members   int  `json:"members"`
	Delivered int  `json:"delivered"`
}

// Notify stores one notification row.
func (s *NotificationService) Notify(userID uint, kind, message string) error {
	n := models.Notification{UserID: userID, Type: kind, Message: message}
	if err := s.db.Create(&n).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "create notification", err)
	}
	return nil
}

// Broadcast fans a call-out to every member of a group except the sender.
// The group is resolved by slug first, then by exact name, so both URL
// handles and display names work. Each member gets a notification row and a
// direct message; a failure for one member is logged and skipped rather than
// aborting the rest.
func (s *NotificationService) Broadcast(senderID uint, groupRef string) (*BroadcastResult, error) {
	var sender models.User
	if err := s.db.First(&sender, senderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load sender", err)
	}

	var group models.Group
	err := s.db.Where("slug = ?", utils.Slugify(groupRef)).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Where("name = ?", groupRef).First(&group).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load group", err)
	}

	memberIDs, err := s.membership.GroupMemberIDs(group.ID)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s: %s", sender.Name, s.broadcastText)
	result := &BroadcastResult{GroupID: group.ID}
	for _, memberID := range memberIDs {
		if memberID == senderID {
			continue
		}
		result.Members++

		if err := s.Notify(memberID, NotifyCigaretteCall, text); err != nil {
			utils.Sugar.Warnf("broadcast notification failed: group=%d member=%d err=%v", group.ID, memberID, err)
			continue
		}
		conv, err := s.conversations.GetOrCreateDirect(senderID, memberID)
		if err != nil {
			utils.Sugar.Warnf("broadcast conversation failed: group=%d member=%d err=%v", group.ID, memberID, err)
			continue
		}
		if _, err := s.conversations.SendMessage(senderID, conv.ID, s.broadcastText); err != nil {
			utils.Sugar.Warnf("broadcast message failed: group=%d member=%d err=%v", group.ID, memberID, err)
			continue
		}
		result.Delivered++
	}
	return result, nil
}

// List returns the viewer's most recent notifications, capped at 50.
func (s *NotificationService) List(userID uint) ([]models.Notification, error) {
	var rows []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list notifications", err)
	}
	return rows, nil
}

// MarkAllRead flips every unread notification for the viewer.
func (s *NotificationService) MarkAllRead(userID uint) error {
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "mark notifications read", err)
	}
	return nil
}
