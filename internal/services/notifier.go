package services

import (
	"context"
	"fmt"

	"member-directory-backend/internal/models"

	"github.com/rs/zerolog/log"
)

type onlineSender interface {
	IsOnline(userID string) bool
	NotifyLikeReceived(userID string, from models.LikeDTO) error
}

type pushSender interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// Notifier delivers like notifications over the websocket when the member
// is online and as a push notification otherwise. Delivery is best effort.
type Notifier struct {
	hub  onlineSender
	push pushSender
}

// NewNotifier creates a notifier; push may be nil when APNs is disabled
func NewNotifier(hub *WSHub, push *PushSender) *Notifier {
	n := &Notifier{}
	if hub != nil {
		n.hub = hub
	}
	if push != nil {
		n.push = push
	}
	return n
}

// NotifyLiked implements LikeNotifier
func (n *Notifier) NotifyLiked(ctx context.Context, liked *models.User, from models.LikeDTO) {
	if n.hub != nil && n.hub.IsOnline(liked.ID) {
		err := n.hub.NotifyLikeReceived(liked.ID, from)
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("user_id", liked.ID).Msg("Failed to notify user over websocket")
	}

	if n.push == nil || liked.PushToken == nil {
		return
	}

	body := fmt.Sprintf("%s liked your profile", from.KnownAs)
	if err := n.push.Send(ctx, *liked.PushToken, "New like", body); err != nil {
		log.Error().
			Err(err).
			Str("user_id", liked.ID).
			Msg("Failed to send like push notification")
	}
}
