package models

import "time"

// Friendship is a directed friend edge. A pending row is a request from
// FromUserID to ToUserID; an accepted row is a friendship in both directions.
type Friendship struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FromUserID string    `json:"from_user_id" gorm:"not null;size:191;uniqueIndex:uk_friendships_pair"`
	ToUserID   string    `json:"to_user_id" gorm:"not null;size:191;uniqueIndex:uk_friendships_pair;index"`
	IsAccepted bool      `json:"is_accepted" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	FromUser User `json:"from_user" gorm:"foreignKey:FromUserID"`
	ToUser   User `json:"to_user" gorm:"foreignKey:ToUserID"`
}

// OtherUserID returns the endpoint of the edge that is not userID.
func (f *Friendship) OtherUserID(userID string) string {
	if f.FromUserID == userID {
		return f.ToUserID
	}
	return f.FromUserID
}

type FriendRequestResponse struct {
	ID        uint        `json:"id"`
	From      UserSummary `json:"from"`
	To        UserSummary `json:"to"`
	CreatedAt time.Time   `json:"created_at"`
}

func (f *Friendship) ToRequestResponse() FriendRequestResponse {
	return FriendRequestResponse{
		ID:        f.ID,
		From:      f.FromUser.ToSummary(),
		To:        f.ToUser.ToSummary(),
		CreatedAt: f.CreatedAt,
	}
}

type FriendshipStatus struct {
	IsFriend           bool `json:"is_friend"`
	HasPendingSent     bool `json:"has_pending_sent"`
	HasPendingReceived bool `json:"has_pending_received"`
	SentRequestID      uint `json:"sent_request_id,omitempty"`
	ReceivedRequestID  uint `json:"received_request_id,omitempty"`
}
