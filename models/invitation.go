package models

import "time"

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

type EventInvitation struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	EventID   string           `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_event_invitations_event_user"`
	UserID    string           `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_event_invitations_event_user;index"`
	GroupID   *string          `json:"group_id" gorm:"size:191;index"`
	Status    InvitationStatus `json:"status" gorm:"not null;default:'pending';size:10"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Event Event `json:"-" gorm:"foreignKey:EventID"`
	User  User  `json:"-" gorm:"foreignKey:UserID"`
}

type InvitationResponse struct {
	ID         uint             `json:"id"`
	EventID    string           `json:"event_id"`
	EventTitle string           `json:"event_title,omitempty"`
	StartTime  *time.Time       `json:"start_time,omitempty"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
	User       UserSummary      `json:"user"`
	GroupID    *string          `json:"group_id,omitempty"`
	Status     InvitationStatus `json:"status"`
}

// ToResponse includes event details only when the event was preloaded.
func (i *EventInvitation) ToResponse() InvitationResponse {
	resp := InvitationResponse{
		ID:      i.ID,
		EventID: i.EventID,
		User:    i.User.ToSummary(),
		GroupID: i.GroupID,
		Status:  i.Status,
	}
	if i.Event.ID != "" {
		start, end := i.Event.StartTime, i.Event.EndTime
		resp.EventTitle = i.Event.Title
		resp.StartTime = &start
		resp.EndTime = &end
	}
	return resp
}

func ToInvitationResponses(invitations []EventInvitation) []InvitationResponse {
	responses := make([]InvitationResponse, 0, len(invitations))
	for i := range invitations {
		responses = append(responses, invitations[i].ToResponse())
	}
	return responses
}

// InvitationInbox groups the invitation lists shown next to a user's events.
type InvitationInbox struct {
	PendingReceived  []InvitationResponse `json:"pending_received"`
	AcceptedReceived []InvitationResponse `json:"accepted_received"`
	PendingSent      []InvitationResponse `json:"pending_sent"`
}
