// File: /models/event.go
package models

import (
	"time"
)

type EventTag string

const (
	EventTagPersonal      EventTag = "personal"
	EventTagFamily        EventTag = "family"
	EventTagSocial        EventTag = "social"
	EventTagEntertainment EventTag = "entertainment"
	EventTagEducation     EventTag = "education"
	EventTagHoliday       EventTag = "holiday"

	// EventTagHidden is only ever rendered, never stored.
	EventTagHidden EventTag = "hidden"
)

// IsValid accepts the empty tag; events are not required to carry one.
func (t EventTag) IsValid() bool {
	switch t {
	case "", EventTagPersonal, EventTagFamily, EventTagSocial,
		EventTagEntertainment, EventTagEducation, EventTagHoliday:
		return true
	}
	return false
}

type EventVisibility string

const (
	VisibilityPrivate EventVisibility = "private"
	VisibilityPublic  EventVisibility = "public"
	VisibilityInvited EventVisibility = "invited"
	VisibilityCustom  EventVisibility = "custom"
)

func (v EventVisibility) IsValid() bool {
	switch v {
	case VisibilityPrivate, VisibilityPublic, VisibilityInvited, VisibilityCustom:
		return true
	}
	return false
}

type Event struct {
	ID          string          `json:"id" gorm:"primaryKey;size:191"`
	Title       string          `json:"title" gorm:"not null;size:100"`
	Description string          `json:"description" gorm:"type:text"`
	StartTime   time.Time       `json:"start_time" gorm:"not null;index"`
	EndTime     time.Time       `json:"end_time" gorm:"not null"`
	CreatedByID string          `json:"created_by_id" gorm:"not null;size:191;index"`
	Tag         EventTag        `json:"tag" gorm:"size:20"`
	Visibility  EventVisibility `json:"visibility" gorm:"not null;default:'private';size:10"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	CreatedBy        User                 `json:"created_by" gorm:"foreignKey:CreatedByID"`
	Invitations      []EventInvitation    `json:"invitations,omitempty" gorm:"foreignKey:EventID"`
	VisibleToFriends []EventVisibleFriend `json:"visible_to_friends,omitempty" gorm:"foreignKey:EventID"`
	VisibleToGroups  []EventVisibleGroup  `json:"visible_to_groups,omitempty" gorm:"foreignKey:EventID"`
}

// EventVisibleFriend is one user of an event's custom selection.
type EventVisibleFriend struct {
	EventID string `json:"event_id" gorm:"primaryKey;size:191"`
	UserID  string `json:"user_id" gorm:"primaryKey;size:191;index"`
}

// EventVisibleGroup is one group of an event's custom selection.
type EventVisibleGroup struct {
	EventID string `json:"event_id" gorm:"primaryKey;size:191"`
	GroupID string `json:"group_id" gorm:"primaryKey;size:191;index"`
}

type EventResponse struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	StartTime        time.Time            `json:"start_time"`
	EndTime          time.Time            `json:"end_time"`
	Tag              EventTag             `json:"tag"`
	Visibility       EventVisibility      `json:"visibility"`
	CreatedBy        UserSummary          `json:"created_by"`
	VisibleToFriends []string             `json:"visible_to_friends"`
	VisibleToGroups  []string             `json:"visible_to_groups"`
	Invitations      []InvitationResponse `json:"invitations,omitempty"`
	Accepted         []InvitationResponse `json:"accepted_invitations,omitempty"`
}

func (e *Event) ToResponse() EventResponse {
	friends := make([]string, 0, len(e.VisibleToFriends))
	for _, f := range e.VisibleToFriends {
		friends = append(friends, f.UserID)
	}
	groups := make([]string, 0, len(e.VisibleToGroups))
	for _, g := range e.VisibleToGroups {
		groups = append(groups, g.GroupID)
	}

	resp := EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		Tag:              e.Tag,
		Visibility:       e.Visibility,
		CreatedBy:        e.CreatedBy.ToSummary(),
		VisibleToFriends: friends,
		VisibleToGroups:  groups,
	}
	for i := range e.Invitations {
		inv := e.Invitations[i].ToResponse()
		resp.Invitations = append(resp.Invitations, inv)
		if e.Invitations[i].Status == InvitationStatusAccepted {
			resp.Accepted = append(resp.Accepted, inv)
		}
	}
	return resp
}

func ToEventResponses(events []Event) []EventResponse {
	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}
	return responses
}
