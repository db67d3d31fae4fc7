package models

import "time"

type Group struct {
	ID          string    `json:"id" gorm:"primaryKey;size:191"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	CreatedByID string    `json:"created_by_id" gorm:"not null;size:191;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CreatedBy User          `json:"created_by" gorm:"foreignKey:CreatedByID"`
	Members   []GroupMember `json:"members" gorm:"foreignKey:GroupID"`
}

// GroupMember is the membership join row. The group creator always has one.
type GroupMember struct {
	GroupID   string    `json:"group_id" gorm:"primaryKey;size:191"`
	UserID    string    `json:"user_id" gorm:"primaryKey;size:191;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

// MemberIDs lists the loaded members' user IDs.
func (g *Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

type GroupResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedBy UserSummary   `json:"created_by"`
	Members   []UserSummary `json:"members"`
}

func (g *Group) ToResponse() GroupResponse {
	members := make([]UserSummary, 0, len(g.Members))
	for i := range g.Members {
		members = append(members, g.Members[i].User.ToSummary())
	}
	return GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy.ToSummary(),
		Members:   members,
	}
}

type GroupListResponse struct {
	OwnedGroups  []GroupResponse `json:"owned_groups"`
	MemberGroups []GroupResponse `json:"member_groups"`
}
