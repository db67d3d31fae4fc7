package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"mycalendar-api/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(event *models.Event) error {
	return r.db.Omit("CreatedBy", "Invitations", "VisibleToFriends", "VisibleToGroups").Create(event).Error
}

func (r *EventRepository) GetByID(id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// LockByID loads the event row FOR UPDATE. Edits and invitation answers on
// the same event are serialized on this lock.
func (r *EventRepository) LockByID(id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetDetailed loads the event with creator, invitations and custom selections.
func (r *EventRepository) GetDetailed(id string) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("CreatedBy").
		Preload("Invitations", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Invitations.User").
		Preload("VisibleToFriends").
		Preload("VisibleToGroups").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Update(event *models.Event) error {
	return r.db.Model(&models.Event{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
		"title":       event.Title,
		"description": event.Description,
		"tag":         event.Tag,
		"visibility":  event.Visibility,
		"start_time":  event.StartTime,
		"end_time":    event.EndTime,
		"updated_at":  time.Now().UTC(),
	}).Error
}

// Delete removes the event with its invitations and custom selections.
func (r *EventRepository) Delete(eventID string) error {
	return r.DeleteMany([]string{eventID})
}

func (r *EventRepository) DeleteMany(eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	if err := r.db.Where("event_id IN ?", eventIDs).Delete(&models.EventInvitation{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("event_id IN ?", eventIDs).Delete(&models.EventVisibleFriend{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("event_id IN ?", eventIDs).Delete(&models.EventVisibleGroup{}).Error; err != nil {
		return err
	}
	return r.db.Where("id IN ?", eventIDs).Delete(&models.Event{}).Error
}

// ReplaceVisibility swaps the custom friend and group selections wholesale.
func (r *EventRepository) ReplaceVisibility(eventID string, friendIDs, groupIDs []string) error {
	if err := r.db.Where("event_id = ?", eventID).Delete(&models.EventVisibleFriend{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("event_id = ?", eventID).Delete(&models.EventVisibleGroup{}).Error; err != nil {
		return err
	}

	if len(friendIDs) > 0 {
		rows := make([]models.EventVisibleFriend, 0, len(friendIDs))
		for _, id := range friendIDs {
			rows = append(rows, models.EventVisibleFriend{EventID: eventID, UserID: id})
		}
		if err := r.db.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(groupIDs) > 0 {
		rows := make([]models.EventVisibleGroup, 0, len(groupIDs))
		for _, id := range groupIDs {
			rows = append(rows, models.EventVisibleGroup{EventID: eventID, GroupID: id})
		}
		if err := r.db.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// HasOwnedOverlap reports an event created by userID intersecting [start, end).
func (r *EventRepository) HasOwnedOverlap(userID string, start, end time.Time, excludeEventID string) (bool, error) {
	query := r.db.Model(&models.Event{}).
		Where("created_by_id = ? AND start_time < ? AND end_time > ?", userID, end.UTC(), start.UTC())
	if excludeEventID != "" {
		query = query.Where("id <> ?", excludeEventID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// HasAcceptedOverlap reports an accepted invitation of userID to an event
// intersecting [start, end).
func (r *EventRepository) HasAcceptedOverlap(userID string, start, end time.Time, excludeEventID string) (bool, error) {
	query := r.db.Model(&models.EventInvitation{}).
		Joins("JOIN events ON events.id = event_invitations.event_id").
		Where("event_invitations.user_id = ? AND event_invitations.status = ?", userID, models.InvitationStatusAccepted).
		Where("events.start_time < ? AND events.end_time > ?", end.UTC(), start.UTC())
	if excludeEventID != "" {
		query = query.Where("events.id <> ?", excludeEventID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// CommittedFilter narrows ListCommitted. Zero values mean no bound.
type CommittedFilter struct {
	From time.Time
	To   time.Time
	Tag  models.EventTag
}

// ListCommitted returns the events that occupy userID's calendar: own events
// without invitations, own events with an accepted invitation, and events
// userID accepted an invitation to.
func (r *EventRepository) ListCommitted(userID string, filter CommittedFilter) ([]models.Event, error) {
	query := r.db.Model(&models.Event{}).
		Where(
			r.db.Where("events.created_by_id = ? AND NOT EXISTS (SELECT 1 FROM event_invitations ei WHERE ei.event_id = events.id)", userID).
				Or("events.created_by_id = ? AND EXISTS (SELECT 1 FROM event_invitations ei WHERE ei.event_id = events.id AND ei.status = ?)", userID, models.InvitationStatusAccepted).
				Or("EXISTS (SELECT 1 FROM event_invitations ei WHERE ei.event_id = events.id AND ei.user_id = ? AND ei.status = ?)", userID, models.InvitationStatusAccepted),
		)

	if !filter.From.IsZero() {
		query = query.Where("events.start_time >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("events.start_time < ?", filter.To.UTC())
	}
	if filter.Tag != "" {
		query = query.Where("events.tag = ?", filter.Tag)
	}

	var events []models.Event
	err := query.Preload("CreatedBy").Order("events.start_time ASC").Find(&events).Error
	return events, err
}

func (r *EventRepository) InCustomFriends(eventID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.EventVisibleFriend{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// InCustomGroups reports whether userID belongs to any group selected for the event.
func (r *EventRepository) InCustomGroups(eventID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.EventVisibleGroup{}).
		Joins("JOIN group_members ON group_members.group_id = event_visible_groups.group_id").
		Where("event_visible_groups.event_id = ? AND group_members.user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// RemoveVisibleFriendFromOwned drops friendID from the custom selection of
// every event ownerID created.
func (r *EventRepository) RemoveVisibleFriendFromOwned(ownerID, friendID string) error {
	return r.db.Where("user_id = ? AND event_id IN (?)", friendID,
		r.db.Model(&models.Event{}).Select("id").Where("created_by_id = ?", ownerID)).
		Delete(&models.EventVisibleFriend{}).Error
}

// RemoveVisibleGroupsWithMember drops, from every event ownerID created, each
// selected group that has memberID as a member.
func (r *EventRepository) RemoveVisibleGroupsWithMember(ownerID, memberID string) error {
	return r.db.Where("event_id IN (?) AND group_id IN (?)",
		r.db.Model(&models.Event{}).Select("id").Where("created_by_id = ?", ownerID),
		r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", memberID)).
		Delete(&models.EventVisibleGroup{}).Error
}

func (r *EventRepository) RemoveVisibleGroup(groupID string) error {
	return r.db.Where("group_id = ?", groupID).Delete(&models.EventVisibleGroup{}).Error
}

func (r *EventRepository) RemoveVisibleUser(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.EventVisibleFriend{}).Error
}

// IDsInvitedWithGroup lists events holding an invitation that originated from groupID.
func (r *EventRepository) IDsInvitedWithGroup(groupID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.EventInvitation{}).
		Distinct("event_id").
		Where("group_id = ?", groupID).
		Pluck("event_id", &ids).Error
	return ids, err
}

func (r *EventRepository) OwnedIDs(ownerID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Event{}).Where("created_by_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, err
}

// StartingBetween returns events whose start falls in [from, to), with the
// creator and accepted invitees loaded.
func (r *EventRepository) StartingBetween(from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("CreatedBy").
		Preload("Invitations", "status = ?", models.InvitationStatusAccepted).
		Preload("Invitations.User").
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}
