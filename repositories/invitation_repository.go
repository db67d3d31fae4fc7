package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"mycalendar-api/models"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) CreateBatch(invitations []models.EventInvitation) error {
	if len(invitations) == 0 {
		return nil
	}
	return r.db.Omit("Event", "User").Create(&invitations).Error
}

// GetForUser loads an invitation only if it belongs to userID.
func (r *InvitationRepository) GetForUser(id uint, userID string) (*models.EventInvitation, error) {
	var invitation models.EventInvitation
	err := r.db.Preload("Event").First(&invitation, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// LockForUser re-reads the invitation FOR UPDATE so its status is current.
func (r *InvitationRepository) LockForUser(id uint, userID string) (*models.EventInvitation, error) {
	var invitation models.EventInvitation
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invitation, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *InvitationRepository) Find(eventID, userID string) (*models.EventInvitation, error) {
	var invitation models.EventInvitation
	if err := r.db.First(&invitation, "event_id = ? AND user_id = ?", eventID, userID).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *InvitationRepository) Exists(eventID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.EventInvitation{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *InvitationRepository) ExistsWithStatus(eventID, userID string, status models.InvitationStatus) (bool, error) {
	var count int64
	err := r.db.Model(&models.EventInvitation{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, status).
		Count(&count).Error
	return count > 0, err
}

func (r *InvitationRepository) UpdateStatus(id uint, status models.InvitationStatus) error {
	return r.db.Model(&models.EventInvitation{}).Where("id = ?", id).Update("status", status).Error
}

// ListForEventExcept returns the event's invitations not held by userID.
func (r *InvitationRepository) ListForEventExcept(eventID, userID string) ([]models.EventInvitation, error) {
	var invitations []models.EventInvitation
	err := r.db.Preload("User").
		Where("event_id = ? AND user_id <> ?", eventID, userID).
		Order("id ASC").
		Find(&invitations).Error
	return invitations, err
}

// ResetToPending sets every invitation of the event not held by userID back to pending.
func (r *InvitationRepository) ResetToPending(eventID, exceptUserID string) error {
	return r.db.Model(&models.EventInvitation{}).
		Where("event_id = ? AND user_id <> ?", eventID, exceptUserID).
		Update("status", models.InvitationStatusPending).Error
}

// IssuedTo returns the invitations userID holds to events created by ownerID.
func (r *InvitationRepository) IssuedTo(ownerID, userID string) ([]models.EventInvitation, error) {
	var invitations []models.EventInvitation
	err := r.db.Model(&models.EventInvitation{}).
		Joins("JOIN events ON events.id = event_invitations.event_id").
		Where("events.created_by_id = ? AND event_invitations.user_id = ?", ownerID, userID).
		Order("event_invitations.id ASC").
		Find(&invitations).Error
	return invitations, err
}

func (r *InvitationRepository) CountOthers(eventID, exceptUserID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.EventInvitation{}).
		Where("event_id = ? AND user_id <> ?", eventID, exceptUserID).
		Count(&count).Error
	return count, err
}

func (r *InvitationRepository) Delete(id uint) error {
	return r.db.Delete(&models.EventInvitation{}, "id = ?", id).Error
}

func (r *InvitationRepository) DeleteForUser(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.EventInvitation{}).Error
}

func (r *InvitationRepository) DeleteForGroup(groupID string) error {
	return r.db.Where("group_id = ?", groupID).Delete(&models.EventInvitation{}).Error
}

func (r *InvitationRepository) ListReceived(userID string, status models.InvitationStatus) ([]models.EventInvitation, error) {
	var invitations []models.EventInvitation
	err := r.db.Preload("Event").Preload("User").
		Joins("JOIN events ON events.id = event_invitations.event_id").
		Where("event_invitations.user_id = ? AND event_invitations.status = ? AND events.created_by_id <> ?",
			userID, status, userID).
		Order("events.start_time ASC").
		Find(&invitations).Error
	return invitations, err
}

// ListSent returns invitations with the given status on events ownerID created.
func (r *InvitationRepository) ListSent(ownerID string, status models.InvitationStatus) ([]models.EventInvitation, error) {
	var invitations []models.EventInvitation
	err := r.db.Preload("Event").Preload("User").
		Joins("JOIN events ON events.id = event_invitations.event_id").
		Where("events.created_by_id = ? AND event_invitations.status = ?", ownerID, status).
		Order("events.start_time ASC").
		Find(&invitations).Error
	return invitations, err
}
