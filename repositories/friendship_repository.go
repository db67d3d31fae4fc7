package repositories

import (
	"gorm.io/gorm"
	"mycalendar-api/models"
)

type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

func (r *FriendshipRepository) Create(friendship *models.Friendship) error {
	return r.db.Create(friendship).Error
}

func (r *FriendshipRepository) betweenScope(userID, otherID string) *gorm.DB {
	return r.db.Model(&models.Friendship{}).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userID, otherID, otherID, userID)
}

// ExistsBetween reports any edge, pending or accepted, in either direction.
func (r *FriendshipRepository) ExistsBetween(userID, otherID string) (bool, error) {
	var count int64
	err := r.betweenScope(userID, otherID).Count(&count).Error
	return count > 0, err
}

func (r *FriendshipRepository) AreFriends(userID, otherID string) (bool, error) {
	var count int64
	err := r.betweenScope(userID, otherID).Where("is_accepted = ?", true).Count(&count).Error
	return count > 0, err
}

// FindBetween returns the edge between the pair in either direction.
func (r *FriendshipRepository) FindBetween(userID, otherID string) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.betweenScope(userID, otherID).First(&friendship).Error; err != nil {
		return nil, err
	}
	return &friendship, nil
}

// FindPendingTo finds a pending request with the given id addressed to toUserID.
func (r *FriendshipRepository) FindPendingTo(id uint, toUserID string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.Preload("FromUser").
		First(&friendship, "id = ? AND to_user_id = ? AND is_accepted = ?", id, toUserID, false).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

func (r *FriendshipRepository) Accept(friendship *models.Friendship) error {
	friendship.IsAccepted = true
	return r.db.Model(friendship).Update("is_accepted", true).Error
}

func (r *FriendshipRepository) Delete(friendship *models.Friendship) error {
	return r.db.Delete(friendship).Error
}

func (r *FriendshipRepository) DeleteBetween(userID, otherID string) error {
	return r.db.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
		userID, otherID, otherID, userID).Delete(&models.Friendship{}).Error
}

func (r *FriendshipRepository) DeleteAllFor(userID string) error {
	return r.db.Where("from_user_id = ? OR to_user_id = ?", userID, userID).Delete(&models.Friendship{}).Error
}

// FriendIDs returns the IDs of every accepted friend of userID.
func (r *FriendshipRepository) FriendIDs(userID string) ([]string, error) {
	var friendships []models.Friendship
	if err := r.db.Where("(from_user_id = ? OR to_user_id = ?) AND is_accepted = ?", userID, userID, true).
		Find(&friendships).Error; err != nil {
		return nil, err
	}

	friendIDs := make([]string, 0, len(friendships))
	for _, friendship := range friendships {
		friendIDs = append(friendIDs, friendship.OtherUserID(userID))
	}

	return friendIDs, nil
}

func (r *FriendshipRepository) ListPendingReceived(userID string) ([]models.Friendship, error) {
	var requests []models.Friendship
	err := r.db.Preload("FromUser").Preload("ToUser").
		Where("to_user_id = ? AND is_accepted = ?", userID, false).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *FriendshipRepository) ListPendingSent(userID string) ([]models.Friendship, error) {
	var requests []models.Friendship
	err := r.db.Preload("FromUser").Preload("ToUser").
		Where("from_user_id = ? AND is_accepted = ?", userID, false).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
