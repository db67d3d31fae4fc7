package repositories

import (
	"gorm.io/gorm"
	"mycalendar-api/models"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *models.Group, memberIDs []string) error {
	if err := r.db.Omit("Members").Create(group).Error; err != nil {
		return err
	}
	return r.addMembers(group.ID, memberIDs)
}

func (r *GroupRepository) addMembers(groupID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	members := make([]models.GroupMember, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, models.GroupMember{GroupID: groupID, UserID: id})
	}
	return r.db.Create(&members).Error
}

func (r *GroupRepository) GetByID(id string) (*models.Group, error) {
	var group models.Group
	err := r.db.Preload("CreatedBy").Preload("Members.User").First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) ListOwned(userID string) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Preload("CreatedBy").Preload("Members.User").
		Where("created_by_id = ?", userID).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

// ListMemberOf returns groups userID belongs to but did not create.
func (r *GroupRepository) ListMemberOf(userID string) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Preload("CreatedBy").Preload("Members.User").
		Where("created_by_id <> ? AND id IN (?)", userID,
			r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

// OwnedAmong filters ids down to groups created by ownerID.
func (r *GroupRepository) OwnedAmong(ownerID string, ids []string) ([]string, error) {
	var owned []string
	if len(ids) == 0 {
		return owned, nil
	}
	err := r.db.Model(&models.Group{}).
		Where("created_by_id = ? AND id IN ?", ownerID, ids).
		Pluck("id", &owned).Error
	return owned, err
}

func (r *GroupRepository) UpdateName(groupID, name string) error {
	return r.db.Model(&models.Group{}).Where("id = ?", groupID).Update("name", name).Error
}

func (r *GroupRepository) ReplaceMembers(groupID string, memberIDs []string) error {
	if err := r.db.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
		return err
	}
	return r.addMembers(groupID, memberIDs)
}

// RemoveMemberFromOwned drops memberID from every group ownerID created.
func (r *GroupRepository) RemoveMemberFromOwned(ownerID, memberID string) error {
	return r.db.Where("user_id = ? AND group_id IN (?)", memberID,
		r.db.Model(&models.Group{}).Select("id").Where("created_by_id = ?", ownerID)).
		Delete(&models.GroupMember{}).Error
}

func (r *GroupRepository) RemoveMemberEverywhere(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.GroupMember{}).Error
}

func (r *GroupRepository) OwnedIDs(ownerID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Group{}).Where("created_by_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, err
}

// Delete removes the group and its memberships.
func (r *GroupRepository) Delete(groupID string) error {
	if err := r.db.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Group{}, "id = ?", groupID).Error
}
