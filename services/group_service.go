package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"mycalendar-api/models"
	"mycalendar-api/repositories"
)

const maxGroupNameLength = 100

type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

type GroupInput struct {
	Name      string
	MemberIDs []string
}

func validateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("Group name is required")
	}
	if len([]rune(name)) > maxGroupNameLength {
		return "", validationError("Group name must be at most %d characters", maxGroupNameLength)
	}
	return name, nil
}

// resolveMembers checks every requested member is an accepted friend of the
// owner and returns the deduplicated roster with the owner first.
func resolveMembers(tx *gorm.DB, ownerID string, memberIDs []string) ([]string, error) {
	friendIDs, err := repositories.NewFriendshipRepository(tx).FriendIDs(ownerID)
	if err != nil {
		return nil, err
	}
	friends := make(map[string]bool, len(friendIDs))
	for _, id := range friendIDs {
		friends[id] = true
	}

	roster := []string{ownerID}
	seen := map[string]bool{ownerID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		if !friends[id] {
			return nil, validationError("User %s is not your friend", id)
		}
		seen[id] = true
		roster = append(roster, id)
	}
	return roster, nil
}

func (s *GroupService) Create(ctx context.Context, ownerID string, in GroupInput) (*models.Group, error) {
	name, err := validateGroupName(in.Name)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        name,
		CreatedByID: ownerID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roster, err := resolveMembers(tx, ownerID, in.MemberIDs)
		if err != nil {
			return err
		}
		if err := repositories.NewGroupRepository(tx).Create(group, roster); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, group.ID)
}

// loadOwned fetches a group and checks ownerID created it.
func loadOwned(groups *repositories.GroupRepository, groupID, ownerID string) (*models.Group, error) {
	group, err := groups.GetByID(groupID)
	if err != nil {
		return nil, notFoundOr(err, "group")
	}
	if group.CreatedByID != ownerID {
		return nil, authorizationError("Only the group creator can change this group")
	}
	return group, nil
}

// Update renames the group and replaces its roster. The owner stays a member.
func (s *GroupService) Update(ctx context.Context, groupID, ownerID string, in GroupInput) (*models.Group, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groups := repositories.NewGroupRepository(tx)

		if _, err := loadOwned(groups, groupID, ownerID); err != nil {
			return err
		}

		name, err := validateGroupName(in.Name)
		if err != nil {
			return err
		}
		roster, err := resolveMembers(tx, ownerID, in.MemberIDs)
		if err != nil {
			return err
		}

		if err := groups.UpdateName(groupID, name); err != nil {
			return err
		}
		return groups.ReplaceMembers(groupID, roster)
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, groupID)
}

// Delete destroys every event the group was invited to, strips the group
// from custom selections and removes it.
func (s *GroupService) Delete(ctx context.Context, groupID, ownerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwned(repositories.NewGroupRepository(tx), groupID, ownerID); err != nil {
			return err
		}
		return deleteGroupCascade(tx, groupID)
	})
}

func deleteGroupCascade(tx *gorm.DB, groupID string) error {
	events := repositories.NewEventRepository(tx)

	invitedEvents, err := events.IDsInvitedWithGroup(groupID)
	if err != nil {
		return err
	}
	if err := events.DeleteMany(invitedEvents); err != nil {
		return fmt.Errorf("failed to delete group events: %w", err)
	}
	if err := events.RemoveVisibleGroup(groupID); err != nil {
		return err
	}
	if err := repositories.NewInvitationRepository(tx).DeleteForGroup(groupID); err != nil {
		return err
	}
	return repositories.NewGroupRepository(tx).Delete(groupID)
}

// List returns the groups userID created and the groups userID was added to.
func (s *GroupService) List(ctx context.Context, userID string) (owned, member []models.Group, err error) {
	groups := repositories.NewGroupRepository(s.db.WithContext(ctx))

	owned, err = groups.ListOwned(userID)
	if err != nil {
		return nil, nil, err
	}
	member, err = groups.ListMemberOf(userID)
	if err != nil {
		return nil, nil, err
	}
	return owned, member, nil
}

// Get returns the roster, readable by the creator and members only.
func (s *GroupService) Get(ctx context.Context, groupID, viewerID string) (*models.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedByID == viewerID {
		return group, nil
	}
	for _, id := range group.MemberIDs() {
		if id == viewerID {
			return group, nil
		}
	}
	return nil, authorizationError("You are not a member of this group")
}

func (s *GroupService) load(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := repositories.NewGroupRepository(s.db.WithContext(ctx)).GetByID(groupID)
	if err != nil {
		return nil, notFoundOr(err, "group")
	}
	return group, nil
}
