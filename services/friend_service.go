package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
	"mycalendar-api/models"
	"mycalendar-api/repositories"
	"mycalendar-api/utils"
)

type FriendService struct {
	db         *gorm.DB
	dispatcher *NotificationDispatcher
	appURL     string
}

func NewFriendService(db *gorm.DB, dispatcher *NotificationDispatcher, appURL string) *FriendService {
	return &FriendService{
		db:         db,
		dispatcher: dispatcher,
		appURL:     strings.TrimRight(appURL, "/"),
	}
}

// lockPair locks both user rows in ascending id order.
func lockPair(users *repositories.UserRepository, a, b string) (*models.User, *models.User, error) {
	first, second := a, b
	if first > second {
		first, second = second, first
	}

	locked := make(map[string]*models.User, 2)
	for _, id := range []string{first, second} {
		user, err := users.LockByID(id)
		if err != nil {
			return nil, nil, notFoundOr(err, "user")
		}
		locked[id] = user
	}
	return locked[a], locked[b], nil
}

// SendRequest creates a pending friend request from fromID to toID.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID string) (*models.Friendship, error) {
	if fromID == toID {
		return nil, validationError("You cannot send a friend request to yourself")
	}

	var friendship *models.Friendship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		friendships := repositories.NewFriendshipRepository(tx)

		from, to, err := lockPair(users, fromID, toID)
		if err != nil {
			return err
		}

		exists, err := friendships.ExistsBetween(fromID, toID)
		if err != nil {
			return err
		}
		if exists {
			return conflictError("A friendship or pending request already exists with this user")
		}

		friendship = &models.Friendship{
			FromUserID: fromID,
			ToUserID:   toID,
		}
		if err := friendships.Create(friendship); err != nil {
			return fmt.Errorf("failed to create friend request: %w", err)
		}
		friendship.FromUser = *from
		friendship.ToUser = *to
		return nil
	})
	if err != nil {
		return nil, err
	}

	return friendship, nil
}

// Respond accepts or declines a pending request addressed to userID.
// Declining deletes the request.
func (s *FriendService) Respond(ctx context.Context, requestID uint, userID string, accept bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		friendships := repositories.NewFriendshipRepository(tx)

		friendship, err := friendships.FindPendingTo(requestID, userID)
		if err != nil {
			return notFoundOr(err, "friend request")
		}

		if accept {
			return friendships.Accept(friendship)
		}
		return friendships.Delete(friendship)
	})
}

// Remove unfriends friendID and strips every trace of the friendship from
// userID's groups, events and invitations.
func (s *FriendService) Remove(ctx context.Context, userID, friendID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		friendships := repositories.NewFriendshipRepository(tx)
		groups := repositories.NewGroupRepository(tx)
		events := repositories.NewEventRepository(tx)
		invitations := repositories.NewInvitationRepository(tx)

		if _, _, err := lockPair(users, userID, friendID); err != nil {
			return err
		}

		if err := friendships.DeleteBetween(userID, friendID); err != nil {
			return err
		}
		if err := groups.RemoveMemberFromOwned(userID, friendID); err != nil {
			return err
		}
		if err := events.RemoveVisibleFriendFromOwned(userID, friendID); err != nil {
			return err
		}
		if err := events.RemoveVisibleGroupsWithMember(userID, friendID); err != nil {
			return err
		}

		issued, err := invitations.IssuedTo(userID, friendID)
		if err != nil {
			return err
		}
		for _, invitation := range issued {
			others, err := invitations.CountOthers(invitation.EventID, friendID)
			if err != nil {
				return err
			}
			if others > 0 {
				err = invitations.Delete(invitation.ID)
			} else {
				err = events.Delete(invitation.EventID)
			}
			if err != nil {
				return err
			}
		}

		held, err := invitations.IssuedTo(friendID, userID)
		if err != nil {
			return err
		}
		for _, invitation := range held {
			if err := invitations.Delete(invitation.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("User %s removed friend %s", userID, friendID)
	return nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	ids, err := repositories.NewFriendshipRepository(db).FriendIDs(userID)
	if err != nil {
		return nil, err
	}
	return repositories.NewUserRepository(db).FindByIDs(ids)
}

func (s *FriendService) ListPendingReceived(ctx context.Context, userID string) ([]models.Friendship, error) {
	return repositories.NewFriendshipRepository(s.db.WithContext(ctx)).ListPendingReceived(userID)
}

func (s *FriendService) ListPendingSent(ctx context.Context, userID string) ([]models.Friendship, error) {
	return repositories.NewFriendshipRepository(s.db.WithContext(ctx)).ListPendingSent(userID)
}

// Status describes the edge between userID and otherID from userID's side.
func (s *FriendService) Status(ctx context.Context, userID, otherID string) (*models.FriendshipStatus, error) {
	status := &models.FriendshipStatus{}
	if userID == otherID {
		return status, nil
	}

	friendship, err := repositories.NewFriendshipRepository(s.db.WithContext(ctx)).FindBetween(userID, otherID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load friendship: %w", err)
	}

	switch {
	case friendship.IsAccepted:
		status.IsFriend = true
	case friendship.FromUserID == userID:
		status.HasPendingSent = true
		status.SentRequestID = friendship.ID
	default:
		status.HasPendingReceived = true
		status.ReceivedRequestID = friendship.ID
	}
	return status, nil
}

// IsFriend is symmetric in its arguments.
func (s *FriendService) IsFriend(ctx context.Context, a, b string) (bool, error) {
	return repositories.NewFriendshipRepository(s.db.WithContext(ctx)).AreFriends(a, b)
}

// InviteByEmail mails a join invitation to someone without an account. The
// mail is sent synchronously; a delivery failure fails the request.
func (s *FriendService) InviteByEmail(ctx context.Context, senderID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsValidEmail(email) {
		return validationError("Invalid email address")
	}

	users := repositories.NewUserRepository(s.db.WithContext(ctx))

	sender, err := users.GetByID(senderID)
	if err != nil {
		return notFoundOr(err, "user")
	}

	exists, err := users.ExistsByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return conflictError("A user with this email already exists")
	}

	if err := s.dispatcher.Deliver(joinInviteMessage(sender, email, s.appURL)); err != nil {
		return &DeliveryError{Message: "Failed to send invitation email", Err: err}
	}

	log.Printf("User %s invited %s to join", sender.Username, email)
	return nil
}
