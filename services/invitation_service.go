package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"mycalendar-api/models"
	"mycalendar-api/repositories"
)

type InvitationDecision string

const (
	DecisionAccept  InvitationDecision = "accept"
	DecisionDecline InvitationDecision = "decline"
)

type InvitationService struct {
	db *gorm.DB
}

func NewInvitationService(db *gorm.DB) *InvitationService {
	return &InvitationService{db: db}
}

// Respond records userID's answer. Accepting re-checks the invitee's schedule
// under their row lock and leaves the status untouched on a conflict.
// Declining always succeeds.
func (s *InvitationService) Respond(ctx context.Context, invitationID uint, userID string, decision InvitationDecision) (*models.EventInvitation, error) {
	decision = InvitationDecision(strings.ToLower(strings.TrimSpace(string(decision))))

	var invitation *models.EventInvitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		events := repositories.NewEventRepository(tx)
		invitations := repositories.NewInvitationRepository(tx)

		if _, err := users.LockByID(userID); err != nil {
			return notFoundOr(err, "user")
		}

		found, err := invitations.GetForUser(invitationID, userID)
		if err != nil {
			return notFoundOr(err, "invitation")
		}

		// Lock the event before re-reading the invitation so a concurrent
		// reschedule either finishes first or waits for this answer.
		event, err := events.LockByID(found.EventID)
		if err != nil {
			return notFoundOr(err, "event")
		}
		if invitation, err = invitations.LockForUser(invitationID, userID); err != nil {
			return notFoundOr(err, "invitation")
		}
		invitation.Event = *event

		switch decision {
		case DecisionAccept:
			conflict, err := hasConflict(tx, userID, event.StartTime, event.EndTime, event.ID)
			if err != nil {
				return err
			}
			if conflict {
				schedulingConflictsTotal.WithLabelValues("accept").Inc()
				return conflictError("You already have an event during this time.")
			}
			invitation.Status = models.InvitationStatusAccepted
		case DecisionDecline:
			invitation.Status = models.InvitationStatusDeclined
		default:
			return validationError("Decision must be %q or %q.", DecisionAccept, DecisionDecline)
		}

		return invitations.UpdateStatus(invitation.ID, invitation.Status)
	})
	if err != nil {
		return nil, err
	}

	return invitation, nil
}

// Inbox lists what userID was invited to and what is still awaiting answers
// on userID's own events.
func (s *InvitationService) Inbox(ctx context.Context, userID string) (*models.InvitationInbox, error) {
	invitations := repositories.NewInvitationRepository(s.db.WithContext(ctx))

	pending, err := invitations.ListReceived(userID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	accepted, err := invitations.ListReceived(userID, models.InvitationStatusAccepted)
	if err != nil {
		return nil, err
	}
	sent, err := invitations.ListSent(userID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}

	return &models.InvitationInbox{
		PendingReceived:  models.ToInvitationResponses(pending),
		AcceptedReceived: models.ToInvitationResponses(accepted),
		PendingSent:      models.ToInvitationResponses(sent),
	}, nil
}
