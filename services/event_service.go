package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"mycalendar-api/models"
	"mycalendar-api/repositories"
)

const maxTitleLength = 100

// EventCommand carries the fields of a create or edit request. Invite fields
// are honoured on create only.
type EventCommand struct {
	Title            string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	Tag              models.EventTag
	Visibility       models.EventVisibility
	VisibleToFriends []string
	VisibleToGroups  []string
	InviteFriendID   string
	InviteGroupID    string
}

// normalize trims the text fields, truncates times to the second, moves them
// into the calendar zone and defaults the visibility. The grid is checked in
// that zone so accepted times line up with the week view.
func (cmd *EventCommand) normalize(loc *time.Location) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.Description = strings.TrimSpace(cmd.Description)
	cmd.InviteFriendID = strings.TrimSpace(cmd.InviteFriendID)
	cmd.InviteGroupID = strings.TrimSpace(cmd.InviteGroupID)
	cmd.StartTime = cmd.StartTime.Truncate(time.Second).In(loc)
	cmd.EndTime = cmd.EndTime.Truncate(time.Second).In(loc)
	if cmd.Visibility == "" {
		cmd.Visibility = models.VisibilityPrivate
	}
}

// validate runs the input checks that need no database, in order.
func (cmd *EventCommand) validate(withInvites bool) error {
	if cmd.Title == "" || cmd.StartTime.IsZero() || cmd.EndTime.IsZero() {
		return validationError("Title, start time and end time are required.")
	}
	if len([]rune(cmd.Title)) > maxTitleLength {
		return validationError("Title must be at most %d characters.", maxTitleLength)
	}
	if err := ValidateTimeRange(cmd.StartTime, cmd.EndTime); err != nil {
		return err
	}
	if withInvites && cmd.InviteFriendID != "" && cmd.InviteGroupID != "" {
		return validationError("You can invite either a friend or a group, not both.")
	}
	if !cmd.Tag.IsValid() {
		return validationError("Unknown tag %q.", cmd.Tag)
	}
	if !cmd.Visibility.IsValid() {
		return validationError("Unknown visibility %q.", cmd.Visibility)
	}
	return nil
}

type EventService struct {
	db         *gorm.DB
	dispatcher *NotificationDispatcher
	loc        *time.Location
}

func NewEventService(db *gorm.DB, dispatcher *NotificationDispatcher, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{
		db:         db,
		dispatcher: dispatcher,
		loc:        loc,
	}
}

// hasConflict reports whether userID is already committed to something that
// intersects [start, end): an event userID created, or an event userID
// accepted an invitation to. excludeEventID is ignored in both branches.
func hasConflict(tx *gorm.DB, userID string, start, end time.Time, excludeEventID string) (bool, error) {
	events := repositories.NewEventRepository(tx)

	owned, err := events.HasOwnedOverlap(userID, start, end, excludeEventID)
	if err != nil {
		return false, fmt.Errorf("failed to check schedule: %w", err)
	}
	if owned {
		return true, nil
	}

	accepted, err := events.HasAcceptedOverlap(userID, start, end, excludeEventID)
	if err != nil {
		return false, fmt.Errorf("failed to check schedule: %w", err)
	}
	return accepted, nil
}

func (s *EventService) HasConflict(ctx context.Context, userID string, start, end time.Time, excludeEventID string) (bool, error) {
	return hasConflict(s.db.WithContext(ctx), userID, start, end, excludeEventID)
}

// customSelection intersects the requested friends and groups with the
// owner's accepted friends and the groups the owner created.
func customSelection(tx *gorm.DB, ownerID string, cmd *EventCommand) (friendIDs, groupIDs []string, err error) {
	if cmd.Visibility != models.VisibilityCustom {
		return nil, nil, nil
	}

	if len(cmd.VisibleToFriends) > 0 {
		friends, err := repositories.NewFriendshipRepository(tx).FriendIDs(ownerID)
		if err != nil {
			return nil, nil, err
		}
		allowed := make(map[string]bool, len(friends))
		for _, id := range friends {
			allowed[id] = true
		}
		for _, id := range cmd.VisibleToFriends {
			if allowed[id] {
				friendIDs = append(friendIDs, id)
				delete(allowed, id)
			}
		}
	}

	groupIDs, err = repositories.NewGroupRepository(tx).OwnedAmong(ownerID, cmd.VisibleToGroups)
	if err != nil {
		return nil, nil, err
	}
	return friendIDs, groupIDs, nil
}

// Create books a new event for ownerID. A single invited friend is notified
// before commit and a delivery failure undoes the booking; group members are
// notified in the background once the booking is committed.
func (s *EventService) Create(ctx context.Context, ownerID string, cmd EventCommand) (*models.Event, error) {
	cmd.normalize(s.loc)
	if err := cmd.validate(true); err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:          uuid.New().String(),
		Title:       cmd.Title,
		Description: cmd.Description,
		StartTime:   cmd.StartTime.UTC(),
		EndTime:     cmd.EndTime.UTC(),
		CreatedByID: ownerID,
		Tag:         cmd.Tag,
		Visibility:  cmd.Visibility,
	}

	var queued []Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		events := repositories.NewEventRepository(tx)
		invitations := repositories.NewInvitationRepository(tx)

		owner, err := users.LockByID(ownerID)
		if err != nil {
			return notFoundOr(err, "user")
		}

		var friend *models.User
		if cmd.InviteFriendID != "" {
			if cmd.InviteFriendID == ownerID {
				return validationError("You cannot invite yourself.")
			}
			areFriends, err := repositories.NewFriendshipRepository(tx).AreFriends(ownerID, cmd.InviteFriendID)
			if err != nil {
				return err
			}
			if !areFriends {
				return validationError("You can only invite your friends.")
			}
			if friend, err = users.GetByID(cmd.InviteFriendID); err != nil {
				return notFoundOr(err, "user")
			}
		}

		var group *models.Group
		if cmd.InviteGroupID != "" {
			if group, err = repositories.NewGroupRepository(tx).GetByID(cmd.InviteGroupID); err != nil {
				return notFoundOr(err, "group")
			}
			if group.CreatedByID != ownerID {
				return authorizationError("You can only invite groups you created.")
			}
		}

		conflict, err := hasConflict(tx, ownerID, event.StartTime, event.EndTime, "")
		if err != nil {
			return err
		}
		if conflict {
			schedulingConflictsTotal.WithLabelValues("create").Inc()
			return conflictError("You already have an event during this time.")
		}

		if err := events.Create(event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}

		friendIDs, groupIDs, err := customSelection(tx, ownerID, &cmd)
		if err != nil {
			return err
		}
		if err := events.ReplaceVisibility(event.ID, friendIDs, groupIDs); err != nil {
			return err
		}

		if friend != nil {
			invitation := models.EventInvitation{
				EventID: event.ID,
				UserID:  friend.ID,
				Status:  models.InvitationStatusPending,
			}
			if err := invitations.CreateBatch([]models.EventInvitation{invitation}); err != nil {
				return fmt.Errorf("failed to create invitation: %w", err)
			}
			if err := s.dispatcher.Deliver(friendInviteMessage(event, owner, friend, s.loc)); err != nil {
				return &DeliveryError{Message: "Failed to send invitation email", Err: err}
			}
		}

		if group != nil {
			batch := make([]models.EventInvitation, 0, len(group.Members))
			for i := range group.Members {
				member := &group.Members[i].User
				if member.ID == ownerID {
					continue
				}
				batch = append(batch, models.EventInvitation{
					EventID: event.ID,
					UserID:  member.ID,
					GroupID: &group.ID,
					Status:  models.InvitationStatusPending,
				})
				queued = append(queued, groupInviteMessage(event, owner, group, member, s.loc))
			}
			if err := invitations.CreateBatch(batch); err != nil {
				return fmt.Errorf("failed to create invitations: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, msg := range queued {
		s.dispatcher.Dispatch(msg)
	}

	return s.loadDetailed(ctx, event.ID)
}

// Edit updates an event owned by editorID. When the time range moves, every
// invitation not held by the editor goes back to pending and each invitee is
// told about the new time. The bool result reports such a reschedule.
func (s *EventService) Edit(ctx context.Context, eventID, editorID string, cmd EventCommand) (*models.Event, bool, error) {
	cmd.normalize(s.loc)

	var (
		rescheduled bool
		queued      []Message
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		events := repositories.NewEventRepository(tx)
		invitations := repositories.NewInvitationRepository(tx)

		if _, err := users.LockByID(editorID); err != nil {
			return notFoundOr(err, "user")
		}

		event, err := events.LockByID(eventID)
		if err != nil {
			return notFoundOr(err, "event")
		}
		if event.CreatedByID != editorID {
			return authorizationError("You can only edit your own events.")
		}

		if err := cmd.validate(false); err != nil {
			return err
		}

		conflict, err := hasConflict(tx, editorID, cmd.StartTime, cmd.EndTime, eventID)
		if err != nil {
			return err
		}
		if conflict {
			schedulingConflictsTotal.WithLabelValues("edit").Inc()
			return conflictError("You already have an event during this time.")
		}

		rescheduled = TimeRangeChanged(event.StartTime, event.EndTime, cmd.StartTime, cmd.EndTime)

		event.Title = cmd.Title
		event.Description = cmd.Description
		event.Tag = cmd.Tag
		event.Visibility = cmd.Visibility
		event.StartTime = cmd.StartTime.UTC()
		event.EndTime = cmd.EndTime.UTC()
		if err := events.Update(event); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		friendIDs, groupIDs, err := customSelection(tx, editorID, &cmd)
		if err != nil {
			return err
		}
		if err := events.ReplaceVisibility(eventID, friendIDs, groupIDs); err != nil {
			return err
		}

		if !rescheduled {
			return nil
		}

		if err := invitations.ResetToPending(eventID, editorID); err != nil {
			return err
		}
		invitees, err := invitations.ListForEventExcept(eventID, editorID)
		if err != nil {
			return err
		}
		for i := range invitees {
			queued = append(queued, rescheduleMessage(event, &invitees[i].User, s.loc))
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	for _, msg := range queued {
		s.dispatcher.Dispatch(msg)
	}
	if rescheduled {
		log.Printf("Event %s rescheduled, %d invitees notified", eventID, len(queued))
	}

	event, err := s.loadDetailed(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	return event, rescheduled, nil
}

// Delete is restricted to the event's creator.
func (s *EventService) Delete(ctx context.Context, eventID, requesterID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := repositories.NewEventRepository(tx)

		event, err := events.GetByID(eventID)
		if err != nil {
			return notFoundOr(err, "event")
		}
		if event.CreatedByID != requesterID {
			return authorizationError("You can only delete your own events.")
		}
		return events.Delete(eventID)
	})
}

// Get returns the event when viewerID may see it. An invisible event is
// reported as not found.
func (s *EventService) Get(ctx context.Context, eventID, viewerID string) (*models.Event, error) {
	event, err := s.loadDetailed(ctx, eventID)
	if err != nil {
		return nil, err
	}

	visible, err := s.CanUserView(ctx, event, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, notFoundError("event not found")
	}
	return event, nil
}

// List returns userID's committed events ordered by start, optionally by tag.
func (s *EventService) List(ctx context.Context, userID string, tag models.EventTag) ([]models.Event, error) {
	if !tag.IsValid() {
		return nil, validationError("Unknown tag %q.", tag)
	}
	return repositories.NewEventRepository(s.db.WithContext(ctx)).
		ListCommitted(userID, repositories.CommittedFilter{Tag: tag})
}

func (s *EventService) CanUserView(ctx context.Context, event *models.Event, viewerID string) (bool, error) {
	return CanView(event, viewerID, newViewerFacts(s.db.WithContext(ctx), event.ID, viewerID))
}

func (s *EventService) loadDetailed(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := repositories.NewEventRepository(s.db.WithContext(ctx)).GetDetailed(eventID)
	if err != nil {
		return nil, notFoundOr(err, "event")
	}
	return event, nil
}

// dbViewerFacts answers ViewerFacts with one query per call.
type dbViewerFacts struct {
	events      *repositories.EventRepository
	invitations *repositories.InvitationRepository
	eventID     string
	viewerID    string
}

func newViewerFacts(db *gorm.DB, eventID, viewerID string) ViewerFacts {
	return &dbViewerFacts{
		events:      repositories.NewEventRepository(db),
		invitations: repositories.NewInvitationRepository(db),
		eventID:     eventID,
		viewerID:    viewerID,
	}
}

func (f *dbViewerFacts) HasInvitation() (bool, error) {
	return f.invitations.Exists(f.eventID, f.viewerID)
}

func (f *dbViewerFacts) HasAcceptedInvitation() (bool, error) {
	return f.invitations.ExistsWithStatus(f.eventID, f.viewerID, models.InvitationStatusAccepted)
}

func (f *dbViewerFacts) InCustomFriends() (bool, error) {
	return f.events.InCustomFriends(f.eventID, f.viewerID)
}

func (f *dbViewerFacts) InCustomGroups() (bool, error) {
	return f.events.InCustomGroups(f.eventID, f.viewerID)
}

// SendReminders queues a reminder to the owner and every accepted invitee of
// each event starting in [from, to). It returns the number of messages queued.
func (s *EventService) SendReminders(ctx context.Context, from, to time.Time) (int, error) {
	events, err := repositories.NewEventRepository(s.db.WithContext(ctx)).StartingBetween(from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to load upcoming events: %w", err)
	}

	queued := 0
	for i := range events {
		event := &events[i]
		s.dispatcher.Dispatch(reminderMessage(event, &event.CreatedBy, s.loc))
		queued++
		for j := range event.Invitations {
			s.dispatcher.Dispatch(reminderMessage(event, &event.Invitations[j].User, s.loc))
			queued++
		}
	}
	return queued, nil
}
