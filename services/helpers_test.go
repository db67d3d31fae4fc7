package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"mycalendar-api/database"
	"mycalendar-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Initialize("sqlite://file:"+name+"?mode=memory&cache=shared", "silent")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// recordingSink keeps every message it is handed and fails on demand.
type recordingSink struct {
	mu       sync.Mutex
	messages []Message
	fail     bool
}

func (s *recordingSink) Send(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSink) sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// fixture wires every service against one database.
type fixture struct {
	db          *gorm.DB
	sink        *recordingSink
	dispatcher  *NotificationDispatcher
	users       *UserService
	friends     *FriendService
	groups      *GroupService
	events      *EventService
	invitations *InvitationService
	calendar    *CalendarService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	sink := &recordingSink{}
	dispatcher := NewNotificationDispatcher(sink, 2, 16)
	t.Cleanup(dispatcher.Stop)

	return &fixture{
		db:          db,
		sink:        sink,
		dispatcher:  dispatcher,
		users:       NewUserService(db),
		friends:     NewFriendService(db, dispatcher, "http://localhost:3000"),
		groups:      NewGroupService(db),
		events:      NewEventService(db, dispatcher, time.UTC),
		invitations: NewInvitationService(db),
		calendar:    NewCalendarService(db, time.UTC),
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
	}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func (f *fixture) befriend(t *testing.T, a, b *models.User) {
	t.Helper()
	friendship := &models.Friendship{FromUserID: a.ID, ToUserID: b.ID, IsAccepted: true}
	if err := f.db.Create(friendship).Error; err != nil {
		t.Fatalf("failed to befriend %s and %s: %v", a.Username, b.Username, err)
	}
}

func (f *fixture) event(t *testing.T, owner *models.User, cmd EventCommand) *models.Event {
	t.Helper()
	event, err := f.events.Create(context.Background(), owner.ID, cmd)
	if err != nil {
		t.Fatalf("failed to create event %q: %v", cmd.Title, err)
	}
	return event
}

func (f *fixture) invite(t *testing.T, event *models.Event, user *models.User, status models.InvitationStatus) *models.EventInvitation {
	t.Helper()
	invitation := &models.EventInvitation{EventID: event.ID, UserID: user.ID, Status: status}
	if err := f.db.Create(invitation).Error; err != nil {
		t.Fatalf("failed to invite %s: %v", user.Username, err)
	}
	return invitation
}

func (f *fixture) invitationStatus(t *testing.T, id uint) models.InvitationStatus {
	t.Helper()
	var invitation models.EventInvitation
	if err := f.db.First(&invitation, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load invitation %d: %v", id, err)
	}
	return invitation.Status
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

// at builds a UTC time on 2025-01-06, a Monday, shifted by days.
func at(days, hour, minute int) time.Time {
	return time.Date(2025, time.January, 6+days, hour, minute, 0, 0, time.UTC)
}

func slot(title string, start, end time.Time) EventCommand {
	return EventCommand{Title: title, StartTime: start, EndTime: end}
}

func assertErrorAs[T error](t *testing.T, err error) {
	t.Helper()
	var target T
	if !errors.As(err, &target) {
		t.Fatalf("expected %T, got %v", target, err)
	}
}
