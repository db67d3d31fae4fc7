package services

import (
	"context"
	"testing"
	"time"

	"mycalendar-api/models"
)

func TestCreateValidationOrder(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")

	tests := []struct {
		name    string
		cmd     EventCommand
		wantMsg string
	}{
		{
			name:    "missing title",
			cmd:     EventCommand{StartTime: at(0, 11, 5), EndTime: at(0, 10, 0)},
			wantMsg: "Title, start time and end time are required.",
		},
		{
			name:    "missing end",
			cmd:     EventCommand{Title: "Standup", StartTime: at(0, 10, 0)},
			wantMsg: "Title, start time and end time are required.",
		},
		{
			name:    "ordering before grid",
			cmd:     slot("Standup", at(0, 11, 5), at(0, 10, 0)),
			wantMsg: "Start time must be before end time.",
		},
		{
			name:    "off grid",
			cmd:     slot("Standup", at(0, 10, 0), at(0, 10, 25)),
			wantMsg: "Minutes must be in 10-minute intervals.",
		},
		{
			name: "friend and group together",
			cmd: EventCommand{
				Title: "Standup", StartTime: at(0, 10, 0), EndTime: at(0, 11, 0),
				InviteFriendID: "f1", InviteGroupID: "g1",
			},
			wantMsg: "You can invite either a friend or a group, not both.",
		},
		{
			name:    "unknown tag",
			cmd:     EventCommand{Title: "Standup", StartTime: at(0, 10, 0), EndTime: at(0, 11, 0), Tag: "work"},
			wantMsg: `Unknown tag "work".`,
		},
		{
			name:    "unknown visibility",
			cmd:     EventCommand{Title: "Standup", StartTime: at(0, 10, 0), EndTime: at(0, 11, 0), Visibility: "friends"},
			wantMsg: `Unknown visibility "friends".`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.Create(context.Background(), owner.ID, tt.cmd)
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}

	if n := f.count(t, &models.Event{}, "created_by_id = ?", owner.ID); n != 0 {
		t.Errorf("rejected creates left %d events", n)
	}
}

func TestCreateDefaultsToPrivateAndUTC(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")

	sofia := time.FixedZone("EET", 2*3600)
	event := f.event(t, owner, slot("Lunch", time.Date(2025, 1, 6, 12, 0, 0, 0, sofia), time.Date(2025, 1, 6, 13, 0, 0, 0, sofia)))

	if event.Visibility != models.VisibilityPrivate {
		t.Errorf("visibility = %q, want private", event.Visibility)
	}
	if !event.StartTime.Equal(at(0, 10, 0)) {
		t.Errorf("start = %v, want 10:00 UTC", event.StartTime)
	}
}

func TestCreateChecksGridInCalendarZone(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)

	// 10:00 in Kathmandu is 04:15 in the UTC calendar
	_, err := f.events.Create(context.Background(), owner.ID, slot("Call",
		time.Date(2025, 1, 6, 10, 0, 0, 0, kathmandu), time.Date(2025, 1, 6, 11, 0, 0, 0, kathmandu)))
	assertErrorAs[*ValidationError](t, err)

	event := f.event(t, owner, slot("Call",
		time.Date(2025, 1, 6, 9, 45, 0, 0, kathmandu), time.Date(2025, 1, 6, 10, 45, 0, 0, kathmandu)))
	if !event.StartTime.Equal(at(0, 4, 0)) {
		t.Errorf("start = %v, want 04:00 UTC", event.StartTime)
	}
}

func TestCreateRejectsOverlapWithOwnEvent(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")
	f.event(t, owner, slot("Standup", at(0, 10, 0), at(0, 11, 0)))

	_, err := f.events.Create(context.Background(), owner.ID, slot("Review", at(0, 10, 30), at(0, 11, 30)))
	assertErrorAs[*ConflictError](t, err)

	// touching ranges are fine
	f.event(t, owner, slot("Review", at(0, 11, 0), at(0, 12, 0)))
	f.event(t, owner, slot("Breakfast", at(0, 9, 0), at(0, 10, 0)))
}

func TestCreateRejectsOverlapWithAcceptedInvitation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	party := f.event(t, bob, slot("Party", at(0, 20, 0), at(0, 23, 0)))
	invitation := f.invite(t, party, alice, models.InvitationStatusPending)

	// a pending invitation does not occupy the slot
	if conflict, err := f.events.HasConflict(context.Background(), alice.ID, at(0, 21, 0), at(0, 22, 0), ""); err != nil || conflict {
		t.Fatalf("pending invitation reported as conflict: %v %v", conflict, err)
	}

	if err := f.db.Model(invitation).Update("status", models.InvitationStatusAccepted).Error; err != nil {
		t.Fatalf("failed to accept: %v", err)
	}

	_, err := f.events.Create(context.Background(), alice.ID, slot("Gym", at(0, 21, 0), at(0, 22, 0)))
	assertErrorAs[*ConflictError](t, err)
}

func TestEditExcludesItselfButNotOthers(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")
	standup := f.event(t, owner, slot("Standup", at(0, 10, 0), at(0, 11, 0)))
	f.event(t, owner, slot("Lunch", at(0, 12, 0), at(0, 13, 0)))

	if _, _, err := f.events.Edit(context.Background(), standup.ID, owner.ID, slot("Standup", at(0, 10, 30), at(0, 11, 30))); err != nil {
		t.Fatalf("moving within own slot failed: %v", err)
	}

	_, _, err := f.events.Edit(context.Background(), standup.ID, owner.ID, slot("Standup", at(0, 11, 30), at(0, 12, 30)))
	assertErrorAs[*ConflictError](t, err)
}

func TestEditRejectsOffGridTimes(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")
	event := f.event(t, owner, slot("Standup", at(0, 10, 0), at(0, 11, 0)))

	_, _, err := f.events.Edit(context.Background(), event.ID, owner.ID, slot("Standup", at(0, 10, 0), at(0, 11, 3)))
	assertErrorAs[*ValidationError](t, err)
}

func TestEditByNonOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")
	other := f.user(t, "bob")
	event := f.event(t, owner, slot("Standup", at(0, 10, 0), at(0, 11, 0)))

	_, _, err := f.events.Edit(context.Background(), event.ID, other.ID, slot("Hijacked", at(0, 10, 0), at(0, 11, 0)))
	assertErrorAs[*AuthorizationError](t, err)

	_, _, err = f.events.Edit(context.Background(), "missing", owner.ID, slot("Standup", at(0, 10, 0), at(0, 11, 0)))
	assertErrorAs[*NotFoundError](t, err)
}

func TestEditInvitationReset(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	event := f.event(t, owner, slot("Dinner", at(1, 19, 0), at(1, 21, 0)))
	bobInvite := f.invite(t, event, bob, models.InvitationStatusAccepted)
	carolInvite := f.invite(t, event, carol, models.InvitationStatusDeclined)

	// identical times: nothing resets, nobody is told
	_, rescheduled, err := f.events.Edit(context.Background(), event.ID, owner.ID, slot("Dinner party", at(1, 19, 0), at(1, 21, 0)))
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if rescheduled {
		t.Errorf("identical times reported as reschedule")
	}
	if got := f.invitationStatus(t, bobInvite.ID); got != models.InvitationStatusAccepted {
		t.Errorf("bob's invitation = %q, want accepted", got)
	}

	// one second later
	cmd := slot("Dinner party", at(1, 19, 0).Add(time.Second), at(1, 21, 0))
	_, rescheduled, err = f.events.Edit(context.Background(), event.ID, owner.ID, cmd)
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if !rescheduled {
		t.Errorf("one second shift not reported as reschedule")
	}
	for _, id := range []uint{bobInvite.ID, carolInvite.ID} {
		if got := f.invitationStatus(t, id); got != models.InvitationStatusPending {
			t.Errorf("invitation %d = %q, want pending", id, got)
		}
	}

	f.dispatcher.Stop()
	if got := len(f.sink.sent()); got != 2 {
		t.Errorf("sent %d reschedule notices, want 2", got)
	}
}

func TestCreateWithFriendInvite(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.befriend(t, alice, bob)

	event := f.event(t, alice, EventCommand{
		Title: "Coffee", StartTime: at(0, 9, 0), EndTime: at(0, 9, 30), InviteFriendID: bob.ID,
	})

	if len(event.Invitations) != 1 || event.Invitations[0].UserID != bob.ID {
		t.Fatalf("invitations = %+v, want one for bob", event.Invitations)
	}
	if event.Invitations[0].Status != models.InvitationStatusPending {
		t.Errorf("status = %q, want pending", event.Invitations[0].Status)
	}

	sent := f.sink.sent()
	if len(sent) != 1 || sent[0].To != bob.Email {
		t.Fatalf("sent = %+v, want one mail to bob", sent)
	}
	if sent[0].Subject != "You’ve been invited to 'Coffee'!" {
		t.Errorf("subject = %q", sent[0].Subject)
	}
}

func TestCreateWithFriendInviteRollsBackOnDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.befriend(t, alice, bob)
	f.sink.fail = true

	_, err := f.events.Create(context.Background(), alice.ID, EventCommand{
		Title: "Coffee", StartTime: at(0, 9, 0), EndTime: at(0, 9, 30), InviteFriendID: bob.ID,
	})
	assertErrorAs[*DeliveryError](t, err)

	if n := f.count(t, &models.Event{}, "created_by_id = ?", alice.ID); n != 0 {
		t.Errorf("failed delivery left %d events", n)
	}
	if n := f.count(t, &models.EventInvitation{}, "user_id = ?", bob.ID); n != 0 {
		t.Errorf("failed delivery left %d invitations", n)
	}
}

func TestCreateInviteRules(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	stranger := f.user(t, "mallory")
	bob := f.user(t, "bob")
	f.befriend(t, bob, alice)

	bobsGroup, err := f.groups.Create(context.Background(), bob.ID, GroupInput{Name: "Bob's", MemberIDs: []string{alice.ID}})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	base := slot("Coffee", at(0, 9, 0), at(0, 9, 30))

	cmd := base
	cmd.InviteFriendID = stranger.ID
	_, err = f.events.Create(context.Background(), alice.ID, cmd)
	assertErrorAs[*ValidationError](t, err)

	cmd = base
	cmd.InviteFriendID = alice.ID
	_, err = f.events.Create(context.Background(), alice.ID, cmd)
	assertErrorAs[*ValidationError](t, err)

	cmd = base
	cmd.InviteGroupID = bobsGroup.ID
	_, err = f.events.Create(context.Background(), alice.ID, cmd)
	assertErrorAs[*AuthorizationError](t, err)

	cmd = base
	cmd.InviteGroupID = "missing"
	_, err = f.events.Create(context.Background(), alice.ID, cmd)
	assertErrorAs[*NotFoundError](t, err)
}

func TestCreateWithGroupInviteFansOut(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	f.befriend(t, alice, bob)
	f.befriend(t, carol, alice)

	group, err := f.groups.Create(context.Background(), alice.ID, GroupInput{Name: "Climbing", MemberIDs: []string{bob.ID, carol.ID}})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	event := f.event(t, alice, EventCommand{
		Title: "Bouldering", StartTime: at(2, 18, 0), EndTime: at(2, 20, 0), InviteGroupID: group.ID,
	})

	if len(event.Invitations) != 2 {
		t.Fatalf("got %d invitations, want 2", len(event.Invitations))
	}
	for _, invitation := range event.Invitations {
		if invitation.UserID == alice.ID {
			t.Errorf("owner was invited to her own event")
		}
		if invitation.GroupID == nil || *invitation.GroupID != group.ID {
			t.Errorf("invitation %d lacks group origin", invitation.ID)
		}
	}

	f.dispatcher.Stop()
	if got := len(f.sink.sent()); got != 2 {
		t.Errorf("sent %d group notices, want 2", got)
	}
}

func TestCustomSelectionIsIntersectedWithOwnFriendsAndGroups(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	stranger := f.user(t, "mallory")
	f.befriend(t, alice, bob)

	foreign, err := f.groups.Create(context.Background(), stranger.ID, GroupInput{Name: "Elsewhere"})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	event := f.event(t, alice, EventCommand{
		Title: "Picnic", StartTime: at(5, 12, 0), EndTime: at(5, 14, 0),
		Visibility:       models.VisibilityCustom,
		VisibleToFriends: []string{bob.ID, stranger.ID, bob.ID},
		VisibleToGroups:  []string{foreign.ID},
	})

	resp := event.ToResponse()
	if len(resp.VisibleToFriends) != 1 || resp.VisibleToFriends[0] != bob.ID {
		t.Errorf("visible friends = %v, want only bob", resp.VisibleToFriends)
	}
	if len(resp.VisibleToGroups) != 0 {
		t.Errorf("visible groups = %v, want none", resp.VisibleToGroups)
	}

	// leaving custom clears the selection
	if _, _, err := f.events.Edit(context.Background(), event.ID, alice.ID, slot("Picnic", at(5, 12, 0), at(5, 14, 0))); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if n := f.count(t, &models.EventVisibleFriend{}, "event_id = ?", event.ID); n != 0 {
		t.Errorf("private event kept %d selected friends", n)
	}
}

func TestCustomGroupVisibilityScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	f.befriend(t, alice, bob)
	f.befriend(t, alice, carol)

	group, err := f.groups.Create(context.Background(), alice.ID, GroupInput{Name: "Book club", MemberIDs: []string{carol.ID}})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	event := f.event(t, alice, EventCommand{
		Title: "Reading", StartTime: at(3, 18, 0), EndTime: at(3, 19, 0),
		Visibility: models.VisibilityCustom, VisibleToGroups: []string{group.ID},
	})

	for _, tc := range []struct {
		viewer *models.User
		want   bool
	}{{alice, true}, {bob, false}, {carol, true}} {
		got, err := f.events.CanUserView(context.Background(), event, tc.viewer.ID)
		if err != nil {
			t.Fatalf("CanUserView failed: %v", err)
		}
		if got != tc.want {
			t.Errorf("CanUserView(%s) = %v, want %v", tc.viewer.Username, got, tc.want)
		}
	}
}

func TestInvitedVisibilityCountsAnyInvitation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	invited := f.event(t, alice, EventCommand{
		Title: "Launch", StartTime: at(1, 9, 0), EndTime: at(1, 10, 0), Visibility: models.VisibilityInvited,
	})
	private := f.event(t, alice, slot("Retro", at(1, 11, 0), at(1, 12, 0)))
	f.invite(t, invited, bob, models.InvitationStatusDeclined)
	f.invite(t, private, bob, models.InvitationStatusDeclined)
	f.invite(t, private, carol, models.InvitationStatusAccepted)

	check := func(event *models.Event, viewer *models.User, want bool) {
		t.Helper()
		got, err := f.events.CanUserView(context.Background(), event, viewer.ID)
		if err != nil {
			t.Fatalf("CanUserView failed: %v", err)
		}
		if got != want {
			t.Errorf("CanUserView(%s, %s) = %v, want %v", event.Title, viewer.Username, got, want)
		}
	}

	check(invited, bob, true)
	check(invited, carol, false)
	check(private, bob, false)
	check(private, carol, true)
}

func TestPublicEventVisibleToEveryone(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	event := f.event(t, alice, EventCommand{
		Title: "Open day", StartTime: at(4, 10, 0), EndTime: at(4, 16, 0), Visibility: models.VisibilityPublic,
	})

	for _, name := range []string{"bob", "carol", "dave"} {
		viewer := f.user(t, name)
		got, err := f.events.Get(context.Background(), event.ID, viewer.ID)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", name, err)
		}
		if got.ID != event.ID {
			t.Errorf("Get(%s) returned %s", name, got.ID)
		}
	}
}

func TestGetHidesInvisibleEvent(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	event := f.event(t, alice, slot("Secret", at(0, 10, 0), at(0, 11, 0)))

	_, err := f.events.Get(context.Background(), event.ID, bob.ID)
	assertErrorAs[*NotFoundError](t, err)
}

func TestDeleteIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	event := f.event(t, alice, slot("Standup", at(0, 10, 0), at(0, 11, 0)))
	f.invite(t, event, bob, models.InvitationStatusAccepted)

	assertErrorAs[*AuthorizationError](t, f.events.Delete(context.Background(), event.ID, bob.ID))

	if err := f.events.Delete(context.Background(), event.ID, alice.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if n := f.count(t, &models.EventInvitation{}, "event_id = ?", event.ID); n != 0 {
		t.Errorf("delete left %d invitations", n)
	}
	assertErrorAs[*NotFoundError](t, f.events.Delete(context.Background(), event.ID, alice.ID))
}

func TestListFiltersByTag(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.event(t, alice, EventCommand{Title: "Gym", StartTime: at(1, 7, 0), EndTime: at(1, 8, 0), Tag: models.EventTagPersonal})
	f.event(t, alice, EventCommand{Title: "Grandma", StartTime: at(0, 17, 0), EndTime: at(0, 19, 0), Tag: models.EventTagFamily})
	f.event(t, alice, EventCommand{Title: "Run", StartTime: at(0, 7, 0), EndTime: at(0, 8, 0), Tag: models.EventTagPersonal})

	all, err := f.events.List(context.Background(), alice.ID, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Title != "Run" {
		t.Fatalf("List() = %d events starting with %q", len(all), all[0].Title)
	}

	personal, err := f.events.List(context.Background(), alice.ID, models.EventTagPersonal)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(personal) != 2 {
		t.Errorf("personal events = %d, want 2", len(personal))
	}

	_, err = f.events.List(context.Background(), alice.ID, "work")
	assertErrorAs[*ValidationError](t, err)
}

func TestListShowsOwnEventOnlyWhenUncommittedOrAccepted(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	solo := f.event(t, alice, slot("Solo", at(0, 8, 0), at(0, 9, 0)))
	pending := f.event(t, alice, slot("Pending", at(0, 10, 0), at(0, 11, 0)))
	accepted := f.event(t, alice, slot("Accepted", at(0, 12, 0), at(0, 13, 0)))
	f.invite(t, pending, bob, models.InvitationStatusPending)
	f.invite(t, accepted, bob, models.InvitationStatusAccepted)

	events, err := f.events.List(context.Background(), alice.ID, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := map[string]bool{}
	for _, e := range events {
		got[e.ID] = true
	}
	if !got[solo.ID] || !got[accepted.ID] || got[pending.ID] {
		t.Errorf("committed events = %v", got)
	}

	bobs, err := f.events.List(context.Background(), bob.ID, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(bobs) != 1 || bobs[0].ID != accepted.ID {
		t.Errorf("bob's committed events = %+v, want only the accepted one", bobs)
	}
}
