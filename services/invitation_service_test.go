package services

import (
	"context"
	"testing"

	"mycalendar-api/models"
)

func TestAcceptWithOverlapKeepsStatus(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	f.event(t, bob, slot("Dentist", at(0, 10, 0), at(0, 11, 0)))
	party := f.event(t, alice, slot("Brunch", at(0, 10, 30), at(0, 12, 0)))
	invitation := f.invite(t, party, bob, models.InvitationStatusPending)

	_, err := f.invitations.Respond(context.Background(), invitation.ID, bob.ID, DecisionAccept)
	assertErrorAs[*ConflictError](t, err)

	if got := f.invitationStatus(t, invitation.ID); got != models.InvitationStatusPending {
		t.Errorf("status after failed accept = %q, want pending", got)
	}

	// declining ignores the overlap
	if _, err := f.invitations.Respond(context.Background(), invitation.ID, bob.ID, DecisionDecline); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if got := f.invitationStatus(t, invitation.ID); got != models.InvitationStatusDeclined {
		t.Errorf("status after decline = %q, want declined", got)
	}
}

func TestAcceptOverlapsWithOtherAcceptedInvitation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	first := f.event(t, alice, slot("Movie", at(4, 20, 0), at(4, 22, 0)))
	second := f.event(t, carol, slot("Concert", at(4, 21, 0), at(4, 23, 0)))
	f.invite(t, first, bob, models.InvitationStatusAccepted)
	invitation := f.invite(t, second, bob, models.InvitationStatusPending)

	_, err := f.invitations.Respond(context.Background(), invitation.ID, bob.ID, DecisionAccept)
	assertErrorAs[*ConflictError](t, err)
}

func TestAcceptIgnoresTheInvitedEventItself(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	event := f.event(t, alice, slot("Brunch", at(0, 10, 0), at(0, 12, 0)))
	invitation := f.invite(t, event, bob, models.InvitationStatusAccepted)

	// accepting again must not collide with the event being accepted
	got, err := f.invitations.Respond(context.Background(), invitation.ID, bob.ID, "Accept")
	if err != nil {
		t.Fatalf("re-accept failed: %v", err)
	}
	if got.Status != models.InvitationStatusAccepted {
		t.Errorf("status = %q, want accepted", got.Status)
	}
}

func TestRespondErrors(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	event := f.event(t, alice, slot("Brunch", at(0, 10, 0), at(0, 12, 0)))
	invitation := f.invite(t, event, bob, models.InvitationStatusPending)

	_, err := f.invitations.Respond(context.Background(), invitation.ID, carol.ID, DecisionAccept)
	assertErrorAs[*NotFoundError](t, err)

	_, err = f.invitations.Respond(context.Background(), invitation.ID+100, bob.ID, DecisionAccept)
	assertErrorAs[*NotFoundError](t, err)

	_, err = f.invitations.Respond(context.Background(), invitation.ID, bob.ID, "maybe")
	assertErrorAs[*ValidationError](t, err)

	if n := len(f.sink.sent()); n != 0 {
		t.Errorf("responding sent %d notifications", n)
	}
}

func TestInbox(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	mine := f.event(t, alice, slot("Planning", at(0, 9, 0), at(0, 10, 0)))
	f.invite(t, mine, bob, models.InvitationStatusPending)

	theirs := f.event(t, bob, slot("Lunch", at(0, 12, 0), at(0, 13, 0)))
	later := f.event(t, bob, slot("Drinks", at(0, 18, 0), at(0, 19, 0)))
	f.invite(t, theirs, alice, models.InvitationStatusPending)
	f.invite(t, later, alice, models.InvitationStatusAccepted)

	inbox, err := f.invitations.Inbox(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}

	if len(inbox.PendingReceived) != 1 || inbox.PendingReceived[0].EventTitle != "Lunch" {
		t.Errorf("pending received = %+v", inbox.PendingReceived)
	}
	if len(inbox.AcceptedReceived) != 1 || inbox.AcceptedReceived[0].EventTitle != "Drinks" {
		t.Errorf("accepted received = %+v", inbox.AcceptedReceived)
	}
	if len(inbox.PendingSent) != 1 || inbox.PendingSent[0].User.ID != bob.ID {
		t.Errorf("pending sent = %+v", inbox.PendingSent)
	}
}

func TestAcceptAfterRescheduleUsesCurrentTimes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	f.event(t, bob, slot("Gym", at(0, 14, 0), at(0, 15, 0)))
	event := f.event(t, alice, slot("Sync", at(0, 10, 0), at(0, 11, 0)))
	invitation := f.invite(t, event, bob, models.InvitationStatusAccepted)

	// moved onto bob's gym slot: the old acceptance is reset and a new one
	// must be checked against the new times
	if _, _, err := f.events.Edit(ctx, event.ID, alice.ID, slot("Sync", at(0, 14, 30), at(0, 15, 30))); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got := f.invitationStatus(t, invitation.ID); got != models.InvitationStatusPending {
		t.Fatalf("status after reschedule = %q, want pending", got)
	}

	_, err := f.invitations.Respond(ctx, invitation.ID, bob.ID, DecisionAccept)
	assertErrorAs[*ConflictError](t, err)
	if got := f.invitationStatus(t, invitation.ID); got != models.InvitationStatusPending {
		t.Errorf("status after conflicting accept = %q, want pending", got)
	}

	if _, _, err := f.events.Edit(ctx, event.ID, alice.ID, slot("Sync", at(0, 16, 0), at(0, 17, 0))); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	accepted, err := f.invitations.Respond(ctx, invitation.ID, bob.ID, DecisionAccept)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != models.InvitationStatusAccepted || !accepted.Event.StartTime.Equal(at(0, 16, 0)) {
		t.Errorf("accepted = %q at %v, want accepted at 16:00", accepted.Status, accepted.Event.StartTime)
	}
}
