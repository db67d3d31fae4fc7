package services

import (
	"fmt"
	"time"

	"mycalendar-api/models"
)

// Message is one outgoing notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// NotificationSink delivers a message. Implementations may block.
type NotificationSink interface {
	Send(msg Message) error
}

const messageTimeLayout = "02-01-2006 15:04"

const signature = "– MyCalendar Team"

func formatRange(event *models.Event, loc *time.Location) string {
	return fmt.Sprintf("%s - %s",
		event.StartTime.In(loc).Format(messageTimeLayout),
		event.EndTime.In(loc).Format(messageTimeLayout))
}

func friendInviteMessage(event *models.Event, owner, friend *models.User, loc *time.Location) Message {
	return Message{
		To:      friend.Email,
		Subject: fmt.Sprintf("You’ve been invited to '%s'!", event.Title),
		Body: fmt.Sprintf("Hi %s,\n\n%s has invited you to the event '%s'.\nTime: %s\n\n"+
			"Please check your calendar and respond to the invitation.\n\n%s",
			friend.Username, owner.Username, event.Title, formatRange(event, loc), signature),
	}
}

func groupInviteMessage(event *models.Event, owner *models.User, group *models.Group, member *models.User, loc *time.Location) Message {
	return Message{
		To:      member.Email,
		Subject: fmt.Sprintf("You’ve been invited to '%s'!", event.Title),
		Body: fmt.Sprintf("Hi %s,\n\n%s has invited your group '%s' to the event '%s'.\nTime: %s\n\n"+
			"Please check your calendar and respond to the invitation.\n\n%s",
			member.Username, owner.Username, group.Name, event.Title, formatRange(event, loc), signature),
	}
}

func rescheduleMessage(event *models.Event, invitee *models.User, loc *time.Location) Message {
	return Message{
		To:      invitee.Email,
		Subject: fmt.Sprintf("Event '%s' has been rescheduled", event.Title),
		Body: fmt.Sprintf("Hi %s,\n\nThe event '%s' has new start/end times.\nNew time: %s\n\n"+
			"Please check your calendar and re-accept the invitation.\n\n%s",
			invitee.Username, event.Title, formatRange(event, loc), signature),
	}
}

func joinInviteMessage(sender *models.User, email, appURL string) Message {
	return Message{
		To:      email,
		Subject: fmt.Sprintf("%s invited you to join MyCalendar 🎉", sender.FullName()),
		Body: fmt.Sprintf("Hey there!\n\n%s is inviting you to join MyCalendar.\n"+
			"Join now to plan events and share calendars together!\n\n"+
			"Click the link below to register:\n%s/register\n\nSee you soon!\n%s",
			sender.Username, appURL, signature),
	}
}

func reminderMessage(event *models.Event, recipient *models.User, loc *time.Location) Message {
	return Message{
		To:      recipient.Email,
		Subject: fmt.Sprintf("Reminder: '%s' starts soon", event.Title),
		Body: fmt.Sprintf("Hi %s,\n\nThis is a reminder that '%s' is coming up.\nTime: %s\n\n%s",
			recipient.Username, event.Title, formatRange(event, loc), signature),
	}
}
