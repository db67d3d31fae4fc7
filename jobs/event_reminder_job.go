// File: /jobs/event_reminder_job.go
package jobs

import (
	"context"
	"log"
	"time"

	"mycalendar-api/services"
)

// EventReminderJob periodically reminds owners and accepted invitees of
// events starting lead from now. Consecutive runs cover adjacent windows so
// an event is reminded once per process.
type EventReminderJob struct {
	eventService *services.EventService
	lead         time.Duration
	interval     time.Duration
	now          func() time.Time

	cursor time.Time
	ticker *time.Ticker
	done   chan struct{}
}

func NewEventReminderJob(eventService *services.EventService, lead, interval time.Duration) *EventReminderJob {
	return &EventReminderJob{
		eventService: eventService,
		lead:         lead,
		interval:     interval,
		now:          time.Now,
		done:         make(chan struct{}),
	}
}

// Start begins the reminder job
func (j *EventReminderJob) Start() {
	log.Printf("Event reminder job started (lead %s, every %s)", j.lead, j.interval)
	j.ticker = time.NewTicker(j.interval)

	go func() {
		// Run immediately on start
		j.run(context.Background())

		for {
			select {
			case <-j.ticker.C:
				j.run(context.Background())
			case <-j.done:
				log.Println("Event reminder job stopped")
				return
			}
		}
	}()
}

// Stop stops the reminder job
func (j *EventReminderJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// run reminds events starting in [cursor, now+lead+interval).
func (j *EventReminderJob) run(ctx context.Context) int {
	now := j.now()
	from := now.Add(j.lead)
	if !j.cursor.IsZero() {
		from = j.cursor
	}
	to := now.Add(j.lead + j.interval)
	if !to.After(from) {
		return 0
	}

	queued, err := j.eventService.SendReminders(ctx, from, to)
	if err != nil {
		log.Printf("Error during event reminders: %v", err)
		return 0
	}
	j.cursor = to

	if queued > 0 {
		log.Printf("Queued %d event reminders", queued)
	}
	return queued
}
