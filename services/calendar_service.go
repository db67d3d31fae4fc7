package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"gorm.io/gorm"
	"mycalendar-api/models"
	"mycalendar-api/repositories"
)

const (
	daysPerWeek   = 7
	minutesPerDay = 24 * 60
	dateLayout    = "2006-01-02"
	icsProdID     = "-//MyCalendar//MyCalendar API//EN"
)

type CalendarService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewCalendarService(db *gorm.DB, loc *time.Location) *CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{
		db:  db,
		loc: loc,
		now: time.Now,
	}
}

// startOfWeek returns Monday 00:00 of the current week shifted by offset weeks.
func (s *CalendarService) startOfWeek(offset int) time.Time {
	now := s.now().In(s.loc)
	sinceMonday := (int(now.Weekday()) + 6) % daysPerWeek
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return midnight.AddDate(0, 0, -sinceMonday+offset*daysPerWeek)
}

type entryMask func(event *models.Event) (bool, error)

func (s *CalendarService) buildWeek(ctx context.Context, ownerID string, offset int, visible entryMask) (*models.WeekView, error) {
	start := s.startOfWeek(offset)
	end := start.AddDate(0, 0, daysPerWeek)

	events, err := repositories.NewEventRepository(s.db.WithContext(ctx)).
		ListCommitted(ownerID, repositories.CommittedFilter{From: start, To: end})
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}

	dayStarts := make([]time.Time, daysPerWeek+1)
	days := make([]models.CalendarDay, daysPerWeek)
	for i := 0; i <= daysPerWeek; i++ {
		dayStarts[i] = start.AddDate(0, 0, i)
	}
	for i := 0; i < daysPerWeek; i++ {
		days[i] = models.CalendarDay{
			Date:    dayStarts[i].Format(dateLayout),
			Weekday: dayStarts[i].Weekday().String(),
			Events:  []models.CalendarEntry{},
		}
	}

	for i := range events {
		event := &events[i]
		startLocal := event.StartTime.In(s.loc)

		day := -1
		for d := 0; d < daysPerWeek; d++ {
			if !startLocal.Before(dayStarts[d]) && startLocal.Before(dayStarts[d+1]) {
				day = d
				break
			}
		}
		if day < 0 {
			continue
		}

		// Heights are wall-clock minutes so blocks line up with the hour grid
		// on DST days. An event running past midnight ends at 24:00.
		startMinutes := startLocal.Hour()*60 + startLocal.Minute()
		endMinutes := minutesPerDay
		if endLocal := event.EndTime.In(s.loc); endLocal.Before(dayStarts[day+1]) {
			endMinutes = endLocal.Hour()*60 + endLocal.Minute()
		}

		entry := models.CalendarEntry{
			ID:             event.ID,
			Title:          event.Title,
			Tag:            event.Tag,
			Visible:        true,
			StartOffset:    snapToGrid(startMinutes),
			DurationHeight: snapToGrid(endMinutes - startMinutes),
		}

		ok, err := visible(event)
		if err != nil {
			return nil, err
		}
		if !ok {
			entry.Title = ""
			entry.Tag = models.EventTagHidden
			entry.Visible = false
		}

		days[day].Events = append(days[day].Events, entry)
	}

	return &models.WeekView{
		OwnerID:   ownerID,
		WeekStart: start,
		WeekEnd:   start.AddDate(0, 0, daysPerWeek-1),
		PrevWeek:  offset - 1,
		NextWeek:  offset + 1,
		Days:      days,
	}, nil
}

func snapToGrid(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return minutes / GridMinutes * GridMinutes
}

// WeekView renders userID's own committed events for the week at offset.
func (s *CalendarService) WeekView(ctx context.Context, userID string, offset int) (*models.WeekView, error) {
	return s.buildWeek(ctx, userID, offset, func(*models.Event) (bool, error) { return true, nil })
}

// FriendWeekView renders ownerID's week as seen by viewerID. Events the viewer
// may not see keep their slot but lose their title and tag.
func (s *CalendarService) FriendWeekView(ctx context.Context, viewerID, ownerID string, offset int) (*models.WeekView, error) {
	db := s.db.WithContext(ctx)
	if _, err := repositories.NewUserRepository(db).GetByID(ownerID); err != nil {
		return nil, notFoundOr(err, "user")
	}

	return s.buildWeek(ctx, ownerID, offset, func(event *models.Event) (bool, error) {
		return CanView(event, viewerID, newViewerFacts(db, event.ID, viewerID))
	})
}

// ExportICS writes userID's committed events as an iCalendar feed.
func (s *CalendarService) ExportICS(ctx context.Context, userID string, w io.Writer) error {
	events, err := repositories.NewEventRepository(s.db.WithContext(ctx)).
		ListCommitted(userID, repositories.CommittedFilter{})
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProdID)

	stamp := s.now().UTC()
	for i := range events {
		cal.Children = append(cal.Children, toVEvent(&events[i], stamp))
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func toVEvent(event *models.Event, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.ID+"@mycalendar")
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime.UTC())

	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Tag != "" {
		ve.Props.SetText(ical.PropCategories, string(event.Tag))
	}
	if event.CreatedBy.Email != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", event.CreatedBy.Email))
		ve.Props.Add(p)
	}
	return ve
}
