package models

import "time"

// CalendarEntry is one event positioned on a day column. Offsets and heights
// are in minutes, snapped to the 10-minute grid.
type CalendarEntry struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Tag            EventTag `json:"tag"`
	Visible        bool     `json:"visible"`
	StartOffset    int      `json:"start_offset"`
	DurationHeight int      `json:"duration_height"`
}

type CalendarDay struct {
	Date    string          `json:"date"`
	Weekday string          `json:"weekday"`
	Events  []CalendarEntry `json:"events"`
}

type WeekView struct {
	OwnerID   string        `json:"owner_id"`
	WeekStart time.Time     `json:"week_start"`
	WeekEnd   time.Time     `json:"week_end"`
	PrevWeek  int           `json:"prev_week"`
	NextWeek  int           `json:"next_week"`
	Days      []CalendarDay `json:"days"`
}
