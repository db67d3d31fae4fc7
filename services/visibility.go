package services

import (
	"time"

	"mycalendar-api/models"
)

// GridMinutes is the scheduling resolution; every start and end time must
// sit on a multiple of it.
const GridMinutes = 10

// OnGrid reports whether t's minute component, read in t's own location, is
// on the scheduling grid.
func OnGrid(t time.Time) bool {
	return t.Minute()%GridMinutes == 0
}

// Overlaps is the half-open interval test: [s1,e1) and [s2,e2) intersect iff
// s1 < e2 and s2 < e1. Touching ranges do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// TimeRangeChanged compares two ranges at second granularity.
func TimeRangeChanged(oldStart, oldEnd, newStart, newEnd time.Time) bool {
	return !oldStart.Truncate(time.Second).Equal(newStart.Truncate(time.Second)) ||
		!oldEnd.Truncate(time.Second).Equal(newEnd.Truncate(time.Second))
}

// ValidateTimeRange checks ordering first, then the grid.
func ValidateTimeRange(start, end time.Time) error {
	if !start.Before(end) {
		return validationError("Start time must be before end time.")
	}
	if !OnGrid(start) || !OnGrid(end) {
		return validationError("Minutes must be in %d-minute intervals.", GridMinutes)
	}
	return nil
}

// ViewerFacts answers the lookups CanView may need. Lookups are lazy: only
// the branch selected by the event's visibility is consulted.
type ViewerFacts interface {
	HasInvitation() (bool, error)
	HasAcceptedInvitation() (bool, error)
	InCustomFriends() (bool, error)
	InCustomGroups() (bool, error)
}

// CanView decides whether viewerID may see event. The rules form a strict
// priority chain; the first that applies wins:
//
//	owner              -> visible
//	public             -> visible
//	invited            -> an invitation exists for the viewer, whatever its status
//	custom             -> viewer is a selected friend or a member of a selected group
//	anything else      -> the viewer holds an accepted invitation
func CanView(event *models.Event, viewerID string, facts ViewerFacts) (bool, error) {
	if viewerID == event.CreatedByID {
		return true, nil
	}

	switch event.Visibility {
	case models.VisibilityPublic:
		return true, nil
	case models.VisibilityInvited:
		return facts.HasInvitation()
	case models.VisibilityCustom:
		inFriends, err := facts.InCustomFriends()
		if err != nil || inFriends {
			return inFriends, err
		}
		return facts.InCustomGroups()
	}

	return facts.HasAcceptedInvitation()
}
