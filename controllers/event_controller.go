// File: /controllers/event_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"mycalendar-api/models"
	"mycalendar-api/services"
	"mycalendar-api/utils"
)

type EventController struct {
	eventService *services.EventService
}

func NewEventController(eventService *services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// Times are RFC 3339. Presence, ordering and the 10-minute grid are checked
// by the service so the first failing rule is reported.
type EventRequest struct {
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	StartTime        *time.Time             `json:"start_time"`
	EndTime          *time.Time             `json:"end_time"`
	Tag              models.EventTag        `json:"tag"`
	Visibility       models.EventVisibility `json:"visibility"`
	VisibleToFriends []string               `json:"visible_to_friends"`
	VisibleToGroups  []string               `json:"visible_to_groups"`
}

type CreateEventRequest struct {
	EventRequest
	InviteFriendID string `json:"invite_friend_id"`
	InviteGroupID  string `json:"invite_group_id"`
}

func (r *EventRequest) command() services.EventCommand {
	cmd := services.EventCommand{
		Title:            r.Title,
		Description:      r.Description,
		Tag:              r.Tag,
		Visibility:       r.Visibility,
		VisibleToFriends: r.VisibleToFriends,
		VisibleToGroups:  r.VisibleToGroups,
	}
	if r.StartTime != nil {
		cmd.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		cmd.EndTime = *r.EndTime
	}
	return cmd
}

func (ec *EventController) GetEvents(c *gin.Context) {
	events, err := ec.eventService.List(c.Request.Context(), currentUserID(c), models.EventTag(c.Query("tag")))
	if err != nil {
		respondError(c, err, "Failed to fetch events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": models.ToEventResponses(events),
		"count":  len(events),
	})
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := req.command()
	cmd.InviteFriendID = req.InviteFriendID
	cmd.InviteGroupID = req.InviteGroupID

	event, err := ec.eventService.Create(c.Request.Context(), currentUserID(c), cmd)
	if err != nil {
		respondError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, event.ToResponse())
}

func (ec *EventController) GetEvent(c *gin.Context) {
	event, err := ec.eventService.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch event")
		return
	}

	c.JSON(http.StatusOK, event.ToResponse())
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, rescheduled, err := ec.eventService.Edit(c.Request.Context(), c.Param("id"), currentUserID(c), req.command())
	if err != nil {
		respondError(c, err, "Failed to update event")
		return
	}

	message := "Event updated successfully"
	if rescheduled {
		message = "Event rescheduled, invitees have been notified"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     message,
		"rescheduled": rescheduled,
		"event":       event.ToResponse(),
	})
}

func (ec *EventController) DeleteEvent(c *gin.Context) {
	if err := ec.eventService.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err, "Failed to delete event")
		return
	}

	utils.SendSuccess(c, "Event deleted successfully", nil)
}
