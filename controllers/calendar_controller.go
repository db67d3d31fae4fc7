package controllers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"mycalendar-api/services"
)

type CalendarController struct {
	calendarService *services.CalendarService
}

func NewCalendarController(calendarService *services.CalendarService) *CalendarController {
	return &CalendarController{calendarService: calendarService}
}

func weekOffset(c *gin.Context) (int, bool) {
	offset, err := strconv.Atoi(c.DefaultQuery("week", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week must be an integer offset"})
		return 0, false
	}
	return offset, true
}

func (cc *CalendarController) GetWeek(c *gin.Context) {
	offset, ok := weekOffset(c)
	if !ok {
		return
	}

	view, err := cc.calendarService.WeekView(c.Request.Context(), currentUserID(c), offset)
	if err != nil {
		respondError(c, err, "Failed to load calendar")
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetFriendWeek shows another user's week with free/busy masking.
func (cc *CalendarController) GetFriendWeek(c *gin.Context) {
	offset, ok := weekOffset(c)
	if !ok {
		return
	}

	view, err := cc.calendarService.FriendWeekView(c.Request.Context(), currentUserID(c), c.Param("id"), offset)
	if err != nil {
		respondError(c, err, "Failed to load calendar")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (cc *CalendarController) ExportICS(c *gin.Context) {
	var buf bytes.Buffer
	if err := cc.calendarService.ExportICS(c.Request.Context(), currentUserID(c), &buf); err != nil {
		respondError(c, err, "Failed to export calendar")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="mycalendar.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}
