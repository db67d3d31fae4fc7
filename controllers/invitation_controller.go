package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"mycalendar-api/services"
)

type InvitationController struct {
	invitationService *services.InvitationService
}

func NewInvitationController(invitationService *services.InvitationService) *InvitationController {
	return &InvitationController{invitationService: invitationService}
}

type RespondInvitationRequest struct {
	Decision services.InvitationDecision `json:"decision" binding:"required"` // accept | decline
}

func (ic *InvitationController) GetInvitations(c *gin.Context) {
	inbox, err := ic.invitationService.Inbox(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch invitations")
		return
	}

	c.JSON(http.StatusOK, inbox)
}

func (ic *InvitationController) RespondToInvitation(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return
	}

	var req RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := ic.invitationService.Respond(c.Request.Context(), uint(invitationID), currentUserID(c), req.Decision)
	if err != nil {
		respondError(c, err, "Failed to respond to invitation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Invitation " + string(invitation.Status),
		"invitation": invitation.ToResponse(),
	})
}
