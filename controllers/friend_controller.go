package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"mycalendar-api/models"
	"mycalendar-api/services"
	"mycalendar-api/utils"
)

type FriendController struct {
	friendService *services.FriendService
}

func NewFriendController(friendService *services.FriendService) *FriendController {
	return &FriendController{friendService: friendService}
}

type SendFriendRequestRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type InviteByEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (fc *FriendController) GetFriends(c *gin.Context) {
	friends, err := fc.friendService.ListFriends(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch friends")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"friends": models.ToSummaries(friends),
		"count":   len(friends),
	})
}

func (fc *FriendController) RemoveFriend(c *gin.Context) {
	if err := fc.friendService.Remove(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to remove friend")
		return
	}

	utils.SendSuccess(c, "Friend removed successfully", nil)
}

func (fc *FriendController) GetFriendshipStatus(c *gin.Context) {
	status, err := fc.friendService.Status(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch friendship status")
		return
	}

	c.JSON(http.StatusOK, status)
}

func (fc *FriendController) InviteByEmail(c *gin.Context) {
	var req InviteByEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := fc.friendService.InviteByEmail(c.Request.Context(), currentUserID(c), req.Email); err != nil {
		respondError(c, err, "Failed to send invitation")
		return
	}

	utils.SendSuccess(c, "Invitation sent successfully", nil)
}

func (fc *FriendController) SendFriendRequest(c *gin.Context) {
	var req SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := fc.friendService.SendRequest(c.Request.Context(), currentUserID(c), req.UserID)
	if err != nil {
		respondError(c, err, "Failed to send friend request")
		return
	}

	utils.SendCreated(c, "Friend request sent successfully", request.ToRequestResponse())
}

func (fc *FriendController) GetFriendRequests(c *gin.Context) {
	requests, err := fc.friendService.ListPendingReceived(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch friend requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": toRequestResponses(requests),
		"count":    len(requests),
	})
}

func (fc *FriendController) GetSentFriendRequests(c *gin.Context) {
	requests, err := fc.friendService.ListPendingSent(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch sent requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": toRequestResponses(requests),
		"count":    len(requests),
	})
}

func (fc *FriendController) AcceptFriendRequest(c *gin.Context) {
	fc.respond(c, true)
}

func (fc *FriendController) DeclineFriendRequest(c *gin.Context) {
	fc.respond(c, false)
}

func (fc *FriendController) respond(c *gin.Context, accept bool) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	if err := fc.friendService.Respond(c.Request.Context(), uint(requestID), currentUserID(c), accept); err != nil {
		respondError(c, err, "Failed to respond to friend request")
		return
	}

	message := "Friend request declined"
	if accept {
		message = "Friend request accepted successfully"
	}
	utils.SendSuccess(c, message, nil)
}

func toRequestResponses(requests []models.Friendship) []models.FriendRequestResponse {
	responses := make([]models.FriendRequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, requests[i].ToRequestResponse())
	}
	return responses
}
