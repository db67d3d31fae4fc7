package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mycalendar-api/models"
	"mycalendar-api/services"
	"mycalendar-api/utils"
)

type GroupController struct {
	groupService *services.GroupService
}

func NewGroupController(groupService *services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

type GroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

func (gc *GroupController) GetGroups(c *gin.Context) {
	owned, member, err := gc.groupService.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch groups")
		return
	}

	c.JSON(http.StatusOK, models.GroupListResponse{
		OwnedGroups:  toGroupResponses(owned),
		MemberGroups: toGroupResponses(member),
	})
}

func (gc *GroupController) CreateGroup(c *gin.Context) {
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := gc.groupService.Create(c.Request.Context(), currentUserID(c), services.GroupInput{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		respondError(c, err, "Failed to create group")
		return
	}

	c.JSON(http.StatusCreated, group.ToResponse())
}

func (gc *GroupController) GetGroup(c *gin.Context) {
	group, err := gc.groupService.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch group")
		return
	}

	c.JSON(http.StatusOK, group.ToResponse())
}

func (gc *GroupController) UpdateGroup(c *gin.Context) {
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := gc.groupService.Update(c.Request.Context(), c.Param("id"), currentUserID(c), services.GroupInput{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		respondError(c, err, "Failed to update group")
		return
	}

	c.JSON(http.StatusOK, group.ToResponse())
}

func (gc *GroupController) DeleteGroup(c *gin.Context) {
	if err := gc.groupService.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err, "Failed to delete group")
		return
	}

	utils.SendSuccess(c, "Group deleted successfully", nil)
}

func toGroupResponses(groups []models.Group) []models.GroupResponse {
	responses := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}
	return responses
}
