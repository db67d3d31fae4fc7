// File: /controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mycalendar-api/models"
	"mycalendar-api/services"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.userService.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteAccount removes the caller's account with all their events, groups,
// friendships and invitations.
func (uc *UserController) DeleteAccount(c *gin.Context) {
	if err := uc.userService.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (uc *UserController) SearchUsers(c *gin.Context) {
	users, err := uc.userService.Search(c.Request.Context(), currentUserID(c), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to search users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": models.ToSummaries(users),
		"count": len(users),
	})
}
