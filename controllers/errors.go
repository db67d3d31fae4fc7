package controllers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"mycalendar-api/middleware"
	"mycalendar-api/services"
	"mycalendar-api/utils"
)

// respondError maps the service error kinds to status codes. Anything else is
// logged and reported as a generic 500.
func respondError(c *gin.Context, err error, fallback string) {
	var (
		validationErr *services.ValidationError
		conflictErr   *services.ConflictError
		authErr       *services.AuthorizationError
		notFoundErr   *services.NotFoundError
		deliveryErr   *services.DeliveryError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.SendValidationError(c, validationErr.Message)
	case errors.As(err, &conflictErr):
		utils.SendKind(c, utils.KindConflict, conflictErr.Message)
	case errors.As(err, &authErr):
		utils.SendKind(c, utils.KindForbidden, authErr.Message)
	case errors.As(err, &notFoundErr):
		utils.SendKind(c, utils.KindNotFound, notFoundErr.Message)
	case errors.As(err, &deliveryErr):
		log.Printf("Delivery failed: %v", deliveryErr.Err)
		utils.SendKind(c, utils.KindDelivery, deliveryErr.Message)
	default:
		_ = c.Error(err)
		utils.SendKind(c, utils.KindInternal, fallback)
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
