package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorKind lets clients branch on the failure class without parsing messages.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindForbidden  ErrorKind = "forbidden"
	KindNotFound   ErrorKind = "not_found"
	KindDelivery   ErrorKind = "delivery_failed"
	KindInternal   ErrorKind = "internal"
)

var kindStatus = map[ErrorKind]int{
	KindValidation: http.StatusBadRequest,
	KindConflict:   http.StatusConflict,
	KindForbidden:  http.StatusForbidden,
	KindNotFound:   http.StatusNotFound,
	KindDelivery:   http.StatusBadGateway,
	KindInternal:   http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for kind. Unknown kinds are 500.
func StatusFor(kind ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type ErrorResponse struct {
	Error string    `json:"error"`
	Kind  ErrorKind `json:"kind"`
	Code  int       `json:"code"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SendKind writes the error envelope with the status mapped from kind.
func SendKind(c *gin.Context, kind ErrorKind, message string) {
	status := StatusFor(kind)
	c.JSON(status, ErrorResponse{
		Error: message,
		Kind:  kind,
		Code:  status,
	})
}

func SendValidationError(c *gin.Context, message string) {
	SendKind(c, KindValidation, message)
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Message: message, Data: data})
}
