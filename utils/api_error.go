package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ApiError is the body of every non-2xx JSON response
type ApiError struct {
	Timestamp        int64             `json:"timestamp"`
	Status           int               `json:"status"`
	Message          string            `json:"message"`
	URL              string            `json:"url"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

func NewApiError(c *gin.Context, status int, message string) ApiError {
	return ApiError{
		Timestamp: time.Now().UnixMilli(),
		Status:    status,
		Message:   message,
		URL:       c.Request.URL.Path,
	}
}

func AbortWithApiError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, NewApiError(c, status, message))
}
