package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"datascout/internal/middleware"
	"datascout/internal/utils"
	"datascout/pkg/response"
)

func getCorrelationID(c *gin.Context) string {
	if correlationID, exists := c.Get(middleware.CorrelationIDKey); exists {
		if id, ok := correlationID.(string); ok {
			return id
		}
	}
	return ""
}

// sendError writes err with the HTTP status of its code
func sendError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(utils.GetErrorStatus(err), response.ErrorResponseFromError(err, getCorrelationID(c)))
}

// parseConnectionID reads the :id path parameter
func parseConnectionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		sendError(c, utils.NewValidationError("Invalid connection id", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}
