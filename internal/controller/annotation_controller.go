package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datascout/internal/service"
	"datascout/internal/utils"
	"datascout/pkg/response"
)

type AnnotationController struct {
	service service.AnnotationService
}

// ContextRequest carries a global or table context. An empty string clears it.
type ContextRequest struct {
	Context *string `json:"context" binding:"required"`
}

// DescriptionRequest carries a column description. An empty string clears it.
type DescriptionRequest struct {
	Description *string `json:"description" binding:"required"`
}

func NewAnnotationController(service service.AnnotationService) *AnnotationController {
	return &AnnotationController{service: service}
}

// SetGlobalContext godoc
// @Summary Set the context of a connection
// @Tags annotations
// @Accept json
// @Produce json
// @Param id path int true "Connection id"
// @Param request body ContextRequest true "Context"
// @Success 200 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /schema/{id}/global/context [put]
func (ac *AnnotationController) SetGlobalContext(c *gin.Context) {
	id, ok := parseConnectionID(c)
	if !ok {
		return
	}

	var req ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, utils.NewValidationError("Invalid request body", err.Error()))
		return
	}

	found, err := ac.service.SetGlobalContext(c.Request.Context(), id, *req.Context)
	ac.respond(c, found, err, "Connection", "Global context updated")
}

// SetTableContext godoc
// @Summary Set the context of a table
// @Tags annotations
// @Accept json
// @Produce json
// @Param id path int true "Connection id"
// @Param table path string true "Table name"
// @Param request body ContextRequest true "Context"
// @Success 200 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /schema/{id}/table/{table}/context [put]
func (ac *AnnotationController) SetTableContext(c *gin.Context) {
	id, ok := parseConnectionID(c)
	if !ok {
		return
	}

	var req ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, utils.NewValidationError("Invalid request body", err.Error()))
		return
	}

	found, err := ac.service.SetTableContext(c.Request.Context(), id, c.Param("table"), *req.Context)
	ac.respond(c, found, err, "Table", "Table context updated")
}

// SetColumnDescription godoc
// @Summary Set the description of a column
// @Tags annotations
// @Accept json
// @Produce json
// @Param id path int true "Connection id"
// @Param table path string true "Table name"
// @Param column path string true "Column name"
// @Param request body DescriptionRequest true "Description"
// @Success 200 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /schema/{id}/column/{table}/{column}/description [put]
func (ac *AnnotationController) SetColumnDescription(c *gin.Context) {
	id, ok := parseConnectionID(c)
	if !ok {
		return
	}

	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, utils.NewValidationError("Invalid request body", err.Error()))
		return
	}

	found, err := ac.service.SetColumnDescription(c.Request.Context(), id, c.Param("table"), c.Param("column"), *req.Description)
	ac.respond(c, found, err, "Column", "Column description updated")
}

func (ac *AnnotationController) respond(c *gin.Context, found bool, err error, resource, message string) {
	if err != nil {
		sendError(c, err)
		return
	}
	if !found {
		sendError(c, utils.NewNotFoundError(resource))
		return
	}
	c.JSON(http.StatusOK, response.SuccessMessageResponse(message, getCorrelationID(c)))
}
