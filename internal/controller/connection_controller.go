package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datascout/internal/model"
	"datascout/internal/service"
	"datascout/internal/utils"
	"datascout/pkg/response"
)

type ConnectionController struct {
	service service.ConnectionService
}

// ConnectResponse is returned by a successful connect
type ConnectResponse struct {
	ConnectionID int64                   `json:"connection_id"`
	Tables       []model.TableDescriptor `json:"tables"`
}

func NewConnectionController(service service.ConnectionService) *ConnectionController {
	return &ConnectionController{service: service}
}

// Connect godoc
// @Summary Register a database connection
// @Description Connects to the database, snapshots its schema and stores it for annotation
// @Tags connections
// @Accept json
// @Produce json
// @Param engine path string true "sqlite, mysql, postgresql or mssql"
// @Param request body model.ConnectionParams true "Connection parameters"
// @Success 200 {object} response.StandardResponse{data=ConnectResponse}
// @Failure 400 {object} response.StandardResponse
// @Failure 500 {object} response.StandardResponse
// @Router /connect/{engine} [post]
func (cc *ConnectionController) Connect(c *gin.Context) {
	raw := c.Param("engine")
	kind, err := model.ParseEngineKind(raw)
	if err != nil {
		sendError(c, utils.NewUnsupportedEngineError(raw))
		return
	}

	var params model.ConnectionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		sendError(c, utils.NewValidationError("Invalid request body", err.Error()))
		return
	}

	result, err := cc.service.Connect(c.Request.Context(), kind, params)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(ConnectResponse{
		ConnectionID: result.ID,
		Tables:       result.Tables,
	}, getCorrelationID(c)))
}

// ResetAll godoc
// @Summary Delete every stored connection
// @Description Wipes all connections and annotations and re-creates the store
// @Tags connections
// @Produce json
// @Success 200 {object} response.StandardResponse
// @Failure 500 {object} response.StandardResponse
// @Router /connection [delete]
func (cc *ConnectionController) ResetAll(c *gin.Context) {
	if err := cc.service.ResetAll(c.Request.Context()); err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessageResponse("All connections deleted", getCorrelationID(c)))
}

// GetSchema godoc
// @Summary Get a stored connection
// @Description Returns the schema snapshot of a connection with its annotations
// @Tags connections
// @Produce json
// @Param id path int true "Connection id"
// @Success 200 {object} response.StandardResponse{data=model.ConnectionRecord}
// @Failure 404 {object} response.StandardResponse
// @Router /schema/{id} [get]
func (cc *ConnectionController) GetSchema(c *gin.Context) {
	id, ok := parseConnectionID(c)
	if !ok {
		return
	}

	rec, err := cc.service.GetConnection(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return
	}

	rec.Params = rec.Params.Redacted()
	c.JSON(http.StatusOK, response.SuccessResponse(rec, getCorrelationID(c)))
}
