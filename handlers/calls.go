package handlers

import (
	"net/http"
	"strconv"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/middleware"
	"github.com/gin-gonic/gin"
)

const defaultCallsLimit = 20

type CallsResponse struct {
	Source string             `json:"source"`
	Calls  []*gateway.CallLog `json:"calls"`
}

//CallsGetter returns the last outgoing calls of a source
type CallsGetter interface {
	GetN(sourceID string, n int) []*gateway.CallLog
}

type CallsHandler struct {
	registry *gateway.Registry
	calls    CallsGetter
}

func NewCallsHandler(registry *gateway.Registry, calls CallsGetter) *CallsHandler {
	return &CallsHandler{registry: registry, calls: calls}
}

//Handler returns the last outgoing calls of the source by name (?limit=N, 20 by default)
func (ch *CallsHandler) Handler(c *gin.Context) {
	name := c.Param("name")
	source, err := ch.registry.FindSourceByName(name)
	if err != nil {
		c.JSON(http.StatusNotFound, middleware.ErrResponse("Source wasn't found", err))
		return
	}

	limit := defaultCallsLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Message: "limit must be a positive number"})
			return
		}
	}

	calls := ch.calls.GetN(source.ID, limit)
	if calls == nil {
		calls = []*gateway.CallLog{}
	}
	c.JSON(http.StatusOK, CallsResponse{Source: source.Name, Calls: calls})
}
