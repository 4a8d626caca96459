package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/actions"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/middleware"
	"github.com/gin-gonic/gin"
)

type ActionsResponse struct {
	Actions []ActionView `json:"actions"`
}

type ActionView struct {
	*actions.Action
	Class string `json:"class"`
}

type ActionsHandler struct {
	dispatcher *actions.Dispatcher
}

func NewActionsHandler(dispatcher *actions.Dispatcher) *ActionsHandler {
	return &ActionsHandler{dispatcher: dispatcher}
}

//ListHandler returns all installed actions
func (ah *ActionsHandler) ListHandler(c *gin.Context) {
	response := ActionsResponse{Actions: []ActionView{}}
	for _, action := range ah.dispatcher.Actions() {
		response.Actions = append(response.Actions, ActionView{Action: action, Class: action.Class()})
	}

	c.JSON(http.StatusOK, response)
}

//RunHandler runs the action with the request body as data
func (ah *ActionsHandler) RunHandler(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Message: "name is required path parameter"})
		return
	}

	data := map[string]interface{}{}
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrResponse("Error reading request body", err))
		return
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrResponse("Request body must be a JSON object", err))
			return
		}
	}

	result, err := ah.dispatcher.Run(c.Request.Context(), name, data)
	if err != nil {
		if errors.Is(err, actions.ErrActionNotFound) {
			c.JSON(http.StatusNotFound, middleware.ErrResponse("Action wasn't found", err))
			return
		}
		logging.Error(err)
		c.JSON(http.StatusInternalServerError, middleware.ErrResponse("Action failed", err))
		return
	}

	c.JSON(http.StatusOK, result)
}
