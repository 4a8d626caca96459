package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/actions"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/installation"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/middleware"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/soap"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/zds"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"
)

const xmlContentType = "text/xml; charset=utf-8"

var (
	ErrIdentificatieNotReserved = errors.New("identificatie wasn't reserved")
	ErrUnsupportedMessage       = errors.New("message type isn't supported")
	ErrMessageNotHandled        = errors.New("no action handled the message")
)

//EndpointsHandler serves POST requests of the installed endpoints under prefix
//the endpoint is looked up by path on every request, other requests get 404
type EndpointsHandler struct {
	prefix     string
	installer  *installation.Installer
	dispatcher *actions.Dispatcher
}

func NewEndpointsHandler(prefix string, installer *installation.Installer, dispatcher *actions.Dispatcher) *EndpointsHandler {
	return &EndpointsHandler{prefix: prefix, installer: installer, dispatcher: dispatcher}
}

func (eh *EndpointsHandler) Handler(c *gin.Context) {
	path := c.Request.URL.Path
	if c.Request.Method != http.MethodPost || !strings.HasPrefix(path, eh.prefix+"/") {
		c.JSON(http.StatusNotFound, middleware.ErrResponse("Endpoint wasn't found", nil))
		return
	}

	endpoint, ok := eh.installer.FindEndpoint(strings.TrimPrefix(path, eh.prefix))
	if !ok {
		c.JSON(http.StatusNotFound, middleware.ErrResponse("Endpoint wasn't found", nil))
		return
	}

	NewEndpointHandler(endpoint, eh.dispatcher).Handler(c)
}

//EndpointHandler throws the events of an installed endpoint with the request body
//SOAP requests are answered with ZDS messages, JSON requests with the JSON result
type EndpointHandler struct {
	endpoint   *installation.Endpoint
	dispatcher *actions.Dispatcher
}

func NewEndpointHandler(endpoint *installation.Endpoint, dispatcher *actions.Dispatcher) *EndpointHandler {
	return &EndpointHandler{endpoint: endpoint, dispatcher: dispatcher}
}

func (eh *EndpointHandler) Handler(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		eh.fault(c, nil, fmt.Errorf("Error reading request body: %v", err))
		return
	}

	if strings.Contains(c.ContentType(), "json") {
		eh.handleJSON(c, payload)
		return
	}

	document, err := soap.Decode(payload)
	if err != nil {
		eh.fault(c, nil, fmt.Errorf("%v: %v", zds.ErrNotSOAP, err))
		return
	}
	message, err := zds.ParseMessage(document)
	if err != nil {
		eh.fault(c, nil, err)
		return
	}
	logging.Debugf("[%s] received %s message [%s]", eh.endpoint.Name, message.Type, message.ReferenceNumber())

	result, handled, err := eh.throw(c.Request.Context(), document)
	if err != nil {
		eh.fault(c, message, err)
		return
	}
	if handled == 0 {
		eh.fault(c, message, fmt.Errorf("%w: %s", ErrMessageNotHandled, message.Type))
		return
	}

	var answer []byte
	switch message.Type {
	case zds.ZaakIdentificatieRequest, zds.DocumentIdentificatieRequest:
		identificatie := cast.ToString(result["identificatie"])
		if identificatie == "" {
			eh.fault(c, message, ErrIdentificatieNotReserved)
			return
		}
		answer, err = zds.IdentificatieResponse(message, identificatie)
	case zds.CreateZaakRequest, zds.CreateDocumentRequest:
		answer, err = zds.AcknowledgementResponse(message)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedMessage, message.Type)
	}
	if err != nil {
		eh.fault(c, message, err)
		return
	}

	c.Data(http.StatusOK, xmlContentType, answer)
}

func (eh *EndpointHandler) handleJSON(c *gin.Context, payload []byte) {
	data := map[string]interface{}{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrResponse("Request body must be a JSON object", err))
			return
		}
	}

	result, _, err := eh.throw(c.Request.Context(), data)
	if err != nil {
		logging.Errorf("[%s] error handling request: %v", eh.endpoint.Name, err)
		c.JSON(http.StatusInternalServerError, middleware.ErrResponse("Error handling request", err))
		return
	}

	c.JSON(http.StatusOK, result)
}

//throw throws all endpoint events one after another, each event gets the result of the previous one
//returns the number of actions which handled the events
func (eh *EndpointHandler) throw(ctx context.Context, data map[string]interface{}) (map[string]interface{}, int, error) {
	var multiErr error
	handled := 0
	result := data
	for _, event := range eh.endpoint.Throws {
		output, n, err := eh.dispatcher.Dispatch(ctx, event, result)
		if err != nil {
			multiErr = multierror.Append(multiErr, err)
		}
		handled += n
		result = output
	}

	return result, handled, multiErr
}

func (eh *EndpointHandler) fault(c *gin.Context, message *zds.Message, cause error) {
	logging.Errorf("[%s] error handling ZDS message: %v", eh.endpoint.Name, cause)

	answer, err := zds.FaultResponse(message, cause)
	if err != nil {
		logging.SystemErrorf("[%s] error building fault response: %v", eh.endpoint.Name, err)
		c.String(http.StatusInternalServerError, cause.Error())
		return
	}

	c.Data(http.StatusInternalServerError, xmlContentType, answer)
}
