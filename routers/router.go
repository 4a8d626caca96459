package routers

import (
	"net/http"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/actions"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/handlers"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/installation"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/metrics"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/middleware"
	"github.com/gin-gonic/gin"
)

const endpointsPrefix = "/api"

func SetupRouter(adminToken string, installer *installation.Installer, dispatcher *actions.Dispatcher, registry *gateway.Registry,
	calls handlers.CallsGetter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New() //gin.Default()
	router.Use(gin.Recovery())

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	//installed endpoints e.g. /api/stuf/zds
	for _, endpoint := range installer.Endpoints() {
		logging.Infof("Endpoint [%s] is served on %s%s", endpoint.Name, endpointsPrefix, endpoint.URLPath())
	}
	router.NoRoute(handlers.NewEndpointsHandler(endpointsPrefix, installer, dispatcher).Handler)

	actionsHandler := handlers.NewActionsHandler(dispatcher)
	callsHandler := handlers.NewCallsHandler(registry, calls)

	adminTokenMiddleware := middleware.AdminToken{Token: adminToken}
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/actions", adminTokenMiddleware.AdminAuth(actionsHandler.ListHandler, middleware.AdminTokenErr))
		apiV1.POST("/actions/:name/run", adminTokenMiddleware.AdminAuth(actionsHandler.RunHandler, middleware.AdminTokenErr))
		apiV1.GET("/sources/:name/calls", adminTokenMiddleware.AdminAuth(callsHandler.Handler, middleware.AdminTokenErr))
	}

	if metrics.Enabled() {
		router.GET("/prometheus", middleware.TokenAuth(gin.WrapH(metrics.Handler()), adminToken))
	}

	return router
}
