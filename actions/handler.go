package actions

import (
	"context"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/vrijbrp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/zds"
	"github.com/iancoleman/strcase"
)

//Handler is an action handler: JSON schema of the configuration and the run function
type Handler interface {
	//Name is a unique handler name (e.g. ZgwToVrijbrpHandler)
	Name() string
	//Configuration returns JSON schema document of the handler configuration
	Configuration() map[string]interface{}
	Run(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error)
}

type runFunc func(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error)

type handler struct {
	name   string
	schema map[string]interface{}
	run    runFunc
}

func (h *handler) Name() string {
	return h.name
}

func (h *handler) Configuration() map[string]interface{} {
	return copySchema(h.schema)
}

func (h *handler) Run(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error) {
	return h.run(ctx, data, configuration)
}

//vrijbrp services never fail: they log the problem and return an empty map
func wrap(f func(ctx context.Context, data, configuration map[string]interface{}) map[string]interface{}) runFunc {
	return func(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error) {
		return f(ctx, data, configuration), nil
	}
}

func NewZgwToVrijbrpHandler(service *vrijbrp.Service) Handler {
	return &handler{name: "ZgwToVrijbrpHandler", schema: birthSchema, run: wrap(service.ZgwToVrijbrpHandler)}
}

func NewRelocationHandler(service *vrijbrp.Service) Handler {
	return &handler{name: "ZgwToVrijbrpRelocationHandler", schema: relocationSchema, run: wrap(service.RelocationHandler)}
}

func NewDeceasementHandler(service *vrijbrp.Service) Handler {
	return &handler{name: "ZgwToVrijbrpDeceasementHandler", schema: deceasementSchema, run: wrap(service.DeceasementHandler)}
}

func NewEersteInschrijvingHandler(service *vrijbrp.Service) Handler {
	return &handler{name: "ZgwVrijbrpEersteInschrijvingHandler", schema: eersteInschrijvingSchema, run: wrap(service.EersteInschrijvingHandler)}
}

func NewDocumentHandler(service *vrijbrp.Service) Handler {
	return &handler{name: "ZgwToVrijbrpDocumentHandler", schema: documentSchema, run: wrap(service.DocumentHandler)}
}

func NewZaakIdentificatieHandler(service *zds.Service) Handler {
	return &handler{name: "ZaakIdentificatieActionHandler", schema: zaakIdentificatieSchema, run: service.ZaakIdentificatieActionHandler}
}

func NewDocumentIdentificatieHandler(service *zds.Service) Handler {
	return &handler{name: "DocumentIdentificatieActionHandler", schema: documentIdentificatieSchema, run: service.DocumentIdentificatieActionHandler}
}

func NewZdsZaakHandler(service *zds.Service) Handler {
	return &handler{name: "ZdsZaakActionHandler", schema: zdsZaakSchema, run: service.ZaakActionHandler}
}

func NewZdsDocumentHandler(service *zds.Service) Handler {
	return &handler{name: "ZdsDocumentActionHandler", schema: zdsDocumentSchema, run: service.DocumentActionHandler}
}

//Handlers returns all handlers of the bundle in installation order
func Handlers(vrijbrpService *vrijbrp.Service, zdsService *zds.Service) []Handler {
	return []Handler{
		NewZgwToVrijbrpHandler(vrijbrpService),
		NewRelocationHandler(vrijbrpService),
		NewDeceasementHandler(vrijbrpService),
		NewEersteInschrijvingHandler(vrijbrpService),
		NewDocumentHandler(vrijbrpService),
		NewZaakIdentificatieHandler(zdsService),
		NewDocumentIdentificatieHandler(zdsService),
		NewZdsZaakHandler(zdsService),
		NewZdsDocumentHandler(zdsService),
	}
}

//ActionName returns snake case action name of the handler: ZgwToVrijbrpHandler -> zgw_to_vrijbrp_handler
func ActionName(h Handler) string {
	return strcase.ToSnake(h.Name())
}

//SchemaID returns $id of the handler configuration schema
func SchemaID(h Handler) string {
	id, _ := h.Configuration()["$id"].(string)
	return id
}
