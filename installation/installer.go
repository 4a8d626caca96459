package installation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/actions"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/scheduling"
	"github.com/hashicorp/go-multierror"
)

const (
	ZdsInboundEvent     = "vrijbrp.zds.inbound"
	DefaultListensEvent = "vrijbrp.default.listens"

	DefaultCronjobName = "VrijBRP"

	zdsBody = "SOAP-ENV:Envelope.SOAP-ENV:Body."
)

//Endpoint is an inbound HTTP path which throws events
type Endpoint struct {
	Name      string   `json:"name"`
	Path      []string `json:"path"`
	PathRegex string   `json:"pathRegex"`
	Throws    []string `json:"throws"`

	pattern *regexp.Regexp
}

//Matches returns true if the path (without leading slash) matches the endpoint
func (e *Endpoint) Matches(path string) bool {
	return e.pattern.MatchString(strings.TrimPrefix(path, "/"))
}

//URLPath returns the endpoint path joined with slashes
func (e *Endpoint) URLPath() string {
	return "/" + strings.Join(e.Path, "/")
}

var defaultEndpoints = []struct {
	name   string
	path   string
	throws []string
}{
	{name: "zds-endpoint", path: "stuf/zds", throws: []string{ZdsInboundEvent}},
}

//conditions per handler schema $id, handlers which aren't listed listen to DefaultListensEvent
var zdsConditions = map[string]string{
	actions.ZaakIdentificatieSchemaID:     zdsBody + "ns2:genereerZaakIdentificatie_Di02",
	actions.DocumentIdentificatieSchemaID: zdsBody + "ns2:genereerDocumentIdentificatie_Di02",
	actions.ZdsZaakSchemaID:               zdsBody + "ns2:zakLk01",
	actions.ZdsDocumentSchemaID:           zdsBody + "ns2:edcLk01",
}

//Config is an installation configuration
type Config struct {
	//Path is a directory with JSON documents, embedded defaults are used when empty
	Path string
	//Actions are configuration overrides per action name
	Actions map[string]map[string]interface{}
	//Crontab of the default cronjob
	Crontab string
}

//Report is a result of an installation run
type Report struct {
	Sources   int
	Mappings  int
	Entities  int
	Endpoints int
	Actions   int
	Cronjobs  int
}

//Rows returns report lines for printing
func (r *Report) Rows() [][]string {
	return [][]string{
		{"Sources", fmt.Sprint(r.Sources)},
		{"Mappings", fmt.Sprint(r.Mappings)},
		{"Schemas", fmt.Sprint(r.Entities)},
		{"Endpoints", fmt.Sprint(r.Endpoints)},
		{"Actions", fmt.Sprint(r.Actions)},
		{"Cronjobs", fmt.Sprint(r.Cronjobs)},
	}
}

//Installer creates configuration documents, endpoints, actions and the cronjob of the bundle
//every step creates only what doesn't exist yet, so Install can be run on every start
type Installer struct {
	config     Config
	registry   *gateway.Registry
	dispatcher *actions.Dispatcher
	scheduler  *scheduling.CronScheduler
	handlers   []actions.Handler

	mutex     sync.RWMutex
	endpoints map[string]*Endpoint
}

//NewInstaller returns Installer. scheduler may be nil (e.g. in console commands)
func NewInstaller(config Config, registry *gateway.Registry, dispatcher *actions.Dispatcher, scheduler *scheduling.CronScheduler, handlers []actions.Handler) *Installer {
	return &Installer{
		config:     config,
		registry:   registry,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		handlers:   handlers,
		endpoints:  map[string]*Endpoint{},
	}
}

//Install checks data consistency: creates everything which is missing
func (i *Installer) Install() (*Report, error) {
	report := &Report{}
	var multiErr error

	if err := i.installDocuments(report); err != nil {
		multiErr = multierror.Append(multiErr, err)
	}
	i.createEndpoints(report)
	if err := i.createCronjobs(report); err != nil {
		multiErr = multierror.Append(multiErr, err)
	}
	if err := i.addActions(report); err != nil {
		multiErr = multierror.Append(multiErr, err)
	}

	logging.Infof("Installation finished: %d sources, %d mappings, %d schemas, %d endpoints, %d actions, %d cronjobs created",
		report.Sources, report.Mappings, report.Entities, report.Endpoints, report.Actions, report.Cronjobs)

	return report, multiErr
}

func (i *Installer) installDocuments(report *Report) error {
	var documents *Documents
	var err error
	if i.config.Path != "" {
		logging.Infof("Loading installation documents from %s", i.config.Path)
		documents, err = LoadDocumentsFromDir(i.config.Path)
	} else {
		documents, err = DefaultDocuments()
	}
	if err != nil {
		return fmt.Errorf("Error loading installation documents: %v", err)
	}

	for _, entity := range documents.Entities {
		if _, err := i.registry.FindEntity(entity.Reference); err != nil {
			report.Entities++
		}
		i.registry.AddEntity(entity)
	}

	for _, mapping := range documents.Mappings {
		if _, err := i.registry.FindMapping(mapping.Reference); err != nil {
			report.Mappings++
		}
		i.registry.AddMapping(mapping)
	}

	//existing sources keep their (possibly changed) credentials
	for _, source := range documents.Sources {
		if _, err := i.registry.FindSourceByName(source.Name); err == nil {
			continue
		}
		i.registry.AddSource(source)
		report.Sources++
	}

	return nil
}

func (i *Installer) createEndpoints(report *Report) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	for _, definition := range defaultEndpoints {
		pathRegex := "^" + definition.path + "$"
		if _, ok := i.endpoints[pathRegex]; ok {
			continue
		}

		i.endpoints[pathRegex] = &Endpoint{
			Name:      definition.name,
			Path:      strings.Split(strings.TrimPrefix(definition.path, "/"), "/"),
			PathRegex: pathRegex,
			Throws:    definition.throws,
			pattern:   regexp.MustCompile(pathRegex),
		}
		report.Endpoints++
	}
}

func (i *Installer) createCronjobs(report *Report) error {
	if i.scheduler == nil {
		return nil
	}
	if _, ok := i.scheduler.Get(DefaultCronjobName); ok {
		logging.Debugf("There is already a cronjob for %s", DefaultCronjobName)
		return nil
	}

	cronjob := &scheduling.Cronjob{
		Name:        DefaultCronjobName,
		Description: "This cronjob fires all the VrijBRP actions every 5 minutes",
		Crontab:     i.config.Crontab,
		Throws:      []string{DefaultListensEvent},
		IsEnabled:   true,
	}
	if err := i.scheduler.Schedule(cronjob); err != nil {
		return err
	}
	report.Cronjobs++

	return nil
}

func (i *Installer) addActions(report *Report) error {
	var multiErr error
	for _, handler := range i.handlers {
		name := actions.ActionName(handler)
		if _, ok := i.dispatcher.Get(name); ok {
			logging.Debugf("Action found for %s", handler.Name())
			continue
		}

		action := &actions.Action{
			Name:          name,
			Handler:       handler,
			Configuration: i.actionConfiguration(name, handler),
			Async:         false,
			IsEnabled:     true,
		}
		if condition, ok := zdsConditions[actions.SchemaID(handler)]; ok {
			action.Listens = []string{ZdsInboundEvent}
			action.Conditions = []map[string]interface{}{{"var": condition}}
		} else {
			action.Listens = []string{DefaultListensEvent}
		}

		if err := i.dispatcher.Register(action); err != nil {
			multiErr = multierror.Append(multiErr, err)
			continue
		}
		report.Actions++
		logging.Infof("Action [%s] created for %s", name, handler.Name())
	}

	return multiErr
}

//actionConfiguration returns default configuration from the handler schema
//uuid properties with $ref get the id of the referenced entity; configured overrides win
func (i *Installer) actionConfiguration(name string, handler actions.Handler) map[string]interface{} {
	config := actions.DefaultConfiguration(handler)

	if properties, ok := handler.Configuration()["properties"].(map[string]interface{}); ok {
		for key, value := range properties {
			property, ok := value.(map[string]interface{})
			if !ok || property["type"] != "uuid" {
				continue
			}
			ref, _ := property["$ref"].(string)
			if entity, err := i.registry.FindEntity(ref); err == nil {
				config[key] = entity.ID
			}
		}
	}

	for key, value := range i.config.Actions[name] {
		config[configKey(config, key)] = value
	}

	return config
}

//configKey returns the existing key which equals key ignoring case (viper keys are lower cased)
func configKey(config map[string]interface{}, key string) string {
	for existing := range config {
		if strings.EqualFold(existing, key) {
			return existing
		}
	}
	return key
}

//Endpoints returns installed endpoints sorted by name
func (i *Installer) Endpoints() []*Endpoint {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	result := make([]*Endpoint, 0, len(i.endpoints))
	for _, endpoint := range i.endpoints {
		result = append(result, endpoint)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Name < result[b].Name })
	return result
}

//FindEndpoint returns the endpoint matching the path
func (i *Installer) FindEndpoint(path string) (*Endpoint, bool) {
	for _, endpoint := range i.Endpoints() {
		if endpoint.Matches(path) {
			return endpoint, true
		}
	}
	return nil, false
}

//RunCronjob throws all events of the cronjob with empty data
func (i *Installer) RunCronjob(cronjob *scheduling.Cronjob) {
	for _, event := range cronjob.Throws {
		logging.Debugf("Cronjob [%s] throws [%s]", cronjob.Name, event)
		if _, err := i.dispatcher.Throw(context.Background(), event, map[string]interface{}{}); err != nil {
			logging.Errorf("Cronjob [%s] event [%s] failed: %v", cronjob.Name, event, err)
		}
	}
}
