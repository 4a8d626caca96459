package vrijbrp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

//paths of the triggering object id in the action data
var objectIDPaths = []string{"object._self.id", "response.id", "response._id", "id"}

//Synchronizer keeps synchronizations of pushed objects
type Synchronizer interface {
	gateway.Synchronizer
	Push(ctx context.Context, sync *gateway.Synchronization, body map[string]interface{}) error
	Lock(ctx context.Context, objectID string) (func(), error)
}

//Service contains shared steps of ZGW to VrijBRP handlers:
//configuration lookups, eigenschappen reading and pushing objects to a VrijBRP source
type Service struct {
	repository   gateway.Repository
	mapper       gateway.Mapper
	objects      gateway.ObjectStore
	caller       gateway.Caller
	synchronizer Synchronizer
}

func NewService(repository gateway.Repository, mapper gateway.Mapper, objects gateway.ObjectStore, caller gateway.Caller, synchronizer Synchronizer) *Service {
	return &Service{
		repository:   repository,
		mapper:       mapper,
		objects:      objects,
		caller:       caller,
		synchronizer: synchronizer,
	}
}

//GetSource finds the source by location, reference or name
func (s *Service) GetSource(value string) (*gateway.Source, error) {
	if value == "" {
		return nil, errors.Wrap(gateway.ErrMissingParameter, "source")
	}

	if source, err := s.repository.FindSourceByLocation(value); err == nil {
		return source, nil
	}
	if source, err := s.repository.FindSource(value); err == nil {
		return source, nil
	}
	source, err := s.repository.FindSourceByName(value)
	if err != nil {
		logging.Errorf("No source found with location: %s", value)
		return nil, errors.Wrapf(gateway.ErrSourceNotFound, "location, reference or name [%s]", value)
	}

	return source, nil
}

//GetMapping finds the mapping by reference
func (s *Service) GetMapping(reference string) (*gateway.Mapping, error) {
	mapping, err := s.repository.FindMapping(reference)
	if err != nil {
		logging.Errorf("No mapping found with reference: %s", reference)
		return nil, err
	}
	return mapping, nil
}

//GetEntity finds the entity by reference
func (s *Service) GetEntity(reference string) (*gateway.Entity, error) {
	entity, err := s.repository.FindEntity(reference)
	if err != nil {
		logging.Errorf("No entity found with reference: %s", reference)
		return nil, err
	}
	return entity, nil
}

//ObjectID returns id of the triggering object:
//object._self.id, response.id, response._id or id of the action data
func ObjectID(data map[string]interface{}) string {
	for _, path := range objectIDPaths {
		if value, ok := jsonutils.NewDotPath(path).Get(data); ok {
			if id := cast.ToString(value); id != "" {
				return id
			}
		}
	}
	return ""
}

//GetObject returns the triggering object of the action data
func (s *Service) GetObject(ctx context.Context, data map[string]interface{}) (*gateway.ObjectEntity, error) {
	id := ObjectID(data)
	if id == "" {
		return nil, errors.Wrap(gateway.ErrMissingParameter, "object id")
	}

	object, err := s.objects.Find(ctx, id)
	if err != nil {
		logging.Errorf("No object found with id: %s", id)
		return nil, err
	}

	logging.Debugf("(Zaak) Object with id %s was created", id)
	return object, nil
}

//GetZaakEigenschappen returns naam:waarde pairs of the zaak eigenschappen with the given names (or all if names contain "all")
//eigenschappen may be embedded objects or ids of stored objects
func (s *Service) GetZaakEigenschappen(ctx context.Context, zaak *gateway.ObjectEntity, names ...string) map[string]interface{} {
	wanted := map[string]bool{}
	for _, name := range names {
		wanted[name] = true
	}

	result := map[string]interface{}{}
	for _, item := range s.resolveEigenschappen(ctx, zaak) {
		eigenschap := item.(map[string]interface{})
		naam := cast.ToString(eigenschap["naam"])
		if naam == "" {
			continue
		}
		if wanted["all"] || wanted[naam] {
			result[naam] = eigenschap["waarde"]
		}
	}

	return result
}

//resolveEigenschappen returns the zaak eigenschappen as objects, ids are resolved from the objects storage
func (s *Service) resolveEigenschappen(ctx context.Context, zaak *gateway.ObjectEntity) []interface{} {
	eigenschappen, _ := zaak.GetValue("eigenschappen").([]interface{})
	result := make([]interface{}, 0, len(eigenschappen))
	for _, item := range eigenschappen {
		if eigenschap := s.resolveEigenschap(ctx, item); eigenschap != nil {
			result = append(result, eigenschap)
		}
	}
	return result
}

func (s *Service) resolveEigenschap(ctx context.Context, item interface{}) map[string]interface{} {
	switch value := item.(type) {
	case map[string]interface{}:
		return value
	case string:
		object, err := s.objects.Find(ctx, value)
		if err != nil {
			logging.Warnf("Zaak eigenschap [%s] isn't found: %v", value, err)
			return nil
		}
		return object.Data
	default:
		return nil
	}
}

//GetSynchronization returns synchronization of the object with the source and sets the mapping
func (s *Service) GetSynchronization(ctx context.Context, object *gateway.ObjectEntity, source *gateway.Source, entity *gateway.Entity, mapping *gateway.Mapping) (*gateway.Synchronization, error) {
	sync, err := s.synchronizer.FindSyncByObject(ctx, object, source, entity)
	if err != nil {
		return nil, err
	}

	if mapping != nil {
		sync.MappingReference = mapping.Reference
	}
	return sync, nil
}

//SynchronizeTemp posts objectArray to the source location, updates and saves the synchronization
//returns decoded response body
func (s *Service) SynchronizeTemp(ctx context.Context, sync *gateway.Synchronization, source *gateway.Source, objectArray map[string]interface{}, location string) (map[string]interface{}, error) {
	objectBytes, err := json.Marshal(objectArray)
	if err != nil {
		return nil, errors.Wrapf(err, "marshalling object [%s]", sync.ObjectID)
	}

	unlock, err := s.synchronizer.Lock(ctx, sync.ObjectID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	logging.Debugf("Synchronize (Zaak) Object to: %s%s", source.Location, location)

	response, err := s.caller.Call(ctx, source, location, http.MethodPost, gateway.CallOptions{Body: objectBytes})
	if err != nil {
		logging.Errorf("Error while doing syncToSource in zgwToVrijbrpHandler: %v", err)
		return nil, err
	}

	body, err := s.caller.DecodeResponse(source, response)
	if err != nil {
		logging.Errorf("Error decoding response of [%s%s]: %v", source.Location, location, err)
		return nil, err
	}

	if err := s.synchronizer.Push(ctx, sync, body); err != nil {
		return nil, err
	}

	return body, nil
}

//mapObject applies the mapping to the object array
func (s *Service) mapObject(mapping *gateway.Mapping, object *gateway.ObjectEntity) (map[string]interface{}, error) {
	objectArray, err := s.mapper.Mapping(mapping, object.ToArray())
	if err != nil {
		logging.Errorf("Error mapping object [%s] with [%s]: %v", object.ID, mapping.Reference, err)
		return nil, err
	}
	return objectArray, nil
}

//lookups are the resolved configuration references of a handler
type lookups struct {
	source  *gateway.Source
	mapping *gateway.Mapping
	entity  *gateway.Entity
}

//resolve finds the source, the mapping (if reference isn't empty) and the synchronization entity
func (s *Service) resolve(config *Configuration, withMapping bool) (*lookups, error) {
	source, err := s.GetSource(config.Source)
	if err != nil {
		return nil, err
	}

	var mapping *gateway.Mapping
	if withMapping {
		if mapping, err = s.GetMapping(config.Mapping); err != nil {
			return nil, err
		}
	}

	entity, err := s.GetEntity(config.SynchronizationEntityReference())
	if err != nil {
		return nil, err
	}

	return &lookups{source: source, mapping: mapping, entity: entity}, nil
}
