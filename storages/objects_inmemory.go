package storages

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/pkg/errors"
)

//InMemoryObjects is a gateway.ObjectStore which keeps objects in memory
//is used when objects.postgres.dsn isn't configured and in tests
type InMemoryObjects struct {
	mutex   sync.RWMutex
	objects map[string]*gateway.ObjectEntity
}

func NewInMemoryObjects() *InMemoryObjects {
	return &InMemoryObjects{objects: map[string]*gateway.ObjectEntity{}}
}

//Find returns copy of the object or gateway.ErrObjectNotFound
func (im *InMemoryObjects) Find(ctx context.Context, id string) (*gateway.ObjectEntity, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	object, ok := im.objects[id]
	if !ok {
		return nil, errors.Wrapf(gateway.ErrObjectNotFound, "id [%s]", id)
	}

	return copyObject(object), nil
}

//SearchObjects returns copies of objects (ordered by creation) of entityIDs (all entities if empty) matching all filters
func (im *InMemoryObjects) SearchObjects(ctx context.Context, filters map[string]interface{}, entityIDs []string) ([]*gateway.ObjectEntity, error) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	entities := map[string]bool{}
	for _, id := range entityIDs {
		entities[id] = true
	}

	result := []*gateway.ObjectEntity{}
	for _, object := range im.objects {
		if len(entities) > 0 && (object.Entity == nil || !entities[object.Entity.ID]) {
			continue
		}
		if !matches(object.Data, filters) {
			continue
		}
		result = append(result, copyObject(object))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DateCreated.Equal(result[j].DateCreated) {
			return result[i].ID < result[j].ID
		}
		return result[i].DateCreated.Before(result[j].DateCreated)
	})

	return result, nil
}

//Save stores copy of the object and assigns id and timestamps
func (im *InMemoryObjects) Save(ctx context.Context, object *gateway.ObjectEntity) error {
	if object == nil {
		return errors.New("object can't be nil")
	}

	im.mutex.Lock()
	defer im.mutex.Unlock()

	now := timestamp.Now().UTC()
	if object.ID == "" {
		object.ID = uuid.New()
	}
	if existing, ok := im.objects[object.ID]; ok && object.DateCreated.IsZero() {
		object.DateCreated = existing.DateCreated
	}
	if object.DateCreated.IsZero() {
		object.DateCreated = now
	}
	object.DateModified = now

	im.objects[object.ID] = copyObject(object)
	return nil
}

func (im *InMemoryObjects) Close() error {
	return nil
}

//matches returns true if data contains every filter (dot path) the way jsonb @> does:
//values are compared as JSON (1 and 1.0 are equal, "1" and 1 aren't), objects and arrays by containment
func matches(data map[string]interface{}, filters map[string]interface{}) bool {
	for key, expected := range filters {
		actual, ok := jsonutils.NewDotPath(key).Get(data)
		if !ok || !contains(normalize(actual), normalize(expected)) {
			return false
		}
	}
	return true
}

func contains(actual, expected interface{}) bool {
	switch typed := expected.(type) {
	case map[string]interface{}:
		actualMap, ok := actual.(map[string]interface{})
		if !ok {
			return false
		}
		for key, value := range typed {
			actualValue, ok := actualMap[key]
			if !ok || !contains(actualValue, value) {
				return false
			}
		}
		return true
	case []interface{}:
		actualArray, ok := actual.([]interface{})
		if !ok {
			return false
		}
		for _, value := range typed {
			found := false
			for _, actualValue := range actualArray {
				if contains(actualValue, value) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(actual, expected)
	}
}

//normalize returns the value as it is read back from JSON
func normalize(value interface{}) interface{} {
	b, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var result interface{}
	if err := json.Unmarshal(b, &result); err != nil {
		return value
	}
	return result
}

func copyObject(object *gateway.ObjectEntity) *gateway.ObjectEntity {
	cp := *object
	cp.Data = jsonutils.CopyMap(object.Data)
	if cp.Data == nil {
		cp.Data = map[string]interface{}{}
	}
	return &cp
}
