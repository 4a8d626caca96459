package gateway

import (
	"sort"
	"sync"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/pkg/errors"
)

//Registry is an in-memory Repository filled by the installer
//all methods are safe for concurrent use
type Registry struct {
	mutex sync.RWMutex

	sources  map[string]*Source
	mappings map[string]*Mapping
	entities map[string]*Entity
}

func NewRegistry() *Registry {
	return &Registry{
		sources:  map[string]*Source{},
		mappings: map[string]*Mapping{},
		entities: map[string]*Entity{},
	}
}

//AddSource puts the source; a source with the same name is replaced
//an empty id is derived from the name, so it survives restarts
func (r *Registry) AddSource(source *Source) *Source {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, ok := r.sources[source.Name]; ok && source.ID == "" {
		source.ID = existing.ID
	}
	if source.ID == "" {
		source.ID = uuid.NewFromKey("source#" + source.Name)
	}
	r.sources[source.Name] = source

	return source
}

//AddMapping puts the mapping keyed by reference, an empty id is derived from the reference
func (r *Registry) AddMapping(mapping *Mapping) *Mapping {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, ok := r.mappings[mapping.Reference]; ok && mapping.ID == "" {
		mapping.ID = existing.ID
	}
	if mapping.ID == "" {
		mapping.ID = uuid.NewFromKey("mapping#" + mapping.Reference)
	}
	r.mappings[mapping.Reference] = mapping

	return mapping
}

//AddEntity puts the entity keyed by reference, an empty id is derived from the reference
func (r *Registry) AddEntity(entity *Entity) *Entity {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, ok := r.entities[entity.Reference]; ok && entity.ID == "" {
		entity.ID = existing.ID
	}
	if entity.ID == "" {
		entity.ID = uuid.NewFromKey("entity#" + entity.Reference)
	}
	r.entities[entity.Reference] = entity

	return entity
}

func (r *Registry) FindSource(reference string) (*Source, error) {
	return r.findSource(func(s *Source) bool { return s.Reference == reference }, "reference", reference)
}

func (r *Registry) FindSourceByLocation(location string) (*Source, error) {
	return r.findSource(func(s *Source) bool { return s.Location == location }, "location", location)
}

func (r *Registry) FindSourceByName(name string) (*Source, error) {
	return r.findSource(func(s *Source) bool { return s.Name == name }, "name", name)
}

func (r *Registry) findSource(match func(s *Source) bool, field, value string) (*Source, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if value != "" {
		for _, source := range r.sources {
			if match(source) {
				return source, nil
			}
		}
	}

	return nil, errors.Wrapf(ErrSourceNotFound, "%s [%s]", field, value)
}

func (r *Registry) FindMapping(reference string) (*Mapping, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	mapping, ok := r.mappings[reference]
	if !ok {
		return nil, errors.Wrapf(ErrMappingNotFound, "reference [%s]", reference)
	}

	return mapping, nil
}

func (r *Registry) FindEntity(reference string) (*Entity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entity, ok := r.entities[reference]
	if !ok {
		return nil, errors.Wrapf(ErrEntityNotFound, "reference [%s]", reference)
	}

	return entity, nil
}

//Sources returns all sources sorted by name
func (r *Registry) Sources() []*Source {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Source, 0, len(r.sources))
	for _, source := range r.sources {
		result = append(result, source)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

//Entities returns all entities sorted by reference
func (r *Registry) Entities() []*Entity {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Entity, 0, len(r.entities))
	for _, entity := range r.entities {
		result = append(result, entity)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Reference < result[j].Reference })

	return result
}

//Mappings returns all mappings sorted by reference
func (r *Registry) Mappings() []*Mapping {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Mapping, 0, len(r.mappings))
	for _, mapping := range r.mappings {
		result = append(result, mapping)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Reference < result[j].Reference })

	return result
}
