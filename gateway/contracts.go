package gateway

import (
	"context"
	"net/http"
)

//Repository looks up configuration entities by reference, location or name
type Repository interface {
	FindSource(reference string) (*Source, error)
	FindSourceByLocation(location string) (*Source, error)
	FindSourceByName(name string) (*Source, error)
	FindMapping(reference string) (*Mapping, error)
	FindEntity(reference string) (*Entity, error)
}

//ObjectStore persists and searches ObjectEntity records
type ObjectStore interface {
	Find(ctx context.Context, id string) (*ObjectEntity, error)
	//SearchObjects returns objects of the entities (all if empty) containing every filter,
	//filter keys are dot paths; values are compared as JSON with jsonb @> semantics:
	//types are strict ("1" doesn't match 1), objects and arrays match by containment
	SearchObjects(ctx context.Context, filters map[string]interface{}, entityIDs []string) ([]*ObjectEntity, error)
	//Save creates or updates the object, assigns the id and the timestamps
	Save(ctx context.Context, object *ObjectEntity) error
	Close() error
}

//Mapper transforms data according to a Mapping document
type Mapper interface {
	Mapping(mapping *Mapping, input map[string]interface{}) (map[string]interface{}, error)
}

//CallOptions are the options of an outgoing call
type CallOptions struct {
	Body    []byte
	Query   map[string]string
	Headers map[string]string
}

//Response is a raw result of an outgoing call
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

//Caller performs outgoing calls to Sources
type Caller interface {
	Call(ctx context.Context, source *Source, endpoint, method string, options CallOptions) (*Response, error)
	//DecodeResponse decodes the body according to the response content type
	DecodeResponse(source *Source, response *Response) (map[string]interface{}, error)
}

//Synchronizer keeps Synchronization bookkeeping
type Synchronizer interface {
	//FindSyncByObject returns existing synchronization or a new (not saved) one
	FindSyncByObject(ctx context.Context, object *ObjectEntity, source *Source, entity *Entity) (*Synchronization, error)
	SaveSync(ctx context.Context, sync *Synchronization) error
}
