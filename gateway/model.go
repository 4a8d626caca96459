package gateway

import (
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
)

const (
	AuthNone             = "none"
	AuthAPIKey           = "apikey"
	AuthUsernamePassword = "username-password"
	AuthJWT              = "jwt"
	AuthVrijBRPJWT       = "vrijbrp-jwt"

	selfKey = "_self"
)

//Source is an external HTTP endpoint with credentials (a "Gateway" in the host platform)
type Source struct {
	ID                  string                 `json:"id,omitempty"`
	Reference           string                 `json:"$id,omitempty"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description,omitempty"`
	Location            string                 `json:"location"`
	Auth                string                 `json:"auth,omitempty"`
	Username            string                 `json:"username,omitempty"`
	Password            string                 `json:"password,omitempty"`
	APIKey              string                 `json:"apikey,omitempty"`
	AuthorizationHeader string                 `json:"authorizationHeader,omitempty"`
	Accept              string                 `json:"accept,omitempty"`
	Headers             map[string]string      `json:"headers,omitempty"`
	Configuration       map[string]interface{} `json:"configuration,omitempty"`
	IsEnabled           *bool                  `json:"isEnabled,omitempty"`
}

//Enabled returns false only if the source was disabled explicitly
func (s *Source) Enabled() bool {
	return s.IsEnabled == nil || *s.IsEnabled
}

//Mapping is a declarative field mapping document
//Mapping keys are dot paths of the output, values are templates over the input
type Mapping struct {
	ID          string            `json:"id,omitempty"`
	Reference   string            `json:"$id"`
	Name        string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version,omitempty"`
	PassTrough  bool              `json:"passTrough"`
	Mapping     map[string]string `json:"mapping"`
	Unset       []string          `json:"unset,omitempty"`
	Cast        map[string]string `json:"cast,omitempty"`
}

//Entity is a schema definition which types ObjectEntity records
type Entity struct {
	ID          string                 `json:"id,omitempty"`
	Reference   string                 `json:"$id"`
	Name        string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

//ObjectEntity is a generic schema typed record
type ObjectEntity struct {
	ID           string
	Entity       *Entity
	Data         map[string]interface{}
	DateCreated  time.Time
	DateModified time.Time
}

//NewObjectEntity returns empty object of the entity
func NewObjectEntity(entity *Entity) *ObjectEntity {
	return &ObjectEntity{Entity: entity, Data: map[string]interface{}{}}
}

//Hydrate puts all keys of data into the object (except _self)
func (o *ObjectEntity) Hydrate(data map[string]interface{}) *ObjectEntity {
	if o.Data == nil {
		o.Data = map[string]interface{}{}
	}
	for k, v := range data {
		if k == selfKey {
			continue
		}
		o.Data[k] = v
	}

	return o
}

//GetValue returns value by dot path
func (o *ObjectEntity) GetValue(key string) interface{} {
	value, _ := jsonutils.NewDotPath(key).Get(o.Data)
	return value
}

//SetValue puts value by dot path
func (o *ObjectEntity) SetValue(key string, value interface{}) error {
	if o.Data == nil {
		o.Data = map[string]interface{}{}
	}
	return jsonutils.NewDotPath(key).Set(o.Data, value)
}

//Self returns the _self metadata block
func (o *ObjectEntity) Self() map[string]interface{} {
	self := map[string]interface{}{
		"id":           o.ID,
		"dateCreated":  formatTime(o.DateCreated),
		"dateModified": formatTime(o.DateModified),
	}
	if o.Entity != nil {
		self["schema"] = map[string]interface{}{
			"id":  o.Entity.ID,
			"ref": o.Entity.Reference,
		}
	}

	return self
}

//ToArray returns a copy of the data with the _self block and the id
func (o *ObjectEntity) ToArray() map[string]interface{} {
	array := jsonutils.CopyMap(o.Data)
	if array == nil {
		array = map[string]interface{}{}
	}
	array["id"] = o.ID
	array[selfKey] = o.Self()

	return array
}

//Synchronization links a local object to its counterpart in a Source
type Synchronization struct {
	ID                string     `json:"id"`
	ObjectID          string     `json:"objectId"`
	EntityID          string     `json:"entityId"`
	SourceID          string     `json:"gatewayId"`
	MappingReference  string     `json:"mapping,omitempty"`
	SourceObjectID    string     `json:"sourceId,omitempty"`
	Endpoint          string     `json:"endpoint,omitempty"`
	Hash              string     `json:"hash,omitempty"`
	LastSynced        *time.Time `json:"lastSynced,omitempty"`
	LastChecked       *time.Time `json:"lastChecked,omitempty"`
	SourceLastChanged *time.Time `json:"sourceLastChanged,omitempty"`
}

//CallLog is a record of an outgoing call to a Source
type CallLog struct {
	CallID          string            `json:"callId"`
	SourceID        string            `json:"sourceId"`
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	RequestContent  string            `json:"requestContent,omitempty"`
	ResponseStatus  int               `json:"responseStatus,omitempty"`
	ResponseContent string            `json:"responseContent,omitempty"`
	Error           string            `json:"error,omitempty"`
	ResponseTimeMs  int64             `json:"responseTime"`
	CreatedAt       string            `json:"createdAt"`
}

func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return timestamp.ToISOFormat(t)
}
