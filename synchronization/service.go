package synchronization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/meta"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/spf13/cast"
)

//response paths which may contain the id of the pushed object in the Source
var sourceObjectIDPaths = []string{"id", "uuid", "dossierId", "dossier.dossierId"}

//Service is a gateway.Synchronizer which keeps synchronizations in meta.Storage
type Service struct {
	storage meta.Storage
}

func NewService(storage meta.Storage) *Service {
	return &Service{storage: storage}
}

//FindSyncByObject returns the existing synchronization of the object with the source or a new (not saved) one
func (s *Service) FindSyncByObject(ctx context.Context, object *gateway.ObjectEntity, source *gateway.Source, entity *gateway.Entity) (*gateway.Synchronization, error) {
	if object == nil || source == nil || entity == nil {
		return nil, errors.New("object, source and entity are required for synchronization")
	}

	sync, err := s.storage.GetSynchronization(meta.SynchronizationKey(object.ID, source.ID, entity.ID))
	if err != nil {
		return nil, fmt.Errorf("getting synchronization of object [%s]: %w", object.ID, err)
	}
	if sync != nil {
		return sync, nil
	}

	return &gateway.Synchronization{
		ID:       uuid.New(),
		ObjectID: object.ID,
		EntityID: entity.ID,
		SourceID: source.ID,
	}, nil
}

func (s *Service) SaveSync(ctx context.Context, sync *gateway.Synchronization) error {
	if err := s.storage.SaveSynchronization(meta.SynchronizationKey(sync.ObjectID, sync.SourceID, sync.EntityID), sync); err != nil {
		return fmt.Errorf("saving synchronization [%s]: %w", sync.ID, err)
	}
	return nil
}

//Push marks successful push of the object to the source and saves the synchronization:
//lastSynced, sourceLastChanged and lastChecked are set to now, hash is sha384 of the response body
func (s *Service) Push(ctx context.Context, sync *gateway.Synchronization, body map[string]interface{}) error {
	now := timestamp.Now().UTC()
	sync.LastSynced = &now
	sync.SourceLastChanged = &now
	sync.LastChecked = &now

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling response body of synchronization [%s]: %w", sync.ID, err)
	}
	sync.Hash = uuid.GetHash(payload)

	for _, path := range sourceObjectIDPaths {
		if value, ok := jsonutils.NewDotPath(path).Get(body); ok {
			if id := cast.ToString(value); id != "" {
				sync.SourceObjectID = id
				break
			}
		}
	}

	return s.SaveSync(ctx, sync)
}

//Lock serializes pushes of the same object
func (s *Service) Lock(ctx context.Context, objectID string) (func(), error) {
	return s.storage.Lock(ctx, "synchronization#"+objectID)
}
