package vrijbrp

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var ErrZaakNotSynchronized = errors.New("zaak isn't synchronized with VrijBRP")

//DocumentHandler maps a ZGW (zaak)informatieobject and posts it to the dossier of its zaak in VrijBRP
//the dossier id is the source id of the zaak synchronization
func (s *Service) DocumentHandler(ctx context.Context, data, configuration map[string]interface{}) map[string]interface{} {
	config, err := DecodeConfiguration(configuration)
	if err != nil {
		logging.Errorf("Error decoding document configuration: %v", err)
		return map[string]interface{}{}
	}

	resolved, err := s.resolve(config, true)
	if err != nil {
		return map[string]interface{}{}
	}

	object, err := s.GetObject(ctx, data)
	if err != nil {
		return map[string]interface{}{}
	}

	dossierID, err := s.GetDossierID(ctx, object, resolved.source, resolved.entity)
	if err != nil {
		logging.Errorf("Error getting VrijBRP dossier of document [%s]: %v", object.ID, err)
		return map[string]interface{}{}
	}

	objectArray, err := s.mapObject(resolved.mapping, object)
	if err != nil {
		return map[string]interface{}{}
	}

	documentEntity := object.Entity
	if documentEntity == nil {
		documentEntity = resolved.entity
	}
	sync, err := s.GetSynchronization(ctx, object, resolved.source, documentEntity, resolved.mapping)
	if err != nil {
		logging.Errorf("Error getting synchronization of object [%s]: %v", object.ID, err)
		return map[string]interface{}{}
	}

	location := strings.ReplaceAll(config.Location, dossierIDPlaceholder, url.PathEscape(dossierID))
	if _, err := s.SynchronizeTemp(ctx, sync, resolved.source, objectArray, location); err != nil {
		return map[string]interface{}{}
	}

	return data
}

//GetDossierID returns VrijBRP dossier id of the zaak the document belongs to
func (s *Service) GetDossierID(ctx context.Context, document *gateway.ObjectEntity, source *gateway.Source, zaakEntity *gateway.Entity) (string, error) {
	zaakID := ReferenceID(document.GetValue("zaak"))
	if zaakID == "" {
		return "", errors.Wrap(gateway.ErrMissingParameter, "document zaak")
	}

	zaak, err := s.objects.Find(ctx, zaakID)
	if err != nil {
		return "", err
	}

	sync, err := s.synchronizer.FindSyncByObject(ctx, zaak, source, zaakEntity)
	if err != nil {
		return "", err
	}
	if sync.SourceObjectID == "" {
		return "", errors.Wrapf(ErrZaakNotSynchronized, "zaak [%s]", zaakID)
	}

	return sync.SourceObjectID, nil
}

//ReferenceID returns id of a referenced object: an id, the last segment of a URL, or id/_self.id of an embedded object
func ReferenceID(value interface{}) string {
	switch v := value.(type) {
	case map[string]interface{}:
		if self, ok := v["_self"].(map[string]interface{}); ok {
			if id := cast.ToString(self["id"]); id != "" {
				return id
			}
		}
		return cast.ToString(v["id"])
	case string:
		if parsed, err := url.Parse(v); err == nil && parsed.Scheme != "" {
			return path.Base(strings.TrimSuffix(parsed.Path, "/"))
		}
		return v
	default:
		return ""
	}
}
