package zds

import (
	"context"
	"fmt"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/soap"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const (
	ZaakIDMapping     = "https://opencatalogi.nl/schemas/zds.zdsZaakIdToZgwZaak.schema.json"
	ZaakMapping       = "https://opencatalogi.nl/schemas/zds.zdsZaakToZgwZaak.schema.json"
	DocumentIDMapping = "https://opencatalogi.nl/schemas/zds.zdsDocumentIdToZgwDocument.schema.json"
	DocumentMapping   = "https://opencatalogi.nl/schemas/zds.zdsDocumentToZgwDocument.schema.json"

	ZaakEntity                 = "https://vng.opencatalogi.nl/schemas/zrc.zaak.schema.json"
	ZaakTypeEntity             = "https://vng.opencatalogi.nl/schemas/ztc.zaakType.schema.json"
	EigenschapEntity           = "https://vng.opencatalogi.nl/schemas/ztc.eigenschap.schema.json"
	DocumentEntity             = "https://vng.opencatalogi.nl/schemas/drc.enkelvoudigInformatieObject.schema.json"
	ZaakInformatieObjectEntity = "https://vng.opencatalogi.nl/schemas/zrc.zaakInformatieObject.schema.json"

	identificatieKey = "identificatie"
	eigenschappenKey = "eigenschappen"
	zaaktypeKey      = "zaaktype"
)

//Service converts ZDS (StUF-ZKN) messages into ZGW objects
type Service struct {
	repository gateway.Repository
	mapper     gateway.Mapper
	objects    gateway.ObjectStore
}

func NewService(repository gateway.Repository, mapper gateway.Mapper, objects gateway.ObjectStore) *Service {
	return &Service{repository: repository, mapper: mapper, objects: objects}
}

//ZaakIdentificatieActionHandler reserves a zaak for genereerZaakIdentificatie_Di02:
//the zaak with the mapped identificatie is created if it doesn't exist
func (s *Service) ZaakIdentificatieActionHandler(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error) {
	return s.reserve(ctx, data, ZaakIDMapping, ZaakEntity)
}

//DocumentIdentificatieActionHandler reserves a document for genereerDocumentIdentificatie_Di02
func (s *Service) DocumentIdentificatieActionHandler(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error) {
	return s.reserve(ctx, data, DocumentIDMapping, DocumentEntity)
}

func (s *Service) reserve(ctx context.Context, data map[string]interface{}, mappingReference, entityReference string) (map[string]interface{}, error) {
	entity, err := s.repository.FindEntity(entityReference)
	if err != nil {
		return nil, err
	}

	objectArray, err := s.mapData(mappingReference, data)
	if err != nil {
		return nil, err
	}

	identificatie := cast.ToString(objectArray[identificatieKey])
	if identificatie == "" {
		return nil, errors.Wrapf(gateway.ErrMissingParameter, "identificatie isn't mapped by [%s]", mappingReference)
	}

	existing, err := s.searchByIdentificatie(ctx, entity, identificatie)
	if err != nil {
		return nil, err
	}

	var object *gateway.ObjectEntity
	if len(existing) > 0 {
		object = existing[0]
	} else {
		object = gateway.NewObjectEntity(entity).Hydrate(objectArray)
	}

	if err := s.objects.Save(ctx, object); err != nil {
		return nil, errors.Wrapf(err, "saving %s [%s]", entity.Name, identificatie)
	}

	return object.ToArray(), nil
}

//ZaakActionHandler updates the reserved zaak with the zakLk01 content
//the zaaktype and its eigenschappen are created when they don't exist yet
//returns data if there isn't exactly one zaak with the identificatie
func (s *Service) ZaakActionHandler(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error) {
	zaakEntity, err := s.repository.FindEntity(ZaakEntity)
	if err != nil {
		return nil, err
	}

	zaakArray, err := s.mapData(ZaakMapping, data)
	if err != nil {
		return nil, err
	}

	zaakArray, err = s.ConvertZaakType(ctx, zaakArray)
	if err != nil {
		return nil, err
	}

	identificatie := cast.ToString(zaakArray[identificatieKey])
	zaken, err := s.searchByIdentificatie(ctx, zaakEntity, identificatie)
	if err != nil {
		return nil, err
	}

	switch len(zaken) {
	case 1:
		zaak := zaken[0].Hydrate(zaakArray)
		if err := s.objects.Save(ctx, zaak); err != nil {
			return nil, errors.Wrapf(err, "saving zaak [%s]", identificatie)
		}
		return zaak.ToArray(), nil
	case 0:
		logging.Warnf("No case found with identifier %s", identificatie)
	default:
		logging.Warnf("More than one case with identifier %s", identificatie)
	}

	return data, nil
}

//ConvertZaakType replaces the embedded zaaktype with id of the zaaktype with the same identificatie (created if missing)
//and connects the zaak eigenschappen to it
func (s *Service) ConvertZaakType(ctx context.Context, zaakArray map[string]interface{}) (map[string]interface{}, error) {
	zaakTypeEntity, err := s.repository.FindEntity(ZaakTypeEntity)
	if err != nil {
		return nil, err
	}

	zaakTypeArray, ok := zaakArray[zaaktypeKey].(map[string]interface{})
	if !ok {
		return nil, errors.Wrap(gateway.ErrMissingParameter, "zaaktype isn't an object")
	}

	zaakTypes, err := s.searchByIdentificatie(ctx, zaakTypeEntity, cast.ToString(zaakTypeArray[identificatieKey]))
	if err != nil {
		return nil, err
	}

	var zaakType *gateway.ObjectEntity
	if len(zaakTypes) > 0 {
		zaakType = zaakTypes[0]
	} else {
		zaakType = gateway.NewObjectEntity(zaakTypeEntity).Hydrate(zaakTypeArray)
		if err := s.objects.Save(ctx, zaakType); err != nil {
			return nil, errors.Wrap(err, "saving zaaktype")
		}
	}
	zaakArray[zaaktypeKey] = zaakType.ID

	return s.ConnectEigenschappen(ctx, zaakArray, zaakType)
}

//ConnectEigenschappen replaces embedded eigenschap of every zaak eigenschap with id of the zaaktype eigenschap with the same naam
//missing eigenschappen are created and added to the zaaktype
func (s *Service) ConnectEigenschappen(ctx context.Context, zaakArray map[string]interface{}, zaakType *gateway.ObjectEntity) (map[string]interface{}, error) {
	eigenschapEntity, err := s.repository.FindEntity(EigenschapEntity)
	if err != nil {
		return nil, err
	}

	zaakTypeEigenschappen, _ := zaakType.GetValue(eigenschappenKey).([]interface{})
	zaakEigenschappen := []interface{}{}
	for index, item := range asList(zaakArray[eigenschappenKey]) {
		zaakEigenschap := NormalizeEigenschap(item)
		if zaakEigenschap == nil {
			logging.Warnf("Zaak eigenschap [%d] doesn't have a name", index)
			continue
		}
		zaakEigenschappen = append(zaakEigenschappen, zaakEigenschap)

		eigenschapArray := zaakEigenschap["eigenschap"].(map[string]interface{})
		naam := cast.ToString(zaakEigenschap["naam"])
		found, err := s.objects.SearchObjects(ctx, map[string]interface{}{"naam": naam, zaaktypeKey: zaakType.ID}, []string{eigenschapEntity.ID})
		if err != nil {
			return nil, errors.Wrapf(err, "searching eigenschap [%s]", naam)
		}
		if len(found) > 0 {
			zaakEigenschap["eigenschap"] = found[0].ID
			continue
		}

		eigenschapArray[zaaktypeKey] = zaakType.ID
		eigenschap := gateway.NewObjectEntity(eigenschapEntity).Hydrate(eigenschapArray)
		if err := s.objects.Save(ctx, eigenschap); err != nil {
			return nil, errors.Wrapf(err, "saving eigenschap [%s]", naam)
		}
		zaakEigenschap["eigenschap"] = eigenschap.ID
		zaakTypeEigenschappen = append(zaakTypeEigenschappen, eigenschap.ID)
	}
	zaakArray[eigenschappenKey] = zaakEigenschappen

	if zaakTypeEigenschappen == nil {
		zaakTypeEigenschappen = []interface{}{}
	}
	if err := zaakType.SetValue(eigenschappenKey, zaakTypeEigenschappen); err != nil {
		return nil, err
	}
	if err := s.objects.Save(ctx, zaakType); err != nil {
		return nil, errors.Wrap(err, "saving zaaktype eigenschappen")
	}

	return zaakArray, nil
}

//NormalizeEigenschap returns zaak eigenschap {naam, waarde, eigenschap{naam, ...}} of
//a ZGW zaak eigenschap or a StUF extraElement ({"@naam": "x", "#": "value"})
//returns nil if the name is empty
func NormalizeEigenschap(item interface{}) map[string]interface{} {
	node, ok := item.(map[string]interface{})
	if !ok {
		return nil
	}

	eigenschap, _ := node["eigenschap"].(map[string]interface{})
	naam := cast.ToString(node["naam"])
	if naam == "" {
		naam = cast.ToString(node[soap.AttributePrefix+"naam"])
	}
	if naam == "" && eigenschap != nil {
		naam = cast.ToString(eigenschap["naam"])
	}
	if naam == "" {
		return nil
	}

	if eigenschap == nil {
		eigenschap = map[string]interface{}{"definitie": naam}
	}
	if cast.ToString(eigenschap["naam"]) == "" {
		eigenschap["naam"] = naam
	}

	waarde, ok := node["waarde"]
	if !ok {
		waarde = soap.Text(node)
	}

	return map[string]interface{}{"naam": naam, "waarde": waarde, "eigenschap": eigenschap}
}

//asList wraps a single decoded element into a list
func asList(value interface{}) []interface{} {
	switch typed := value.(type) {
	case []interface{}:
		return typed
	case nil:
		return nil
	default:
		return []interface{}{typed}
	}
}

func (s *Service) mapData(reference string, data map[string]interface{}) (map[string]interface{}, error) {
	mapping, err := s.repository.FindMapping(reference)
	if err != nil {
		return nil, err
	}

	result, err := s.mapper.Mapping(mapping, data)
	if err != nil {
		return nil, fmt.Errorf("mapping ZDS message: %w", err)
	}
	return result, nil
}

func (s *Service) searchByIdentificatie(ctx context.Context, entity *gateway.Entity, identificatie string) ([]*gateway.ObjectEntity, error) {
	if identificatie == "" {
		return nil, errors.Wrapf(gateway.ErrMissingParameter, "%s identificatie", entity.Name)
	}

	objects, err := s.objects.SearchObjects(ctx, map[string]interface{}{identificatieKey: identificatie}, []string{entity.ID})
	if err != nil {
		return nil, errors.Wrapf(err, "searching %s [%s]", entity.Name, identificatie)
	}
	return objects, nil
}
