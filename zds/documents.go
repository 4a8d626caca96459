package zds

import (
	"context"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

//zaak identificatie of the document in the mapping output
const documentZaakKey = "zaak"

//DocumentActionHandler updates the reserved document with the edcLk01 content
//and links it to the zaak (mapped "zaak" identificatie) with a zaakinformatieobject
//returns data if there isn't exactly one document with the identificatie
func (s *Service) DocumentActionHandler(ctx context.Context, data, configuration map[string]interface{}) (map[string]interface{}, error) {
	documentEntity, err := s.repository.FindEntity(DocumentEntity)
	if err != nil {
		return nil, err
	}

	documentArray, err := s.mapData(DocumentMapping, data)
	if err != nil {
		return nil, err
	}

	zaakIdentificatie := cast.ToString(documentArray[documentZaakKey])
	delete(documentArray, documentZaakKey)

	identificatie := cast.ToString(documentArray[identificatieKey])
	documents, err := s.searchByIdentificatie(ctx, documentEntity, identificatie)
	if err != nil {
		return nil, err
	}
	if len(documents) != 1 {
		logging.Warnf("Found %d documents with identifier %s", len(documents), identificatie)
		return data, nil
	}

	document := documents[0].Hydrate(documentArray)
	if zaakIdentificatie != "" {
		zaakInformatieObject, err := s.ConnectZaak(ctx, document, zaakIdentificatie)
		if err != nil {
			return nil, err
		}
		if zaakInformatieObject != nil {
			document.Data[documentZaakKey] = cast.ToString(zaakInformatieObject.GetValue("zaak"))
		}
	}

	if err := s.objects.Save(ctx, document); err != nil {
		return nil, errors.Wrapf(err, "saving document [%s]", identificatie)
	}

	return document.ToArray(), nil
}

//ConnectZaak returns the zaakinformatieobject of the document and the zaak (created if missing)
//returns nil if there isn't exactly one zaak with the identificatie
func (s *Service) ConnectZaak(ctx context.Context, document *gateway.ObjectEntity, zaakIdentificatie string) (*gateway.ObjectEntity, error) {
	zaakEntity, err := s.repository.FindEntity(ZaakEntity)
	if err != nil {
		return nil, err
	}
	linkEntity, err := s.repository.FindEntity(ZaakInformatieObjectEntity)
	if err != nil {
		return nil, err
	}

	zaken, err := s.searchByIdentificatie(ctx, zaakEntity, zaakIdentificatie)
	if err != nil {
		return nil, err
	}
	if len(zaken) != 1 {
		logging.Warnf("Found %d cases with identifier %s, document %s isn't linked", len(zaken), zaakIdentificatie, document.ID)
		return nil, nil
	}

	if document.ID == "" {
		if err := s.objects.Save(ctx, document); err != nil {
			return nil, errors.Wrap(err, "saving document")
		}
	}

	filters := map[string]interface{}{"zaak": zaken[0].ID, "informatieobject": document.ID}
	links, err := s.objects.SearchObjects(ctx, filters, []string{linkEntity.ID})
	if err != nil {
		return nil, errors.Wrap(err, "searching zaakinformatieobject")
	}
	if len(links) > 0 {
		return links[0], nil
	}

	link := gateway.NewObjectEntity(linkEntity).Hydrate(filters)
	if title := document.GetValue("titel"); title != nil {
		link.Data["titel"] = title
	}
	if err := s.objects.Save(ctx, link); err != nil {
		return nil, errors.Wrap(err, "saving zaakinformatieobject")
	}

	return link, nil
}
