package zds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/mapping"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/soap"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/storages"
	"github.com/stretchr/testify/require"
)

const (
	zaakObject     = "SOAP-ENV:Envelope.SOAP-ENV:Body.ns2:zakLk01.ns2:object."
	documentObject = "SOAP-ENV:Envelope.SOAP-ENV:Body.ns2:edcLk01.ns2:object."
)

type testEnv struct {
	service  *Service
	registry *gateway.Registry
	objects  *storages.InMemoryObjects
}

func newTestEnv(t *testing.T) *testEnv {
	registry := gateway.NewRegistry()
	for _, reference := range []string{ZaakEntity, ZaakTypeEntity, EigenschapEntity, DocumentEntity, ZaakInformatieObjectEntity} {
		registry.AddEntity(&gateway.Entity{Reference: reference, Name: filepath.Base(reference)})
	}

	registry.AddMapping(&gateway.Mapping{Reference: ZaakIDMapping, Mapping: map[string]string{
		"identificatie": "{{ SOAP-ENV:Envelope.SOAP-ENV:Body.ns2:genereerZaakIdentificatie_Di02.ns2:stuurgegevens.StUF:referentienummer }}",
	}})
	registry.AddMapping(&gateway.Mapping{Reference: DocumentIDMapping, Mapping: map[string]string{
		"identificatie": "{{ SOAP-ENV:Envelope.SOAP-ENV:Body.ns2:genereerDocumentIdentificatie_Di02.ns2:stuurgegevens.StUF:referentienummer }}",
	}})
	registry.AddMapping(&gateway.Mapping{Reference: ZaakMapping, Mapping: map[string]string{
		"identificatie":          "{{ " + zaakObject + "ns2:identificatie }}",
		"omschrijving":           "{{ " + zaakObject + "ns2:omschrijving }}",
		"startdatum":             `{{ date "2006-01-02" (get . "` + zaakObject + `ns2:startdatum") }}`,
		"zaaktype.identificatie": "{{ " + zaakObject + "ns2:isVan.ns2:gerelateerde.ns2:code }}",
		"zaaktype.omschrijving":  "{{ " + zaakObject + "ns2:isVan.ns2:gerelateerde.ns2:omschrijving }}",
		"eigenschappen":          "{{ " + zaakObject + "StUF:extraElementen.StUF:extraElement }}",
	}})
	registry.AddMapping(&gateway.Mapping{Reference: DocumentMapping, Mapping: map[string]string{
		"identificatie": "{{ " + documentObject + "ns2:identificatie }}",
		"titel":         "{{ " + documentObject + "ns2:titel }}",
		"formaat":       "{{ " + documentObject + "ns2:formaat }}",
		"inhoud":        "{{ " + documentObject + "ns2:inhoud.# }}",
		"bestandsnaam":  "{{ " + documentObject + "ns2:inhoud.@StUF:bestandsnaam }}",
		"zaak":          "{{ " + documentObject + "ns2:isRelevantVoor.ns2:gerelateerde.ns2:identificatie }}",
	}})

	objects := storages.NewInMemoryObjects()
	return &testEnv{
		service:  NewService(registry, mapping.NewService(), objects),
		registry: registry,
		objects:  objects,
	}
}

func (env *testEnv) search(t *testing.T, entityReference string, filters map[string]interface{}) []*gateway.ObjectEntity {
	entity, err := env.registry.FindEntity(entityReference)
	require.NoError(t, err)
	objects, err := env.objects.SearchObjects(context.Background(), filters, []string{entity.ID})
	require.NoError(t, err)
	return objects
}

func loadMessage(t *testing.T, name string) map[string]interface{} {
	payload, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	document, err := soap.Decode(payload)
	require.NoError(t, err)
	return document
}

func TestZaakIdentificatieActionHandler(t *testing.T) {
	env := newTestEnv(t)
	message := loadMessage(t, "genereerZaakIdentificatie_Di02.xml")

	result, err := env.service.ZaakIdentificatieActionHandler(context.Background(), message, nil)
	require.NoError(t, err)
	require.Equal(t, "ZAAK-2023-0001", result["identificatie"])
	require.NotEmpty(t, result["id"])

	//the same identificatie reuses the reserved zaak
	again, err := env.service.ZaakIdentificatieActionHandler(context.Background(), message, nil)
	require.NoError(t, err)
	require.Equal(t, result["id"], again["id"])
	require.Len(t, env.search(t, ZaakEntity, nil), 1)
}

func TestZaakIdentificatieActionHandlerErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ZaakIdentificatieActionHandler(context.Background(), map[string]interface{}{}, nil)
	require.True(t, errors.Is(err, gateway.ErrMissingParameter), err)

	empty := &Service{repository: gateway.NewRegistry(), mapper: mapping.NewService(), objects: env.objects}
	_, err = empty.ZaakIdentificatieActionHandler(context.Background(), loadMessage(t, "genereerZaakIdentificatie_Di02.xml"), nil)
	require.True(t, errors.Is(err, gateway.ErrEntityNotFound), err)
}

func TestZaakActionHandler(t *testing.T) {
	env := newTestEnv(t)
	reserved, err := env.service.ZaakIdentificatieActionHandler(context.Background(), loadMessage(t, "genereerZaakIdentificatie_Di02.xml"), nil)
	require.NoError(t, err)

	result, err := env.service.ZaakActionHandler(context.Background(), loadMessage(t, "zakLk01.xml"), nil)
	require.NoError(t, err)
	require.Equal(t, reserved["id"], result["id"])
	require.Equal(t, "Geboorteaangifte", result["omschrijving"])
	require.Equal(t, "2023-03-14", result["startdatum"])

	zaakTypes := env.search(t, ZaakTypeEntity, map[string]interface{}{"identificatie": "B0237"})
	require.Len(t, zaakTypes, 1)
	zaakType := zaakTypes[0]
	require.Equal(t, zaakType.ID, result["zaaktype"])
	require.Equal(t, "Geboorte", zaakType.GetValue("omschrijving"))

	eigenschappen := env.search(t, EigenschapEntity, map[string]interface{}{"zaaktype": zaakType.ID})
	require.Len(t, eigenschappen, 2)
	ids := map[string]string{}
	for _, eigenschap := range eigenschappen {
		ids[eigenschap.GetValue("naam").(string)] = eigenschap.ID
	}
	require.ElementsMatch(t, []interface{}{ids["voornamen1"], ids["geslachtsnaam"]}, zaakType.GetValue("eigenschappen"))

	require.ElementsMatch(t, []interface{}{
		map[string]interface{}{"naam": "voornamen1", "waarde": "Anna", "eigenschap": ids["voornamen1"]},
		map[string]interface{}{"naam": "geslachtsnaam", "waarde": "Jansen", "eigenschap": ids["geslachtsnaam"]},
	}, result["eigenschappen"])

	//the second message reuses the zaaktype and its eigenschappen
	_, err = env.service.ZaakActionHandler(context.Background(), loadMessage(t, "zakLk01.xml"), nil)
	require.NoError(t, err)
	require.Len(t, env.search(t, ZaakTypeEntity, nil), 1)
	require.Len(t, env.search(t, EigenschapEntity, nil), 2)
	require.Len(t, env.search(t, ZaakTypeEntity, nil)[0].GetValue("eigenschappen"), 2)
}

func TestZaakActionHandlerWithoutReservedZaak(t *testing.T) {
	env := newTestEnv(t)
	message := loadMessage(t, "zakLk01.xml")

	result, err := env.service.ZaakActionHandler(context.Background(), message, nil)
	require.NoError(t, err)
	require.Equal(t, message, result)
	require.Empty(t, env.search(t, ZaakEntity, nil))
	//the zaaktype is registered anyway
	require.Len(t, env.search(t, ZaakTypeEntity, nil), 1)
}

func TestDocumentActionHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	zaak, err := env.service.ZaakIdentificatieActionHandler(ctx, loadMessage(t, "genereerZaakIdentificatie_Di02.xml"), nil)
	require.NoError(t, err)
	reserved, err := env.service.DocumentIdentificatieActionHandler(ctx, loadMessage(t, "genereerDocumentIdentificatie_Di02.xml"), nil)
	require.NoError(t, err)
	require.Equal(t, "DOC-2023-0001", reserved["identificatie"])

	result, err := env.service.DocumentActionHandler(ctx, loadMessage(t, "edcLk01.xml"), nil)
	require.NoError(t, err)
	require.Equal(t, reserved["id"], result["id"])
	require.Equal(t, "geboorteakte.pdf", result["titel"])
	require.Equal(t, "geboorteakte.pdf", result["bestandsnaam"])
	require.Equal(t, "application/pdf", result["formaat"])
	require.Equal(t, "YWt0ZQ==", result["inhoud"])
	require.Equal(t, zaak["id"], result["zaak"])

	links := env.search(t, ZaakInformatieObjectEntity, nil)
	require.Len(t, links, 1)
	require.Equal(t, zaak["id"], links[0].GetValue("zaak"))
	require.Equal(t, reserved["id"], links[0].GetValue("informatieobject"))
	require.Equal(t, "geboorteakte.pdf", links[0].GetValue("titel"))

	_, err = env.service.DocumentActionHandler(ctx, loadMessage(t, "edcLk01.xml"), nil)
	require.NoError(t, err)
	require.Len(t, env.search(t, ZaakInformatieObjectEntity, nil), 1)
}

func TestDocumentActionHandlerWithoutReservedDocument(t *testing.T) {
	env := newTestEnv(t)
	message := loadMessage(t, "edcLk01.xml")

	result, err := env.service.DocumentActionHandler(context.Background(), message, nil)
	require.NoError(t, err)
	require.Equal(t, message, result)
	require.Empty(t, env.search(t, ZaakInformatieObjectEntity, nil))
}

func TestNormalizeEigenschap(t *testing.T) {
	tests := []struct {
		name     string
		item     interface{}
		expected map[string]interface{}
	}{
		{
			"extra element",
			map[string]interface{}{"@naam": "voornamen1", "#": "Anna"},
			map[string]interface{}{"naam": "voornamen1", "waarde": "Anna", "eigenschap": map[string]interface{}{"naam": "voornamen1", "definitie": "voornamen1"}},
		},
		{
			"zaak eigenschap",
			map[string]interface{}{"naam": "BSN", "waarde": "999993653", "eigenschap": map[string]interface{}{"naam": "BSN", "definitie": "Burgerservicenummer"}},
			map[string]interface{}{"naam": "BSN", "waarde": "999993653", "eigenschap": map[string]interface{}{"naam": "BSN", "definitie": "Burgerservicenummer"}},
		},
		{
			"name from eigenschap",
			map[string]interface{}{"waarde": "1", "eigenschap": map[string]interface{}{"naam": "AANTAL"}},
			map[string]interface{}{"naam": "AANTAL", "waarde": "1", "eigenschap": map[string]interface{}{"naam": "AANTAL"}},
		},
		{
			"without name",
			map[string]interface{}{"waarde": "1"},
			nil,
		},
		{
			"not an object",
			"voornamen1",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, NormalizeEigenschap(tt.item))
		})
	}
}
