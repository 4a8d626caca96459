package vrijbrp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/adapters"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/mapping"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/meta"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/storages"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/synchronization"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/test"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const (
	documentEntityReference           = "https://vng.opencatalogi.nl/schemas/drc.enkelvoudigInformatieObject.schema.json"
	eersteInschrijvingEntityReference = "https://vrijbrp.nl/schemas/vrijbrp.eersteInschrijving.schema.json"
)

type testEnv struct {
	service      *Service
	registry     *gateway.Registry
	objects      *storages.InMemoryObjects
	syncs        *synchronization.Service
	source       *gateway.Source
	zaakEntity   *gateway.Entity
	documentType *gateway.Entity
}

func newTestEnv(t *testing.T) *testEnv {
	registry := gateway.NewRegistry()
	source := registry.AddSource(&gateway.Source{
		Reference: DefaultSourceReference,
		Name:      "vrijbrp-dossiers",
		Location:  DefaultSource,
		Accept:    "application/json",
	})

	reference := map[string]string{"dossier.referenceIds.0.id": "{{ identificatie }}"}
	registry.AddMapping(&gateway.Mapping{Reference: BirthMapping, Mapping: map[string]string{
		"declarant.bsn":             "{{ rollen.0.betrokkeneIdentificatie.inpBsn }}",
		"dossier.referenceIds.0.id": "{{ identificatie }}",
		"dossier.type.code":         "BIRTH",
	}})
	registry.AddMapping(&gateway.Mapping{Reference: RelocationMapping, Mapping: reference})
	registry.AddMapping(&gateway.Mapping{Reference: DeceasementMapping, Mapping: reference})
	registry.AddMapping(&gateway.Mapping{Reference: DocumentMapping, Mapping: map[string]string{
		"title":   "{{ titel }}",
		"content": "{{ inhoud }}",
	}})

	zaakEntity := registry.AddEntity(&gateway.Entity{Reference: DefaultSynchronizationEntity, Name: "Zaak"})
	documentType := registry.AddEntity(&gateway.Entity{Reference: documentEntityReference, Name: "EnkelvoudigInformatieObject"})
	registry.AddEntity(&gateway.Entity{Reference: eersteInschrijvingEntityReference, Name: "EersteInschrijving"})

	objects := storages.NewInMemoryObjects()
	syncs := synchronization.NewService(meta.NewInMemory(10))

	return &testEnv{
		service:      NewService(registry, mapping.NewService(), objects, adapters.NewHTTPCaller(nil, nil), syncs),
		registry:     registry,
		objects:      objects,
		syncs:        syncs,
		source:       source,
		zaakEntity:   zaakEntity,
		documentType: documentType,
	}
}

func (env *testEnv) save(t *testing.T, entity *gateway.Entity, data map[string]interface{}) *gateway.ObjectEntity {
	object := gateway.NewObjectEntity(entity).Hydrate(data)
	require.NoError(t, env.objects.Save(context.Background(), object))
	return object
}

func (env *testEnv) sync(t *testing.T, object *gateway.ObjectEntity, entity *gateway.Entity) *gateway.Synchronization {
	sync, err := env.syncs.FindSyncByObject(context.Background(), object, env.source, entity)
	require.NoError(t, err)
	return sync
}

//captureResponder stores the posted JSON body and responds with the payload
func captureResponder(t *testing.T, status int, payload string, captured *map[string]interface{}) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, captured))
		return httpmock.NewStringResponse(status, payload), nil
	}
}

func triggerData(id string) map[string]interface{} {
	return map[string]interface{}{"object": map[string]interface{}{"_self": map[string]interface{}{"id": id}}}
}

func eigenschappen(pairs ...string) []interface{} {
	result := []interface{}{}
	for i := 0; i+1 < len(pairs); i += 2 {
		result = append(result, map[string]interface{}{"naam": pairs[i], "waarde": pairs[i+1]})
	}
	return result
}

func birthZaak() map[string]interface{} {
	return map[string]interface{}{
		"identificatie": "ZAAK-2023-0001",
		"rollen": []interface{}{
			map[string]interface{}{"betrokkeneIdentificatie": map[string]interface{}{"inpBsn": "999993653"}},
		},
		"eigenschappen": eigenschappen(
			"relatie", "MOTHER",
			"sub.telefoonnummer", "0612345678",
			"sub.emailadres", "moeder@example.com",
			"geslachtsnaam", "Jansen",
			"voorvoegselGeslachtsnaam", "van",
			"voornamen1", "Anna",
			"geslachtsaanduiding1", "V",
			"geboortedatum1", "2023-03-01",
			"geboortetijd1", "10:15",
			"voornamen2", "Bram",
			"geslachtsaanduiding2", "M",
			"geboortedatum2", "2023-03-01",
			"geboortetijd2", "10:20",
		),
	}
}

func birthConfiguration() map[string]interface{} {
	return map[string]interface{}{
		"source":                DefaultSourceReference,
		"location":              BirthLocation,
		"mapping":               BirthMapping,
		"synchronizationEntity": DefaultSynchronizationEntity,
	}
}

func TestZgwToVrijbrpHandler(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	zaak := env.save(t, env.zaakEntity, birthZaak())

	posted := map[string]interface{}{}
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/births",
		captureResponder(t, http.StatusCreated, `{"dossierId":"D-1"}`, &posted))

	data := triggerData(zaak.ID)
	result := env.service.ZgwToVrijbrpHandler(context.Background(), data, birthConfiguration())
	require.Equal(t, data, result)

	test.JSONEqual(t, `{
		"dossier": {"type": {"code": "BIRTH"}, "referenceIds": [{"id": "ZAAK-2023-0001"}]},
		"qualificationForDeclaringType": "MOTHER",
		"declarant": {
			"bsn": "999993653",
			"contactInformation": {"telephoneNumber": "0612345678", "email": "moeder@example.com"}
		},
		"mother": {
			"bsn": "999993653",
			"contactInformation": {"telephoneNumber": "0612345678", "email": "moeder@example.com"}
		},
		"children": [
			{"firstname": "Anna", "gender": "V", "birthDateTime": "2023-03-01T10:15:00"},
			{"firstname": "Bram", "gender": "M", "birthDateTime": "2023-03-01T10:20:00"}
		],
		"nameSelection": {"lastname": "Jansen", "prefix": "van"}
	}`, posted)

	sync := env.sync(t, zaak, env.zaakEntity)
	require.Equal(t, "D-1", sync.SourceObjectID)
	require.Equal(t, BirthMapping, sync.MappingReference)
	require.Equal(t, uuid.GetHash([]byte(`{"dossierId":"D-1"}`)), sync.Hash)
	require.NotNil(t, sync.LastSynced)
	require.Equal(t, sync.LastSynced, sync.LastChecked)
}

func TestZgwToVrijbrpHandlerStoredEigenschappen(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	data := birthZaak()
	ids := []interface{}{}
	for _, eigenschap := range data["eigenschappen"].([]interface{}) {
		ids = append(ids, env.save(t, env.zaakEntity, eigenschap.(map[string]interface{})).ID)
	}
	data["eigenschappen"] = ids
	zaak := env.save(t, env.zaakEntity, data)

	posted := map[string]interface{}{}
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/births",
		captureResponder(t, http.StatusCreated, `{"dossierId":"D-2"}`, &posted))

	trigger := triggerData(zaak.ID)
	require.Equal(t, trigger, env.service.ZgwToVrijbrpHandler(context.Background(), trigger, birthConfiguration()))

	require.Equal(t, "MOTHER", posted["qualificationForDeclaringType"])
	test.JSONEqual(t, `{"lastname": "Jansen", "prefix": "van"}`, posted["nameSelection"])
	test.JSONEqual(t, `[
		{"firstname": "Anna", "gender": "V", "birthDateTime": "2023-03-01T10:15:00"},
		{"firstname": "Bram", "gender": "M", "birthDateTime": "2023-03-01T10:20:00"}
	]`, posted["children"])
}

func TestZgwToVrijbrpHandlerErrors(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	zaak := env.save(t, env.zaakEntity, birthZaak())
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/births",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"message":"dossier can't be created"}`))

	tests := []struct {
		name          string
		data          map[string]interface{}
		configuration map[string]interface{}
		calls         int
	}{
		{
			"unknown source",
			triggerData(zaak.ID),
			map[string]interface{}{"source": "https://unknown.nl", "mapping": BirthMapping, "synchronizationEntity": DefaultSynchronizationEntity},
			0,
		},
		{
			"unknown mapping",
			triggerData(zaak.ID),
			map[string]interface{}{"source": DefaultSource, "mapping": "https://unknown.nl/mapping.json", "synchronizationEntity": DefaultSynchronizationEntity},
			0,
		},
		{
			"unknown object",
			triggerData("missing"),
			birthConfiguration(),
			0,
		},
		{
			"no object id",
			map[string]interface{}{},
			birthConfiguration(),
			0,
		},
		{
			"VrijBRP error",
			triggerData(zaak.ID),
			birthConfiguration(),
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := httpmock.GetTotalCallCount()

			result := env.service.ZgwToVrijbrpHandler(context.Background(), tt.data, tt.configuration)
			require.Empty(t, result)
			require.Equal(t, tt.calls, httpmock.GetTotalCallCount()-before)
		})
	}

	sync := env.sync(t, zaak, env.zaakEntity)
	require.Empty(t, sync.SourceObjectID)
	require.Nil(t, sync.LastSynced)
}

func relocationZaak(gemeenteCode string) map[string]interface{} {
	return map[string]interface{}{
		"identificatie": "ZAAK-2023-0002",
		"eigenschappen": eigenschappen(
			"BSN", "999993653",
			"EMAILADRES", "verhuizer@example.com",
			"TELEFOONNUMMER", "0612345678",
			"STRAATNAAM_NIEUW", "Dorpsstraat",
			"HUISNUMMER_NIEUW", "12",
			"POSTCODE_NIEUW", "1234AB",
			"WOONPLAATS_NIEUW", "Dorp",
			"AANTAL_PERS_NIEUW_ADRES", "2",
			"GEMEENTECODE", gemeenteCode,
			relocatorPrefix+"0.BSN", "999992806",
			relocatorPrefix+"0.ROL", "P",
		),
	}
}

func TestRelocationHandler(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	interPosted := map[string]interface{}{}
	intraPosted := map[string]interface{}{}
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/relocations/inter",
		captureResponder(t, http.StatusCreated, `{"dossier":{"dossierId":"R-1"}}`, &interPosted))
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/relocations/intra",
		captureResponder(t, http.StatusCreated, `{"dossier":{"dossierId":"R-2"}}`, &intraPosted))

	configuration := map[string]interface{}{
		"source":                DefaultSource,
		"mapping":               RelocationMapping,
		"synchronizationEntity": DefaultSynchronizationEntity,
		"gemeenteCode":          "0268",
		"interLocation":         InterRelocationLocation,
		"intraLocation":         IntraRelocationLocation,
	}

	inter := env.save(t, env.zaakEntity, relocationZaak("0363"))
	data := triggerData(inter.ID)
	require.Equal(t, data, env.service.RelocationHandler(context.Background(), data, configuration))
	require.Equal(t, map[string]interface{}{"code": "0363"}, interPosted["previousMunicipality"])
	require.Equal(t, []interface{}{map[string]interface{}{"id": "ZAAK-2023-0002"}}, get(interPosted, "dossier.referenceIds"))
	require.Equal(t, "R-1", env.sync(t, inter, env.zaakEntity).SourceObjectID)

	intra := env.save(t, env.zaakEntity, relocationZaak("0268"))
	data = triggerData(intra.ID)
	require.Equal(t, data, env.service.RelocationHandler(context.Background(), data, configuration))
	require.NotContains(t, intraPosted, "previousMunicipality")
	require.Equal(t, "Dorpsstraat", get(intraPosted, "newAddress.street"))
	require.Equal(t, "R-2", env.sync(t, intra, env.zaakEntity).SourceObjectID)

	info := httpmock.GetCallCountInfo()
	require.Equal(t, 1, info["POST https://vrijbrp.nl/dossiers/api/v1/relocations/inter"])
	require.Equal(t, 1, info["POST https://vrijbrp.nl/dossiers/api/v1/relocations/intra"])
}

func TestRelocationHandlerWithoutGemeenteCode(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	zaak := env.save(t, env.zaakEntity, relocationZaak("0363"))

	result := env.service.RelocationHandler(context.Background(), triggerData(zaak.ID), map[string]interface{}{
		"source":                DefaultSource,
		"mapping":               RelocationMapping,
		"synchronizationEntity": DefaultSynchronizationEntity,
		"interLocation":         InterRelocationLocation,
		"intraLocation":         IntraRelocationLocation,
	})
	require.Empty(t, result)
	require.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestDeceasementHandler(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	foundBody := map[string]interface{}{}
	inMunicipality := map[string]interface{}{}
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/deaths/found-body",
		captureResponder(t, http.StatusCreated, `{"dossier":{"dossierId":"O-1"}}`, &foundBody))
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/deaths/in-municipality",
		captureResponder(t, http.StatusCreated, `{"dossier":{"dossierId":"O-2"}}`, &inMunicipality))

	configuration := map[string]interface{}{
		"source":                 DefaultSource,
		"mapping":                DeceasementMapping,
		"synchronizationEntity":  DefaultSynchronizationEntity,
		"foundBodyLocation":      FoundBodyLocation,
		"inMunicipalityLocation": InMunicipalityLocation,
	}

	found := env.save(t, env.zaakEntity, map[string]interface{}{
		"identificatie": "ZAAK-2023-0003",
		"eigenschappen": eigenschappen(
			"aangevertype", "POLICE",
			"inp.bsn", "999993653",
			"datumlijkvinding", "20230310",
			"tijdlijkvinding", "0830",
		),
	})
	data := triggerData(found.ID)
	require.Equal(t, data, env.service.DeceasementHandler(context.Background(), data, configuration))
	require.Equal(t, "2023-03-10", foundBody["dateOfFinding"])
	require.Equal(t, "08:30", foundBody["timeOfFinding"])
	require.Equal(t, "999993653", get(foundBody, "deceased.bsn"))
	require.Equal(t, "O-1", env.sync(t, found, env.zaakEntity).SourceObjectID)

	inside := env.save(t, env.zaakEntity, map[string]interface{}{
		"identificatie": "ZAAK-2023-0004",
		"eigenschappen": eigenschappen(
			"inp.bsn", "999992806",
			"datumoverlijden", "2023-03-12",
			"natdood", "True",
		),
	})
	data = triggerData(inside.ID)
	require.Equal(t, data, env.service.DeceasementHandler(context.Background(), data, configuration))
	require.Equal(t, "2023-03-12", inMunicipality["dateOfDeath"])
	require.Equal(t, true, inMunicipality["deathByNaturalCauses"])
	require.Equal(t, "O-2", env.sync(t, inside, env.zaakEntity).SourceObjectID)
}

func TestEersteInschrijvingHandler(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	entity, err := env.registry.FindEntity(eersteInschrijvingEntityReference)
	require.NoError(t, err)

	object := env.save(t, entity, map[string]interface{}{
		"persoon": map[string]interface{}{
			"_self": map[string]interface{}{"id": "person-1"},
			"bsn":   "999993653",
		},
		"nationaliteiten": []interface{}{
			map[string]interface{}{"_self": map[string]interface{}{"id": "nat-1"}, "code": "0001"},
		},
	})

	posted := map[string]interface{}{}
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/first-registrations",
		captureResponder(t, http.StatusCreated, `{"dossierId":"E-1","status":"created"}`, &posted))

	result := env.service.EersteInschrijvingHandler(context.Background(), map[string]interface{}{"response": map[string]interface{}{"id": object.ID}}, map[string]interface{}{
		"source":                DefaultSource,
		"location":              EersteInschrijvingLocation,
		"synchronizationEntity": eersteInschrijvingEntityReference,
	})

	require.Equal(t, map[string]interface{}{"response": map[string]interface{}{"dossierId": "E-1", "status": "created"}}, result)
	require.Equal(t, map[string]interface{}{
		"id":              object.ID,
		"persoon":         map[string]interface{}{"bsn": "999993653"},
		"nationaliteiten": []interface{}{map[string]interface{}{"code": "0001"}},
	}, posted)
	require.Equal(t, "E-1", env.sync(t, object, entity).SourceObjectID)
}

func documentConfiguration() map[string]interface{} {
	return map[string]interface{}{
		"source":                DefaultSource,
		"location":              DocumentLocation,
		"mapping":               DocumentMapping,
		"synchronizationEntity": DefaultSynchronizationEntity,
	}
}

func TestDocumentHandler(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	zaak := env.save(t, env.zaakEntity, birthZaak())
	zaakSync := env.sync(t, zaak, env.zaakEntity)
	require.NoError(t, env.syncs.Push(context.Background(), zaakSync, map[string]interface{}{"dossierId": "D-7"}))

	document := env.save(t, env.documentType, map[string]interface{}{
		"zaak":   "https://zaken.example.com/api/v1/zaken/" + zaak.ID,
		"titel":  "geboorteakte.pdf",
		"inhoud": "YWt0ZQ==",
	})

	posted := map[string]interface{}{}
	httpmock.RegisterResponder(http.MethodPost, "https://vrijbrp.nl/dossiers/api/v1/dossiers/D-7/documents",
		captureResponder(t, http.StatusCreated, `{"id":"DOC-1"}`, &posted))

	data := triggerData(document.ID)
	require.Equal(t, data, env.service.DocumentHandler(context.Background(), data, documentConfiguration()))
	require.Equal(t, map[string]interface{}{"title": "geboorteakte.pdf", "content": "YWt0ZQ=="}, posted)

	documentSync := env.sync(t, document, env.documentType)
	require.Equal(t, "DOC-1", documentSync.SourceObjectID)
	require.Equal(t, env.documentType.ID, documentSync.EntityID)
}

func TestDocumentHandlerNotSynchronizedZaak(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	env := newTestEnv(t)
	zaak := env.save(t, env.zaakEntity, birthZaak())
	document := env.save(t, env.documentType, map[string]interface{}{"zaak": map[string]interface{}{"id": zaak.ID}})

	result := env.service.DocumentHandler(context.Background(), triggerData(document.ID), documentConfiguration())
	require.Empty(t, result)
	require.Equal(t, 0, httpmock.GetTotalCallCount())

	_, err := env.service.GetDossierID(context.Background(), document, env.source, env.zaakEntity)
	require.True(t, errors.Is(err, ErrZaakNotSynchronized), err)
}

func TestGetSource(t *testing.T) {
	env := newTestEnv(t)

	for _, value := range []string{DefaultSource, DefaultSourceReference, "vrijbrp-dossiers"} {
		source, err := env.service.GetSource(value)
		require.NoError(t, err, value)
		require.Equal(t, env.source.ID, source.ID, value)
	}

	_, err := env.service.GetSource("")
	require.True(t, errors.Is(err, gateway.ErrMissingParameter))

	_, err = env.service.GetSource("https://unknown.nl")
	require.True(t, errors.Is(err, gateway.ErrSourceNotFound))
}

func TestGetZaakEigenschappen(t *testing.T) {
	env := newTestEnv(t)
	stored := env.save(t, env.zaakEntity, map[string]interface{}{"naam": "BSN", "waarde": "999993653"})
	zaak := env.save(t, env.zaakEntity, map[string]interface{}{
		"eigenschappen": []interface{}{
			stored.ID,
			"missing",
			map[string]interface{}{"naam": "GEMEENTECODE", "waarde": "0268"},
			map[string]interface{}{"waarde": "without name"},
		},
	})

	require.Equal(t, map[string]interface{}{"BSN": "999993653", "GEMEENTECODE": "0268"},
		env.service.GetZaakEigenschappen(context.Background(), zaak, "all"))
	require.Equal(t, map[string]interface{}{"GEMEENTECODE": "0268"},
		env.service.GetZaakEigenschappen(context.Background(), zaak, "GEMEENTECODE"))
	require.Empty(t, env.service.GetZaakEigenschappen(context.Background(), zaak))
}
