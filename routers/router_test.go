package routers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/actions"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/adapters"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/caching"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/installation"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/mapping"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/meta"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/soap"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/storages"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/synchronization"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/vrijbrp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/zds"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "admin-secret"

type testServer struct {
	router   *gin.Engine
	registry *gateway.Registry
	storage  *meta.InMemory
}

func newTestServer(t *testing.T) *testServer {
	registry := gateway.NewRegistry()
	objects := storages.NewInMemoryObjects()
	mapper := mapping.NewService()
	storage := meta.NewInMemory(10)
	callsCache := caching.NewCallsCache(storage)
	vrijbrpService := vrijbrp.NewService(registry, mapper, objects, adapters.NewHTTPCaller(nil, callsCache), synchronization.NewService(storage))
	zdsService := zds.NewService(registry, mapper, objects)

	dispatcher, err := actions.NewDispatcher(2)
	require.NoError(t, err)
	t.Cleanup(func() {
		dispatcher.Close()
		callsCache.Close()
	})

	installer := installation.NewInstaller(installation.Config{}, registry, dispatcher, nil, actions.Handlers(vrijbrpService, zdsService))
	_, err = installer.Install()
	require.NoError(t, err)

	return &testServer{
		router:   SetupRouter(testAdminToken, installer, dispatcher, registry, callsCache),
		registry: registry,
		storage:  storage,
	}
}

func (ts *testServer) do(t *testing.T, method, path, contentType string, body []byte, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func fixture(t *testing.T, name string) []byte {
	payload, err := os.ReadFile(filepath.Join("..", "zds", "testdata", name))
	require.NoError(t, err)
	return payload
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/ping", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
}

func TestZdsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/stuf/zds", "text/xml", fixture(t, "genereerZaakIdentificatie_Di02.xml"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/xml")
	require.Contains(t, w.Body.String(), "genereerZaakIdentificatie_Du02")
	require.Contains(t, w.Body.String(), "<ZKN:identificatie>ZAAK-2023-0001</ZKN:identificatie>")

	w = ts.do(t, http.MethodPost, "/api/stuf/zds", "text/xml", fixture(t, "genereerDocumentIdentificatie_Di02.xml"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "<ZKN:identificatie>DOC-2023-0001</ZKN:identificatie>")

	w = ts.do(t, http.MethodPost, "/api/stuf/zds", "text/xml", fixture(t, "zakLk01.xml"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "Bv03Bericht")

	w = ts.do(t, http.MethodPost, "/api/stuf/zds", "text/xml", fixture(t, "edcLk01.xml"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "Bv03Bericht")
}

func TestUnknownEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/stuf/zds"},
		{http.MethodPost, "/api/stuf/zds/other"},
		{http.MethodPost, "/api/unknown"},
		{http.MethodPost, "/stuf/zds"},
	} {
		w := ts.do(t, tt.method, tt.path, "text/xml", fixture(t, "zakLk01.xml"), "")
		require.Equal(t, http.StatusNotFound, w.Code, tt.method+" "+tt.path)
		require.Contains(t, w.Body.String(), "Endpoint wasn't found")
	}
}

func TestZdsEndpointFaults(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not xml", "hello"},
		{"not soap", `<?xml version="1.0"?><zaak><id>1</id></zaak>`},
		{"unsupported message", `<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns2="http://www.egem.nl/StUF/sector/zkn/0310">
			<SOAP-ENV:Body><ns2:zakLv01><ns2:stuurgegevens/></ns2:zakLv01></SOAP-ENV:Body></SOAP-ENV:Envelope>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/stuf/zds", "text/xml", []byte(tt.body), "")
			require.Equal(t, http.StatusInternalServerError, w.Code)
			require.Contains(t, w.Header().Get("Content-Type"), "text/xml")
			require.Contains(t, w.Body.String(), "Fo03Bericht")
			require.Contains(t, w.Body.String(), "StUF058")
		})
	}
}

func TestZdsEndpointUnhandledMessage(t *testing.T) {
	ts := newTestServer(t)

	//actions are bound to the ns2 prefix, a message nothing handled isn't acknowledged
	for _, name := range []string{"zakLk01.xml", "edcLk01.xml"} {
		payload := strings.ReplaceAll(string(fixture(t, name)), "ns2:", "ZKN:")
		payload = strings.ReplaceAll(payload, "xmlns:ns2=", "xmlns:ZKN=")

		w := ts.do(t, http.MethodPost, "/api/stuf/zds", "text/xml", []byte(payload), "")
		require.Equal(t, http.StatusInternalServerError, w.Code, name)
		require.Contains(t, w.Body.String(), "Fo03Bericht", name)
		require.NotContains(t, w.Body.String(), "Bv03Bericht", name)
	}
}

func TestZdsEndpointJSON(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/stuf/zds", "application/json", []byte(`{"zaak": "1"}`), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"zaak": "1"}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/stuf/zds", "application/json", []byte(`[1, 2]`), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActionsAPI(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/actions", "", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/actions", "", nil, "wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/actions?token="+testAdminToken, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	response := struct {
		Actions []struct {
			Name    string   `json:"name"`
			Class   string   `json:"class"`
			Listens []string `json:"listens"`
		} `json:"actions"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Actions, 9)
	require.Equal(t, "document_identificatie_action_handler", response.Actions[0].Name)
	require.Equal(t, "DocumentIdentificatieActionHandler", response.Actions[0].Class)
	require.Equal(t, []string{installation.ZdsInboundEvent}, response.Actions[0].Listens)

	w = ts.do(t, http.MethodPost, "/api/v1/actions/missing/run", "application/json", nil, testAdminToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/actions/zds_zaak_action_handler/run", "application/json", []byte(`{`), testAdminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	//zakLk01 without zaaktype
	w = ts.do(t, http.MethodPost, "/api/v1/actions/zds_zaak_action_handler/run", "application/json", []byte(`{"id": "1"}`), testAdminToken)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "zds_zaak_action_handler")

	document, err := soap.Decode(fixture(t, "genereerZaakIdentificatie_Di02.xml"))
	require.NoError(t, err)
	body, err := json.Marshal(document)
	require.NoError(t, err)
	w = ts.do(t, http.MethodPost, "/api/v1/actions/zaak_identificatie_action_handler/run", "application/json", body, testAdminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "ZAAK-2023-0001", result["identificatie"])
	assert.NotEmpty(t, result["id"])
}

func TestCallsAPI(t *testing.T) {
	ts := newTestServer(t)

	source, err := ts.registry.FindSourceByName("vrijbrp-dossiers")
	require.NoError(t, err)
	require.NoError(t, ts.storage.AddCall(source.ID, &gateway.CallLog{CallID: "1", SourceID: source.ID, Method: http.MethodPost, ResponseStatus: 201}))
	require.NoError(t, ts.storage.AddCall(source.ID, &gateway.CallLog{CallID: "2", SourceID: source.ID, Method: http.MethodPost, ResponseStatus: 500}))

	w := ts.do(t, http.MethodGet, "/api/v1/sources/vrijbrp-dossiers/calls?limit=1", "", nil, testAdminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	response := struct {
		Source string             `json:"source"`
		Calls  []gateway.CallLog `json:"calls"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "vrijbrp-dossiers", response.Source)
	require.Len(t, response.Calls, 1)

	w = ts.do(t, http.MethodGet, "/api/v1/sources/vrijbrp-dossiers/calls?limit=zero", "", nil, testAdminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/sources/unknown/calls", "", nil, testAdminToken)
	require.Equal(t, http.StatusNotFound, w.Code)
}
