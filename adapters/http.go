package adapters

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/metrics"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/soap"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/carlmjohnson/requests"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const (
	defaultAccept      = "application/json"
	defaultContentType = "application/json"

	//verify: false in Source configuration disables TLS certificates verification
	verifyConfigurationKey = "verify"
)

var ErrUnexpectedStatus = errors.New("Unexpected response status")

//CallRecorder stores every outgoing call (the outgoing calls log)
type CallRecorder interface {
	Record(call *gateway.CallLog)
}

//HTTPConfiguration is a dto for HTTP caller (client) configuration
type HTTPConfiguration struct {
	GlobalClientTimeout time.Duration
	JWTExpiration       time.Duration
}

//DefaultHTTPConfiguration is used when nothing is configured
var DefaultHTTPConfiguration = &HTTPConfiguration{
	GlobalClientTimeout: 30 * time.Second,
	JWTExpiration:       5 * time.Minute,
}

//HTTPCaller sends requests to Sources with the Source authentication
type HTTPCaller struct {
	client         *http.Client
	insecureClient *http.Client
	recorder       CallRecorder
	jwtExpiration  time.Duration
}

//NewHTTPCaller returns configured HTTPCaller
//the default client uses http.DefaultTransport
func NewHTTPCaller(config *HTTPConfiguration, recorder CallRecorder) *HTTPCaller {
	if config == nil {
		config = DefaultHTTPConfiguration
	}
	jwtExpiration := config.JWTExpiration
	if jwtExpiration <= 0 {
		jwtExpiration = DefaultHTTPConfiguration.JWTExpiration
	}

	insecureTransport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &HTTPCaller{
		client: &http.Client{Timeout: config.GlobalClientTimeout},
		insecureClient: &http.Client{
			Timeout:   config.GlobalClientTimeout,
			Transport: insecureTransport,
		},
		recorder:      recorder,
		jwtExpiration: jwtExpiration,
	}
}

//Call sends request to source.Location + endpoint
//returns error with status and body on non 2xx responses
func (hc *HTTPCaller) Call(ctx context.Context, source *gateway.Source, endpoint, method string, options gateway.CallOptions) (*gateway.Response, error) {
	if source == nil {
		return nil, gateway.ErrSourceNotFound
	}
	if !source.Enabled() {
		return nil, errors.Wrapf(gateway.ErrSourceDisabled, "source [%s]", source.Name)
	}
	if method == "" {
		method = http.MethodGet
	}

	url := strings.TrimSuffix(source.Location, "/") + endpoint
	builder := requests.URL(url).
		Client(hc.clientFor(source)).
		Method(method).
		Accept(firstNonEmpty(source.Accept, defaultAccept)).
		//response statuses are checked below for keeping the body of errors
		AddValidator(func(*http.Response) error { return nil })

	headers := map[string]string{}
	for k, v := range source.Headers {
		headers[k] = v
	}
	for k, v := range options.Headers {
		headers[k] = v
	}
	if len(options.Body) > 0 {
		builder.BodyBytes(options.Body)
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = defaultContentType
		}
	}
	for k, v := range headers {
		builder.Header(k, v)
	}
	for k, v := range options.Query {
		builder.Param(k, v)
	}

	if err := hc.authenticate(builder, source); err != nil {
		return nil, errors.Wrapf(err, "authenticating to source [%s]", source.Name)
	}

	callLog := &gateway.CallLog{
		CallID:         uuid.New(),
		SourceID:       source.ID,
		Method:         method,
		URL:            url,
		RequestHeaders: headers,
		RequestContent: string(options.Body),
		CreatedAt:      timestamp.NowUTC(),
	}

	response := &gateway.Response{}
	started := time.Now()
	err := builder.
		Handle(func(res *http.Response) error {
			response.StatusCode = res.StatusCode
			response.Header = res.Header
			body, err := io.ReadAll(res.Body)
			if err != nil {
				return errors.Wrap(err, "reading response body")
			}
			response.Body = body
			return nil
		}).
		Fetch(ctx)

	callLog.ResponseTimeMs = time.Since(started).Milliseconds()
	callLog.ResponseStatus = response.StatusCode
	callLog.ResponseContent = string(response.Body)

	if err == nil && (response.StatusCode < 200 || response.StatusCode > 299) {
		err = errors.Wrapf(ErrUnexpectedStatus, "%s %s responded %d: %s", method, url, response.StatusCode, string(response.Body))
	}

	if err != nil {
		callLog.Error = err.Error()
		hc.record(callLog)
		metrics.ErrorCall(source.Name, method, response.StatusCode)
		logging.Debugf("[%s] Error calling %s %s: %v", source.Name, method, url, err)
		return response, err
	}

	hc.record(callLog)
	metrics.SuccessCall(source.Name, method, response.StatusCode)
	return response, nil
}

//DecodeResponse decodes body according to the response Content-Type (JSON by default, XML through SOAP decoder)
//top level JSON arrays are returned under "results" key
func (hc *HTTPCaller) DecodeResponse(source *gateway.Source, response *gateway.Response) (map[string]interface{}, error) {
	if response == nil || len(bytes.TrimSpace(response.Body)) == 0 {
		return map[string]interface{}{}, nil
	}

	contentType := response.Header.Get("Content-Type")
	if contentType == "" && source != nil {
		contentType = source.Accept
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)

	if strings.HasSuffix(mediaType, "xml") {
		return soap.Decode(response.Body)
	}

	var decoded interface{}
	if err := json.Unmarshal(response.Body, &decoded); err != nil {
		return nil, errors.Wrapf(err, "decoding response body: %s", string(response.Body))
	}

	switch typed := decoded.(type) {
	case map[string]interface{}:
		return typed, nil
	case []interface{}:
		return map[string]interface{}{"results": typed}, nil
	default:
		return nil, fmt.Errorf("Response body isn't a JSON object or array: %s", string(response.Body))
	}
}

func (hc *HTTPCaller) clientFor(source *gateway.Source) *http.Client {
	if verify, ok := source.Configuration[verifyConfigurationKey]; ok && !cast.ToBool(verify) {
		return hc.insecureClient
	}
	return hc.client
}

func (hc *HTTPCaller) record(callLog *gateway.CallLog) {
	if hc.recorder != nil {
		hc.recorder.Record(callLog)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
