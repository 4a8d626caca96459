package resources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
)

const (
	JSONContentType = ContentType("json")
	YAMLContentType = ContentType("yaml")

	lastModifiedHeader = "Last-Modified"

	defaultTimeout = 30 * time.Second
)

//ContentType is a viper config type
type ContentType string

//ResponsePayload is a loaded resource
type ResponsePayload struct {
	Content      []byte
	ContentType  *ContentType
	LastModified string
}

//LoadFromFile returns the file content, content type is taken from the file extension
func LoadFromFile(filePath string) (*ResponsePayload, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("Error loading resource from file %s: %v", filePath, err)
	}

	return &ResponsePayload{Content: b, ContentType: contentTypeByName(filePath)}, nil
}

//LoadFromHTTP returns the body of GET url, content type is taken from the Content-Type header or the url extension
func LoadFromHTTP(url string) (*ResponsePayload, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var body []byte
	var header http.Header
	err := requests.
		URL(url).
		CheckStatus(http.StatusOK).
		Handle(func(resp *http.Response) error {
			header = resp.Header
			var err error
			body, err = io.ReadAll(resp.Body)
			return err
		}).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error loading resource from url %s: %v", url, err)
	}

	payload := &ResponsePayload{Content: body, LastModified: header.Get(lastModifiedHeader)}
	if strings.Contains(header.Get("Content-Type"), "yaml") {
		yaml := YAMLContentType
		payload.ContentType = &yaml
	} else {
		payload.ContentType = contentTypeByName(url)
	}

	return payload, nil
}

func contentTypeByName(name string) *ContentType {
	contentType := JSONContentType
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		contentType = YAMLContentType
	}
	return &contentType
}
