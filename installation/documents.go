package installation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/hashicorp/go-multierror"
)

//go:embed defaults
var defaults embed.FS

const defaultsRoot = "defaults"

//Documents are configuration documents of the bundle
type Documents struct {
	Sources  []*gateway.Source
	Mappings []*gateway.Mapping
	Entities []*gateway.Entity
}

//DefaultDocuments returns the embedded documents
func DefaultDocuments() (*Documents, error) {
	return LoadDocuments(defaults, defaultsRoot)
}

//LoadDocumentsFromDir returns documents from all *.json files of the directory (recursively)
func LoadDocumentsFromDir(dir string) (*Documents, error) {
	return LoadDocuments(os.DirFS(dir), ".")
}

//LoadDocuments walks root and parses every *.json file as a single document or an array of documents
//the kind of a document is detected by its content:
//"mapping" key - Mapping, "location" key - Source, otherwise Entity (JSON schema)
func LoadDocuments(fsys fs.FS, root string) (*Documents, error) {
	documents := &Documents{}
	var multiErr error
	err := fs.WalkDir(fsys, root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(filePath) != ".json" {
			return nil
		}

		content, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("Error reading %s: %v", filePath, err))
			return nil
		}

		if err := documents.parse(content); err != nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("Error parsing %s: %v", filePath, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if multiErr != nil {
		return nil, multiErr
	}

	return documents, nil
}

func (d *Documents) parse(content []byte) error {
	content = bytes.TrimSpace(content)
	var items []json.RawMessage
	if strings.HasPrefix(string(content), "[") {
		if err := json.Unmarshal(content, &items); err != nil {
			return err
		}
	} else {
		items = []json.RawMessage{content}
	}

	for i, item := range items {
		fields := map[string]interface{}{}
		if err := json.Unmarshal(item, &fields); err != nil {
			return fmt.Errorf("document [%d]: %v", i, err)
		}

		var err error
		switch {
		case fields["mapping"] != nil:
			mapping := &gateway.Mapping{}
			if err = json.Unmarshal(item, mapping); err == nil {
				err = requireReference(mapping.Reference)
				d.Mappings = append(d.Mappings, mapping)
			}
		case fields["location"] != nil:
			source := &gateway.Source{}
			if err = json.Unmarshal(item, source); err == nil && source.Name == "" {
				err = fmt.Errorf("source name is required")
			}
			d.Sources = append(d.Sources, source)
		default:
			entity := &gateway.Entity{}
			if err = json.Unmarshal(item, entity); err == nil {
				err = requireReference(entity.Reference)
				d.Entities = append(d.Entities, entity)
			}
		}
		if err != nil {
			return fmt.Errorf("document [%d]: %v", i, err)
		}
	}

	return nil
}

func requireReference(reference string) error {
	if reference == "" {
		return fmt.Errorf("$id is required")
	}
	return nil
}
