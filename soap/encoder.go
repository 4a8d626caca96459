package soap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	EnvelopePrefix    = "SOAP-ENV"
)

//Encode writes nested map as XML document under the root element
//"@" keys become attributes, "#" key becomes text, arrays become repeated elements
//children are written in key order
func Encode(root string, data map[string]interface{}) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	el := doc.CreateElement(root)
	if err := encodeNode(el, data); err != nil {
		return nil, err
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

//NewEnvelope returns document with SOAP-ENV:Envelope and the body element to fill
func NewEnvelope(namespaces map[string]string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	envelope := doc.CreateElement(EnvelopePrefix + ":Envelope")
	envelope.CreateAttr("xmlns:"+EnvelopePrefix, EnvelopeNamespace)
	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		envelope.CreateAttr("xmlns:"+prefix, namespaces[prefix])
	}
	body := envelope.CreateElement(EnvelopePrefix + ":Body")

	return doc, body
}

//Write serializes document with indentation
func Write(doc *etree.Document) ([]byte, error) {
	doc.Indent(2)
	return doc.WriteToBytes()
}

func encodeNode(el *etree.Element, data map[string]interface{}) error {
	keys := sortedKeys(data)

	for _, key := range keys {
		if strings.HasPrefix(key, AttributePrefix) {
			el.CreateAttr(strings.TrimPrefix(key, AttributePrefix), toText(data[key]))
		}
	}

	if text, ok := data[TextKey]; ok {
		el.SetText(toText(text))
	}

	for _, key := range keys {
		if strings.HasPrefix(key, AttributePrefix) || key == TextKey {
			continue
		}
		if err := encodeValue(el, key, data[key]); err != nil {
			return err
		}
	}

	return nil
}

func encodeValue(parent *etree.Element, key string, value interface{}) error {
	switch typed := value.(type) {
	case []interface{}:
		for _, elem := range typed {
			if err := encodeValue(parent, key, elem); err != nil {
				return err
			}
		}
	case map[string]interface{}:
		return encodeNode(parent.CreateElement(key), typed)
	case nil:
		parent.CreateElement(key)
	case string, bool, int, int64, float64:
		parent.CreateElement(key).SetText(toText(typed))
	default:
		return fmt.Errorf("Value of %s has unsupported type %T", key, value)
	}

	return nil
}

func toText(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
