package soap

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

const (
	//AttributePrefix marks attribute keys: "@StUF:entiteittype"
	AttributePrefix = "@"
	//TextKey holds the text of elements which also have attributes or children
	TextKey = "#"
)

//Decode parses XML document into nested map keyed by qualified element names
//  <ns2:zakLk01><ns2:object StUF:entiteittype="ZAK"><ns2:identificatie>1</ns2:identificatie></ns2:object></ns2:zakLk01>
//becomes
//  {"ns2:zakLk01": {"ns2:object": {"@StUF:entiteittype": "ZAK", "ns2:identificatie": "1"}}}
//repeated elements become arrays
func Decode(payload []byte) (map[string]interface{}, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(payload); err != nil {
		return nil, errors.Wrap(err, "parsing XML")
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.New("XML document doesn't have a root element")
	}

	return map[string]interface{}{root.FullTag(): decodeElement(root)}, nil
}

//decodeElement returns string for plain text elements, map otherwise
func decodeElement(el *etree.Element) interface{} {
	text := strings.TrimSpace(el.Text())
	children := el.ChildElements()
	if len(children) == 0 && len(el.Attr) == 0 {
		return text
	}

	node := map[string]interface{}{}
	for _, attr := range el.Attr {
		node[AttributePrefix+attr.FullKey()] = attr.Value
	}

	for _, child := range children {
		key := child.FullTag()
		value := decodeElement(child)
		existing, ok := node[key]
		if !ok {
			node[key] = value
			continue
		}

		if list, isList := existing.([]interface{}); isList {
			node[key] = append(list, value)
		} else {
			node[key] = []interface{}{existing, value}
		}
	}

	if text != "" {
		node[TextKey] = text
	}

	return node
}

//LocalName returns element name without namespace prefix: "ns2:zakLk01" -> "zakLk01"
func LocalName(key string) string {
	if idx := strings.LastIndex(key, ":"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

//FindByLocalName returns the first value of node whose key has the local name (prefix agnostic)
func FindByLocalName(node map[string]interface{}, localName string) (interface{}, bool) {
	for key, value := range node {
		if strings.HasPrefix(key, AttributePrefix) {
			continue
		}
		if LocalName(key) == localName {
			return value, true
		}
	}
	return nil, false
}

//Body returns the content of SOAP-ENV:Envelope/SOAP-ENV:Body regardless of the envelope prefix
func Body(document map[string]interface{}) (map[string]interface{}, bool) {
	envelope, ok := FindByLocalName(document, "Envelope")
	if !ok {
		return nil, false
	}
	envelopeMap, ok := envelope.(map[string]interface{})
	if !ok {
		return nil, false
	}
	body, ok := FindByLocalName(envelopeMap, "Body")
	if !ok {
		return nil, false
	}
	bodyMap, ok := body.(map[string]interface{})
	return bodyMap, ok
}

//Text returns text value of a decoded element (plain string or "#" key)
func Text(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case map[string]interface{}:
		if text, ok := typed[TextKey].(string); ok {
			return text
		}
	}
	return ""
}
