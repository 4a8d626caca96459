package mapping

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/spf13/cast"
)

//text/template output of a missing map key
const noValue = "<no value>"

//templateData is the root of every template: {{ .key }} or {{ get $ "a.b.0" }}
type templateData map[string]interface{}

func newTemplateData(input map[string]interface{}) templateData {
	return input
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"get":     getFunc,
		"uuid":    uuid.New,
		"now":     nowFunc,
		"default": defaultFunc,
		"date":    dateFunc,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
	}
}

//getFunc returns value by dot path: {{ get $ "SOAP-ENV:Envelope.SOAP-ENV:Body" }}
func getFunc(data templateData, path string) interface{} {
	value, ok := jsonutils.NewDotPath(path).Get(data)
	if !ok || value == nil {
		return ""
	}
	return value
}

//nowFunc formats current time with Go layout, ISO layout by default
func nowFunc(layout ...string) string {
	if len(layout) > 0 && layout[0] != "" {
		return timestamp.Now().Format(layout[0])
	}
	return timestamp.NowUTC()
}

//defaultFunc returns value if it isn't empty otherwise def: {{ .x | default "y" }}
func defaultFunc(def interface{}, value interface{}) interface{} {
	if value == nil {
		return def
	}
	if str, ok := value.(string); ok && (str == "" || str == noValue) {
		return def
	}
	return value
}

//dateFunc reformats date or time value with Go layout: {{ date "2006-01-02" .geboortedatum }}
func dateFunc(layout string, value interface{}) string {
	str := cast.ToString(value)
	if t, ok := timestamp.ParseDate(str); ok {
		return t.Format(layout)
	}
	if t, ok := timestamp.ParseClock(str); ok {
		return t.Format(layout)
	}
	return str
}

//text/template actions and keywords which are never a path reference
var templateKeywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true, "define": true,
	"template": true, "block": true, "break": true, "continue": true, "nil": true,
}

//isFunc returns true if name is a template function or keyword
func isFunc(name string) bool {
	if templateKeywords[name] {
		return true
	}
	_, ok := templateFuncs()[name]
	return ok
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringify(value interface{}) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
