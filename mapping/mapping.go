package mapping

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const (
	defaultCacheSize = 128

	ruleReference = "reference"
	ruleTemplate  = "template"
	ruleConstant  = "constant"
)

//{{ embedded.zaaktype.identificatie }} - the whole value is a single path reference
var referenceRegexp = regexp.MustCompile(`^\{\{\s*([^\s{}()"|]+)\s*\}\}$`)

//Service applies Mapping documents to data
//compiled mappings are cached by reference and version
type Service struct {
	compiled *lru.Cache
}

type compiledMapping struct {
	passTrough bool
	rules      []*Rule
	unset      []*jsonutils.JSONPath
	casts      []*castRule
}

//Rule sets destination to a referenced value, a rendered template or a constant
type Rule struct {
	destination *jsonutils.JSONPath
	kind        string
	source      *jsonutils.JSONPath
	template    *template.Template
	value       string
}

func NewService() *Service {
	cache, err := lru.New(defaultCacheSize)
	if err != nil {
		logging.Fatalf("Error creating mappings cache: %v", err)
	}

	return &Service{compiled: cache}
}

//Mapping transforms input according to the mapping document:
//1. output starts empty (or as a copy of the input when passTrough)
//2. every mapping rule sets its destination
//3. unset paths are removed
//4. casts are applied
func (s *Service) Mapping(mapping *gateway.Mapping, input map[string]interface{}) (map[string]interface{}, error) {
	if mapping == nil {
		return nil, errors.Wrap(gateway.ErrMappingNotFound, "nil mapping")
	}

	cm, err := s.compile(mapping)
	if err != nil {
		return nil, err
	}

	if input == nil {
		input = map[string]interface{}{}
	}

	output := map[string]interface{}{}
	if cm.passTrough {
		output = jsonutils.CopyMap(input)
	}

	for _, rule := range cm.rules {
		value, ok, err := rule.apply(input)
		if err != nil {
			return nil, errors.Wrapf(err, "mapping [%s] rule [%s]", mapping.Reference, rule.destination.String())
		}
		if !ok {
			continue
		}
		if err := rule.destination.Set(output, value); err != nil {
			return nil, errors.Wrapf(err, "mapping [%s] rule [%s]", mapping.Reference, rule.destination.String())
		}
	}

	for _, path := range cm.unset {
		path.GetAndRemove(output)
	}

	for _, cr := range cm.casts {
		if err := cr.apply(output); err != nil {
			return nil, errors.Wrapf(err, "mapping [%s] cast [%s]", mapping.Reference, cr.path.String())
		}
	}

	return output, nil
}

func (s *Service) compile(mapping *gateway.Mapping) (*compiledMapping, error) {
	key := mapping.Reference + "@" + mapping.Version
	if mapping.Reference != "" {
		if cached, ok := s.compiled.Get(key); ok {
			return cached.(*compiledMapping), nil
		}
	}

	cm, err := newCompiledMapping(mapping)
	if err != nil {
		return nil, err
	}

	if mapping.Reference != "" {
		s.compiled.Add(key, cm)
	}
	return cm, nil
}

//newCompiledMapping parses all rules and casts of the mapping document
func newCompiledMapping(mapping *gateway.Mapping) (*compiledMapping, error) {
	cm := &compiledMapping{passTrough: mapping.PassTrough}

	for _, destination := range sortedKeys(mapping.Mapping) {
		rule, err := NewRule(destination, mapping.Mapping[destination])
		if err != nil {
			return nil, errors.Wrapf(err, "mapping [%s]", mapping.Reference)
		}
		cm.rules = append(cm.rules, rule)
	}

	for _, path := range mapping.Unset {
		cm.unset = append(cm.unset, jsonutils.NewDotPath(path))
	}

	for _, path := range sortedKeys(mapping.Cast) {
		cr, err := newCastRule(path, mapping.Cast[path])
		if err != nil {
			return nil, errors.Wrapf(err, "mapping [%s]", mapping.Reference)
		}
		cm.casts = append(cm.casts, cr)
	}

	return cm, nil
}

//NewRule returns Rule for destination dot path and value expression
func NewRule(destination, expression string) (*Rule, error) {
	rule := &Rule{destination: jsonutils.NewDotPath(destination), value: expression}
	if rule.destination.IsEmpty() {
		return nil, fmt.Errorf("Malformed mapping rule: destination can't be empty")
	}

	if matches := referenceRegexp.FindStringSubmatch(expression); len(matches) == 2 && !isFunc(matches[1]) {
		rule.kind = ruleReference
		rule.source = jsonutils.NewDotPath(matches[1])
		return rule, nil
	}

	if strings.Contains(expression, "{{") {
		tmpl, err := template.New(destination).Funcs(templateFuncs()).Option("missingkey=zero").Parse(expression)
		if err != nil {
			return nil, fmt.Errorf("Malformed mapping template [%s]: %v", expression, err)
		}
		rule.kind = ruleTemplate
		rule.template = tmpl
		return rule, nil
	}

	rule.kind = ruleConstant
	return rule, nil
}

//apply returns value for the destination and false if the destination must be skipped
func (r *Rule) apply(input map[string]interface{}) (interface{}, bool, error) {
	switch r.kind {
	case ruleReference:
		value, ok := r.source.Get(input)
		if !ok {
			return nil, false, nil
		}
		return jsonutils.CopyValue(value), true, nil
	case ruleTemplate:
		var sb strings.Builder
		if err := r.template.Execute(&sb, newTemplateData(input)); err != nil {
			return nil, false, err
		}
		rendered := strings.TrimSpace(sb.String())
		if rendered == "" || rendered == noValue {
			return nil, false, nil
		}
		return rendered, true, nil
	default:
		return r.value, true, nil
	}
}
