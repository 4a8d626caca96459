package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/spf13/cast"
)

const (
	castInt              = "int"
	castInteger          = "integer"
	castFloat            = "float"
	castBool             = "bool"
	castBoolean          = "boolean"
	castString           = "string"
	castKeyCantBeValue   = "keyCantBeValue"
	castUnsetIfValue     = "unsetIfValue=="
	castJSONToArray      = "jsonToArray"
	castNullStringToNull = "nullStringToNull"
)

type castRule struct {
	path   *jsonutils.JSONPath
	casts  []string
	origin string
}

//newCastRule parses comma separated casts of a path: "int" or "keyCantBeValue,unsetIfValue=="
func newCastRule(path, casts string) (*castRule, error) {
	cr := &castRule{path: jsonutils.NewDotPath(path), origin: path}
	for _, c := range strings.Split(casts, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !isKnownCast(c) {
			return nil, fmt.Errorf("Unknown cast [%s] of [%s]. Available: int, float, bool, string, keyCantBeValue, unsetIfValue==<value>, jsonToArray, nullStringToNull", c, path)
		}
		cr.casts = append(cr.casts, c)
	}

	return cr, nil
}

func isKnownCast(c string) bool {
	switch c {
	case castInt, castInteger, castFloat, castBool, castBoolean, castString, castKeyCantBeValue, castJSONToArray, castNullStringToNull:
		return true
	default:
		return strings.HasPrefix(c, castUnsetIfValue)
	}
}

//apply casts value of the path in place; missing values are skipped
func (cr *castRule) apply(output map[string]interface{}) error {
	for _, c := range cr.casts {
		value, ok := cr.path.Get(output)
		if !ok {
			return nil
		}

		casted, keep, err := castValue(c, cr.origin, value)
		if err != nil {
			return err
		}

		if !keep {
			cr.path.GetAndRemove(output)
			return nil
		}

		if err := cr.path.Set(output, casted); err != nil {
			return err
		}
	}

	return nil
}

//castValue returns casted value and false if the key must be removed
func castValue(c, key string, value interface{}) (interface{}, bool, error) {
	switch {
	case c == castInt || c == castInteger:
		v, err := cast.ToIntE(withoutLeadingZeros(trimmed(value)))
		return v, true, err
	case c == castFloat:
		v, err := cast.ToFloat64E(trimmed(value))
		return v, true, err
	case c == castBool || c == castBoolean:
		v, err := cast.ToBoolE(trimmed(value))
		return v, true, err
	case c == castString:
		return stringify(value), true, nil
	case c == castKeyCantBeValue:
		if str, ok := value.(string); ok && str == key {
			return nil, false, nil
		}
		return value, true, nil
	case strings.HasPrefix(c, castUnsetIfValue):
		if stringify(value) == strings.TrimPrefix(c, castUnsetIfValue) {
			return nil, false, nil
		}
		return value, true, nil
	case c == castJSONToArray:
		str, ok := value.(string)
		if !ok {
			return value, true, nil
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(str), &decoded); err != nil {
			return nil, false, fmt.Errorf("Error decoding JSON of [%s]: %v", key, err)
		}
		return decoded, true, nil
	case c == castNullStringToNull:
		if str, ok := value.(string); ok && strings.EqualFold(str, "null") {
			return nil, true, nil
		}
		return value, true, nil
	default:
		return nil, false, fmt.Errorf("Unknown cast [%s]", c)
	}
}

func trimmed(value interface{}) interface{} {
	if str, ok := value.(string); ok {
		return strings.TrimSpace(str)
	}
	return value
}

//withoutLeadingZeros prevents octal parsing of values like "08"
func withoutLeadingZeros(value interface{}) interface{} {
	str, ok := value.(string)
	if !ok || len(str) < 2 || strings.HasPrefix(str, "0x") {
		return value
	}
	if stripped := strings.TrimLeft(str, "0"); stripped != "" {
		return stripped
	}
	return "0"
}
