package vrijbrp

import (
	"strconv"
	"strings"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/spf13/cast"
)

//has returns true if the key exists and the value isn't nil
func has(properties map[string]interface{}, key string) bool {
	value, ok := properties[key]
	return ok && value != nil
}

//set puts the value by dot path
func set(output map[string]interface{}, path string, value interface{}) {
	if err := jsonutils.NewDotPath(path).Set(output, value); err != nil {
		logging.Warnf("Error setting [%s]: %v", path, err)
	}
}

//get returns the value by dot path or nil
func get(output map[string]interface{}, path string) interface{} {
	value, _ := jsonutils.NewDotPath(path).Get(output)
	return value
}

//formatDate reformats the date property into layout (ok is false if the property can't be parsed)
func formatDate(value interface{}, layout string) (string, bool) {
	t, ok := timestamp.ParseDate(cast.ToString(value))
	if !ok {
		return "", false
	}
	return t.Format(layout), true
}

//formatClock reformats the time of day property into layout
func formatClock(value interface{}, layout string) (string, bool) {
	t, ok := timestamp.ParseClock(cast.ToString(value))
	if !ok {
		return "", false
	}
	return t.Format(layout), true
}

//toInt converts leading decimal digits of the value to int (0 if there are none)
func toInt(value interface{}) int {
	str := strings.TrimSpace(cast.ToString(value))
	end := 0
	for end < len(str) && str[end] >= '0' && str[end] <= '9' {
		end++
	}

	number, _ := strconv.Atoi(str[:end])
	return number
}
