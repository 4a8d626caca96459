package appconfig

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/resources"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

var templateVariablePattern = regexp.MustCompile(`\$\{env\.[\w_]+(?:\|[^\}]*)?\}`)

//Read reads config from configSource that might be (HTTP URL or path to YAML/JSON file or plain JSON string)
//replaces all ${env.VAR} placeholders with OS variables
//configSource might be overridden by "config_location" ENV variable
//empty configSource means running with defaults and ENV variables only
func Read(configSource string) error {
	viper.AutomaticEnv()

	//support OS env variables as lower case and dot divided variables e.g. SERVER_PORT as server.port
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if overridden := viper.GetString("config_location"); overridden != "" {
		configSource = overridden
	}

	var payload *resources.ResponsePayload
	var err error
	switch {
	case strings.HasPrefix(configSource, "http://") || strings.HasPrefix(configSource, "https://"):
		payload, err = resources.LoadFromHTTP(configSource)
	case strings.HasPrefix(configSource, "{") && strings.HasSuffix(configSource, "}"):
		jsonContentType := resources.JSONContentType
		payload = &resources.ResponsePayload{Content: []byte(configSource), ContentType: &jsonContentType}
	case configSource != "":
		payload, err = resources.LoadFromFile(configSource)
	default:
		return resolvePlaceholders()
	}
	if err != nil {
		return err
	}

	if payload.ContentType != nil {
		viper.SetConfigType(string(*payload.ContentType))
	} else {
		viper.SetConfigType(string(resources.JSONContentType))
	}

	if err := viper.ReadConfig(bytes.NewBuffer(payload.Content)); err != nil {
		return fmt.Errorf("Error reading/parsing config from %s: %v", configSource, err)
	}

	return resolvePlaceholders()
}

//resolvePlaceholders replaces ${env.VAR} placeholders in config values and merges them back into viper
func resolvePlaceholders() error {
	resolved := map[string]interface{}{}
	var multiErr error
	for _, key := range viper.AllKeys() {
		value, changed, err := resolveValue(viper.Get(key))
		if err != nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("%s: %v", key, err))
			continue
		}
		if !changed {
			continue
		}
		if err := jsonutils.NewDotPath(key).Set(resolved, value); err != nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("Unable to set value in %s config path: %v", key, err))
		}
	}
	if multiErr != nil {
		return multiErr
	}

	if len(resolved) > 0 {
		logging.Debugf("Resolved env placeholders of %d config values", len(resolved))
		if err := viper.MergeConfigMap(resolved); err != nil {
			return fmt.Errorf("Error merging env values into viper config: %v", err)
		}
	}

	return nil
}

func resolveValue(value interface{}) (interface{}, bool, error) {
	switch typed := value.(type) {
	case string:
		if !templateVariablePattern.MatchString(typed) {
			return value, false, nil
		}
		var err error
		result := templateVariablePattern.ReplaceAllStringFunc(typed, func(expression string) string {
			replaced, replaceErr := replaceExpression(expression)
			if replaceErr != nil {
				err = replaceErr
			}
			return replaced
		})
		return result, true, err
	case []interface{}:
		arr := make([]interface{}, len(typed))
		changed := false
		for i, v := range typed {
			newValue, valueChanged, err := resolveValue(v)
			if err != nil {
				return nil, false, err
			}
			arr[i] = newValue
			changed = changed || valueChanged
		}
		return arr, changed, nil
	case map[string]interface{}:
		mp := make(map[string]interface{}, len(typed))
		changed := false
		for k, v := range typed {
			newValue, valueChanged, err := resolveValue(v)
			if err != nil {
				return nil, false, err
			}
			mp[k] = newValue
			changed = changed || valueChanged
		}
		return mp, changed, nil
	default:
		return value, false, nil
	}
}

//replaceExpression resolves ${env.VAR1|env.VAR2|default_value}
func replaceExpression(expression string) (string, error) {
	envExpression := strings.TrimSuffix(strings.TrimPrefix(expression, "${"), "}")

	var varsNotFound []string
	for _, alternative := range strings.Split(envExpression, "|") {
		if !strings.HasPrefix(alternative, "env.") {
			//constant
			return alternative, nil
		}

		envVarName := strings.TrimPrefix(alternative, "env.")
		if envVarValue := os.Getenv(envVarName); envVarValue != "" {
			return envVarValue, nil
		}
		varsNotFound = append(varsNotFound, envVarName)
	}

	if len(varsNotFound) == 1 {
		return "", fmt.Errorf("Mandatory env variable was not found: %s", varsNotFound[0])
	}
	return "", fmt.Errorf("None of env variables [%s] were found. Please set any", strings.Join(varsNotFound, " or "))
}
