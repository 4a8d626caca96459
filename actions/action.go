package actions

import (
	"fmt"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
)

const varOperator = "var"

//Action binds a Handler to events
type Action struct {
	Name          string                   `json:"name"`
	Handler       Handler                  `json:"-"`
	Listens       []string                 `json:"listens"`
	Conditions    []map[string]interface{} `json:"conditions,omitempty"`
	Configuration map[string]interface{}   `json:"configuration"`
	Async         bool                     `json:"async"`
	IsEnabled     bool                     `json:"isEnabled"`
}

//Class returns the handler name
func (a *Action) Class() string {
	if a.Handler == nil {
		return ""
	}
	return a.Handler.Name()
}

//ListensTo returns true if the action listens to the event
func (a *Action) ListensTo(event string) bool {
	for _, listen := range a.Listens {
		if listen == event {
			return true
		}
	}
	return false
}

//Validate returns error if a condition isn't supported
//only {"var": "dot.path"} conditions are supported
func (a *Action) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("action name is required")
	}
	if a.Handler == nil {
		return fmt.Errorf("action [%s] handler is required", a.Name)
	}
	for i, condition := range a.Conditions {
		if _, err := conditionPath(condition); err != nil {
			return fmt.Errorf("action [%s] condition [%d]: %v", a.Name, i, err)
		}
	}
	return nil
}

//Matches returns true if every condition path resolves to a non nil value in data
func (a *Action) Matches(data map[string]interface{}) bool {
	for _, condition := range a.Conditions {
		path, err := conditionPath(condition)
		if err != nil {
			return false
		}
		value, ok := jsonutils.NewDotPath(path).Get(data)
		if !ok || value == nil {
			return false
		}
	}
	return true
}

func conditionPath(condition map[string]interface{}) (string, error) {
	if len(condition) != 1 {
		return "", fmt.Errorf("condition must have exactly one operator: %v", condition)
	}
	value, ok := condition[varOperator]
	if !ok {
		return "", fmt.Errorf("unsupported condition: %v", condition)
	}
	path, ok := value.(string)
	if !ok || path == "" {
		return "", fmt.Errorf("%s condition must be a non empty string: %v", varOperator, value)
	}
	return path, nil
}
