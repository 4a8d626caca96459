package vrijbrp

import (
	"context"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
)

//EersteInschrijvingHandler posts the EersteInschrijving object (without _self blocks) to VrijBRP
//returns {"response": <VrijBRP response>} on success
func (s *Service) EersteInschrijvingHandler(ctx context.Context, data, configuration map[string]interface{}) map[string]interface{} {
	logging.Info("Syncing EersteInschrijving object to VrijBRP")

	config, err := DecodeConfiguration(configuration)
	if err != nil {
		logging.Errorf("Error decoding EersteInschrijving configuration: %v", err)
		return map[string]interface{}{}
	}

	resolved, err := s.resolve(config, false)
	if err != nil {
		return map[string]interface{}{}
	}

	object, err := s.GetObject(ctx, data)
	if err != nil {
		return map[string]interface{}{}
	}

	objectArray := RemoveSelf(object.ToArray())

	sync, err := s.GetSynchronization(ctx, object, resolved.source, resolved.entity, nil)
	if err != nil {
		logging.Errorf("Error getting synchronization of object [%s]: %v", object.ID, err)
		return map[string]interface{}{}
	}

	body, err := s.SynchronizeTemp(ctx, sync, resolved.source, objectArray, config.Location)
	if err != nil {
		return map[string]interface{}{}
	}

	return map[string]interface{}{"response": body}
}

//RemoveSelf recursively removes _self blocks
func RemoveSelf(object map[string]interface{}) map[string]interface{} {
	delete(object, "_self")
	for key, value := range object {
		object[key] = removeSelfValue(value)
	}
	return object
}

func removeSelfValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return RemoveSelf(v)
	case []interface{}:
		for i, item := range v {
			v[i] = removeSelfValue(item)
		}
		return v
	default:
		return value
	}
}
