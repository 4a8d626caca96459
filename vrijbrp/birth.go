package vrijbrp

import (
	"context"
	"sort"
	"strconv"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/spf13/cast"
)

const childrenKey = "children"

//ZgwToVrijbrpHandler maps a ZGW birth zaak and posts it to VrijBRP
//returns data on success and an empty map otherwise
func (s *Service) ZgwToVrijbrpHandler(ctx context.Context, data, configuration map[string]interface{}) map[string]interface{} {
	config, err := DecodeConfiguration(configuration)
	if err != nil {
		logging.Errorf("Error decoding ZgwToVrijbrpHandler configuration: %v", err)
		return map[string]interface{}{}
	}

	resolved, err := s.resolve(config, true)
	if err != nil {
		return map[string]interface{}{}
	}

	object, err := s.GetObject(ctx, data)
	if err != nil {
		return map[string]interface{}{}
	}

	objectArray, err := s.mapObject(resolved.mapping, object)
	if err != nil {
		return map[string]interface{}{}
	}

	objectArray = GetSpecificProperties(s.resolveEigenschappen(ctx, object), objectArray)

	sync, err := s.GetSynchronization(ctx, object, resolved.source, resolved.entity, resolved.mapping)
	if err != nil {
		logging.Errorf("Error getting synchronization of object [%s]: %v", object.ID, err)
		return map[string]interface{}{}
	}

	if _, err := s.SynchronizeTemp(ctx, sync, resolved.source, objectArray, config.Location); err != nil {
		return map[string]interface{}{}
	}

	return data
}

//GetSpecificProperties maps birth eigenschappen into the VrijBRP birth
func GetSpecificProperties(eigenschappen []interface{}, output map[string]interface{}) map[string]interface{} {
	properties, children := GetEigenschapValues(eigenschappen)

	output["qualificationForDeclaringType"] = properties["relatie"]

	if has(properties, "sub.telefoonnummer") {
		set(output, "declarant.contactInformation.telephoneNumber", properties["sub.telefoonnummer"])
	}
	if has(properties, "sub.emailadres") {
		set(output, "declarant.contactInformation.email", properties["sub.emailadres"])
	}

	if has(properties, "inp.bsn") {
		set(output, "mother.bsn", properties["inp.bsn"])
		set(output, "fatherDuoMother.bsn", get(output, "declarant.bsn"))
	} else {
		set(output, "mother.bsn", get(output, "declarant.bsn"))
		if contactInformation := get(output, "declarant.contactInformation"); contactInformation != nil {
			set(output, "mother.contactInformation", contactInformation)
		}
	}

	output[childrenKey] = mergeChildren(output[childrenKey], children)

	set(output, "nameSelection.lastname", properties["geslachtsnaam"])
	if has(properties, "voorvoegselGeslachtsnaam") {
		set(output, "nameSelection.prefix", properties["voorvoegselGeslachtsnaam"])
	}

	return output
}

//GetEigenschapValues converts eigenschappen to naam:waarde pairs
//eigenschappen with names ending with 1-9 are children properties: voornamen2 -> children[1].voornamen
func GetEigenschapValues(eigenschappen []interface{}) (map[string]interface{}, map[int]map[string]interface{}) {
	properties := map[string]interface{}{}
	children := map[int]map[string]interface{}{}

	for _, item := range eigenschappen {
		eigenschap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		naam := cast.ToString(eigenschap["naam"])
		if naam == "" {
			continue
		}

		number, err := strconv.Atoi(naam[len(naam)-1:])
		if err != nil || number == 0 {
			properties[naam] = eigenschap["waarde"]
			continue
		}

		child, ok := children[number-1]
		if !ok {
			child = map[string]interface{}{}
			children[number-1] = child
		}
		child[naam[:len(naam)-1]] = eigenschap["waarde"]
	}

	return properties, children
}

//mergeChildren puts children eigenschappen (ordered by number) into the mapped children
func mergeChildren(mapped interface{}, children map[int]map[string]interface{}) []interface{} {
	result, _ := mapped.([]interface{})

	indexes := make([]int, 0, len(children))
	for index := range children {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	for _, index := range indexes {
		for len(result) <= index {
			result = append(result, map[string]interface{}{})
		}

		child, ok := result[index].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			result[index] = child
		}

		properties := children[index]
		child["firstname"] = properties["voornamen"]
		child["gender"] = properties["geslachtsaanduiding"]

		birthDate, dateOk := formatDate(properties["geboortedatum"], timestamp.DashDayLayout)
		birthTime, timeOk := formatClock(properties["geboortetijd"], timestamp.ClockLayout)
		if dateOk && timeOk {
			child["birthDateTime"] = birthDate + "T" + birthTime
		} else {
			logging.Warnf("Child [%d] birth date [%v] or time [%v] can't be parsed", index+1, properties["geboortedatum"], properties["geboortetijd"])
		}
	}

	if result == nil {
		result = []interface{}{}
	}

	return result
}
