package vrijbrp

import (
	"context"
	"strconv"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/spf13/cast"
)

const trueValue = "True"

var (
	communicationTypes = map[string]bool{"EMAIL": true, "POST": true}
	serviceTypes       = map[string]bool{"BURIAL_CREMATION": true, "DISSECTION": true}
)

//DeceasementHandler maps a ZGW death zaak and posts it to the VrijBRP found body or in municipality endpoint
func (s *Service) DeceasementHandler(ctx context.Context, data, configuration map[string]interface{}) map[string]interface{} {
	logging.Info("Converting ZGW object to VrijBRP")

	config, err := DecodeConfiguration(configuration)
	if err != nil {
		logging.Errorf("Error decoding deceasement configuration: %v", err)
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

	caseProperties := s.GetZaakEigenschappen(ctx, object, "all")
	objectArray, foundBody := GetDeathProperties(caseProperties, objectArray)

	sync, err := s.GetSynchronization(ctx, object, resolved.source, resolved.entity, resolved.mapping)
	if err != nil {
		logging.Errorf("Error getting synchronization of object [%s]: %v", object.ID, err)
		return map[string]interface{}{}
	}

	location := config.InMunicipalityLocation
	if foundBody {
		location = config.FoundBodyLocation
	}

	if _, err := s.SynchronizeTemp(ctx, sync, resolved.source, objectArray, location); err != nil {
		return map[string]interface{}{}
	}

	return data
}

//GetDeathProperties puts the deceased, dates, correspondence, extracts and funeral services into objectArray
//returns true if the death is a found body (aangevertype is set)
func GetDeathProperties(caseProperties, objectArray map[string]interface{}) (map[string]interface{}, bool) {
	objectArray["deceased"] = GetDeceased(caseProperties)
	objectArray["deathByNaturalCauses"] = cast.ToString(caseProperties["natdood"]) == trueValue
	set(objectArray, "municipality.code", caseProperties["gemeentecode"])

	putDate(objectArray, "dateOfDeath", caseProperties["datumoverlijden"])
	putDate(objectArray, "dateOfFinding", caseProperties["datumlijkvinding"])
	putClock(objectArray, "timeOfDeath", caseProperties["tijdoverlijden"])
	putClock(objectArray, "timeOfFinding", caseProperties["tijdlijkvinding"])

	objectArray["correspondence"] = GetCorrespondence(caseProperties)
	objectArray["extracts"] = GetExtracts(caseProperties)
	objectArray["funeralServices"] = GetFuneralServices(caseProperties)

	return objectArray, has(caseProperties, "aangevertype")
}

func GetDeceased(properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"bsn":       properties["inp.bsn"],
		"firstname": properties["voornamen"],
		"prefix":    properties["voorvoegselGeslachtsnaam"],
		"lastname":  properties["geslachtsnaam"],
		"birthdate": properties["geboortedatum"],
	}
}

func GetCorrespondence(properties map[string]interface{}) map[string]interface{} {
	correspondence := map[string]interface{}{
		"name":         properties["contact.naam"],
		"email":        properties["sub.emailadres"],
		"organization": properties["handelsnaam"],
		"houseNumber":  nil,
		"postalCode":   properties["aoa.postcode"],
		"residence":    properties["wpl.woonplaatsnaam"],
		"street":       properties["gor.openbareRuimteNaam"],
	}
	if has(properties, "aoa.huisnummer") {
		correspondence["houseNumber"] = toInt(properties["aoa.huisnummer"])
	}
	if has(properties, "aoa.huisletter") {
		correspondence["houseNumberLetter"] = properties["aoa.huisletter"]
	}
	if has(properties, "aoa.huisnummertoevoeging") {
		correspondence["houseNumberAddition"] = properties["aoa.huisnummertoevoeging"]
	}
	if communicationType := cast.ToString(properties["communicatietype"]); communicationTypes[communicationType] {
		correspondence["communicationType"] = communicationType
	}

	return correspondence
}

//GetExtracts returns extracts from numbered code1/amount1, code2/amount2... properties (amount defaults to 1)
func GetExtracts(properties map[string]interface{}) []interface{} {
	extracts := []interface{}{}
	for index := 1; has(properties, "code"+strconv.Itoa(index)); index++ {
		amount := 1
		if has(properties, "amount"+strconv.Itoa(index)) {
			amount = toInt(properties["amount"+strconv.Itoa(index)])
		}

		extracts = append(extracts, map[string]interface{}{
			"code":   properties["code"+strconv.Itoa(index)],
			"amount": amount,
		})
	}

	return extracts
}

func GetFuneralServices(properties map[string]interface{}) map[string]interface{} {
	funeralServices := map[string]interface{}{
		"outsideBenelux":       cast.ToString(properties["buitenbenelux"]) == trueValue,
		"countryOfDestination": nil,
		"placeOfDestination":   properties["plaatsbest"],
		"via":                  properties["viabest"],
		"transportation":       properties["voertuigbest"],
	}
	if has(properties, "landcode") {
		funeralServices["countryOfDestination"] = map[string]interface{}{"code": properties["landcode"]}
	}
	if serviceType := cast.ToString(properties["type"]); serviceTypes[serviceType] {
		funeralServices["serviceType"] = serviceType
	}

	if has(properties, "datum") {
		putDate(funeralServices, "date", properties["datum"])
	} else {
		putDate(funeralServices, "date", properties["datumuitvaart"])
	}
	putClock(funeralServices, "time", properties["tijduitvaart"])

	return funeralServices
}

//putDate sets key to the value formatted as yyyy-mm-dd (nothing if value is empty or can't be parsed)
func putDate(output map[string]interface{}, key string, value interface{}) {
	if value == nil {
		return
	}
	if date, ok := formatDate(value, timestamp.DashDayLayout); ok {
		output[key] = date
		return
	}
	logging.Warnf("[%s] date [%v] can't be parsed", key, value)
}

//putClock sets key to the value formatted as hh:mm
func putClock(output map[string]interface{}, key string, value interface{}) {
	if value == nil {
		return
	}
	if clock, ok := formatClock(value, timestamp.MinutesLayout); ok {
		output[key] = clock
		return
	}
	logging.Warnf("[%s] time [%v] can't be parsed", key, value)
}
