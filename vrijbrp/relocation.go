package vrijbrp

import (
	"context"
	"strconv"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/spf13/cast"
)

const (
	relocatorPrefix = "MEEVERHUIZENDE_GEZINSLEDEN.MEEVERHUIZEND_GEZINSLID."

	relocationInter = "inter"
	relocationIntra = "intra"

	defaultDeclarationType = "REGISTERED"
)

//ROL of a relocating family member -> VrijBRP declarationType
var declarationTypes = map[string]string{
	"I": "REGISTERED",
	"G": "AUTHORITY_HOLDER",
	"K": "ADULT_CHILD_LIVING_WITH_PARENTS",
	"M": "ADULT_AUTHORIZED_REPRESENTATIVE",
	"P": "PARTNER",
	"O": "PARENT_LIVING_WITH_ADULT_CHILD",
}

//RelocationHandler maps a ZGW relocation zaak and posts it to the VrijBRP inter or intra relocation endpoint
func (s *Service) RelocationHandler(ctx context.Context, data, configuration map[string]interface{}) map[string]interface{} {
	logging.Info("Converting ZGW object to VrijBRP")

	config, err := DecodeConfiguration(configuration)
	if err != nil {
		logging.Errorf("Error decoding relocation configuration: %v", err)
		return map[string]interface{}{}
	}

	if config.GemeenteCode == "" {
		logging.Error("gemeenteCode not set in ZgwToVrijbrpRelocationAction configuration.")
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
	objectArray, relocation := GetRelocationProperties(caseProperties, objectArray, config.GemeenteCode)

	sync, err := s.GetSynchronization(ctx, object, resolved.source, resolved.entity, resolved.mapping)
	if err != nil {
		logging.Errorf("Error getting synchronization of object [%s]: %v", object.ID, err)
		return map[string]interface{}{}
	}

	location := config.IntraLocation
	if relocation == relocationInter {
		location = config.InterLocation
	}

	if _, err := s.SynchronizeTemp(ctx, sync, resolved.source, objectArray, location); err != nil {
		return map[string]interface{}{}
	}

	return data
}

//GetRelocationProperties puts the new address, the declarant and the relocators into objectArray
//returns "inter" if GEMEENTECODE differs from gemeenteCode and "intra" otherwise
func GetRelocationProperties(caseProperties, objectArray map[string]interface{}, gemeenteCode string) (map[string]interface{}, string) {
	newAddress, _ := objectArray["newAddress"].(map[string]interface{})
	if newAddress == nil {
		newAddress = map[string]interface{}{}
	}

	newAddress["street"] = caseProperties["STRAATNAAM_NIEUW"]
	newAddress["houseNumber"] = caseProperties["HUISNUMMER_NIEUW"]
	newAddress["houseLetter"] = caseProperties["HUISLETTER_NIEUW"]
	newAddress["houseNumberAddition"] = caseProperties["TOEVOEGINGHUISNUMMER_NIEUW"]
	newAddress["postalCode"] = caseProperties["POSTCODE_NIEUW"]
	newAddress["residence"] = caseProperties["WOONPLAATS_NIEUW"]
	//LIVING_ADDRESS and MAILING_ADDRESS can't be distinguished in zaak eigenschappen
	newAddress["addressFunction"] = "LIVING_ADDRESS"
	newAddress["numberOfResidents"] = caseProperties["AANTAL_PERS_NIEUW_ADRES"]
	newAddress["destinationCurrentResidents"] = "Unknown"
	newAddress["liveIn"] = map[string]interface{}{"liveInApplicable": false}
	newAddress["mainOccupant"] = declarant(caseProperties)
	objectArray["declarant"] = declarant(caseProperties)

	if has(caseProperties, "BSN_HOOFDBEWONER") {
		newAddress["mainOccupant"] = map[string]interface{}{"bsn": caseProperties["BSN_HOOFDBEWONER"]}
		newAddress["liveIn"] = map[string]interface{}{"liveInApplicable": true}
	}
	objectArray["newAddress"] = newAddress

	objectArray["relocators"] = GetRelocators(caseProperties)

	relocation := relocationIntra
	if has(caseProperties, "GEMEENTECODE") && cast.ToString(caseProperties["GEMEENTECODE"]) != gemeenteCode {
		objectArray["previousMunicipality"] = map[string]interface{}{"code": caseProperties["GEMEENTECODE"]}
		relocation = relocationInter
	}

	return objectArray, relocation
}

func declarant(caseProperties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"bsn": caseProperties["BSN"],
		"contactInformation": map[string]interface{}{
			"email":           caseProperties["EMAILADRES"],
			"telephoneNumber": caseProperties["TELEFOONNUMMER"],
		},
	}
}

//GetRelocators returns the declarant and the relocating family members:
//a single member (MEEVERHUIZEND_GEZINSLID.BSN) or numbered members (MEEVERHUIZEND_GEZINSLID.0.BSN, .1.BSN, ...)
func GetRelocators(caseProperties map[string]interface{}) []interface{} {
	relocators := []interface{}{
		map[string]interface{}{
			"bsn":             caseProperties["BSN"],
			"declarationType": defaultDeclarationType,
		},
	}

	if has(caseProperties, relocatorPrefix+"BSN") {
		return append(relocators, relocator(caseProperties, relocatorPrefix))
	}

	for index := 0; has(caseProperties, relocatorPrefix+strconv.Itoa(index)+".BSN"); index++ {
		relocators = append(relocators, relocator(caseProperties, relocatorPrefix+strconv.Itoa(index)+"."))
	}

	return relocators
}

func relocator(caseProperties map[string]interface{}, prefix string) map[string]interface{} {
	result := map[string]interface{}{"bsn": caseProperties[prefix+"BSN"]}
	if has(caseProperties, prefix+"ROL") {
		declarationType, ok := declarationTypes[cast.ToString(caseProperties[prefix+"ROL"])]
		if !ok {
			declarationType = defaultDeclarationType
		}
		result["declarationType"] = declarationType
	}

	return result
}
