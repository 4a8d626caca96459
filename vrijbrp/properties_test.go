package vrijbrp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSpecificPropertiesWithPartner(t *testing.T) {
	output := map[string]interface{}{"declarant": map[string]interface{}{"bsn": "999992806"}}
	output = GetSpecificProperties(eigenschappen(
		"relatie", "PARTNER",
		"inp.bsn", "999993653",
		"geslachtsnaam", "Jansen",
		"voornamen1", "Anna",
		"geslachtsaanduiding1", "V",
		"geboortedatum1", "20230301",
		"geboortetijd1", "101500",
	), output)

	require.Equal(t, map[string]interface{}{
		"declarant":                     map[string]interface{}{"bsn": "999992806"},
		"qualificationForDeclaringType": "PARTNER",
		"mother":                        map[string]interface{}{"bsn": "999993653"},
		"fatherDuoMother":               map[string]interface{}{"bsn": "999992806"},
		"children": []interface{}{
			map[string]interface{}{"firstname": "Anna", "gender": "V", "birthDateTime": "2023-03-01T10:15:00"},
		},
		"nameSelection": map[string]interface{}{"lastname": "Jansen"},
	}, output)
}

func TestGetSpecificPropertiesChildren(t *testing.T) {
	output := GetSpecificProperties(eigenschappen(
		"voornamen2", "Bram",
		"geboortedatum2", "not a date",
		"geboortetijd2", "10:20",
		"voornamen1", "Anna",
	), map[string]interface{}{
		"children": []interface{}{map[string]interface{}{"nationality": "NL"}},
	})

	require.Equal(t, []interface{}{
		map[string]interface{}{"nationality": "NL", "firstname": "Anna", "gender": nil},
		map[string]interface{}{"firstname": "Bram", "gender": nil},
	}, output["children"])
	require.NotContains(t, output, "fatherDuoMother")
	require.Nil(t, get(output, "mother.bsn"))
}

func TestGetEigenschapValues(t *testing.T) {
	properties, children := GetEigenschapValues([]interface{}{
		map[string]interface{}{"naam": "relatie", "waarde": "MOTHER"},
		map[string]interface{}{"naam": "voornamen1", "waarde": "Anna"},
		map[string]interface{}{"naam": "voornamen3", "waarde": "Cas"},
		map[string]interface{}{"naam": "code0", "waarde": "zero is a property"},
		map[string]interface{}{"waarde": "nameless"},
		"not an eigenschap",
	})

	require.Equal(t, map[string]interface{}{"relatie": "MOTHER", "code0": "zero is a property"}, properties)
	require.Equal(t, map[int]map[string]interface{}{
		0: {"voornamen": "Anna"},
		2: {"voornamen": "Cas"},
	}, children)
}

func TestGetRelocationProperties(t *testing.T) {
	caseProperties := map[string]interface{}{
		"BSN":                     "999993653",
		"EMAILADRES":              "verhuizer@example.com",
		"TELEFOONNUMMER":          "0612345678",
		"STRAATNAAM_NIEUW":        "Dorpsstraat",
		"HUISNUMMER_NIEUW":        "12",
		"HUISLETTER_NIEUW":        "a",
		"POSTCODE_NIEUW":          "1234AB",
		"WOONPLAATS_NIEUW":        "Dorp",
		"AANTAL_PERS_NIEUW_ADRES": "2",
		"BSN_HOOFDBEWONER":        "999991000",
		"GEMEENTECODE":            "0268",
	}

	objectArray, relocation := GetRelocationProperties(caseProperties, map[string]interface{}{
		"newAddress": map[string]interface{}{"municipality": map[string]interface{}{"code": "0268"}},
	}, "0268")

	require.Equal(t, relocationIntra, relocation)
	require.NotContains(t, objectArray, "previousMunicipality")

	declarantContact := map[string]interface{}{
		"bsn": "999993653",
		"contactInformation": map[string]interface{}{
			"email":           "verhuizer@example.com",
			"telephoneNumber": "0612345678",
		},
	}
	require.Equal(t, declarantContact, objectArray["declarant"])
	require.Equal(t, map[string]interface{}{
		"municipality":                map[string]interface{}{"code": "0268"},
		"street":                      "Dorpsstraat",
		"houseNumber":                 "12",
		"houseLetter":                 "a",
		"houseNumberAddition":         nil,
		"postalCode":                  "1234AB",
		"residence":                   "Dorp",
		"addressFunction":             "LIVING_ADDRESS",
		"numberOfResidents":           "2",
		"destinationCurrentResidents": "Unknown",
		"liveIn":                      map[string]interface{}{"liveInApplicable": true},
		"mainOccupant":                map[string]interface{}{"bsn": "999991000"},
	}, objectArray["newAddress"])

	delete(caseProperties, "BSN_HOOFDBEWONER")
	caseProperties["GEMEENTECODE"] = "0363"
	objectArray, relocation = GetRelocationProperties(caseProperties, map[string]interface{}{}, "0268")

	require.Equal(t, relocationInter, relocation)
	require.Equal(t, map[string]interface{}{"code": "0363"}, objectArray["previousMunicipality"])
	require.Equal(t, declarantContact, get(objectArray, "newAddress.mainOccupant"))
	require.Equal(t, map[string]interface{}{"liveInApplicable": false}, get(objectArray, "newAddress.liveIn"))
}

func TestGetRelocators(t *testing.T) {
	tests := []struct {
		name           string
		caseProperties map[string]interface{}
		expected       []interface{}
	}{
		{
			"declarant only",
			map[string]interface{}{"BSN": "1"},
			[]interface{}{
				map[string]interface{}{"bsn": "1", "declarationType": "REGISTERED"},
			},
		},
		{
			"single member",
			map[string]interface{}{
				"BSN":                 "1",
				relocatorPrefix + "BSN": "2",
				relocatorPrefix + "ROL": "K",
			},
			[]interface{}{
				map[string]interface{}{"bsn": "1", "declarationType": "REGISTERED"},
				map[string]interface{}{"bsn": "2", "declarationType": "ADULT_CHILD_LIVING_WITH_PARENTS"},
			},
		},
		{
			"numbered members",
			map[string]interface{}{
				"BSN":                      "1",
				relocatorPrefix + "0.BSN": "2",
				relocatorPrefix + "0.ROL": "P",
				relocatorPrefix + "1.BSN": "3",
				relocatorPrefix + "1.ROL": "X",
				relocatorPrefix + "2.BSN": "4",
				relocatorPrefix + "4.BSN": "skipped after a gap",
			},
			[]interface{}{
				map[string]interface{}{"bsn": "1", "declarationType": "REGISTERED"},
				map[string]interface{}{"bsn": "2", "declarationType": "PARTNER"},
				map[string]interface{}{"bsn": "3", "declarationType": "REGISTERED"},
				map[string]interface{}{"bsn": "4"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, GetRelocators(tt.caseProperties))
		})
	}
}

func TestGetDeathProperties(t *testing.T) {
	caseProperties := map[string]interface{}{
		"inp.bsn":                  "999993653",
		"voornamen":                "Jan",
		"voorvoegselGeslachtsnaam": "de",
		"geslachtsnaam":            "Vries",
		"geboortedatum":            "1940-01-01",
		"natdood":                  "False",
		"gemeentecode":             "0268",
		"datumoverlijden":          "2023-03-12T00:00:00Z",
		"tijdoverlijden":           "14:45:00",
		"contact.naam":             "Uitvaart B.V.",
		"sub.emailadres":           "info@uitvaart.nl",
		"aoa.huisnummer":           "08",
		"aoa.huisnummertoevoeging": "bis",
		"aoa.postcode":             "1234AB",
		"communicatietype":         "FAX",
		"code1":                    "UITTREKSEL",
		"amount1":                  "2",
		"code2":                    "AFSCHRIFT",
		"buitenbenelux":            "True",
		"landcode":                 "5010",
		"type":                     "BURIAL_CREMATION",
		"datumuitvaart":            "20230317",
		"tijduitvaart":             "1100",
	}

	objectArray, foundBody := GetDeathProperties(caseProperties, map[string]interface{}{})
	require.False(t, foundBody)

	require.Equal(t, map[string]interface{}{
		"bsn":       "999993653",
		"firstname": "Jan",
		"prefix":    "de",
		"lastname":  "Vries",
		"birthdate": "1940-01-01",
	}, objectArray["deceased"])
	require.Equal(t, false, objectArray["deathByNaturalCauses"])
	require.Equal(t, map[string]interface{}{"code": "0268"}, objectArray["municipality"])
	require.Equal(t, "2023-03-12", objectArray["dateOfDeath"])
	require.Equal(t, "14:45", objectArray["timeOfDeath"])
	require.NotContains(t, objectArray, "dateOfFinding")

	correspondence := objectArray["correspondence"].(map[string]interface{})
	require.Equal(t, 8, correspondence["houseNumber"])
	require.Equal(t, "bis", correspondence["houseNumberAddition"])
	require.NotContains(t, correspondence, "houseNumberLetter")
	require.NotContains(t, correspondence, "communicationType")

	require.Equal(t, []interface{}{
		map[string]interface{}{"code": "UITTREKSEL", "amount": 2},
		map[string]interface{}{"code": "AFSCHRIFT", "amount": 1},
	}, objectArray["extracts"])

	require.Equal(t, map[string]interface{}{
		"outsideBenelux":       true,
		"countryOfDestination": map[string]interface{}{"code": "5010"},
		"placeOfDestination":   nil,
		"via":                  nil,
		"transportation":       nil,
		"serviceType":          "BURIAL_CREMATION",
		"date":                 "2023-03-17",
		"time":                 "11:00",
	}, objectArray["funeralServices"])

	caseProperties["aangevertype"] = "POLICE"
	_, foundBody = GetDeathProperties(caseProperties, map[string]interface{}{})
	require.True(t, foundBody)
}

func TestGetFuneralServicesDate(t *testing.T) {
	services := GetFuneralServices(map[string]interface{}{"datum": "2023-03-20", "datumuitvaart": "2023-03-17"})
	require.Equal(t, "2023-03-20", services["date"])
	require.NotContains(t, services, "serviceType")

	services = GetFuneralServices(map[string]interface{}{"datumuitvaart": "17 maart"})
	require.NotContains(t, services, "date")
}

func TestRemoveSelf(t *testing.T) {
	object := map[string]interface{}{
		"_self": map[string]interface{}{"id": "1"},
		"id":    "1",
		"persoon": map[string]interface{}{
			"_self": map[string]interface{}{"id": "2"},
			"adressen": []interface{}{
				map[string]interface{}{"_self": map[string]interface{}{"id": "3"}, "straat": "Dorpsstraat"},
				"plain",
			},
		},
	}

	require.Equal(t, map[string]interface{}{
		"id": "1",
		"persoon": map[string]interface{}{
			"adressen": []interface{}{map[string]interface{}{"straat": "Dorpsstraat"}, "plain"},
		},
	}, RemoveSelf(object))
}

func TestObjectID(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]interface{}
		expected string
	}{
		{"object _self", triggerData("a"), "a"},
		{"response id", map[string]interface{}{"response": map[string]interface{}{"id": "b"}}, "b"},
		{"response _id", map[string]interface{}{"response": map[string]interface{}{"_id": "c"}}, "c"},
		{"id", map[string]interface{}{"id": "d"}, "d"},
		{"empty _self id falls back", map[string]interface{}{"object": map[string]interface{}{"_self": map[string]interface{}{"id": ""}}, "id": "e"}, "e"},
		{"nothing", map[string]interface{}{"object": map[string]interface{}{}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ObjectID(tt.data))
		})
	}
}

func TestReferenceID(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"id", "0a1b", "0a1b"},
		{"url", "https://zaken.example.com/api/v1/zaken/0a1b", "0a1b"},
		{"url with slash", "https://zaken.example.com/api/v1/zaken/0a1b/", "0a1b"},
		{"embedded _self", map[string]interface{}{"_self": map[string]interface{}{"id": "0a1b"}, "id": "other"}, "0a1b"},
		{"embedded id", map[string]interface{}{"id": "0a1b"}, "0a1b"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ReferenceID(tt.value))
		})
	}
}

func TestDecodeConfiguration(t *testing.T) {
	config, err := DecodeConfiguration(map[string]interface{}{
		"source":          DefaultSource,
		"conditionEntity": DefaultSynchronizationEntity,
		"gemeenteCode":    268,
		"unknown":         "ignored",
	})
	require.NoError(t, err)
	require.Equal(t, "268", config.GemeenteCode)
	require.Equal(t, DefaultSynchronizationEntity, config.SynchronizationEntityReference())

	config.SynchronizationEntity = "https://vrijbrp.nl/schemas/other.schema.json"
	require.Equal(t, "https://vrijbrp.nl/schemas/other.schema.json", config.SynchronizationEntityReference())

	_, err = DecodeConfiguration(map[string]interface{}{"source": []string{"a", "b"}})
	require.Error(t, err)
}

func TestToInt(t *testing.T) {
	require.Equal(t, 8, toInt("08"))
	require.Equal(t, 12, toInt(" 12a"))
	require.Equal(t, 3, toInt(3))
	require.Equal(t, 0, toInt("a12"))
	require.Equal(t, 0, toInt(nil))
}
