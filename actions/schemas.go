package actions

import (
	"github.com/CommonGateway/GeboorteVrijBRPBundle/jsonutils"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/vrijbrp"
)

//schema $ids. Installer chooses listens and conditions by them
const (
	BirthSchemaID                 = "https://vrijbrp.nl/vrijbrp.zaak.birth.handler.json"
	RelocationSchemaID            = "https://vrijbrp.nl/vrijbrp.zaak.relocation.handler.json"
	DeceasementSchemaID           = "https://vrijbrp.nl/vrijbrp.zaak.deceasement.handler.json"
	EersteInschrijvingSchemaID    = "https://vrijbrp.nl/vrijbrp.eersteinschrijving.handler.json"
	DocumentSchemaID              = "https://vrijbrp.nl/vrijbrp.zaak.document.handler.json"
	ZaakIdentificatieSchemaID     = "https://vrijbrp.nl/vrijbrp.zds.creerzaakid.schema.json"
	DocumentIdentificatieSchemaID = "https://vrijbrp.nl/vrijbrp.zds.creerdocumentid.schema.json"
	ZdsZaakSchemaID               = "https://opencatalogi.nl/vrijbrp.zds.creerzaak.schema.json"
	ZdsDocumentSchemaID           = "https://opencatalogi.nl/vrijbrp.zds.creerdocument.schema.json"

	jsonSchema = "https://json-schema.org/draft/2020-12/schema"

	sourceRef  = "https://commongroundgateway.nl/commongroundgateway.gateway.entity.json"
	mappingRef = "https://commongroundgateway.nl/commongroundgateway.mapping.entity.json"
	entityRef  = "https://commongroundgateway.nl/commongroundgateway.entity.entity.json"
)

func property(description, example, ref string) map[string]interface{} {
	p := map[string]interface{}{
		"type":        "string",
		"description": description,
		"example":     example,
		"required":    true,
	}
	if ref != "" {
		p["$ref"] = ref
	}
	return p
}

func sourceProperty() map[string]interface{} {
	return property("The location of the Source we will send a request to, location of an existing Source object", vrijbrp.DefaultSource, sourceRef)
}

func locationProperty(example string) map[string]interface{} {
	return property("The endpoint we will use on the Source to send a request, just a string", example, "")
}

func mappingProperty(example string) map[string]interface{} {
	return property("The reference of the mapping we will use before sending the data to the source", example, mappingRef)
}

func synchronizationEntityProperty() map[string]interface{} {
	return property("The reference of the entity we use as trigger for this handler, we need this to find a synchronization object", vrijbrp.DefaultSynchronizationEntity, entityRef)
}

func vrijbrpSchema(id, title, description string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"$id":         id,
		"$schema":     jsonSchema,
		"title":       title,
		"description": description,
		"required":    []interface{}{},
		"properties":  properties,
	}
}

func zdsSchema(id, description string) map[string]interface{} {
	return map[string]interface{}{
		"$id":         id,
		"$schema":     jsonSchema,
		"title":       "ZdsActionHandler",
		"description": description,
	}
}

var (
	birthSchema = vrijbrpSchema(BirthSchemaID, "ZgwToVrijbrpHandler", "This handler posts zaak eigenschappen from ZGW to VrijBrp", map[string]interface{}{
		"source":                sourceProperty(),
		"location":              locationProperty(vrijbrp.BirthLocation),
		"mapping":               mappingProperty(vrijbrp.BirthMapping),
		"synchronizationEntity": synchronizationEntityProperty(),
	})

	relocationSchema = vrijbrpSchema(RelocationSchemaID, "ZgwToVrijbrpRelocationHandler", "This handler posts a relocation zaak from ZGW to VrijBrp", map[string]interface{}{
		"source":                sourceProperty(),
		"gemeenteCode":          property("The municipality code of the gateway, relocations from other municipalities are inter relocations", "0268", ""),
		"interLocation":         locationProperty(vrijbrp.InterRelocationLocation),
		"intraLocation":         locationProperty(vrijbrp.IntraRelocationLocation),
		"mapping":               mappingProperty(vrijbrp.RelocationMapping),
		"synchronizationEntity": synchronizationEntityProperty(),
	})

	deceasementSchema = vrijbrpSchema(DeceasementSchemaID, "ZgwToVrijbrpDeceasementHandler", "This handler posts a deceasement zaak from ZGW to VrijBrp", map[string]interface{}{
		"source":                 sourceProperty(),
		"foundBodyLocation":      locationProperty(vrijbrp.FoundBodyLocation),
		"inMunicipalityLocation": locationProperty(vrijbrp.InMunicipalityLocation),
		"mapping":                mappingProperty(vrijbrp.DeceasementMapping),
		"synchronizationEntity":  synchronizationEntityProperty(),
	})

	eersteInschrijvingSchema = vrijbrpSchema(EersteInschrijvingSchemaID, "VrijbrpEersteInschrijvingHandler", "This handler syncs EersteInschrijving to VrijBrp", map[string]interface{}{
		"source":                sourceProperty(),
		"location":              locationProperty(vrijbrp.EersteInschrijvingLocation),
		"mapping":               mappingProperty(vrijbrp.EersteInschrijvingMapping),
		"synchronizationEntity": synchronizationEntityProperty(),
	})

	documentSchema = vrijbrpSchema(DocumentSchemaID, "ZgwToVrijbrpDocumentHandler", "This handler posts documents of a zaak from ZGW to VrijBrp", map[string]interface{}{
		"source":                sourceProperty(),
		"location":              locationProperty(vrijbrp.DocumentLocation),
		"mapping":               mappingProperty(vrijbrp.DocumentMapping),
		"synchronizationEntity": synchronizationEntityProperty(),
	})

	zaakIdentificatieSchema     = zdsSchema(ZaakIdentificatieSchemaID, "This action reserves a zaak identificatie for genereerZaakIdentificatie_Di02")
	documentIdentificatieSchema = zdsSchema(DocumentIdentificatieSchemaID, "This action reserves a document identificatie for genereerDocumentIdentificatie_Di02")
	zdsZaakSchema               = zdsSchema(ZdsZaakSchemaID, "This action stores the zaak of a zakLk01 message")
	zdsDocumentSchema           = zdsSchema(ZdsDocumentSchemaID, "This action stores the document of an edcLk01 message")
)

func copySchema(schema map[string]interface{}) map[string]interface{} {
	return jsonutils.CopyMap(schema)
}

//DefaultConfiguration returns default action configuration from the handler schema:
//string and array properties take their example, object properties are skipped
func DefaultConfiguration(h Handler) map[string]interface{} {
	config := map[string]interface{}{}
	properties, ok := h.Configuration()["properties"].(map[string]interface{})
	if !ok {
		return config
	}

	for key, value := range properties {
		property, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		switch property["type"] {
		case "string", "array":
			if example, ok := property["example"]; ok {
				config[key] = example
			}
		}
	}

	return config
}
