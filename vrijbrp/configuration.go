package vrijbrp

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	DefaultSource                = "https://vrijbrp.nl/dossiers"
	DefaultSourceReference       = "https://vrijbrp.nl/source/vrijbrp.dossiers.source.json"
	DefaultSynchronizationEntity = "https://vng.opencatalogi.nl/schemas/zrc.zaak.schema.json"

	BirthMapping              = "https://vrijbrp.nl/mapping/vrijbrp.ZgwToVrijbrpGeboorte.mapping.json"
	GenericMapping            = "https://vrijbrp.nl/mapping/vrijbrp.ZgwToVrijbrp.mapping.json"
	RelocationMapping         = "https://vrijbrp.nl/mapping/vrijbrp.ZgwToVrijbrpVerhuizing.mapping.json"
	DeceasementMapping        = "https://vrijbrp.nl/mapping/vrijbrp.ZgwToVrijbrpOverlijden.mapping.json"
	EersteInschrijvingMapping = "https://vrijbrp.nl/mapping/vrijbrp.Vrijbrp.mapping.json"
	DocumentMapping           = "https://vrijbrp.nl/mapping/vrijbrp.ZgwToVrijbrpDocument.mapping.json"

	BirthLocation              = "/api/v1/births"
	InterRelocationLocation    = "/api/v1/relocations/inter"
	IntraRelocationLocation    = "/api/v1/relocations/intra"
	FoundBodyLocation          = "/api/v1/deaths/found-body"
	InMunicipalityLocation     = "/api/v1/deaths/in-municipality"
	EersteInschrijvingLocation = "/api/v1/first-registrations"
	DocumentLocation           = "/api/v1/dossiers/{dossierId}/documents"

	dossierIDPlaceholder = "{dossierId}"
)

//Configuration is an action configuration of ZGW to VrijBRP handlers
type Configuration struct {
	Source                 string `mapstructure:"source" json:"source,omitempty"`
	Location               string `mapstructure:"location" json:"location,omitempty"`
	Mapping                string `mapstructure:"mapping" json:"mapping,omitempty"`
	SynchronizationEntity  string `mapstructure:"synchronizationEntity" json:"synchronizationEntity,omitempty"`
	ConditionEntity        string `mapstructure:"conditionEntity" json:"conditionEntity,omitempty"`
	GemeenteCode           string `mapstructure:"gemeenteCode" json:"gemeenteCode,omitempty"`
	InterLocation          string `mapstructure:"interLocation" json:"interLocation,omitempty"`
	IntraLocation          string `mapstructure:"intraLocation" json:"intraLocation,omitempty"`
	FoundBodyLocation      string `mapstructure:"foundBodyLocation" json:"foundBodyLocation,omitempty"`
	InMunicipalityLocation string `mapstructure:"inMunicipalityLocation" json:"inMunicipalityLocation,omitempty"`
}

//DecodeConfiguration decodes action configuration map (scalars are converted to strings)
func DecodeConfiguration(configuration map[string]interface{}) (*Configuration, error) {
	result := &Configuration{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating configuration decoder")
	}

	if err := decoder.Decode(configuration); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}

	return result, nil
}

//SynchronizationEntityReference returns synchronizationEntity or conditionEntity (used by older configurations)
func (c *Configuration) SynchronizationEntityReference() string {
	if c.SynchronizationEntity != "" {
		return c.SynchronizationEntity
	}
	return c.ConditionEntity
}
