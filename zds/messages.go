package zds

import (
	"fmt"
	"strings"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/soap"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/uuid"
	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

//incoming message types (local names of the SOAP body element)
const (
	ZaakIdentificatieRequest     = "genereerZaakIdentificatie_Di02"
	DocumentIdentificatieRequest = "genereerDocumentIdentificatie_Di02"
	CreateZaakRequest            = "zakLk01"
	CreateDocumentRequest        = "edcLk01"

	zknPrefix     = "ZKN"
	zknNamespace  = "http://www.egem.nl/StUF/sector/zkn/0310"
	stufPrefix    = "StUF"
	stufNamespace = "http://www.egem.nl/StUF/StUF0301"

	//StUF058: processing of the message failed
	faultCode = "StUF058"
)

var (
	ErrNotSOAP = errors.New("Request isn't a SOAP envelope")

	//parties of stuurgegevens in StUF order
	partyFields = []string{"organisatie", "applicatie", "administratie", "gebruiker"}
)

//Message is an incoming ZDS message
type Message struct {
	//Type is the local name of the body element: zakLk01, genereerZaakIdentificatie_Di02, ...
	Type string
	//Content is the decoded body element
	Content map[string]interface{}
}

//ParseMessage returns the first element of the SOAP body
func ParseMessage(document map[string]interface{}) (*Message, error) {
	body, ok := soap.Body(document)
	if !ok {
		return nil, ErrNotSOAP
	}

	for key, value := range body {
		if strings.HasPrefix(key, soap.AttributePrefix) {
			continue
		}
		content, _ := value.(map[string]interface{})
		if content == nil {
			content = map[string]interface{}{}
		}
		return &Message{Type: soap.LocalName(key), Content: content}, nil
	}

	return nil, errors.Wrap(ErrNotSOAP, "empty body")
}

//stuurgegevens returns the value of a stuurgegevens field of the message
func (m *Message) stuurgegevens(field string) interface{} {
	if m == nil {
		return nil
	}
	stuurgegevens, ok := soap.FindByLocalName(m.Content, "stuurgegevens")
	if !ok {
		return nil
	}
	node, ok := stuurgegevens.(map[string]interface{})
	if !ok {
		return nil
	}
	value, _ := soap.FindByLocalName(node, field)
	return value
}

//ReferenceNumber returns stuurgegevens/referentienummer of the message
func (m *Message) ReferenceNumber() string {
	return soap.Text(m.stuurgegevens("referentienummer"))
}

//IdentificatieResponse returns the Du02 answer on genereerZaakIdentificatie_Di02 or genereerDocumentIdentificatie_Di02
func IdentificatieResponse(request *Message, identificatie string) ([]byte, error) {
	var name, function, objectName, entityType string
	switch request.Type {
	case ZaakIdentificatieRequest:
		name, function, objectName, entityType = "genereerZaakIdentificatie_Du02", "genereerZaakidentificatie", "zaak", "ZAK"
	case DocumentIdentificatieRequest:
		name, function, objectName, entityType = "genereerDocumentIdentificatie_Du02", "genereerDocumentidentificatie", "document", "EDC"
	default:
		return nil, fmt.Errorf("Message %s doesn't have an identificatie response", request.Type)
	}

	doc, body := newEnvelope()
	answer := body.CreateElement(zknPrefix + ":" + name)
	writeStuurgegevens(answer.CreateElement(zknPrefix+":stuurgegevens"), request, "Du02", function)

	object := answer.CreateElement(zknPrefix + ":" + objectName)
	object.CreateAttr(stufPrefix+":entiteittype", entityType)
	object.CreateAttr(stufPrefix+":functie", "entiteit")
	object.CreateElement(zknPrefix + ":identificatie").SetText(identificatie)

	return soap.Write(doc)
}

//AcknowledgementResponse returns the Bv03 answer on a kennisgeving (Lk01)
func AcknowledgementResponse(request *Message) ([]byte, error) {
	doc, body := newEnvelope()
	answer := body.CreateElement(stufPrefix + ":Bv03Bericht")
	writeStuurgegevens(answer.CreateElement(stufPrefix+":stuurgegevens"), request, "Bv03", "")

	return soap.Write(doc)
}

//FaultResponse returns SOAP fault with the Fo03 detail describing cause
//request may be nil if the message can't be parsed
func FaultResponse(request *Message, cause error) ([]byte, error) {
	doc, body := newEnvelope()
	fault := body.CreateElement(soap.EnvelopePrefix + ":Fault")
	fault.CreateElement("faultcode").SetText(soap.EnvelopePrefix + ":Server")
	fault.CreateElement("faultstring").SetText("Proces voor afhandelen bericht geeft fout")

	answer := fault.CreateElement("detail").CreateElement(stufPrefix + ":Fo03Bericht")
	writeStuurgegevens(answer.CreateElement(stufPrefix+":stuurgegevens"), request, "Fo03", "")

	details := answer.CreateElement(stufPrefix + ":body")
	details.CreateElement(stufPrefix + ":code").SetText(faultCode)
	details.CreateElement(stufPrefix + ":plek").SetText("server")
	description := "Unknown error"
	if cause != nil {
		description = cause.Error()
	}
	details.CreateElement(stufPrefix + ":omschrijving").SetText(description)

	return soap.Write(doc)
}

func newEnvelope() (*etree.Document, *etree.Element) {
	return soap.NewEnvelope(map[string]string{zknPrefix: zknNamespace, stufPrefix: stufNamespace})
}

//writeStuurgegevens writes answer stuurgegevens: zender and ontvanger are swapped,
//crossRefnummer is the referentienummer of the request
func writeStuurgegevens(el *etree.Element, request *Message, code, function string) {
	el.CreateElement(stufPrefix + ":berichtcode").SetText(code)
	writeParty(el, "zender", request.stuurgegevens("ontvanger"))
	writeParty(el, "ontvanger", request.stuurgegevens("zender"))
	el.CreateElement(stufPrefix + ":referentienummer").SetText(uuid.New())
	el.CreateElement(stufPrefix + ":tijdstipBericht").SetText(messageTime())
	if crossRef := request.ReferenceNumber(); crossRef != "" {
		el.CreateElement(stufPrefix + ":crossRefnummer").SetText(crossRef)
	}
	if function != "" {
		el.CreateElement(stufPrefix + ":functie").SetText(function)
	}
}

func writeParty(parent *etree.Element, name string, party interface{}) {
	node, ok := party.(map[string]interface{})
	if !ok {
		return
	}

	el := parent.CreateElement(stufPrefix + ":" + name)
	for _, field := range partyFields {
		if value, ok := soap.FindByLocalName(node, field); ok {
			el.CreateElement(stufPrefix + ":" + field).SetText(soap.Text(value))
		}
	}
}

//messageTime returns StUF tijdstipBericht: yyyyMMddHHmmssSSS
func messageTime() string {
	now := timestamp.Now()
	return fmt.Sprintf("%s%03d", now.Format("20060102150405"), now.Nanosecond()/1e6)
}
