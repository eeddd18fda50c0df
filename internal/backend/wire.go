package backend

import (
	"bytes"
	"encoding/json"
)

// TokenValidation is the validate-token response.
type TokenValidation struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	CustomerCode string `json:"customerCode,omitempty"`
}

// HierarchyResponse is the full location tree for one country.
type HierarchyResponse struct {
	States []StateWire `json:"states"`
}

type StateWire struct {
	StateCode        string     `json:"stateCode"`
	StateDescription string     `json:"stateDescription"`
	Cities           []CityWire `json:"cities"`
}

type CityWire struct {
	CityCode        string         `json:"cityCode"`
	CityDescription string         `json:"cityDescription"`
	Districts       []DistrictWire `json:"districts"`
}

type DistrictWire struct {
	DistrictCode        string `json:"districtCode"`
	DistrictDescription string `json:"districtDescription"`
}

// CustomerCreateRequest is the body of POST /register.
type CustomerCreateRequest struct {
	CustomerCode   string `json:"customerCode,omitempty"`
	CustomerName   string `json:"customerName"`
	IsIndividual   bool   `json:"isIndividual"`
	IdentityNumber string `json:"identityNumber,omitempty"`
	TaxNumber      string `json:"taxNumber,omitempty"`
	TaxOffice      string `json:"taxOffice,omitempty"`
	CountryCode    string `json:"countryCode,omitempty"`
	CurrencyCode   string `json:"currencyCode,omitempty"`
	LanguageCode   string `json:"languageCode,omitempty"`
}

// CustomerCreated carries the code assigned by the backend.
type CustomerCreated struct {
	CustomerCode string `json:"customerCode"`
}

type AddressCreateRequest struct {
	CustomerCode    string `json:"customerCode"`
	AddressTypeCode string `json:"addressTypeCode,omitempty"`
	Address         string `json:"address"`
	CountryCode     string `json:"countryCode"`
	StateCode       string `json:"stateCode,omitempty"`
	CityCode        string `json:"cityCode,omitempty"`
	DistrictCode    string `json:"districtCode,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	IsDefault       bool   `json:"isDefault"`
}

type CommunicationCreateRequest struct {
	CustomerCode          string `json:"customerCode"`
	CommunicationTypeCode string `json:"communicationTypeCode"`
	Communication         string `json:"communication"`
	IsDefault             bool   `json:"isDefault"`
}

type ContactCreateRequest struct {
	CustomerCode string `json:"customerCode"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Title        string `json:"title,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	IsDefault    bool   `json:"isDefault"`
}

// statusBody is the subset of an error or acknowledgement body we inspect.
type statusBody struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b statusBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// unwrapData returns the payload of a {"data": ...} envelope, or body itself
// when it is not enveloped. A body that carries marker at the top level is
// never treated as enveloped.
func unwrapData(body []byte, marker string) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return trimmed
	}
	if _, ok := top[marker]; ok {
		return trimmed
	}
	if data, ok := top["data"]; ok && len(data) > 0 && string(data) != "null" {
		return data
	}
	return trimmed
}
