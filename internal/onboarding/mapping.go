package onboarding

import (
	"strings"

	"kayit/internal/backend"
)

// CustomerRequest maps the customer record to its wire form. Only the
// identity fields that apply to the customer kind are sent.
func CustomerRequest(c Customer) backend.CustomerCreateRequest {
	req := backend.CustomerCreateRequest{
		CustomerCode: c.CustomerCode,
		CustomerName: strings.TrimSpace(c.CustomerName),
		IsIndividual: c.IsIndividual,
		CountryCode:  c.CountryCode,
		CurrencyCode: c.CurrencyCode,
		LanguageCode: c.LanguageCode,
	}
	if c.IsIndividual {
		req.IdentityNumber = c.IdentityNumber
	} else {
		req.TaxNumber = c.TaxNumber
		req.TaxOffice = c.TaxOffice
	}
	return req
}

func AddressRequest(customerCode string, a Address) backend.AddressCreateRequest {
	return backend.AddressCreateRequest{
		CustomerCode:    customerCode,
		AddressTypeCode: a.AddressTypeCode,
		Address:         strings.TrimSpace(a.Address),
		CountryCode:     a.CountryCode,
		StateCode:       a.StateCode,
		CityCode:        a.CityCode,
		DistrictCode:    a.DistrictCode,
		PostalCode:      a.PostalCode,
		IsDefault:       a.IsDefault,
	}
}

func CommunicationRequest(customerCode string, c Communication) backend.CommunicationCreateRequest {
	return backend.CommunicationCreateRequest{
		CustomerCode:          customerCode,
		CommunicationTypeCode: strings.ToUpper(c.Type),
		Communication:         strings.TrimSpace(c.Value),
		IsDefault:             c.IsDefault,
	}
}

func ContactRequest(customerCode string, c Contact) backend.ContactCreateRequest {
	return backend.ContactCreateRequest{
		CustomerCode: customerCode,
		FirstName:    strings.TrimSpace(c.FirstName),
		LastName:     strings.TrimSpace(c.LastName),
		Title:        c.Title,
		Phone:        c.Phone,
		Email:        c.Email,
		IsDefault:    c.IsDefault,
	}
}
