package onboarding

import (
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Customer is the primary record. IsIndividual decides which identity field
// is mandatory: IdentityNumber for individuals, TaxNumber and TaxOffice for
// companies.
type Customer struct {
	CustomerCode   string `json:"customerCode,omitempty"`
	CustomerName   string `json:"customerName" validate:"required,max=200"`
	IsIndividual   bool   `json:"isIndividual"`
	IdentityNumber string `json:"identityNumber,omitempty" validate:"required_if=IsIndividual true,omitempty,numeric,len=11"`
	TaxNumber      string `json:"taxNumber,omitempty" validate:"required_if=IsIndividual false,omitempty,numeric,min=10,max=11"`
	TaxOffice      string `json:"taxOffice,omitempty" validate:"required_if=IsIndividual false,max=100"`
	CountryCode    string `json:"countryCode,omitempty" validate:"omitempty,len=2"`
	CurrencyCode   string `json:"currencyCode,omitempty" validate:"omitempty,len=3"`
	LanguageCode   string `json:"languageCode,omitempty" validate:"omitempty,len=2"`
}

type Address struct {
	ID              string `json:"id,omitempty"`
	AddressTypeCode string `json:"addressTypeCode,omitempty"`
	Address         string `json:"address" validate:"required,max=500"`
	CountryCode     string `json:"countryCode" validate:"required,len=2"`
	StateCode       string `json:"stateCode,omitempty"`
	CityCode        string `json:"cityCode,omitempty" validate:"excluded_without=StateCode"`
	DistrictCode    string `json:"districtCode,omitempty" validate:"excluded_without=CityCode"`
	PostalCode      string `json:"postalCode,omitempty" validate:"omitempty,max=10"`
	IsDefault       bool   `json:"isDefault"`
}

// Communication is one reachable channel such as an email address or phone.
type Communication struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type" validate:"required,oneof=EMAIL PHONE MOBILE FAX WEB"`
	Value     string `json:"value" validate:"required,max=200"`
	IsDefault bool   `json:"isDefault"`
}

type Contact struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Title     string `json:"title,omitempty" validate:"max=100"`
	Phone     string `json:"phone,omitempty" validate:"max=30"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	IsDefault bool   `json:"isDefault"`
}

// Draft is everything the visitor entered. It is a value: every update
// returns a new Draft and leaves the receiver untouched.
type Draft struct {
	Customer
	Addresses      []Address       `json:"addresses" validate:"dive"`
	Communications []Communication `json:"communications" validate:"dive"`
	Contacts       []Contact       `json:"contacts" validate:"dive"`
}

func (d Draft) WithCustomer(c Customer) Draft {
	d.Customer = c
	d.Addresses = slices.Clone(d.Addresses)
	d.Communications = slices.Clone(d.Communications)
	d.Contacts = slices.Clone(d.Contacts)
	return d
}

// WithIndividual switches the customer kind and drops the identity fields
// that no longer apply.
func (d Draft) WithIndividual(individual bool) Draft {
	c := d.Customer
	c.IsIndividual = individual
	if individual {
		c.TaxNumber, c.TaxOffice = "", ""
	} else {
		c.IdentityNumber = ""
	}
	return d.WithCustomer(c)
}

func (d Draft) AddAddress(a Address) Draft {
	out := d.WithCustomer(d.Customer)
	out.Addresses = append(out.Addresses, withID(a))
	return out
}

func (d Draft) UpdateAddress(i int, a Address) Draft {
	out := d.WithCustomer(d.Customer)
	out.Addresses = replaceAt(out.Addresses, i, a)
	return out
}

func (d Draft) RemoveAddress(i int) Draft {
	out := d.WithCustomer(d.Customer)
	out.Addresses = removeAt(out.Addresses, i)
	return out
}

func (d Draft) SetDefaultAddress(i int) Draft {
	out := d.WithCustomer(d.Customer)
	out.Addresses = defaultAt(out.Addresses, i)
	return out
}

func (d Draft) AddCommunication(c Communication) Draft {
	out := d.WithCustomer(d.Customer)
	out.Communications = append(out.Communications, withID(c))
	return out
}

func (d Draft) UpdateCommunication(i int, c Communication) Draft {
	out := d.WithCustomer(d.Customer)
	out.Communications = replaceAt(out.Communications, i, c)
	return out
}

func (d Draft) RemoveCommunication(i int) Draft {
	out := d.WithCustomer(d.Customer)
	out.Communications = removeAt(out.Communications, i)
	return out
}

func (d Draft) SetDefaultCommunication(i int) Draft {
	out := d.WithCustomer(d.Customer)
	out.Communications = defaultAt(out.Communications, i)
	return out
}

func (d Draft) AddContact(c Contact) Draft {
	out := d.WithCustomer(d.Customer)
	out.Contacts = append(out.Contacts, withID(c))
	return out
}

func (d Draft) UpdateContact(i int, c Contact) Draft {
	out := d.WithCustomer(d.Customer)
	out.Contacts = replaceAt(out.Contacts, i, c)
	return out
}

func (d Draft) RemoveContact(i int) Draft {
	out := d.WithCustomer(d.Customer)
	out.Contacts = removeAt(out.Contacts, i)
	return out
}

func (d Draft) SetDefaultContact(i int) Draft {
	out := d.WithCustomer(d.Customer)
	out.Contacts = defaultAt(out.Contacts, i)
	return out
}

// Normalize gives every collection exactly one default record when it is
// non-empty: the first flagged record keeps the flag, or the first record
// gets it when none is flagged. Records without an ID receive one.
func (d Draft) Normalize() Draft {
	out := d.WithCustomer(d.Customer)
	out.Addresses = lo.Map(normalizeDefaults(out.Addresses), func(a Address, _ int) Address { return withID(a) })
	out.Communications = lo.Map(normalizeDefaults(out.Communications), func(c Communication, _ int) Communication { return withID(c) })
	out.Contacts = lo.Map(normalizeDefaults(out.Contacts), func(c Contact, _ int) Contact { return withID(c) })
	return out
}

// record is implemented by every sub-record kind.
type record[T any] interface {
	isDefault() bool
	withDefault(bool) T
	id() string
	withIDValue(string) T
}

func (a Address) isDefault() bool { return a.IsDefault }
func (a Address) id() string      { return a.ID }

func (a Address) withDefault(v bool) Address {
	a.IsDefault = v
	return a
}

func (a Address) withIDValue(id string) Address {
	a.ID = id
	return a
}

func (c Communication) isDefault() bool { return c.IsDefault }
func (c Communication) id() string      { return c.ID }

func (c Communication) withDefault(v bool) Communication {
	c.IsDefault = v
	return c
}

func (c Communication) withIDValue(id string) Communication {
	c.ID = id
	return c
}

func (c Contact) isDefault() bool { return c.IsDefault }
func (c Contact) id() string      { return c.ID }

func (c Contact) withDefault(v bool) Contact {
	c.IsDefault = v
	return c
}

func (c Contact) withIDValue(id string) Contact {
	c.ID = id
	return c
}

func withID[T record[T]](r T) T {
	if r.id() != "" {
		return r
	}
	return r.withIDValue(uuid.NewString())
}

func normalizeDefaults[T record[T]](items []T) []T {
	if len(items) == 0 {
		return items
	}
	_, first, found := lo.FindIndexOf(items, func(r T) bool { return r.isDefault() })
	if !found {
		first = 0
	}
	return defaultAt(items, first)
}

func defaultAt[T record[T]](items []T, i int) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	return lo.Map(items, func(r T, idx int) T { return r.withDefault(idx == i) })
}

func replaceAt[T record[T]](items []T, i int, r T) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	if r.id() == "" {
		r = r.withIDValue(items[i].id())
	}
	items[i] = withID(r)
	return items
}

func removeAt[T any](items []T, i int) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	return lo.Reject(items, func(_ T, idx int) bool { return idx == i })
}
