package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftUpdatesReturnNewValues(t *testing.T) {
	base := Draft{Customer: Customer{CustomerName: "Ali Veli", IsIndividual: true}}

	withAddr := base.AddAddress(Address{Address: "Moda Cd. 1", CountryCode: "TR"})
	require.Len(t, withAddr.Addresses, 1)
	assert.Empty(t, base.Addresses)
	assert.NotEmpty(t, withAddr.Addresses[0].ID)

	updated := withAddr.UpdateAddress(0, Address{Address: "Bagdat Cd. 2", CountryCode: "TR"})
	assert.Equal(t, "Moda Cd. 1", withAddr.Addresses[0].Address)
	assert.Equal(t, "Bagdat Cd. 2", updated.Addresses[0].Address)
	assert.Equal(t, withAddr.Addresses[0].ID, updated.Addresses[0].ID, "update keeps the row id")

	removed := updated.RemoveAddress(0)
	assert.Empty(t, removed.Addresses)
	assert.Len(t, updated.Addresses, 1)
}

func TestDraftOutOfRangeIndexIsNoop(t *testing.T) {
	d := Draft{}.AddContact(Contact{FirstName: "Ayse", LastName: "Yilmaz"})

	assert.Equal(t, d.Contacts, d.UpdateContact(3, Contact{FirstName: "x"}).Contacts)
	assert.Equal(t, d.Contacts, d.RemoveContact(-1).Contacts)
	assert.Equal(t, d.Contacts, d.SetDefaultContact(5).Contacts)
}

func TestWithIndividualClearsIrrelevantIdentity(t *testing.T) {
	company := Draft{Customer: Customer{CustomerName: "Acme", TaxNumber: "1234567890", TaxOffice: "Kadikoy"}}

	person := company.WithIndividual(true)
	assert.True(t, person.IsIndividual)
	assert.Empty(t, person.TaxNumber)
	assert.Empty(t, person.TaxOffice)
	assert.Equal(t, "1234567890", company.TaxNumber)

	person = person.WithCustomer(Customer{CustomerName: "Ali", IsIndividual: true, IdentityNumber: "12345678901"})
	back := person.WithIndividual(false)
	assert.Empty(t, back.IdentityNumber)
}

func TestSetDefaultKeepsExactlyOne(t *testing.T) {
	d := Draft{}.
		AddCommunication(Communication{Type: "EMAIL", Value: "a@b.com", IsDefault: true}).
		AddCommunication(Communication{Type: "PHONE", Value: "5551112233"})

	d = d.SetDefaultCommunication(1)

	assert.False(t, d.Communications[0].IsDefault)
	assert.True(t, d.Communications[1].IsDefault)
}

func TestNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name     string
		flags    []bool
		expected []bool
	}{
		{"none flagged promotes first", []bool{false, false, false}, []bool{true, false, false}},
		{"first flagged wins", []bool{false, true, true}, []bool{false, true, false}},
		{"single flagged kept", []bool{false, false, true}, []bool{false, false, true}},
		{"empty stays empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Draft{}
			for _, f := range tt.flags {
				d = d.AddAddress(Address{Address: "x", CountryCode: "TR", IsDefault: f})
			}

			got := d.Normalize()

			var flags []bool
			for _, a := range got.Addresses {
				flags = append(flags, a.IsDefault)
			}
			assert.Equal(t, tt.expected, flags)
		})
	}
}

func TestNormalizeAssignsIDs(t *testing.T) {
	d := Draft{Contacts: []Contact{{FirstName: "Ayse", LastName: "Yilmaz"}}}

	got := d.Normalize()

	assert.NotEmpty(t, got.Contacts[0].ID)
	assert.Empty(t, d.Contacts[0].ID)
	assert.True(t, got.Contacts[0].IsDefault)
	assert.False(t, d.Contacts[0].IsDefault)
}
