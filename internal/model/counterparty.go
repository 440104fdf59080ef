package model

import "strings"

// Counterparty is the donor, customer or payer behind a transaction.
// Absent fields are empty strings.
type Counterparty struct {
	Email      string
	Name       string
	City       string
	Country    string
	State      string
	PostalCode string
	Address    string
}

// Counterparty attribute names, shared by extractors and field specs.
const (
	AttrEmail      = "email"
	AttrName       = "name"
	AttrCity       = "city"
	AttrCountry    = "country"
	AttrState      = "state"
	AttrPostalCode = "postal_code"
	AttrAddress    = "address"
)

// Usable reports whether the counterparty can be matched or created.
func (c Counterparty) Usable() bool {
	return c.Email != "" || c.Name != ""
}

// Empty reports whether every field is absent.
func (c Counterparty) Empty() bool {
	return c == Counterparty{}
}

// Identifier returns the email, falling back to the name.
func (c Counterparty) Identifier() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Name
}

// Key identifies the counterparty within a single run.
func (c Counterparty) Key() string {
	if c.Email != "" {
		return "email:" + strings.ToLower(c.Email)
	}
	if c.Name != "" {
		return "name:" + strings.ToLower(c.Name)
	}
	return ""
}

// FirstLast splits Name into all-but-last tokens and the last token.
// A single-token name is returned as the last name.
func (c Counterparty) FirstLast() (first, last string) {
	tokens := strings.Fields(c.Name)
	if len(tokens) == 0 {
		return "", ""
	}
	last = tokens[len(tokens)-1]
	first = strings.Join(tokens[:len(tokens)-1], " ")
	return first, last
}

// Attributes returns the non-empty fields keyed by attribute name.
func (c Counterparty) Attributes() map[string]any {
	attrs := make(map[string]any, 7)
	set := func(k, v string) {
		if v != "" {
			attrs[k] = v
		}
	}
	set(AttrEmail, c.Email)
	set(AttrName, c.Name)
	set(AttrCity, c.City)
	set(AttrCountry, c.Country)
	set(AttrState, c.State)
	set(AttrPostalCode, c.PostalCode)
	set(AttrAddress, c.Address)
	return attrs
}

// CounterpartyFromAttributes builds a Counterparty from an attribute map.
func CounterpartyFromAttributes(attrs map[string]string) Counterparty {
	return Counterparty{
		Email:      attrs[AttrEmail],
		Name:       attrs[AttrName],
		City:       attrs[AttrCity],
		Country:    attrs[AttrCountry],
		State:      attrs[AttrState],
		PostalCode: attrs[AttrPostalCode],
		Address:    attrs[AttrAddress],
	}
}
