package model

import "strings"

// Entity type and role names used by the directory.
const (
	EntityTypeIndividual   = "Individual"
	EntityTypeOrganization = "Organization"
	RoleDonor              = "Donor"
	RoleCustomer           = "Customer"
)

// Entity is a counterparty record in the relationship directory.
type Entity struct {
	ID               string            `json:"id,omitempty" yaml:"id,omitempty"`
	Type             string            `json:"type,omitempty" yaml:"type,omitempty"`
	FirstName        string            `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName         string            `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	OrganizationName string            `json:"organization_name,omitempty" yaml:"organization_name,omitempty"`
	Email            string            `json:"email,omitempty" yaml:"email,omitempty"`
	Address          string            `json:"address,omitempty" yaml:"address,omitempty"`
	City             string            `json:"city,omitempty" yaml:"city,omitempty"`
	State            string            `json:"state,omitempty" yaml:"state,omitempty"`
	PostalCode       string            `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	Country          string            `json:"country,omitempty" yaml:"country,omitempty"`
	Roles            []string          `json:"roles,omitempty" yaml:"roles,omitempty"`
	ExtraAttributes  map[string]string `json:"extra_attributes,omitempty" yaml:"extra_attributes,omitempty"`
}

// Name returns the organization name, or the joined first and last names.
func (e Entity) Name() string {
	if e.OrganizationName != "" {
		return e.OrganizationName
	}
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// HasRole reports whether role is in Roles.
func (e Entity) HasRole(role string) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AddRoles appends roles not already present, preserving order.
func (e *Entity) AddRoles(roles ...string) {
	for _, r := range roles {
		if !e.HasRole(r) {
			e.Roles = append(e.Roles, r)
		}
	}
}

// EntityFromCounterparty builds an Individual entity from a counterparty.
func EntityFromCounterparty(c Counterparty) Entity {
	first, last := c.FirstLast()
	return Entity{
		Type:       EntityTypeIndividual,
		FirstName:  first,
		LastName:   last,
		Email:      c.Email,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
	}
}

// MatchQuery selects entities by any combination of fields. Empty fields
// are not part of the query.
type MatchQuery struct {
	ID       string
	Email    string
	Name     string
	Metadata string
}

// Empty reports whether no field is set.
func (q MatchQuery) Empty() bool {
	return q.ID == "" && q.Email == "" && q.Name == "" && q.Metadata == ""
}
