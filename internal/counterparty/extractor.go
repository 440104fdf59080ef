// Package counterparty derives counterparty identities from transactions
// and checks them against the directory.
package counterparty

import (
	"fmt"
	"strings"

	"github.com/yaknet/monkeysync/internal/model"
	"github.com/yaknet/monkeysync/internal/tree"
)

// Extractor maps source paths onto counterparty attributes. For each
// attribute the first path holding a non-empty value wins.
type Extractor struct {
	Paths map[string][]string
}

// BillingDetails reads the billing details embedded in a charge or
// balance transaction.
var BillingDetails = Extractor{Paths: map[string][]string{
	model.AttrEmail:      {"billing_details.email", "email"},
	model.AttrName:       {"billing_details.name"},
	model.AttrCity:       {"billing_details.address.city"},
	model.AttrCountry:    {"billing_details.address.country"},
	model.AttrState:      {"billing_details.address.state"},
	model.AttrPostalCode: {"billing_details.address.postal_code"},
	model.AttrAddress:    {"billing_details.address.line1"},
}}

// Customer reads a processor customer object.
var Customer = Extractor{Paths: map[string][]string{
	model.AttrEmail:      {"email"},
	model.AttrName:       {"name"},
	model.AttrCity:       {"address.city"},
	model.AttrCountry:    {"address.country"},
	model.AttrState:      {"address.state"},
	model.AttrPostalCode: {"address.postal_code"},
	model.AttrAddress:    {"address.line1"},
}}

// Extract returns the counterparty found in src. Runs of whitespace are
// collapsed to one space. Missing or blank values are omitted; an empty result means there is no counterparty.
func (x Extractor) Extract(src map[string]any) model.Counterparty {
	attrs := make(map[string]string, len(x.Paths))
	for attr, paths := range x.Paths {
		for _, p := range paths {
			v, ok := tree.Get(src, p)
			if !ok || v == nil {
				continue
			}
			s := strings.Join(strings.Fields(fmt.Sprint(v)), " ")
			if s == "" {
				continue
			}
			attrs[attr] = s
			break
		}
	}
	return model.CounterpartyFromAttributes(attrs)
}
