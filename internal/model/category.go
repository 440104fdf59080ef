package model

import "fmt"

// Category is the output partition a transaction is mapped to.
type Category string

const (
	CategoryTransfer     Category = "transfer"
	CategoryDonation     Category = "donation"
	CategorySale         Category = "sale"
	CategoryFee          Category = "fee"
	CategoryRelationship Category = "relationship"
	CategoryUnknown      Category = "unknown"
)

// Categories lists every category in output order.
var Categories = []Category{
	CategoryRelationship,
	CategoryTransfer,
	CategoryDonation,
	CategorySale,
	CategoryFee,
	CategoryUnknown,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
