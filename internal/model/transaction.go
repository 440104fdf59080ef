package model

// RawTransaction is a processor-native transaction as read from the source.
// Nested objects are map[string]any; amounts are minor-unit integers and
// timestamps are unix seconds. Treat it as read-only.
type RawTransaction map[string]any

// Record is a normalized transaction: major-unit decimal amounts, RFC3339
// timestamps and a day-precision date. It is a distinct type so raw input
// cannot be mistaken for normalized output.
type Record map[string]any

// Record field names.
const (
	FieldID             = "id"
	FieldType           = "type"
	FieldSource         = "source"
	FieldDescription    = "description"
	FieldEmail          = "email"
	FieldDate           = "date"
	FieldCreated        = "created"
	FieldAvailableOn    = "available_on"
	FieldAmount         = "amount"
	FieldTotal          = "total"
	FieldFee            = "fee"
	FieldNet            = "net"
	FieldTransfer       = "transfer"
	FieldBillingDetails = "billing_details"
)

// String returns the named field as a string, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// String returns the named field as a string, or "" when absent or not a string.
func (t RawTransaction) String(key string) string {
	s, _ := t[key].(string)
	return s
}
