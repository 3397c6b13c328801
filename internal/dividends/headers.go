package dividends

import "strings"

// Field identifies a canonical record field that a source header can map to.
type Field int

const (
	FieldTicker Field = iota
	FieldName
	FieldShares
	FieldDate
	FieldValue
	FieldCurrency
)

var fieldNames = [...]string{"ticker", "name", "shares", "date", "value", "currency"}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// Fields lists every canonical field.
var Fields = []Field{FieldTicker, FieldName, FieldShares, FieldDate, FieldValue, FieldCurrency}

// headerSynonyms holds the accepted normalized header names per field.
var headerSynonyms = map[Field][]string{
	FieldTicker:   {"ticker", "symbol"},
	FieldName:     {"ticker name", "name", "company", "instrument"},
	FieldShares:   {"number of shares", "no. of shares", "shares"},
	FieldDate:     {"payment date", "date", "time"},
	FieldValue:    {"value", "amount", "total", "total (gbp)", "gross amount"},
	FieldCurrency: {"currency (total)", "currency", "currency (withholding tax)", "currency (price / share)"},
}

const currencyTotalHeader = "currency (total)"

// HeaderMap maps canonical fields to the raw header names of one file.
type HeaderMap struct {
	headers map[Field]string
}

// Lookup returns the raw header matched for f.
func (m HeaderMap) Lookup(f Field) (string, bool) {
	h, ok := m.headers[f]
	return h, ok
}

// BuildHeaderMap matches the headers of a file against the synonym table.
// Headers are scanned in file order and the first one whose normalized form
// is an accepted synonym wins. A "Currency (Total)" header always wins the
// currency field when present.
func BuildHeaderMap(headers []string) HeaderMap {
	m := HeaderMap{headers: make(map[Field]string, len(Fields))}
	for _, f := range Fields {
		for _, h := range headers {
			if isSynonym(f, normalizeHeader(h)) {
				m.headers[f] = h
				break
			}
		}
	}
	for _, h := range headers {
		if normalizeHeader(h) == currencyTotalHeader {
			m.headers[FieldCurrency] = h
			break
		}
	}
	return m
}

func isSynonym(f Field, norm string) bool {
	for _, s := range headerSynonyms[f] {
		if s == norm {
			return true
		}
	}
	return false
}

// normalizeHeader lower-cases and collapses runs of whitespace.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}
