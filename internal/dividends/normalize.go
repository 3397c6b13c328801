package dividends

// NormalizeRow maps one parsed CSV row onto a Record using the file's
// header map. Missing columns produce empty fields.
func NormalizeRow(hm HeaderMap, row map[string]string) Record {
	get := func(f Field) string {
		h, ok := hm.Lookup(f)
		if !ok {
			return ""
		}
		return row[h]
	}
	return Record{
		Ticker:         get(FieldTicker),
		TickerName:     get(FieldName),
		NumberOfShares: get(FieldShares),
		PaymentDate:    FormatDateDisplay(get(FieldDate)),
		Value:          get(FieldValue),
		Currency:       get(FieldCurrency),
	}
}

// NormalizeRows normalizes every row of a file. The header map is built
// once from headers and shared by all rows.
func NormalizeRows(headers []string, rows []map[string]string) []Record {
	hm := BuildHeaderMap(headers)
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeRow(hm, row))
	}
	return out
}
