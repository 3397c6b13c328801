package dividends

import "strings"

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
	"cny": "¥",
	"hkd": "HK$",
	"chf": "CHF",
	"cad": "CA$",
	"aud": "A$",
	"nzd": "NZ$",
	"sek": "kr",
	"nok": "kr",
	"dkk": "kr",
	"pln": "zł",
	"czk": "Kč",
	"huf": "Ft",
	"zar": "R",
	"brl": "R$",
	"mxn": "MX$",
	"inr": "₹",
	"sgd": "S$",
	"krw": "₩",
	"try": "₺",
	"rub": "₽",
	"ils": "₪",
}

var currencyNames = map[string]string{
	"euro":              "eur",
	"dollar":            "usd",
	"us dollar":         "usd",
	"canadian dollar":   "cad",
	"australian dollar": "aud",
	"pound":             "gbp",
	"pound sterling":    "gbp",
	"yen":               "jpy",
	"yuan":              "cny",
	"franc":             "chf",
	"rupee":             "inr",
	"real":              "brl",
	"rand":              "zar",
	"peso":              "mxn",
	"won":               "krw",
	"lira":              "try",
	"ruble":             "rub",
	"shekel":            "ils",
}

// CurrencySymbol maps a currency code or common name to its display
// symbol. Unknown values are returned trimmed, so "XXX" stays "XXX".
func CurrencySymbol(code string) string {
	raw := strings.Trim(code, " \t\r\n\"'")
	if raw == "" {
		return ""
	}
	key := normalizeHeader(raw)
	if sym, ok := currencySymbols[key]; ok {
		return sym
	}
	if iso, ok := currencyNames[key]; ok {
		return currencySymbols[iso]
	}
	return raw
}
