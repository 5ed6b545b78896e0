package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"cad": "CA$",
	"chf": "CHF",
	"sek": "kr",
	"nzd": "NZ$",
	"hkd": "HK$",
	"sgd": "S$",
	"jpy": "¥",
	"cny": "¥",
	"inr": "₹",
	"brl": "R$",
	"mxn": "MX$",
	"krw": "₩",
	"try": "₺",
	"zar": "R",
	"myr": "RM",
}

// zeroDecimalCurrencies have no minor unit, so *_in_cents amounts are whole units
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "isk": {}, "jpy": {}, "kmf": {}, "krw": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[strings.ToLower(code)]; ok {
		return symbol
	}
	return code
}

// GetCurrencyPrecision returns the number of minor unit digits of code.
// Unknown and empty codes use 2.
func GetCurrencyPrecision(code string) int32 {
	if _, ok := zeroDecimalCurrencies[strings.ToLower(code)]; ok {
		return 0
	}
	return 2
}

// FromMinorUnits converts an *_in_cents amount into major units
func FromMinorUnits(units int64, code string) decimal.Decimal {
	return decimal.New(units, -GetCurrencyPrecision(code))
}

// FormatAmount renders amount with the currency symbol, e.g. $10.88
func FormatAmount(amount decimal.Decimal, code string) string {
	return GetCurrencySymbol(code) + amount.StringFixed(GetCurrencyPrecision(code))
}
