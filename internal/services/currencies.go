package services

// currencyInfo carries the human name and symbol used when creating a
// currency from a bare 3-letter code.
type currencyInfo struct {
	Name   string
	Symbol string
}

var wellKnownCurrencies = map[string]currencyInfo{
	"USD": {"US Dollar", "$"},
	"EUR": {"Euro", "€"},
	"GBP": {"British Pound", "£"},
	"JPY": {"Japanese Yen", "¥"},
	"CNY": {"Chinese Yuan", "¥"},
	"CHF": {"Swiss Franc", "CHF"},
	"CAD": {"Canadian Dollar", "CA$"},
	"AUD": {"Australian Dollar", "A$"},
	"NZD": {"New Zealand Dollar", "NZ$"},
	"INR": {"Indian Rupee", "₹"},
	"KRW": {"South Korean Won", "₩"},
	"BRL": {"Brazilian Real", "R$"},
	"MXN": {"Mexican Peso", "MX$"},
	"SEK": {"Swedish Krona", "kr"},
	"NOK": {"Norwegian Krone", "kr"},
	"DKK": {"Danish Krone", "kr"},
	"PLN": {"Polish Zloty", "zł"},
	"CZK": {"Czech Koruna", "Kč"},
	"TRY": {"Turkish Lira", "₺"},
	"ZAR": {"South African Rand", "R"},
	"SGD": {"Singapore Dollar", "S$"},
	"HKD": {"Hong Kong Dollar", "HK$"},
}

// currencyDefaults returns the name and symbol for a code, falling back
// to the code itself for anything not in the table.
func currencyDefaults(code string) (name, symbol string) {
	if info, ok := wellKnownCurrencies[code]; ok {
		return info.Name, info.Symbol
	}
	return code, code
}
