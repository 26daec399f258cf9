package datafeed

import (
	"strings"

	"barfeed/internal/model"
)

var futuresExchanges = map[model.Exchange]bool{
	model.SHFE:  true,
	model.CFFEX: true,
	model.DCE:   true,
	model.CZCE:  true,
	model.INE:   true,
	model.GFEX:  true,
}

// Continuous-contract and index suffixes. RQData lists them under the
// platform spelling.
var rqIndexSuffixes = map[string]bool{
	"88":   true,
	"888":  true,
	"99":   true,
	"9999": true,
}

// JQData spells main continuous contracts NNNN9999 and indexes NNNN8888.
var jqIndexTokens = map[string]string{
	"88":   "9999",
	"888":  "9999",
	"9999": "9999",
	"99":   "8888",
	"8888": "8888",
}

var jqExchangeCodes = map[model.Exchange]string{
	model.CFFEX: "CCFX",
	model.SHFE:  "XSGE",
	model.CZCE:  "XZCE",
	model.DCE:   "XDCE",
	model.INE:   "XINE",
	model.SSE:   "XSHG",
	model.SZSE:  "XSHE",
	model.SGE:   "XSGE",
	model.BSE:   "BJSE",
}

// ToRQSymbol rewrites a platform symbol into RQData's order_book_id.
//
// CZCE quotes contracts with a single year digit ("TA905") while RQData uses
// two ("TA1905"), so the decade is inferred: 9 maps to 19, anything else to
// 2x.
func ToRQSymbol(symbol string, exchange model.Exchange) string {
	switch exchange {
	case model.SSE:
		return symbol + ".XSHG"
	case model.SZSE:
		return symbol + ".XSHE"
	}
	if !futuresExchanges[exchange] {
		return symbol + "." + string(exchange)
	}

	product, rest := splitContract(symbol)
	if rest == "" {
		return strings.ToUpper(symbol)
	}

	// futures
	if isDigits(rest) {
		if exchange != model.CZCE {
			return strings.ToUpper(symbol)
		}
		if rqIndexSuffixes[rest] {
			return symbol
		}
		return strings.ToUpper(product + prefixDecade(rest))
	}

	// options
	if exchange == model.CZCE {
		return strings.ToUpper(product + prefixDecade(rest))
	}
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

// ToJQSymbol rewrites a platform symbol into JQData's "CODE.MARKET" form.
func ToJQSymbol(symbol string, exchange model.Exchange) string {
	code, ok := jqExchangeCodes[exchange]
	if !ok {
		code = string(exchange)
	}

	if futuresExchanges[exchange] {
		product, rest := splitContract(symbol)
		if token, ok := jqIndexTokens[rest]; ok {
			return strings.ToUpper(product + token + "." + code)
		}
		if exchange == model.CZCE && rest != "" {
			symbol = product + prefixDecade(rest)
		}
	}
	return strings.ToUpper(symbol + "." + code)
}

// splitContract splits at the first digit: "TA905" -> ("TA", "905").
func splitContract(symbol string) (product, rest string) {
	i := strings.IndexFunc(symbol, isDigit)
	if i < 0 {
		return symbol, ""
	}
	return symbol[:i], symbol[i:]
}

// prefixDecade expands a one-digit contract year. rest starts with a digit.
func prefixDecade(rest string) string {
	if rest[0] == '9' {
		return "1" + rest
	}
	return "2" + rest
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// isDigits reports whether s is non-empty and all ASCII digits. Stock codes
// are; futures and options contracts are not.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}
