package brain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxFractionDigits bounds the decimals shown by DecimalFormatter.
const MaxFractionDigits = 6

// DecimalFormatter renders numbers in grouped decimal style with at most
// MaxFractionDigits fraction digits, e.g. 1234.5 as "1,234.5".
func DecimalFormatter() Formatter {
	return localeFormatter(language.English)
}

func localeFormatter(tag language.Tag) Formatter {
	p := message.NewPrinter(tag)
	return func(v float64) string {
		switch {
		case math.IsNaN(v):
			return "NaN"
		case math.IsInf(v, 1):
			return "∞"
		case math.IsInf(v, -1):
			return "-∞"
		}
		return p.Sprint(number.Decimal(v, number.MaxFractionDigits(MaxFractionDigits)))
	}
}
