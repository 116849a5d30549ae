package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds x to 2 decimal places (half away from zero).
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Dec converts a stored float to a decimal for exact arithmetic.
func Dec(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x)
}

// Percent returns amount * rate / 100.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// Float returns d rounded to 2 places as float64.
func Float(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// FormatINR renders an amount with two decimals and the rupee sign, e.g. "₹1,234.50".
func FormatINR(x float64) string {
	s := decimal.NewFromFloat(x).StringFixed(2)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	// Indian grouping: last three digits, then pairs.
	var out []byte
	if len(intPart) > 3 {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		for i, c := range []byte(head) {
			if i > 0 && (len(head)-i)%2 == 0 {
				out = append(out, ',')
			}
			out = append(out, c)
		}
		out = append(out, ',')
		out = append(out, tail...)
	} else {
		out = []byte(intPart)
	}
	res := "₹" + string(out) + frac
	if neg {
		res = "-" + res
	}
	return res
}
