package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatFCFA renders an integer XOF amount with thousand separators.
// XOF has no minor unit, so amounts stay integers end to end.
func FormatFCFA(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s FCFA", sign, formatThousand(amount))
}

// ParseFCFA parses "15 000", "15.000" or "15000 FCFA" into an integer amount.
func ParseFCFA(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.ToUpper(s), "FCFA")
	replacer := strings.NewReplacer(".", "", ",", "", " ", "", " ", "")
	s = replacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("montant invalide")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(' ')
		}
		out.WriteRune(c)
	}
	return out.String()
}
