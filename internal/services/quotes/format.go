package quotes

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/nuntium/internal/models"
)

// FormatValue renders a quote value for display: thousands separators,
// at most two decimal places, trailing zeros trimmed on large values.
func FormatValue(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	intPart = groupThousands(intPart)

	out := intPart
	if fracPart != "0" && fracPart != "00" {
		out += "." + strings.TrimRight(fracPart, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatChangePercent renders a signed percentage, e.g. "+1.23%".
// Zero is treated as up, matching how unchanged markets are shown.
func FormatChangePercent(p float64) string {
	d := decimal.NewFromFloat(p).Round(2)
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// DirectionOf maps a change percentage to a display direction.
func DirectionOf(p float64) models.Direction {
	if p < 0 {
		return models.DirectionDown
	}
	return models.DirectionUp
}
