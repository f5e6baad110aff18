package report

import (
	"fmt"
	"strings"
)

// N/A is rendered for any figure the pipeline could not resolve; the
// formatters never invent a zero.

func fmtMoney(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return groupDigits(int64(*v)) + " $"
}

func fmtMoneyInt(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return groupDigits(*v) + " $"
}

func fmtPct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f %%", *v)
}

func fmtRatio(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fmtCount(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// groupDigits renders an amount with thin-space thousands grouping, the
// way Québec listings print currency (908 000).
func groupDigits(n int64) string {
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	rem := len(s) % 3
	if rem > 0 {
		b.WriteString(s[:rem])
	}
	for i := rem; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
