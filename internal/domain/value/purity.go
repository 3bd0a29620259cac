package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Grade именованная проба металла.
type Grade string

const (
	GradeBullion Grade = "BULLION"
	Grade24K     Grade = "24K"
	Grade23K     Grade = "23K"
	Grade22K     Grade = "22K"
	Grade21K     Grade = "21K"
	Grade20K     Grade = "20K"
	Grade19K     Grade = "19K"
	Grade18K     Grade = "18K"
)

//nolint:gochecknoglobals
var gradePurity = map[Grade]decimal.Decimal{
	GradeBullion: decimal.RequireFromString("0.9999"),
	Grade24K:     decimal.RequireFromString("0.999"),
	Grade23K:     decimal.RequireFromString("0.958"),
	Grade22K:     decimal.RequireFromString("0.916"),
	Grade21K:     decimal.RequireFromString("0.875"),
	Grade20K:     decimal.RequireFromString("0.833"),
	Grade19K:     decimal.RequireFromString("0.791"),
	Grade18K:     decimal.RequireFromString("0.750"),
}

func NormalizeGrade(s string) Grade {
	g := strings.ToUpper(strings.TrimSpace(s))
	g = strings.TrimSuffix(g, " DORE")
	return Grade(g)
}

// PurityForGrade возвращает долю чистого металла для пробы.
func PurityForGrade(g Grade) (decimal.Decimal, bool) {
	p, ok := gradePurity[NormalizeGrade(string(g))]
	return p, ok
}

// ResolvePurity явное значение всегда важнее таблицы проб.
func ResolvePurity(explicit *decimal.Decimal, grade Grade) (decimal.Decimal, bool) {
	if explicit != nil {
		return *explicit, ValidPurity(*explicit)
	}

	return PurityForGrade(grade)
}

// ValidPurity доля в полуинтервале (0, 1].
func ValidPurity(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThanOrEqual(decimal.NewFromInt(1))
}
