package value

import "strings"

// Frequency периодичность поставок. SPOT означает разовую сделку.
type Frequency string

const (
	FrequencySpot      Frequency = "SPOT"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
)

func ParseFrequency(s string) (Frequency, bool) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if f == "" {
		return FrequencySpot, true
	}

	switch f {
	case FrequencySpot, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return f, true
	default:
		return "", false
	}
}

func (f Frequency) String() string { return string(f) }

// Periodic true для повторяющихся контрактов.
func (f Frequency) Periodic() bool {
	return f != "" && f != FrequencySpot
}

// DurationMonths срок проекта на внешней платформе по умолчанию.
func (f Frequency) DurationMonths() int {
	switch f {
	case FrequencyWeekly, FrequencyMonthly:
		return 1
	default:
		return 3
	}
}
