package domain

import (
	"strconv"
	"strings"
)

// PotencyTier buckets a THC or CBD percentage for catalog filtering
type PotencyTier string

const (
	TierAll    PotencyTier = "all"
	TierNone   PotencyTier = "none"
	TierLow    PotencyTier = "low"
	TierMedium PotencyTier = "medium"
	TierHigh   PotencyTier = "high"
)

// IsValid reports whether t is a known tier
func (t PotencyTier) IsValid() bool {
	switch t {
	case TierAll, TierNone, TierLow, TierMedium, TierHigh:
		return true
	default:
		return false
	}
}

// Potency parses a display string such as "18%" or "12.5 %" into a number.
// The "%" sign is stripped and the leading numeric prefix is read; a nil,
// empty or unparseable value yields 0.
func Potency(display *string) float64 {
	if display == nil {
		return 0
	}
	s := strings.TrimSpace(strings.ReplaceAll(*display, "%", ""))

	end := 0
	seenDigit, seenDot := false, false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
			continue
		case r == '.' && !seenDot:
			seenDot = true
			continue
		case (r == '-' || r == '+') && i == 0:
			continue
		}
		break
	}
	if !seenDigit {
		return 0
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// THCTier classifies a THC percentage: none=0, low<5, medium<15, high>=15
func THCTier(pct float64) PotencyTier {
	return tier(pct, 5, 15)
}

// CBDTier classifies a CBD percentage: none=0, low<5, medium<10, high>=10
func CBDTier(pct float64) PotencyTier {
	return tier(pct, 5, 10)
}

func tier(pct, medium, high float64) PotencyTier {
	switch {
	case pct <= 0:
		return TierNone
	case pct < medium:
		return TierLow
	case pct < high:
		return TierMedium
	default:
		return TierHigh
	}
}
