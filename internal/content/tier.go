package content

import "strings"

// Unlimited marks a tier without a monthly cap.
const Unlimited = -1

const (
	TierFree     = "free"
	TierPro      = "pro"
	TierBusiness = "business"
)

var tierLimits = map[string]int{
	TierFree:     5,
	TierPro:      100,
	TierBusiness: Unlimited,
}

// MonthlyLimit returns the generation cap for a tier. Unknown tiers get the free cap.
func MonthlyLimit(tier string) int {
	if limit, ok := tierLimits[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return limit
	}
	return tierLimits[TierFree]
}

// LimitPtr converts a limit to its wire form where nil means unbounded.
func LimitPtr(limit int) *int {
	if limit == Unlimited {
		return nil
	}
	v := limit
	return &v
}
