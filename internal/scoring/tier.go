package scoring

// Premium tier constants. Couple accounts share diamond-level treatment
// everywhere a tier multiplier applies.
const (
	TierFree    = "free"
	TierGold    = "gold"
	TierDiamond = "diamond"
	TierCouple  = "couple"
)

// validTiers is the set of recognized premium tiers.
var validTiers = map[string]bool{
	TierFree:    true,
	TierGold:    true,
	TierDiamond: true,
	TierCouple:  true,
}

// ValidTier reports whether a tier string is one of the recognized tiers.
func ValidTier(tier string) bool {
	return validTiers[tier]
}
