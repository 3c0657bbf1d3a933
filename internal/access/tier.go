package access

// Tier is one of the four ordered membership levels gating tool access.
type Tier string

const (
	TierPublic  Tier = "public"
	TierPremium Tier = "premium"
	TierVip     Tier = "vip"
	TierElite   Tier = "elite"
)

var tierRanks = map[Tier]int{
	TierPublic:  0,
	TierPremium: 1,
	TierVip:     2,
	TierElite:   3,
}

// Rank returns the ordinal rank of a tier, or -1 for anything outside the
// known enumeration.
func Rank(t Tier) int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return -1
}

// CanAccess reports whether a user at tier userTier may use a resource
// requiring requiredTier. Unknown values on either side deny.
func CanAccess(userTier, requiredTier Tier) bool {
	ur, rr := Rank(userTier), Rank(requiredTier)
	if ur < 0 || rr < 0 {
		return false
	}
	return ur >= rr
}

// Tiers returns the enumeration in ascending rank order.
func Tiers() []Tier {
	return []Tier{TierPublic, TierPremium, TierVip, TierElite}
}
