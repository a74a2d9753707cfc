package domain

// Tier is the access classification of an identity
type Tier int

const (
	TierNotFound Tier = iota
	TierVip
	TierTrial
	TierExpired
)

// String returns the tier name for logs
func (t Tier) String() string {
	switch t {
	case TierVip:
		return "vip"
	case TierTrial:
		return "trial"
	case TierExpired:
		return "expired"
	default:
		return "not_found"
	}
}

// Active reports whether the tier may use the search
func (t Tier) Active() bool {
	return t == TierVip || t == TierTrial
}
