package limits

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/domain"
)

// Tier is a named limit profile. Tiers form a closed, ordered set.
type Tier string

const (
	TierLite Tier = "lite"
	TierPro  Tier = "pro"
)

// Unlimited disables a numeric limit.
const Unlimited = -1

var orderedTiers = []Tier{TierLite, TierPro}

// Tiers returns all tiers from least to most permissive.
func Tiers() []Tier {
	return append([]Tier(nil), orderedTiers...)
}

// Rank returns the tier's position in the ordering, or -1 if unknown.
func (t Tier) Rank() int {
	for i, o := range orderedTiers {
		if o == t {
			return i
		}
	}
	return -1
}

// ParseTier converts a case-insensitive name into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t.Rank() < 0 {
		return "", fmt.Errorf("unknown tier %q (expected one of %s)", s, joinTiers())
	}
	return t, nil
}

// Policy holds the thresholds a tier imposes on a tour.
type Policy struct {
	Tier                Tier                 `json:"tier"`
	MaxScenesPerTour    int                  `json:"maxScenesPerTour"`
	MaxHotspotsPerScene int                  `json:"maxHotspotsPerScene"`
	AllowedHotspotTypes []domain.HotspotType `json:"allowedHotspotTypes"`
}

var policies = map[Tier]Policy{
	TierLite: {
		Tier:                TierLite,
		MaxScenesPerTour:    5,
		MaxHotspotsPerScene: 10,
		AllowedHotspotTypes: []domain.HotspotType{domain.HotspotInfo, domain.HotspotLink, domain.HotspotScene},
	},
	TierPro: {
		Tier:                TierPro,
		MaxScenesPerTour:    Unlimited,
		MaxHotspotsPerScene: Unlimited,
		AllowedHotspotTypes: []domain.HotspotType{domain.HotspotInfo, domain.HotspotLink, domain.HotspotScene, domain.HotspotVideo},
	},
}

// PolicyFor returns the policy of a tier.
func PolicyFor(t Tier) (Policy, error) {
	p, ok := policies[t]
	if !ok {
		return Policy{}, fmt.Errorf("unknown tier %q (expected one of %s)", t, joinTiers())
	}
	p.AllowedHotspotTypes = append([]domain.HotspotType(nil), p.AllowedHotspotTypes...)
	return p, nil
}

// MustPolicy is PolicyFor for tiers known at compile time.
func MustPolicy(t Tier) Policy {
	p, err := PolicyFor(t)
	if err != nil {
		panic(err)
	}
	return p
}

// Allows reports whether the policy permits hotspots of type ht.
func (p Policy) Allows(ht domain.HotspotType) bool {
	for _, a := range p.AllowedHotspotTypes {
		if a == ht {
			return true
		}
	}
	return false
}

func exceeds(count, limit int) bool {
	return limit != Unlimited && count > limit
}

func joinTiers() string {
	names := make([]string, len(orderedTiers))
	for i, t := range orderedTiers {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
