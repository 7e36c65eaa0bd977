package domain

import "strconv"

// Free-tier allowances.
const (
	FreeCourseLimit      = 5
	PremiumCoachingLimit = 2
)

// Quota is a count allowance. Unlimited has no upper bound.
type Quota int

// Unlimited is the quota without an upper bound.
const Unlimited Quota = -1

// IsUnlimited reports whether q has no upper bound.
func (q Quota) IsUnlimited() bool {
	return q < 0
}

// Allows reports whether one more item fits when used items are taken.
func (q Quota) Allows(used int) bool {
	return q.IsUnlimited() || used < int(q)
}

func (q Quota) String() string {
	if q.IsUnlimited() {
		return "unlimited"
	}
	return strconv.Itoa(int(q))
}

// MarshalJSON encodes Unlimited as the string "unlimited".
func (q Quota) MarshalJSON() ([]byte, error) {
	if q.IsUnlimited() {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(int(q))), nil
}

// Table maps every feature to the access level of one premium status. It is
// derived, never edited.
type Table struct {
	premium bool
	levels  map[Feature]AccessLevel
}

// NewTable derives the access table for a premium status. Premium users get
// full access to everything. Free users get limited courses and nothing else.
func NewTable(isPremium bool) Table {
	levels := make(map[Feature]AccessLevel, len(Features()))
	for _, f := range Features() {
		switch {
		case isPremium:
			levels[f] = AccessFull
		case f == FeatureUnlimitedCourses:
			levels[f] = AccessLimited
		default:
			levels[f] = AccessNone
		}
	}
	return Table{premium: isPremium, levels: levels}
}

// IsPremium reports which status the table was derived from.
func (t Table) IsPremium() bool {
	return t.premium
}

// Level returns the access level of f. Unknown features have none.
func (t Table) Level(f Feature) AccessLevel {
	return t.levels[f]
}

// HasAccess reports whether f is available at the required level. Requiring
// AccessNone is always satisfied, even for features outside the table.
func (t Table) HasAccess(f Feature, required AccessLevel) bool {
	if required == AccessNone {
		return true
	}
	return t.Level(f).Satisfies(required)
}

// CourseQuota is how many courses the user may be enrolled in.
func (t Table) CourseQuota() Quota {
	if t.premium {
		return Unlimited
	}
	return FreeCourseLimit
}

// CoachingQuota is how many coaching sessions the user may book.
func (t Table) CoachingQuota() Quota {
	if t.premium {
		return PremiumCoachingLimit
	}
	return 0
}

// Levels returns a copy of the table in feature order.
func (t Table) Levels() []FeatureAccess {
	out := make([]FeatureAccess, 0, len(Features()))
	for _, f := range Features() {
		out = append(out, FeatureAccess{Feature: f, Level: t.Level(f)})
	}
	return out
}

// FeatureAccess is one row of a Table.
type FeatureAccess struct {
	Feature Feature     `json:"feature"`
	Level   AccessLevel `json:"level"`
}
