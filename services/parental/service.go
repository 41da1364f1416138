package parental

import "strings"

// Ratings follow the Brazilian classification scale used by the upstream
// catalog: "L" (livre), "10", "12", "14", "16", "18". Kid profiles may only
// see titles rated below 16.
var restricted = map[string]bool{
	"16":    true,
	"18":    true,
	"adult": true,
}

// Service decides content visibility per profile maturity policy.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Allowed reports whether content with the given age rating is visible to
// the profile. Unrated content is visible to everyone; the policy only
// restricts explicitly mature ratings.
func (s *Service) Allowed(isKid bool, ageRating string) bool {
	if !isKid {
		return true
	}
	return !restricted[normalize(ageRating)]
}

// Filter returns the items whose rating passes the profile policy, in input
// order. rating extracts the age rating from an item. For non-kid profiles
// the input is returned untouched.
func Filter[T any](s *Service, isKid bool, items []T, rating func(T) string) []T {
	if !isKid {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.Allowed(true, rating(item)) {
			out = append(out, item)
		}
	}
	return out
}

// normalize folds rating spellings like "+18" and "18+" onto the canonical
// form before lookup.
func normalize(rating string) string {
	r := strings.ToLower(strings.TrimSpace(rating))
	r = strings.Trim(r, "+")
	return r
}
