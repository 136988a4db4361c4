package domain

import (
	"fmt"
	"strings"

	pkgvalidator "github.com/wildside/wildside/internal/pkg/validator"
)

// Theme is a closed set of interest categories a visitor can weight.
type Theme string

// The fixed, closed set of themes InterestProfile accepts.
const (
	ThemeHistory       Theme = "history"
	ThemeArt           Theme = "art"
	ThemeNature        Theme = "nature"
	ThemeFood          Theme = "food"
	ThemeArchitecture  Theme = "architecture"
	ThemeShopping      Theme = "shopping"
	ThemeEntertainment Theme = "entertainment"
	ThemeCulture       Theme = "culture"
)

var knownThemes = map[Theme]struct{}{
	ThemeHistory:       {},
	ThemeArt:           {},
	ThemeNature:        {},
	ThemeFood:          {},
	ThemeArchitecture:  {},
	ThemeShopping:      {},
	ThemeEntertainment: {},
	ThemeCulture:       {},
}

// ParseTheme parses a case-insensitive theme name, returning an error naming
// the unknown value.
func ParseTheme(raw string) (Theme, error) {
	theme := Theme(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownThemes[theme]; !ok {
		return "", fmt.Errorf("unknown theme %q", raw)
	}
	return theme, nil
}

// InterestProfile maps themes to weights in [0, 1]. A profile may omit any
// theme, treated as weight 0.
type InterestProfile map[Theme]float64

// Validate rejects non-finite or out-of-range weights and unknown theme
// keys, matching the "unknown theme keys fail validation" contract. Unknown
// keys are a map-shape check with no struct to tag, so that stays hand-
// rolled; each weight's finite/range check runs through the shared
// validator via Var, the same "finite" rule SolveRequest's coordinates use.
func (p InterestProfile) Validate() error {
	for theme, weight := range p {
		if _, ok := knownThemes[theme]; !ok {
			return fmt.Errorf("unknown theme %q", theme)
		}
		if err := pkgvalidator.Var(weight, "finite,min=0,max=1"); err != nil {
			return fmt.Errorf("theme %q weight %v out of range [0,1]: %w", theme, weight, err)
		}
	}
	return nil
}

// Weight returns the profile's weight for theme, defaulting to 0 when absent.
func (p InterestProfile) Weight(theme Theme) float64 {
	return p[theme]
}
