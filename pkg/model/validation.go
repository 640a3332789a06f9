package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ValidationError reports a malformed profile or checkup field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseBirthDate parses a YYYY-MM-DD date, falling back to RFC 3339
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ValidationError{Field: "birthDate", Reason: "is required"}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &ValidationError{Field: "birthDate", Reason: fmt.Sprintf("cannot parse %q as YYYY-MM-DD", s)}
}

// IsNoneTag reports whether a free-text tag is the "nothing to report" sentinel
func IsNoneTag(tag string) bool {
	t := strings.ToLower(strings.TrimSpace(tag))
	return t == NoneTag || t == ""
}

// Validate checks the profile invariants. now is used to reject birth dates in the future.
func (p *UserProfile) Validate(now time.Time) error {
	birth, err := ParseBirthDate(p.BirthDate)
	if err != nil {
		return err
	}
	if birth.After(now) {
		return &ValidationError{Field: "birthDate", Reason: "is in the future"}
	}

	if !positiveFinite(p.HeightCm) {
		return &ValidationError{Field: "height", Reason: "must be a positive number of centimetres"}
	}
	if !positiveFinite(p.WeightKg) {
		return &ValidationError{Field: "weight", Reason: "must be a positive number of kilograms"}
	}

	lists := []struct {
		field string
		tags  []string
	}{
		{"chronicConditions", p.ChronicConditions},
		{"allergies", p.Allergies},
		{"surgeriesOrPastIllnesses", p.SurgeriesOrPastIllnesses},
		{"medicationsAndSupplements", p.MedicationsAndSupplements},
	}
	for _, l := range lists {
		if err := validateTagList(l.field, l.tags); err != nil {
			return err
		}
	}

	switch p.Sex {
	case "", SexMale, SexFemale, SexOther:
	default:
		return &ValidationError{Field: "sex", Reason: fmt.Sprintf("unknown value %q", p.Sex)}
	}
	switch p.SmokingStatus {
	case "", SmokingNever, SmokingFormer, SmokingCurrent:
	default:
		return &ValidationError{Field: "smokingStatus", Reason: fmt.Sprintf("unknown value %q", p.SmokingStatus)}
	}
	switch p.AlcoholConsumption {
	case "", AlcoholNone, AlcoholLight, AlcoholModerate, AlcoholHeavy:
	default:
		return &ValidationError{Field: "alcoholConsumption", Reason: fmt.Sprintf("unknown value %q", p.AlcoholConsumption)}
	}
	switch p.ExerciseFrequency {
	case "", ExerciseNever, ExerciseRarely, ExerciseRegularly, ExerciseFrequently:
	default:
		return &ValidationError{Field: "exerciseFrequency", Reason: fmt.Sprintf("unknown value %q", p.ExerciseFrequency)}
	}
	switch p.DrugConsumption {
	case "", DrugsNone, DrugsRarely, DrugsRegularly, DrugsPreferNotToSay:
	default:
		return &ValidationError{Field: "drugConsumption", Reason: fmt.Sprintf("unknown value %q", p.DrugConsumption)}
	}

	return nil
}

// validateTagList rejects lists that mix the none sentinel with specific tags
func validateTagList(field string, tags []string) error {
	hasNone, hasSpecific := false, false
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), NoneTag) {
			hasNone = true
		} else if strings.TrimSpace(t) != "" {
			hasSpecific = true
		}
	}
	if hasNone && hasSpecific {
		return &ValidationError{Field: field, Reason: `"none" cannot be combined with other entries`}
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Validate checks the checkup ranges
func (c *Checkup) Validate() error {
	if c.GeneralFeeling.Scale < 1 || c.GeneralFeeling.Scale > 5 {
		return &ValidationError{Field: "generalFeeling.scale", Reason: "must be between 1 and 5"}
	}
	for i, s := range c.Symptoms {
		if strings.TrimSpace(s.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("symptoms[%d].name", i), Reason: "is required"}
		}
		if s.Intensity < 1 || s.Intensity > 10 {
			return &ValidationError{Field: fmt.Sprintf("symptoms[%d].intensity", i), Reason: "must be between 1 and 10"}
		}
	}
	return nil
}

// Valid reports whether the level is one of the known AI risk levels
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLevelNormal, RiskLevelWarning, RiskLevelAlert:
		return true
	}
	return false
}

// Valid reports whether the level is one of the known urgency levels
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyRoutine, UrgencyPriority, UrgencyUrgent:
		return true
	}
	return false
}
