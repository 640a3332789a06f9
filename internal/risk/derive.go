package risk

import (
	"math"
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// Age returns the number of whole years between birthDate and now.
// The year is not counted until its anniversary has been reached on now's calendar.
func Age(birthDate string, now time.Time) (int, error) {
	birth, err := model.ParseBirthDate(birthDate)
	if err != nil {
		return 0, err
	}

	y, m, d := now.Date()
	by, bm, bd := birth.Date()

	age := y - by
	if m < bm || (m == bm && d < bd) {
		age--
	}
	if age < 0 {
		return 0, &model.ValidationError{Field: "birthDate", Reason: "is in the future"}
	}
	return age, nil
}

// BMI returns weight / (height in metres)^2
func BMI(weightKg, heightCm float64) (float64, error) {
	if !(heightCm > 0) || math.IsInf(heightCm, 0) {
		return 0, &model.ValidationError{Field: "height", Reason: "must be a positive number of centimetres"}
	}
	if !(weightKg > 0) || math.IsInf(weightKg, 0) {
		return 0, &model.ValidationError{Field: "weight", Reason: "must be a positive number of kilograms"}
	}
	metres := heightCm / 100
	return weightKg / (metres * metres), nil
}
