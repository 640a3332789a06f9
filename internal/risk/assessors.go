package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// Contribution is the partial score and factor labels produced by one assessor
type Contribution struct {
	Score   int
	Factors []string
}

func (c *Contribution) add(points int, label string) {
	c.Score += points
	c.Factors = append(c.Factors, label)
}

var (
	highRiskConditions     = []string{"diabetes", "heart disease", "kidney disease", "hypertension"}
	moderateRiskConditions = []string{"asthma", "arthritis"}
	complexSurgeries       = []string{"heart disease", "hip replacement", "gallbladder surgery"}
	controlMedications     = []string{"metformin", "blood pressure medication"}
)

// AssessDemographic scores age and BMI
func AssessDemographic(profile *model.UserProfile, now time.Time) (Contribution, error) {
	var c Contribution

	age, err := Age(profile.BirthDate, now)
	if err != nil {
		return Contribution{}, err
	}
	bmi, err := BMI(profile.WeightKg, profile.HeightCm)
	if err != nil {
		return Contribution{}, err
	}

	switch {
	case age >= 65:
		c.add(15, "Advanced age (65+ years)")
	case age >= 50:
		c.add(8, "Moderate-risk age (50-64 years)")
	case age >= 40:
		c.add(3, "Mild-risk age (40-49 years)")
	}

	switch {
	case bmi >= 35:
		c.add(12, "Severe obesity (BMI 35+)")
	case bmi >= 30:
		c.add(8, "Obesity (BMI 30-34.9)")
	case bmi >= 25:
		c.add(4, "Overweight (BMI 25-29.9)")
	case bmi < 18.5:
		c.add(6, "Underweight (BMI below 18.5)")
	}

	return c, nil
}

// AssessMedicalHistory scores chronic conditions, past surgeries and control medications.
// The score is not bounded here.
func AssessMedicalHistory(profile *model.UserProfile) Contribution {
	var c Contribution

	for _, condition := range profile.ChronicConditions {
		if model.IsNoneTag(condition) {
			continue
		}
		tag := normalizeTag(condition)
		switch {
		case containsAny(tag, highRiskConditions):
			c.add(15, fmt.Sprintf("High-risk chronic condition: %s", condition))
		case containsAny(tag, moderateRiskConditions):
			c.add(8, fmt.Sprintf("Moderate-risk chronic condition: %s", condition))
		default:
			c.add(5, fmt.Sprintf("Chronic condition: %s", condition))
		}
	}

	for _, surgery := range profile.SurgeriesOrPastIllnesses {
		if model.IsNoneTag(surgery) {
			continue
		}
		if containsAny(normalizeTag(surgery), complexSurgeries) {
			c.add(5, fmt.Sprintf("Complex surgical history: %s", surgery))
		} else {
			c.add(2, fmt.Sprintf("Surgical history: %s", surgery))
		}
	}

	for _, medication := range profile.MedicationsAndSupplements {
		if model.IsNoneTag(medication) {
			continue
		}
		if containsAny(normalizeTag(medication), controlMedications) {
			c.add(8, fmt.Sprintf("Control medication: %s", medication))
		}
	}

	return c
}

// AssessLifestyle scores smoking, alcohol, exercise and recreational drug use.
// Frequent exercise subtracts points, so the result may be negative.
func AssessLifestyle(profile *model.UserProfile) Contribution {
	var c Contribution

	switch profile.SmokingStatus {
	case model.SmokingCurrent:
		c.add(20, "Current smoker (very high risk)")
	case model.SmokingFormer:
		c.add(8, "Former smoker (residual risk)")
	}

	switch profile.AlcoholConsumption {
	case model.AlcoholHeavy:
		c.add(12, "Heavy alcohol consumption (risk)")
	case model.AlcoholModerate:
		c.add(4, "Moderate alcohol consumption (risk)")
	}

	switch profile.ExerciseFrequency {
	case model.ExerciseNever:
		c.add(15, "Sedentary lifestyle (risk)")
	case model.ExerciseRarely:
		c.add(10, "Very limited physical activity (risk)")
	case model.ExerciseFrequently:
		c.add(-5, "Frequent physical activity (protective factor)")
	}

	switch profile.DrugConsumption {
	case model.DrugsRegularly:
		c.add(15, "Regular recreational drug use (risk)")
	case model.DrugsRarely:
		c.add(5, "Occasional recreational drug use (risk)")
	}

	return c
}

// normalizeTag lower-cases a tag and folds hyphens, underscores and repeated spaces
func normalizeTag(tag string) string {
	tag = strings.ToLower(tag)
	tag = strings.NewReplacer("-", " ", "_", " ").Replace(tag)
	return strings.Join(strings.Fields(tag), " ")
}

func containsAny(tag string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(tag, k) {
			return true
		}
	}
	return false
}
