package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayni-health/backend/pkg/model"
)

var testNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

func birthDateForAge(age int) string {
	return testNow.AddDate(-age, 0, -1).Format(time.DateOnly)
}

func healthyProfile() *model.UserProfile {
	return &model.UserProfile{
		BirthDate:                 birthDateForAge(31),
		Sex:                       model.SexMale,
		HeightCm:                  175,
		WeightKg:                  70,
		ChronicConditions:         []string{"None"},
		Allergies:                 []string{"None"},
		SurgeriesOrPastIllnesses:  []string{"None"},
		MedicationsAndSupplements: []string{"None"},
		SmokingStatus:             model.SmokingNever,
		AlcoholConsumption:        model.AlcoholNone,
		ExerciseFrequency:         model.ExerciseFrequently,
		DrugConsumption:           model.DrugsNone,
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		name      string
		birthDate string
		now       time.Time
		want      int
	}{
		{"birthday already passed", "1990-01-15", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 36},
		{"birthday later this month", "1990-06-20", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 35},
		{"birthday today", "1990-06-01", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 36},
		{"birthday next month", "1990-07-01", time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), 35},
		{"born this year", "2026-01-01", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Age(tt.birthDate, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAge_InvalidBirthDate(t *testing.T) {
	_, err := Age("not-a-date", testNow)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "birthDate", verr.Field)

	_, err = Age("2027-01-01", testNow)
	require.ErrorAs(t, err, &verr)
}

func TestBMI(t *testing.T) {
	bmi, err := BMI(70, 175)
	require.NoError(t, err)
	assert.InDelta(t, 22.86, bmi, 0.01)

	_, err = BMI(70, 0)
	assert.Error(t, err)
	_, err = BMI(-1, 170)
	assert.Error(t, err)
}

func TestAssessDemographic_Tiers(t *testing.T) {
	tests := []struct {
		name      string
		age       int
		heightCm  float64
		weightKg  float64
		wantScore int
		wantCount int
	}{
		{"young normal weight", 30, 175, 70, 0, 0},
		{"mild age", 45, 175, 70, 3, 1},
		{"moderate age", 55, 175, 70, 8, 1},
		{"advanced age", 70, 175, 70, 15, 1},
		{"overweight", 30, 170, 75, 4, 1},
		{"obese", 30, 170, 90, 8, 1},
		{"severely obese", 30, 170, 110, 12, 1},
		{"underweight", 30, 180, 55, 6, 1},
		{"advanced age and severe obesity", 80, 160, 95, 27, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthyProfile()
			p.BirthDate = birthDateForAge(tt.age)
			p.HeightCm = tt.heightCm
			p.WeightKg = tt.weightKg

			c, err := AssessDemographic(p, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, c.Score)
			assert.Len(t, c.Factors, tt.wantCount)
		})
	}
}

func TestAssessMedicalHistory(t *testing.T) {
	p := healthyProfile()
	p.ChronicConditions = []string{"Type 2 Diabetes", "Asthma", "Migraine"}
	p.SurgeriesOrPastIllnesses = []string{"Hip-Replacement (2019)", "Appendectomy"}
	p.MedicationsAndSupplements = []string{"Metformin 500mg", "Blood-pressure medication", "Vitamin D"}

	c := AssessMedicalHistory(p)

	// 15 + 8 + 5 conditions, 5 + 2 surgeries, 8 + 8 medications
	assert.Equal(t, 51, c.Score)
	assert.Equal(t, []string{
		"High-risk chronic condition: Type 2 Diabetes",
		"Moderate-risk chronic condition: Asthma",
		"Chronic condition: Migraine",
		"Complex surgical history: Hip-Replacement (2019)",
		"Surgical history: Appendectomy",
		"Control medication: Metformin 500mg",
		"Control medication: Blood-pressure medication",
	}, c.Factors)
}

func TestAssessMedicalHistory_HighestMatchWins(t *testing.T) {
	p := healthyProfile()
	p.ChronicConditions = []string{"Hypertension with arthritis"}

	c := AssessMedicalHistory(p)

	assert.Equal(t, 15, c.Score)
	assert.Len(t, c.Factors, 1)
}

func TestAssessMedicalHistory_NoneSentinel(t *testing.T) {
	p := healthyProfile()
	p.ChronicConditions = []string{"NONE"}
	p.SurgeriesOrPastIllnesses = []string{"none"}

	c := AssessMedicalHistory(p)

	assert.Zero(t, c.Score)
	assert.Empty(t, c.Factors)
}

func TestAssessLifestyle(t *testing.T) {
	tests := []struct {
		name      string
		smoking   model.SmokingStatus
		alcohol   model.AlcoholConsumption
		exercise  model.ExerciseFrequency
		drugs     model.DrugConsumption
		wantScore int
	}{
		{"clean living", model.SmokingNever, model.AlcoholNone, model.ExerciseRegularly, model.DrugsNone, 0},
		{"protective exercise", model.SmokingNever, model.AlcoholLight, model.ExerciseFrequently, model.DrugsPreferNotToSay, -5},
		{"former smoker", model.SmokingFormer, model.AlcoholModerate, model.ExerciseRarely, model.DrugsRarely, 27},
		{"worst case", model.SmokingCurrent, model.AlcoholHeavy, model.ExerciseNever, model.DrugsRegularly, 62},
		{"not provided", "", "", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthyProfile()
			p.SmokingStatus = tt.smoking
			p.AlcoholConsumption = tt.alcohol
			p.ExerciseFrequency = tt.exercise
			p.DrugConsumption = tt.drugs

			assert.Equal(t, tt.wantScore, AssessLifestyle(p).Score)
		})
	}
}

func TestAssess_HealthyProfileClampsAtZero(t *testing.T) {
	a, err := Assess(healthyProfile(), testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, a.RiskScore)
	assert.Equal(t, LevelLow, a.RiskLevel)
	assert.Equal(t, 14, a.RecommendedAnalysisFrequency)
	assert.Equal(t, []string{"Frequent physical activity (protective factor)"}, a.RiskFactors)
	assert.Contains(t, a.PersonalizedMessage, "every 14 days")
}

func TestAssess_EndToEndCriticalProfile(t *testing.T) {
	p := &model.UserProfile{
		BirthDate:          birthDateForAge(75),
		Sex:                model.SexFemale,
		HeightCm:           170,
		WeightKg:           95.4, // BMI 33
		ChronicConditions:  []string{"Diabetes", "Hypertension"},
		SmokingStatus:      model.SmokingCurrent,
		ExerciseFrequency:  model.ExerciseNever,
		AlcoholConsumption: model.AlcoholHeavy,
		DrugConsumption:    model.DrugsNone,
	}

	demographic, err := AssessDemographic(p, testNow)
	require.NoError(t, err)
	assert.Equal(t, 23, demographic.Score)
	assert.Equal(t, 30, AssessMedicalHistory(p).Score)
	assert.Equal(t, 47, AssessLifestyle(p).Score)

	a, err := Assess(p, testNow)
	require.NoError(t, err)
	assert.Equal(t, 100, a.RiskScore)
	assert.Equal(t, LevelCritical, a.RiskLevel)
	assert.Equal(t, 1, a.RecommendedAnalysisFrequency)
	assert.Len(t, a.RiskFactors, 7)
	assert.Equal(t, "Advanced age (65+ years)", a.RiskFactors[0])
	assert.Contains(t, a.PersonalizedMessage, "daily")
}

func TestAssess_FactorOrder(t *testing.T) {
	p := healthyProfile()
	p.BirthDate = birthDateForAge(45)
	p.ChronicConditions = []string{"Asthma"}
	p.SmokingStatus = model.SmokingFormer

	a, err := Assess(p, testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Mild-risk age (40-49 years)",
		"Moderate-risk chronic condition: Asthma",
		"Former smoker (residual risk)",
		"Frequent physical activity (protective factor)",
	}, a.RiskFactors)
	// 3 + 8 + 8 - 5
	assert.Equal(t, 14, a.RiskScore)
}

func TestAssess_ValidationError(t *testing.T) {
	p := healthyProfile()
	p.BirthDate = "31/12/1980"

	a, err := Assess(p, testNow)
	assert.Nil(t, a)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = Assess(nil, testNow)
	assert.ErrorAs(t, err, &verr)
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, LevelLow, LevelForScore(0))
	assert.Equal(t, LevelLow, LevelForScore(19))
	assert.Equal(t, LevelModerate, LevelForScore(20))
	assert.Equal(t, LevelModerate, LevelForScore(34))
	assert.Equal(t, LevelHigh, LevelForScore(35))
	assert.Equal(t, LevelHigh, LevelForScore(49))
	assert.Equal(t, LevelCritical, LevelForScore(50))
	assert.Equal(t, LevelCritical, LevelForScore(100))
}

func TestFrequencyDays(t *testing.T) {
	tests := []struct {
		level Level
		age   int
		want  int
	}{
		{LevelLow, 30, 14},
		{LevelLow, 55, 11},
		{LevelLow, 70, 9},
		{LevelModerate, 30, 7},
		{LevelModerate, 55, 5},
		{LevelModerate, 70, 4},
		{LevelHigh, 30, 3},
		{LevelHigh, 55, 2},
		{LevelHigh, 70, 2},
		{LevelCritical, 30, 1},
		{LevelCritical, 55, 1},
		{LevelCritical, 70, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FrequencyDays(tt.level, tt.age), "level=%s age=%d", tt.level, tt.age)
	}
}

func TestFrequencyLabel(t *testing.T) {
	assert.Equal(t, "daily", FrequencyLabel(1))
	assert.Equal(t, "weekly", FrequencyLabel(7))
	assert.Equal(t, "every two weeks", FrequencyLabel(14))
	assert.Equal(t, "every 9 days", FrequencyLabel(9))
}
