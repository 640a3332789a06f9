package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() UserProfile {
	return UserProfile{
		BirthDate:         "1990-04-12",
		Sex:               SexFemale,
		HeightCm:          168,
		WeightKg:          61,
		ChronicConditions: []string{"None"},
		Allergies:         []string{},
		SmokingStatus:     SmokingNever,
		ExerciseFrequency: ExerciseRegularly,
	}
}

func TestUserProfile_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mutate    func(p *UserProfile)
		wantField string
	}{
		{name: "valid profile", mutate: func(p *UserProfile) {}},
		{name: "rfc3339 birth date", mutate: func(p *UserProfile) { p.BirthDate = "1990-04-12T00:00:00Z" }},
		{name: "empty birth date", mutate: func(p *UserProfile) { p.BirthDate = "" }, wantField: "birthDate"},
		{name: "garbage birth date", mutate: func(p *UserProfile) { p.BirthDate = "12/04/1990" }, wantField: "birthDate"},
		{name: "future birth date", mutate: func(p *UserProfile) { p.BirthDate = "2030-01-01" }, wantField: "birthDate"},
		{name: "zero height", mutate: func(p *UserProfile) { p.HeightCm = 0 }, wantField: "height"},
		{name: "negative weight", mutate: func(p *UserProfile) { p.WeightKg = -3 }, wantField: "weight"},
		{name: "NaN weight", mutate: func(p *UserProfile) { p.WeightKg = math.NaN() }, wantField: "weight"},
		{name: "none mixed with tags", mutate: func(p *UserProfile) { p.Allergies = []string{"none", "Penicillin"} }, wantField: "allergies"},
		{name: "unknown smoking status", mutate: func(p *UserProfile) { p.SmokingStatus = "sometimes" }, wantField: "smokingStatus"},
		{name: "unknown exercise frequency", mutate: func(p *UserProfile) { p.ExerciseFrequency = "often" }, wantField: "exerciseFrequency"},
		{name: "empty enums are allowed", mutate: func(p *UserProfile) {
			p.SmokingStatus = ""
			p.AlcoholConsumption = ""
			p.ExerciseFrequency = ""
			p.DrugConsumption = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)

			err := p.Validate(now)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestCheckup_Validate(t *testing.T) {
	c := Checkup{GeneralFeeling: GeneralFeeling{Scale: 3}}
	assert.NoError(t, c.Validate())

	c.GeneralFeeling.Scale = 6
	assert.Error(t, c.Validate())

	c.GeneralFeeling.Scale = 2
	c.HasSymptoms = true
	c.Symptoms = []Symptom{{Name: "Headache", Intensity: 11}}
	err := c.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "symptoms[0].intensity", verr.Field)
}

func TestIsNoneTag(t *testing.T) {
	assert.True(t, IsNoneTag("None"))
	assert.True(t, IsNoneTag("  NONE "))
	assert.True(t, IsNoneTag(""))
	assert.False(t, IsNoneTag("Asthma"))
}
