package risk

import (
	"fmt"
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// Level is the four-tier profile risk level. It is unrelated to model.RiskLevel,
// which comes from the AI analysis of a single checkup.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

const (
	minScore = 0
	maxScore = 100
)

var baseFrequencyDays = map[Level]int{
	LevelLow:      14,
	LevelModerate: 7,
	LevelHigh:     3,
	LevelCritical: 1,
}

// Assessment is the profile-based risk score and checkup recommendation
type Assessment struct {
	RiskScore                    int      `json:"riskScore"`
	RiskLevel                    Level    `json:"riskLevel"`
	RecommendedAnalysisFrequency int      `json:"recommendedAnalysisFrequency"`
	RiskFactors                  []string `json:"riskFactors"`
	PersonalizedMessage          string   `json:"personalizedMessage"`
}

// Assess scores a profile as of now. It returns a *model.ValidationError for malformed profiles.
func Assess(profile *model.UserProfile, now time.Time) (*Assessment, error) {
	if profile == nil {
		return nil, &model.ValidationError{Field: "profile", Reason: "is required"}
	}
	if err := profile.Validate(now); err != nil {
		return nil, err
	}

	demographic, err := AssessDemographic(profile, now)
	if err != nil {
		return nil, err
	}
	medical := AssessMedicalHistory(profile)
	lifestyle := AssessLifestyle(profile)

	age, err := Age(profile.BirthDate, now)
	if err != nil {
		return nil, err
	}

	return Aggregate(age, demographic, medical, lifestyle), nil
}

// Aggregate combines assessor contributions into an Assessment for a person of the given age
func Aggregate(age int, contributions ...Contribution) *Assessment {
	total := 0
	factors := []string{}
	for _, c := range contributions {
		total += c.Score
		factors = append(factors, c.Factors...)
	}

	score := clamp(total, minScore, maxScore)
	level := LevelForScore(score)
	frequency := FrequencyDays(level, age)

	return &Assessment{
		RiskScore:                    score,
		RiskLevel:                    level,
		RecommendedAnalysisFrequency: frequency,
		RiskFactors:                  factors,
		PersonalizedMessage:          Message(level, frequency),
	}
}

// LevelForScore maps a clamped score onto a tier
func LevelForScore(score int) Level {
	switch {
	case score >= 50:
		return LevelCritical
	case score >= 35:
		return LevelHigh
	case score >= 20:
		return LevelModerate
	default:
		return LevelLow
	}
}

// FrequencyDays returns the recommended days between checkups for a tier, shortened for older users
func FrequencyDays(level Level, age int) int {
	frequency, ok := baseFrequencyDays[level]
	if !ok {
		frequency = baseFrequencyDays[LevelModerate]
	}

	// floor(f*0.7) and floor(f*0.85) in integer arithmetic
	switch {
	case age >= 65:
		frequency = max(1, frequency*7/10)
	case age >= 50:
		frequency = max(1, frequency*85/100)
	}
	return frequency
}

// Message renders the summary text for a tier
func Message(level Level, frequency int) string {
	switch level {
	case LevelLow:
		return fmt.Sprintf("Great news, your risk profile is low. We recommend a checkup every %d days to keep preventive track of your health.", frequency)
	case LevelModerate:
		return fmt.Sprintf("Your profile shows some risk factors that need attention. We recommend a checkup every %d days for regular monitoring.", frequency)
	case LevelHigh:
		return fmt.Sprintf("Your profile indicates significant risk factors. A checkup every %d days is important for close follow-up and early detection.", frequency)
	case LevelCritical:
		if frequency == 1 {
			return "Your profile shows multiple high-risk factors. You need daily checkups for intensive monitoring of your health."
		}
		return fmt.Sprintf("Your profile shows multiple high-risk factors. You need a checkup every %d days for intensive monitoring of your health.", frequency)
	}
	return fmt.Sprintf("We recommend a checkup every %d days.", frequency)
}

// FrequencyLabel describes a checkup interval in words
func FrequencyLabel(days int) string {
	switch days {
	case 1:
		return "daily"
	case 3:
		return "every 3 days"
	case 7:
		return "weekly"
	case 14:
		return "every two weeks"
	}
	return fmt.Sprintf("every %d days", days)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
