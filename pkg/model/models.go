package model

import "time"

// NoneTag is the sentinel used by free-text profile lists when the user has nothing to report
const NoneTag = "none"

// Sex represents the biological sex recorded in a profile
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// SmokingStatus represents the user's smoking habit
type SmokingStatus string

const (
	SmokingNever   SmokingStatus = "never"
	SmokingFormer  SmokingStatus = "former"
	SmokingCurrent SmokingStatus = "current"
)

// AlcoholConsumption represents how much alcohol the user drinks
type AlcoholConsumption string

const (
	AlcoholNone     AlcoholConsumption = "none"
	AlcoholLight    AlcoholConsumption = "light"
	AlcoholModerate AlcoholConsumption = "moderate"
	AlcoholHeavy    AlcoholConsumption = "heavy"
)

// ExerciseFrequency represents how often the user exercises
type ExerciseFrequency string

const (
	ExerciseNever      ExerciseFrequency = "never"
	ExerciseRarely     ExerciseFrequency = "rarely"
	ExerciseRegularly  ExerciseFrequency = "regularly"
	ExerciseFrequently ExerciseFrequency = "frequently"
)

// DrugConsumption represents recreational drug use
type DrugConsumption string

const (
	DrugsNone           DrugConsumption = "none"
	DrugsRarely         DrugConsumption = "rarely"
	DrugsRegularly      DrugConsumption = "regularly"
	DrugsPreferNotToSay DrugConsumption = "prefer_not_to_say"
)

// UserProfile holds the long-lived demographic, medical and lifestyle data of a user
type UserProfile struct {
	UserID                    string             `json:"userId,omitempty"`
	Name                      string             `json:"name,omitempty"`
	Email                     string             `json:"email,omitempty"`
	BirthDate                 string             `json:"birthDate"` // YYYY-MM-DD
	Sex                       Sex                `json:"sex,omitempty"`
	HeightCm                  float64            `json:"height"`
	WeightKg                  float64            `json:"weight"`
	ChronicConditions         []string           `json:"chronicConditions"`
	Allergies                 []string           `json:"allergies"`
	SurgeriesOrPastIllnesses  []string           `json:"surgeriesOrPastIllnesses"`
	MedicationsAndSupplements []string           `json:"medicationsAndSupplements"`
	SmokingStatus             SmokingStatus      `json:"smokingStatus,omitempty"`
	AlcoholConsumption        AlcoholConsumption `json:"alcoholConsumption,omitempty"`
	ExerciseFrequency         ExerciseFrequency  `json:"exerciseFrequency,omitempty"`
	DrugConsumption           DrugConsumption    `json:"drugConsumption,omitempty"`
}

// GeneralFeeling is the self-reported overall feeling of a checkup
type GeneralFeeling struct {
	Scale int      `json:"scale"` // 1-5, 5 is best
	Tags  []string `json:"tags"`
}

// BloodPressure is an optional systolic/diastolic pair
type BloodPressure struct {
	Systolic  *int `json:"systolic,omitempty"`
	Diastolic *int `json:"diastolic,omitempty"`
}

// Vitals holds the optional vital signs entered during a checkup
type Vitals struct {
	HeartRate     *int           `json:"heartRate,omitempty"`
	SpO2          *int           `json:"spo2,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
	BloodPressure *BloodPressure `json:"bloodPressure,omitempty"`
}

// Symptom is one reported symptom
type Symptom struct {
	Name      string `json:"name"`
	Intensity int    `json:"intensity"` // 1-10
	Details   string `json:"details,omitempty"`
}

// Checkup is one assessment session submitted by the user
type Checkup struct {
	GeneralFeeling GeneralFeeling `json:"generalFeeling"`
	Vitals         Vitals         `json:"vitals"`
	HasSymptoms    bool           `json:"hasSymptoms"`
	Symptoms       []Symptom      `json:"symptoms,omitempty"`
}

// RiskLevel is the three-tier level returned by the AI analysis
type RiskLevel string

const (
	RiskLevelNormal  RiskLevel = "normal"
	RiskLevelWarning RiskLevel = "warning"
	RiskLevelAlert   RiskLevel = "alert"
)

// UrgencyLevel is the urgency returned by the AI analysis
type UrgencyLevel string

const (
	UrgencyRoutine  UrgencyLevel = "routine"
	UrgencyPriority UrgencyLevel = "priority"
	UrgencyUrgent   UrgencyLevel = "urgent"
)

// AnalysisResult is the AI explanation of a checkup
type AnalysisResult struct {
	RiskLevel                RiskLevel    `json:"riskLevel"`
	Explanation              string       `json:"explanation"`
	Recommendations          []string     `json:"recommendations"`
	KeyFindings              []string     `json:"keyFindings"`
	UrgencyLevel             UrgencyLevel `json:"urgencyLevel"`
	PersonalizedInsights     []string     `json:"personalizedInsights"`
	RiskFactors              []string     `json:"riskFactors"`
	FollowUpPlan             string       `json:"followUpPlan"`
	RecommendedFrequencyDays *int         `json:"recommendedFrequencyDays,omitempty"`
}

// HistoryEntry is a checkup snapshot together with its analysis
type HistoryEntry struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"date"`
	Result         AnalysisResult  `json:"result"`
	GeneralFeeling *GeneralFeeling `json:"generalFeeling,omitempty"`
	HasSymptoms    bool            `json:"hasSymptoms"`
	Vitals         *Vitals         `json:"vitals,omitempty"`
	Symptoms       []Symptom       `json:"symptoms,omitempty"`
}
