package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/pkg/model"
)

// Completer is the chat completion capability the analyzer depends on
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// ExternalServiceError reports a failed or unusable response from the AI provider
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("ai service %s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// ErrNotConfigured is returned when no completer is available
var ErrNotConfigured = errors.New("ai client is not configured")

const systemPrompt = `You are a careful health triage assistant. You are not a doctor and you never diagnose.
You explain checkup results to non-medical users in clear, empathetic language.
Always answer with a single JSON object and nothing else.`

// Analyzer turns a profile and a checkup into an AnalysisResult
type Analyzer struct {
	completer Completer
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil completer makes every analysis fall back.
func NewAnalyzer(completer Completer, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		completer: completer,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze never fails. Any provider or parsing error is logged and FallbackResult is returned.
func (a *Analyzer) Analyze(ctx context.Context, profile *model.UserProfile, checkup model.Checkup) model.AnalysisResult {
	result, err := a.AnalyzeStrict(ctx, profile, checkup)
	if err != nil {
		a.logger.Warn("checkup analysis failed, using fallback result", zap.Error(err))
		return FallbackResult()
	}
	return *result
}

// AnalyzeStrict returns a *ExternalServiceError when the provider fails or answers with invalid data
func (a *Analyzer) AnalyzeStrict(ctx context.Context, profile *model.UserProfile, checkup model.Checkup) (*model.AnalysisResult, error) {
	if a.completer == nil {
		return nil, &ExternalServiceError{Op: "complete", Err: ErrNotConfigured}
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(BuildPrompt(profile, checkup, a.now())),
	}

	response, err := a.completer.Complete(ctx, messages)
	if err != nil {
		return nil, &ExternalServiceError{Op: "complete", Err: err}
	}

	result, err := ParseResult(response)
	if err != nil {
		a.logger.Error("failed to parse analysis response",
			zap.Error(err),
			zap.String("response", response),
		)
		return nil, &ExternalServiceError{Op: "parse", Err: err}
	}

	a.logger.Info("checkup analysis completed",
		zap.String("risk_level", string(result.RiskLevel)),
		zap.String("urgency_level", string(result.UrgencyLevel)),
		zap.Int("recommendations", len(result.Recommendations)),
	)

	return result, nil
}

// FallbackResult is the advisory result used whenever no valid analysis is available
func FallbackResult() model.AnalysisResult {
	return model.AnalysisResult{
		RiskLevel:   model.RiskLevelWarning,
		Explanation: "We ran into a problem analysing your checkup data. This is not a medical diagnosis. Please consult a healthcare professional if you are not feeling well.",
		Recommendations: []string{
			"Contact a local clinic or doctor.",
			"If this is an emergency, call your local emergency number immediately.",
		},
		KeyFindings:          []string{},
		UrgencyLevel:         model.UrgencyRoutine,
		PersonalizedInsights: []string{},
		RiskFactors:          []string{},
		FollowUpPlan:         "Repeat the checkup once the analysis service is available again.",
	}
}

// BuildPrompt renders the user profile and today's checkup as a triage request
func BuildPrompt(profile *model.UserProfile, checkup model.Checkup, now time.Time) string {
	var b strings.Builder

	b.WriteString("Analyse the following health checkup for a user and give a triage recommendation.\n\n")

	b.WriteString("User profile:\n")
	if profile != nil {
		age := "not provided"
		if years, err := risk.Age(profile.BirthDate, now); err == nil {
			age = fmt.Sprintf("%d years", years)
		}
		fmt.Fprintf(&b, "- Age: %s\n", age)
		fmt.Fprintf(&b, "- Sex: %s\n", orDefault(string(profile.Sex), "not provided"))
		fmt.Fprintf(&b, "- Height: %.0f cm\n", profile.HeightCm)
		fmt.Fprintf(&b, "- Weight: %.1f kg\n", profile.WeightKg)
		fmt.Fprintf(&b, "- Chronic conditions: %s\n", joinOrNone(profile.ChronicConditions))
		fmt.Fprintf(&b, "- Known allergies: %s\n", joinOrNone(profile.Allergies))
		fmt.Fprintf(&b, "- Past illnesses or significant surgeries: %s\n", joinOrNone(profile.SurgeriesOrPastIllnesses))
		fmt.Fprintf(&b, "- Current medications and supplements: %s\n", joinOrNone(profile.MedicationsAndSupplements))
		fmt.Fprintf(&b, "- Smoking status: %s\n", orDefault(string(profile.SmokingStatus), "not provided"))
		fmt.Fprintf(&b, "- Alcohol consumption: %s\n", orDefault(string(profile.AlcoholConsumption), "not provided"))
		fmt.Fprintf(&b, "- Exercise frequency: %s\n", orDefault(string(profile.ExerciseFrequency), "not provided"))
		fmt.Fprintf(&b, "- Recreational drug use: %s\n", orDefault(string(profile.DrugConsumption), "not provided"))
	} else {
		b.WriteString("- Not provided\n")
	}

	b.WriteString("\nToday's checkup:\n")
	fmt.Fprintf(&b, "- General feeling (scale 1-5, 5 is best): %d\n", checkup.GeneralFeeling.Scale)
	fmt.Fprintf(&b, "- General tags: %s\n", joinOrNone(checkup.GeneralFeeling.Tags))
	fmt.Fprintf(&b, "- Vital signs: %s\n", vitalsReport(checkup.Vitals))
	b.WriteString("- Reported symptoms:\n")
	if checkup.HasSymptoms && len(checkup.Symptoms) > 0 {
		for _, s := range checkup.Symptoms {
			fmt.Fprintf(&b, "  - %s, intensity %d/10", s.Name, s.Intensity)
			if s.Details != "" {
				fmt.Fprintf(&b, ", details: %s", s.Details)
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  - The user reports no specific symptoms.\n")
	}

	b.WriteString(`
Task:
Weigh the profile, the general feeling, the vital signs and the symptoms (or their absence) together.
If the user feels well and the vitals are normal, the risk is "normal". Abnormal vitals raise the risk even without symptoms.
Severe symptoms, for example high-intensity chest pain, always trigger "alert", especially with relevant chronic conditions.

Return ONLY valid JSON with this shape:
{
  "riskLevel": "normal" | "warning" | "alert",
  "explanation": "clear and empathetic explanation for a non-medical person",
  "recommendations": ["2-3 actionable next steps"],
  "keyFindings": ["notable observations from the checkup"],
  "urgencyLevel": "routine" | "priority" | "urgent",
  "personalizedInsights": ["insights tied to the user's profile"],
  "riskFactors": ["profile or checkup factors that raise the risk"],
  "followUpPlan": "what the user should do next and when",
  "recommendedFrequencyDays": integer number of days until the next checkup
}`)

	return b.String()
}

func vitalsReport(v model.Vitals) string {
	var parts []string
	if v.HeartRate != nil {
		parts = append(parts, fmt.Sprintf("heart rate %d bpm", *v.HeartRate))
	}
	if v.Temperature != nil {
		parts = append(parts, fmt.Sprintf("body temperature %.1f C", *v.Temperature))
	}
	if v.SpO2 != nil {
		parts = append(parts, fmt.Sprintf("blood oxygen (SpO2) %d%%", *v.SpO2))
	}
	if bp := v.BloodPressure; bp != nil && bp.Systolic != nil && bp.Diastolic != nil {
		parts = append(parts, fmt.Sprintf("blood pressure %d/%d mmHg", *bp.Systolic, *bp.Diastolic))
	}
	if len(parts) == 0 {
		return "not provided"
	}
	return strings.Join(parts, "; ")
}

func joinOrNone(values []string) string {
	var kept []string
	for _, v := range values {
		if !model.IsNoneTag(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return "none"
	}
	return strings.Join(kept, ", ")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// rawResult distinguishes absent fields from empty ones
type rawResult struct {
	RiskLevel                *string   `json:"riskLevel"`
	Explanation              *string   `json:"explanation"`
	Recommendations          *[]string `json:"recommendations"`
	KeyFindings              []string  `json:"keyFindings"`
	UrgencyLevel             string    `json:"urgencyLevel"`
	PersonalizedInsights     []string  `json:"personalizedInsights"`
	RiskFactors              []string  `json:"riskFactors"`
	FollowUpPlan             string    `json:"followUpPlan"`
	RecommendedFrequencyDays *int      `json:"recommendedFrequencyDays"`
}

var defaultUrgency = map[model.RiskLevel]model.UrgencyLevel{
	model.RiskLevelNormal:  model.UrgencyRoutine,
	model.RiskLevelWarning: model.UrgencyPriority,
	model.RiskLevelAlert:   model.UrgencyUrgent,
}

// ParseResult decodes a model response, tolerating markdown code fences
func ParseResult(response string) (*model.AnalysisResult, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var raw rawResult
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	if raw.RiskLevel == nil || raw.Explanation == nil || raw.Recommendations == nil {
		return nil, fmt.Errorf("response is missing riskLevel, explanation or recommendations")
	}

	level := model.RiskLevel(strings.ToLower(strings.TrimSpace(*raw.RiskLevel)))
	if !level.Valid() {
		return nil, fmt.Errorf("unknown riskLevel %q", *raw.RiskLevel)
	}

	urgency := model.UrgencyLevel(strings.ToLower(strings.TrimSpace(raw.UrgencyLevel)))
	if urgency == "" {
		urgency = defaultUrgency[level]
	} else if !urgency.Valid() {
		return nil, fmt.Errorf("unknown urgencyLevel %q", raw.UrgencyLevel)
	}

	if f := raw.RecommendedFrequencyDays; f != nil && *f < 1 {
		return nil, fmt.Errorf("recommendedFrequencyDays must be at least 1, got %d", *f)
	}

	return &model.AnalysisResult{
		RiskLevel:                level,
		Explanation:              *raw.Explanation,
		Recommendations:          nonNil(*raw.Recommendations),
		KeyFindings:              nonNil(raw.KeyFindings),
		UrgencyLevel:             urgency,
		PersonalizedInsights:     nonNil(raw.PersonalizedInsights),
		RiskFactors:              nonNil(raw.RiskFactors),
		FollowUpPlan:             raw.FollowUpPlan,
		RecommendedFrequencyDays: raw.RecommendedFrequencyDays,
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
