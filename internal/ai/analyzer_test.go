package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ayni-health/backend/pkg/model"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func testProfile() *model.UserProfile {
	return &model.UserProfile{
		BirthDate:         "1980-05-20",
		Sex:               model.SexFemale,
		HeightCm:          165,
		WeightKg:          68,
		ChronicConditions: []string{"Asthma"},
		Allergies:         []string{"None"},
		SmokingStatus:     model.SmokingNever,
	}
}

func testCheckup() model.Checkup {
	hr := 95
	temp := 38.2
	sys, dia := 130, 85
	return model.Checkup{
		GeneralFeeling: model.GeneralFeeling{Scale: 2, Tags: []string{"tired"}},
		Vitals: model.Vitals{
			HeartRate:     &hr,
			Temperature:   &temp,
			BloodPressure: &model.BloodPressure{Systolic: &sys, Diastolic: &dia},
		},
		HasSymptoms: true,
		Symptoms:    []model.Symptom{{Name: "Cough", Intensity: 6, Details: "dry, at night"}},
	}
}

func newTestAnalyzer(c Completer) *Analyzer {
	a := NewAnalyzer(c, zap.NewNop())
	a.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzer_AnalyzeStrict(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("```json\n"+`{
		"riskLevel": "warning",
		"explanation": "You have a mild fever and a cough.",
		"recommendations": ["Rest", "Drink fluids"],
		"keyFindings": ["Temperature 38.2 C"],
		"urgencyLevel": "priority",
		"personalizedInsights": ["Asthma can make coughs last longer"],
		"riskFactors": ["Asthma"],
		"followUpPlan": "Check again tomorrow",
		"recommendedFrequencyDays": 2
	}`+"\n```", nil)

	result, err := newTestAnalyzer(completer).AnalyzeStrict(context.Background(), testProfile(), testCheckup())
	require.NoError(t, err)

	assert.Equal(t, model.RiskLevelWarning, result.RiskLevel)
	assert.Equal(t, model.UrgencyPriority, result.UrgencyLevel)
	assert.Equal(t, []string{"Rest", "Drink fluids"}, result.Recommendations)
	require.NotNil(t, result.RecommendedFrequencyDays)
	assert.Equal(t, 2, *result.RecommendedFrequencyDays)
	completer.AssertExpectations(t)
}

func TestAnalyzer_AnalyzeStrict_ProviderError(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("service unavailable"))

	_, err := newTestAnalyzer(completer).AnalyzeStrict(context.Background(), testProfile(), testCheckup())

	var extErr *ExternalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "complete", extErr.Op)
}

func TestAnalyzer_AnalyzeStrict_NotConfigured(t *testing.T) {
	_, err := newTestAnalyzer(nil).AnalyzeStrict(context.Background(), testProfile(), testCheckup())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnalyzer_Analyze_FallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("I'm not sure, sorry!", nil)

	a := NewAnalyzer(completer, zap.New(core))
	result := a.Analyze(context.Background(), testProfile(), testCheckup())

	assert.Equal(t, FallbackResult(), result)
	assert.Equal(t, model.RiskLevelWarning, result.RiskLevel)
	assert.Equal(t, model.UrgencyRoutine, result.UrgencyLevel)
	assert.Equal(t, 1, logs.FilterMessage("checkup analysis failed, using fallback result").Len())
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantErr     bool
		wantUrgency model.UrgencyLevel
	}{
		{
			name:        "minimal result gets urgency from risk level",
			response:    `{"riskLevel": "alert", "explanation": "Chest pain", "recommendations": ["Call emergency services"]}`,
			wantUrgency: model.UrgencyUrgent,
		},
		{
			name:        "upper case enums are normalised",
			response:    `{"riskLevel": "NORMAL", "explanation": "ok", "recommendations": [], "urgencyLevel": "Routine"}`,
			wantUrgency: model.UrgencyRoutine,
		},
		{name: "missing explanation", response: `{"riskLevel": "normal", "recommendations": []}`, wantErr: true},
		{name: "missing recommendations", response: `{"riskLevel": "normal", "explanation": "ok"}`, wantErr: true},
		{name: "unknown risk level", response: `{"riskLevel": "critical", "explanation": "ok", "recommendations": []}`, wantErr: true},
		{name: "unknown urgency", response: `{"riskLevel": "normal", "explanation": "ok", "recommendations": [], "urgencyLevel": "asap"}`, wantErr: true},
		{name: "zero frequency", response: `{"riskLevel": "normal", "explanation": "ok", "recommendations": [], "recommendedFrequencyDays": 0}`, wantErr: true},
		{name: "not json", response: `the patient is fine`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResult(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUrgency, result.UrgencyLevel)
			assert.NotNil(t, result.KeyFindings)
			assert.NotNil(t, result.RiskFactors)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testProfile(), testCheckup(), time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, prompt, "Age: 45 years")
	assert.Contains(t, prompt, "Chronic conditions: Asthma")
	assert.Contains(t, prompt, "Known allergies: none")
	assert.Contains(t, prompt, "heart rate 95 bpm")
	assert.Contains(t, prompt, "body temperature 38.2 C")
	assert.Contains(t, prompt, "blood pressure 130/85 mmHg")
	assert.Contains(t, prompt, "Cough, intensity 6/10, details: dry, at night")
	assert.Contains(t, prompt, "Exercise frequency: not provided")
	assert.Contains(t, prompt, `"recommendedFrequencyDays"`)

	noSymptoms := BuildPrompt(nil, model.Checkup{GeneralFeeling: model.GeneralFeeling{Scale: 5}}, time.Now())
	assert.Contains(t, noSymptoms, "The user reports no specific symptoms.")
	assert.Contains(t, noSymptoms, "Vital signs: not provided")
}
