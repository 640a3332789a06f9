package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/ai"
	"github.com/ayni-health/backend/internal/azure"
	"github.com/ayni-health/backend/internal/config"
	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/pkg/model"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if cfg.AI.APIKey == "" {
		logger.Fatal("Missing AI credentials. Set AI_API_KEY (or AZURE_OPENAI_API_KEY with AZURE_OPENAI_ENDPOINT)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Test 1: AI analysis of a sample checkup
	logger.Info("=== Testing AI checkup analysis ===")
	if err := checkAnalysis(ctx, cfg.AI, logger); err != nil {
		logger.Error("AI analysis check failed", zap.Error(err))
	} else {
		logger.Info("AI analysis check passed")
	}

	// Test 2: Azure Blob Storage round-trip, only when credentials are present
	if cfg.Azure.AccountName != "" && cfg.Azure.AccountKey != "" {
		logger.Info("=== Testing Azure Blob Storage client ===")
		if err := checkBlobStorage(ctx, cfg.Azure, logger); err != nil {
			logger.Error("Blob storage check failed", zap.Error(err))
		} else {
			logger.Info("Blob storage check passed")
		}
	}

	logger.Info("=== All checks completed ===")
}

func sampleProfile() *model.UserProfile {
	return &model.UserProfile{
		Name:                      "Sample User",
		BirthDate:                 "1968-09-12",
		Sex:                       model.SexMale,
		HeightCm:                  178,
		WeightKg:                  92,
		ChronicConditions:         []string{"Hypertension"},
		Allergies:                 []string{"none"},
		SurgeriesOrPastIllnesses:  []string{"none"},
		MedicationsAndSupplements: []string{"Lisinopril"},
		SmokingStatus:             model.SmokingFormer,
		AlcoholConsumption:        model.AlcoholLight,
		ExerciseFrequency:         model.ExerciseRarely,
		DrugConsumption:           model.DrugsNone,
	}
}

func sampleCheckup() model.Checkup {
	heartRate, spo2 := 96, 95
	temperature := 37.8
	systolic, diastolic := 148, 94
	return model.Checkup{
		GeneralFeeling: model.GeneralFeeling{Scale: 2, Tags: []string{"tired"}},
		Vitals: model.Vitals{
			HeartRate:     &heartRate,
			SpO2:          &spo2,
			Temperature:   &temperature,
			BloodPressure: &model.BloodPressure{Systolic: &systolic, Diastolic: &diastolic},
		},
		HasSymptoms: true,
		Symptoms: []model.Symptom{
			{Name: "Headache", Intensity: 6, Details: "since this morning"},
		},
	}
}

func checkAnalysis(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) error {
	client, err := ai.NewClient(ai.Config{
		Provider:          cfg.Provider,
		Endpoint:          cfg.Endpoint,
		APIKey:            cfg.APIKey,
		Model:             cfg.Model,
		APIVersion:        cfg.APIVersion,
		Timeout:           cfg.Timeout,
		MaxRetries:        cfg.MaxRetries,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}

	profile := sampleProfile()
	assessment, err := risk.Assess(profile, time.Now())
	if err != nil {
		return fmt.Errorf("failed to assess sample profile: %w", err)
	}
	logger.Info("Sample profile assessed",
		zap.Int("risk_score", assessment.RiskScore),
		zap.String("risk_level", string(assessment.RiskLevel)),
		zap.Strings("risk_factors", assessment.RiskFactors),
	)

	start := time.Now()
	result, err := ai.NewAnalyzer(client, logger).AnalyzeStrict(ctx, profile, sampleCheckup())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	logger.Info("Analysis received",
		zap.Duration("processing_time", time.Since(start)),
		zap.String("result", string(pretty)),
	)
	return nil
}

func checkBlobStorage(ctx context.Context, cfg config.AzureConfig, logger *zap.Logger) error {
	client, err := azure.NewBlobStorageClient(azure.BlobConfig{
		AccountName:   cfg.AccountName,
		AccountKey:    cfg.AccountKey,
		ContainerName: cfg.HistoryContainer,
		ServiceURL:    cfg.ServiceURL,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create blob client: %w", err)
	}
	if err := client.EnsureContainer(ctx); err != nil {
		return err
	}

	name := fmt.Sprintf("checks/%d.txt", time.Now().UnixNano())
	payload := []byte("blob storage check")

	if err := client.Upload(ctx, name, payload, "text/plain"); err != nil {
		return err
	}
	downloaded, err := client.Download(ctx, name)
	if err != nil {
		return err
	}
	if string(downloaded) != string(payload) {
		return fmt.Errorf("downloaded content mismatch: got %q", downloaded)
	}
	return client.Delete(ctx, name)
}
