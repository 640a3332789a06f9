package integration_tests

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/ai"
	"github.com/ayni-health/backend/internal/audit"
	"github.com/ayni-health/backend/internal/azure"
	"github.com/ayni-health/backend/internal/handler"
	"github.com/ayni-health/backend/internal/middleware"
	"github.com/ayni-health/backend/internal/pdf"
	"github.com/ayni-health/backend/internal/repository"
	"github.com/ayni-health/backend/internal/security"
	"github.com/ayni-health/backend/internal/service"
	"github.com/ayni-health/backend/pkg/model"
)

// fakeCompleter answers every prompt with a fixed analysis
type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	return f.response, f.err
}

const analysisJSON = "```json\n" + `{
	"riskLevel": "warning",
	"explanation": "Your temperature is slightly elevated.",
	"recommendations": ["Rest", "Drink fluids"],
	"keyFindings": ["Temperature 37.9 C"],
	"urgencyLevel": "priority",
	"recommendedFrequencyDays": 2
}` + "\n```"

const profileBody = `{
	"name": "Integration User",
	"birthDate": "1980-05-20",
	"height": 180,
	"weight": 80,
	"chronicConditions": ["Asthma"],
	"smokingStatus": "former",
	"exerciseFrequency": "rarely",
	"alcoholConsumption": "light"
}`

const checkupBody = `{"generalFeeling":{"scale":3,"tags":["tired"]},"vitals":{"temperature":37.9,"heartRate":88},"hasSymptoms":true,"symptoms":[{"name":"Sore throat","intensity":4}]}`

type app struct {
	router  *gin.Engine
	archive *azure.MockBlobStorageClient
}

func newApp(t *testing.T, store repository.HistoryStore, completer ai.Completer) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	archive := azure.NewMockBlobStorageClient(logger)
	svc := service.NewWellnessService(service.Config{SeedFromStore: true}, ai.NewAnalyzer(completer, logger), store, pdf.NewPDFGenerator(logger), logger).
		WithAudit(audit.NewLogger(nil, logger)).
		WithReportArchive(archive)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger), middleware.RequestIDMiddleware(), middleware.RequestLoggingMiddleware(logger))
	handler.RegisterRoutes(router, handler.NewWellnessHandler(svc, logger), handler.NewHealthHandler(nil, logger))
	return &app{router: router, archive: archive}
}

func (a *app) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func newEncryptedRedisStore(t *testing.T) (*repository.RedisHistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := repository.NewRedisClient(context.Background(), repository.RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	enc, err := security.NewEncryptor(key)
	require.NoError(t, err)

	return repository.NewRedisHistoryStore(client, "", 0, repository.NewCodec(enc), zap.NewNop()), mr
}

// TestWellnessFlowIntegration walks a user through profile, checkups, exports and a restart
func TestWellnessFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	store, mr := newEncryptedRedisStore(t)
	a := newApp(t, store, &fakeCompleter{response: analysisJSON})
	base := "/api/v1/users/integration-user"

	// Step 1: Save the profile
	w := a.do(t, http.MethodPut, base+"/profile", profileBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Step 2: Submit two checkups
	for i := 0; i < 2; i++ {
		w = a.do(t, http.MethodPost, base+"/checkups", checkupBody)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// Step 3: The stored payload is encrypted
	raw, err := mr.Get(repository.Key("", "integration-user"))
	require.NoError(t, err)
	assert.NotContains(t, raw, "Sore throat")

	// Step 4: The schedule follows the latest analysis
	w = a.do(t, http.MethodGet, base+"/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)
	var plan map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, "history", plan["source"])
	assert.EqualValues(t, 2, plan["frequencyDays"])
	assert.EqualValues(t, 1, plan["streak"])

	// Step 5: The report is archived
	w = a.do(t, http.MethodGet, base+"/history/report.pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, a.archive.ListBlobs(), 1)

	// Step 6: A fresh process seeds its history from the store
	restarted := newApp(t, store, &fakeCompleter{response: analysisJSON})
	w = restarted.do(t, http.MethodGet, base+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page service.HistoryPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "Sore throat", page.Entries[0].Symptoms[0].Name)

	// Step 7: Clearing removes the stored key
	w = restarted.do(t, http.MethodDelete, base+"/history", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, mr.Exists(repository.Key("", "integration-user")))
}

// TestProviderOutageIntegration checks that a failing AI provider still records a fallback analysis
func TestProviderOutageIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	store, _ := newEncryptedRedisStore(t)
	a := newApp(t, store, &fakeCompleter{err: context.DeadlineExceeded})
	base := "/api/v1/users/outage-user"

	w := a.do(t, http.MethodPost, base+"/checkups", checkupBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var entry model.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, ai.FallbackResult().RiskLevel, entry.Result.RiskLevel)
	assert.Equal(t, ai.FallbackResult().UrgencyLevel, entry.Result.UrgencyLevel)

	w = a.do(t, http.MethodGet, base+"/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"history"`)
	assert.Contains(t, w.Body.String(), `"frequencyDays":7`)
}
