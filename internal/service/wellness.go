package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/audit"
	"github.com/ayni-health/backend/internal/azure"
	"github.com/ayni-health/backend/internal/pdf"
	"github.com/ayni-health/backend/internal/repository"
	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/internal/schedule"
	"github.com/ayni-health/backend/pkg/model"
)

// ErrProfileNotFound is returned when a user has not saved a profile yet
var ErrProfileNotFound = errors.New("profile not found")

// AnalyzerInterface produces the AI explanation of a checkup. It must not fail.
type AnalyzerInterface interface {
	Analyze(ctx context.Context, profile *model.UserProfile, checkup model.Checkup) model.AnalysisResult
}

// AuditLoggerInterface records data access for the audit trail
type AuditLoggerInterface interface {
	Log(ctx context.Context, entry audit.AuditLog) error
}

// ReportGeneratorInterface renders the PDF history report
type ReportGeneratorInterface interface {
	Generate(data *pdf.ReportData) ([]byte, error)
}

// Config tunes the wellness service
type Config struct {
	HistoryLimit  int
	SeedFromStore bool
	ScheduleTick  time.Duration
}

// session is the in-memory state of one user. Its mutex makes it the single writer of the history.
type session struct {
	mu      sync.Mutex
	profile *model.UserProfile
	history []model.HistoryEntry
	loaded  bool
}

// WellnessService ties risk scoring, AI analysis, history and scheduling together per user
type WellnessService struct {
	cfg      Config
	analyzer AnalyzerInterface
	store    repository.HistoryStore
	reports  ReportGeneratorInterface
	audit    AuditLoggerInterface
	archive  azure.BlobStorage
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	mu       sync.Mutex
	sessions map[string]*session
}

// NewWellnessService creates a new WellnessService. store may be nil to keep history in memory only.
func NewWellnessService(cfg Config, analyzer AnalyzerInterface, store repository.HistoryStore, reports ReportGeneratorInterface, logger *zap.Logger) *WellnessService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = schedule.DefaultHistoryLimit
	}
	if cfg.ScheduleTick <= 0 {
		cfg.ScheduleTick = time.Minute
	}
	return &WellnessService{
		cfg:      cfg,
		analyzer: analyzer,
		store:    store,
		reports:  reports,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*session),
	}
}

// WithAudit enables the audit trail
func (s *WellnessService) WithAudit(a AuditLoggerInterface) *WellnessService {
	s.audit = a
	return s
}

// WithReportArchive stores a copy of every generated report in blob storage
func (s *WellnessService) WithReportArchive(b azure.BlobStorage) *WellnessService {
	s.archive = b
	return s
}

// WithClock replaces the wall clock
func (s *WellnessService) WithClock(now func() time.Time) *WellnessService {
	s.now = now
	return s
}

// WithIDGenerator replaces the uuid generator of history entries
func (s *WellnessService) WithIDGenerator(newID func() string) *WellnessService {
	s.newID = newID
	return s
}

// session returns the locked session of userID, seeding its history from the store on first use.
// The caller must unlock it.
func (s *WellnessService) session(ctx context.Context, userID string) *session {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{history: []model.HistoryEntry{}}
		s.sessions[userID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if !sess.loaded {
		sess.loaded = true
		if s.cfg.SeedFromStore && s.store != nil {
			entries, err := s.store.Load(ctx, userID)
			if err != nil {
				s.logger.Warn("failed to load stored history, starting empty",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			} else {
				sess.history = schedule.Normalize(entries, s.cfg.HistoryLimit)
			}
		}
	}
	return sess
}

// snapshot returns the profile and history of userID as of now
func (s *WellnessService) snapshot(ctx context.Context, userID string) (*model.UserProfile, []model.HistoryEntry) {
	sess := s.session(ctx, userID)
	defer sess.mu.Unlock()
	return sess.profile, sess.history
}

// SetProfile validates and stores the profile, returning its fresh risk assessment
func (s *WellnessService) SetProfile(ctx context.Context, userID string, profile model.UserProfile) (*risk.Assessment, error) {
	now := s.now()

	assessment, err := risk.Assess(&profile, now)
	if err != nil {
		return nil, err
	}
	profile.UserID = userID

	sess := s.session(ctx, userID)
	existed := sess.profile != nil
	sess.profile = &profile
	sess.mu.Unlock()

	s.logger.Info("profile saved",
		zap.String("user_id", userID),
		zap.Int("risk_score", assessment.RiskScore),
		zap.String("risk_level", string(assessment.RiskLevel)),
	)

	op := audit.OperationCreate
	if existed {
		op = audit.OperationUpdate
	}
	s.record(ctx, audit.AuditLog{UserID: userID, OperationType: op, ResourceType: audit.ResourceProfile})

	return assessment, nil
}

// Profile returns the stored profile of userID
func (s *WellnessService) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, _ := s.snapshot(ctx, userID)
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	p := *profile
	return &p, nil
}

// Assess scores the stored profile of userID. The assessment is recomputed on every call.
func (s *WellnessService) Assess(ctx context.Context, userID string) (*risk.Assessment, error) {
	profile, _ := s.snapshot(ctx, userID)
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return risk.Assess(profile, s.now())
}

// SubmitCheckup analyses a checkup and appends it to the user's history
func (s *WellnessService) SubmitCheckup(ctx context.Context, userID string, checkup model.Checkup) (*model.HistoryEntry, error) {
	if err := checkup.Validate(); err != nil {
		return nil, err
	}

	profile, _ := s.snapshot(ctx, userID)

	start := time.Now()
	result := s.analyzer.Analyze(ctx, profile, checkup)
	s.logger.Info("checkup analysed",
		zap.String("user_id", userID),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Duration("processing_time", time.Since(start)),
	)

	entry := schedule.NewEntry(s.newID(), checkup, result, s.now())
	s.append(ctx, userID, entry)

	s.record(ctx, audit.AuditLog{
		UserID:        userID,
		OperationType: audit.OperationCreate,
		ResourceType:  audit.ResourceCheckup,
		ResourceID:    entry.ID,
	})
	return &entry, nil
}

// AddAnalysis appends an analysis produced elsewhere, for example by a client-side model
func (s *WellnessService) AddAnalysis(ctx context.Context, userID string, checkup model.Checkup, result model.AnalysisResult) (*model.HistoryEntry, error) {
	if err := checkup.Validate(); err != nil {
		return nil, err
	}
	if !result.RiskLevel.Valid() {
		return nil, &model.ValidationError{Field: "result.riskLevel", Reason: "must be normal, warning or alert"}
	}
	if result.UrgencyLevel != "" && !result.UrgencyLevel.Valid() {
		return nil, &model.ValidationError{Field: "result.urgencyLevel", Reason: "must be routine, priority or urgent"}
	}
	if f := result.RecommendedFrequencyDays; f != nil && *f < 1 {
		return nil, &model.ValidationError{Field: "result.recommendedFrequencyDays", Reason: "must be at least 1"}
	}

	entry := schedule.NewEntry(s.newID(), checkup, result, s.now())
	s.append(ctx, userID, entry)

	s.record(ctx, audit.AuditLog{
		UserID:        userID,
		OperationType: audit.OperationCreate,
		ResourceType:  audit.ResourceAnalysis,
		ResourceID:    entry.ID,
	})
	return &entry, nil
}

// append adds entry under the session lock and persists the capped history
func (s *WellnessService) append(ctx context.Context, userID string, entry model.HistoryEntry) {
	sess := s.session(ctx, userID)
	defer sess.mu.Unlock()

	sess.history = schedule.Append(sess.history, entry, s.cfg.HistoryLimit)
	s.persist(ctx, userID, sess.history)
}

// persist is best effort: a failed save is logged and the in-memory history stays authoritative
func (s *WellnessService) persist(ctx context.Context, userID string, history []model.HistoryEntry) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, userID, history); err != nil {
		s.logger.Warn("failed to persist history",
			zap.String("user_id", userID),
			zap.Int("entries", len(history)),
			zap.Error(err),
		)
	}
}

// ClearHistory removes every entry of the user from memory and storage
func (s *WellnessService) ClearHistory(ctx context.Context, userID string) error {
	sess := s.session(ctx, userID)
	sess.history = []model.HistoryEntry{}
	if s.store != nil {
		if err := s.store.Clear(ctx, userID); err != nil {
			s.logger.Warn("failed to clear stored history", zap.String("user_id", userID), zap.Error(err))
		}
	}
	sess.mu.Unlock()

	s.record(ctx, audit.AuditLog{UserID: userID, OperationType: audit.OperationDelete, ResourceType: audit.ResourceHistory})
	return nil
}

// record writes an audit entry when auditing is enabled. Failures are logged only.
func (s *WellnessService) record(ctx context.Context, entry audit.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log",
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.OperationType)),
			zap.Error(err),
		)
	}
}
