package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
	OperationRead   OperationType = "READ"
	OperationExport OperationType = "EXPORT"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceProfile  ResourceType = "profile"
	ResourceCheckup  ResourceType = "checkup"
	ResourceAnalysis ResourceType = "analysis"
	ResourceHistory  ResourceType = "analysis_history"
	ResourceReport   ResourceType = "report"
)

const schema = `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id              BIGSERIAL PRIMARY KEY,
		user_id         TEXT NOT NULL,
		operation_type  TEXT NOT NULL,
		resource_type   TEXT NOT NULL,
		resource_id     TEXT NOT NULL DEFAULT '',
		timestamp       TIMESTAMPTZ NOT NULL,
		ip_address      TEXT NOT NULL DEFAULT '',
		user_agent      TEXT NOT NULL DEFAULT '',
		additional_data JSONB
	)
`

// AuditLog represents an audit log entry
type AuditLog struct {
	UserID         string
	OperationType  OperationType
	ResourceType   ResourceType
	ResourceID     string
	Timestamp      time.Time
	IPAddress      string
	UserAgent      string
	AdditionalData map[string]interface{}
}

// Logger handles audit logging. Without a database pool entries only go to the structured log.
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	now    func() time.Time
}

// NewLogger creates a new audit logger. db may be nil.
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureSchema creates the audit table when a database is configured
func (l *Logger) EnsureSchema(ctx context.Context) error {
	if l.db == nil {
		return nil
	}
	if _, err := l.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}
	return nil
}

// Log creates an audit log entry
func (l *Logger) Log(ctx context.Context, entry AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	l.logger.Info("Audit log entry",
		zap.String("user_id", entry.UserID),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ip_address", entry.IPAddress),
	)

	if l.db == nil {
		return nil
	}

	var additional []byte
	if len(entry.AdditionalData) > 0 {
		var err error
		additional, err = json.Marshal(entry.AdditionalData)
		if err != nil {
			return fmt.Errorf("failed to marshal audit data: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (
			user_id, operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := l.db.Exec(ctx, query,
		entry.UserID,
		string(entry.OperationType),
		string(entry.ResourceType),
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		additional,
	)
	if err != nil {
		l.logger.Error("Failed to write audit log to database",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.OperationType)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}

// LogCreate logs a CREATE operation
func (l *Logger) LogCreate(ctx context.Context, userID string, resource ResourceType, resourceID string) error {
	return l.Log(ctx, AuditLog{
		UserID:        userID,
		OperationType: OperationCreate,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}

// LogUpdate logs an UPDATE operation
func (l *Logger) LogUpdate(ctx context.Context, userID string, resource ResourceType, resourceID string) error {
	return l.Log(ctx, AuditLog{
		UserID:        userID,
		OperationType: OperationUpdate,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}

// LogDelete logs a DELETE operation
func (l *Logger) LogDelete(ctx context.Context, userID string, resource ResourceType, resourceID string) error {
	return l.Log(ctx, AuditLog{
		UserID:        userID,
		OperationType: OperationDelete,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
}

// LogExport logs an EXPORT operation such as a CSV or PDF download
func (l *Logger) LogExport(ctx context.Context, userID string, resource ResourceType, format string) error {
	return l.Log(ctx, AuditLog{
		UserID:         userID,
		OperationType:  OperationExport,
		ResourceType:   resource,
		AdditionalData: map[string]interface{}{"format": format},
	})
}

// GetAuditLogs retrieves the most recent audit logs for a user
func (l *Logger) GetAuditLogs(ctx context.Context, userID string, limit int) ([]AuditLog, error) {
	if l.db == nil {
		return []AuditLog{}, nil
	}

	query := `
		SELECT user_id, operation_type, resource_type, resource_id,
		       timestamp, ip_address, user_agent
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := l.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := []AuditLog{}
	for rows.Next() {
		var log AuditLog
		var operation, resource string
		err := rows.Scan(
			&log.UserID,
			&operation,
			&resource,
			&log.ResourceID,
			&log.Timestamp,
			&log.IPAddress,
			&log.UserAgent,
		)
		if err != nil {
			l.logger.Error("Failed to scan audit log", zap.Error(err))
			continue
		}
		log.OperationType = OperationType(operation)
		log.ResourceType = ResourceType(resource)
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
