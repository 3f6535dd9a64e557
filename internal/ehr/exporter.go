// Package ehr pushes packet summaries into a hospital reporting database
// (SQL Server). Export is one-way and best-effort: the packet service is the
// system of record, the EHR table is a convenience projection.
package ehr

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver

	"github.com/evidify/platform/internal/shared/metrics"
)

// Config holds the reporting database settings.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Encrypt  bool

	// SummaryTable is the fully qualified target table.
	SummaryTable string

	// Timeout bounds each export statement.
	Timeout time.Duration
}

// DefaultConfig returns the default exporter configuration.
func DefaultConfig() Config {
	return Config{
		Port:         1433,
		SummaryTable: "dbo.PacketSummaries",
		Timeout:      5 * time.Second,
	}
}

// PacketSummary is the row written per generated packet. It carries derived
// values only; clinical content and raw identifiers stay out of the EHR.
type PacketSummary struct {
	PacketID        string
	CaseID          string
	SessionID       string
	GeneratedAt     time.Time
	LiabilityLevel  string
	Compliance      string
	DifficultyScore int
	ChainStatus     string
}

// Exporter writes packet summaries to the reporting database.
type Exporter struct {
	db     *sql.DB
	config Config
}

// New opens the reporting database connection and verifies it.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	connStr := fmt.Sprintf("server=%s;port=%d;database=%s;user id=%s;password=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password)
	if cfg.Encrypt {
		connStr += ";encrypt=true;TrustServerCertificate=true"
	}

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open reporting database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping reporting database: %w", err)
	}

	return &Exporter{db: db, config: cfg}, nil
}

// ExportSummary inserts one packet summary. Errors are logged, never
// returned: callers fire this after the packet is already persisted.
func (e *Exporter) ExportSummary(s PacketSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), e.config.Timeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s
			(PacketID, CaseID, SessionID, GeneratedAt,
			 LiabilityLevel, ComplianceStatus, DifficultyScore, ChainStatus)
		VALUES
			(@packetID, @caseID, @sessionID, @generatedAt,
			 @liability, @compliance, @difficulty, @chainStatus)
	`, e.config.SummaryTable)

	_, err := e.db.ExecContext(ctx, query,
		sql.Named("packetID", s.PacketID),
		sql.Named("caseID", s.CaseID),
		sql.Named("sessionID", s.SessionID),
		sql.Named("generatedAt", s.GeneratedAt),
		sql.Named("liability", s.LiabilityLevel),
		sql.Named("compliance", s.Compliance),
		sql.Named("difficulty", s.DifficultyScore),
		sql.Named("chainStatus", s.ChainStatus),
	)
	if err != nil {
		log.Printf("EHR export failed for packet %s: %v", s.PacketID, err)
	}
	metrics.RecordEHRExport(err == nil)
}

// Health checks reporting database connectivity.
func (e *Exporter) Health(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Close closes the database connection.
func (e *Exporter) Close() error {
	return e.db.Close()
}
