package packet

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evidify/platform/internal/shared/errors"
	"github.com/evidify/platform/internal/shared/metrics"
)

// Summary is the listing projection of a stored packet.
type Summary struct {
	ID             string `json:"id"`
	CaseID         string `json:"case_id"`
	SessionID      string `json:"session_id"`
	GeneratedAt    string `json:"generated_at"`
	LiabilityLevel string `json:"liability_level"`
	Compliance     string `json:"compliance_status"`
}

// Store persists generated packets. The pipeline itself never persists;
// storage happens at the service boundary after generation.
type Store interface {
	Save(ctx context.Context, p *Packet) error
	Get(ctx context.Context, id string) (*Packet, error)
	ListByCase(ctx context.Context, caseID string, limit int) ([]Summary, error)
}

// Repository is the Postgres-backed packet store. The full packet is kept
// as JSONB; indexed columns carry the fields queries filter on.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new packet repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts a generated packet. Packets are immutable: a duplicate id is
// a conflict, never an update.
func (r *Repository) Save(ctx context.Context, p *Packet) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "failed to marshal packet")
	}

	defer func(start time.Time) {
		metrics.RecordDBQuery("packet_save", time.Since(start))
	}(time.Now())

	_, err = r.pool.Exec(ctx, `
		INSERT INTO packets.packets
			(id, case_id, session_id, clinician_pseudonym, generated_at,
			 liability_level, compliance_status, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.CaseID, p.SessionID, p.ClinicianPseudonym, p.GeneratedAt,
		string(p.Executive.LiabilityLevel), string(p.Compliance.Status), payload)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Conflict("packet already exists")
		}
		return errors.Wrap(err, "failed to save packet")
	}
	return nil
}

// Get loads a packet by id.
func (r *Repository) Get(ctx context.Context, id string) (*Packet, error) {
	defer func(start time.Time) {
		metrics.RecordDBQuery("packet_get", time.Since(start))
	}(time.Now())

	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload FROM packets.packets WHERE id = $1
	`, id).Scan(&payload)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, errors.NotFound("packet", id)
		}
		return nil, errors.Wrap(err, "failed to load packet")
	}

	var p Packet
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal packet")
	}
	return &p, nil
}

// ListByCase returns packet summaries for a case, newest first.
func (r *Repository) ListByCase(ctx context.Context, caseID string, limit int) ([]Summary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	defer func(start time.Time) {
		metrics.RecordDBQuery("packet_list", time.Since(start))
	}(time.Now())

	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, session_id, generated_at::text,
		       liability_level, compliance_status
		FROM packets.packets
		WHERE case_id = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`, caseID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list packets")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.CaseID, &s.SessionID, &s.GeneratedAt,
			&s.LiabilityLevel, &s.Compliance); err != nil {
			return nil, errors.Wrap(err, "failed to scan packet summary")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MemoryStore is the in-memory packet store used in development mode when
// no database is available, and by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	packets map[string]*Packet
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{packets: make(map[string]*Packet)}
}

func (m *MemoryStore) Save(ctx context.Context, p *Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.packets[p.ID]; ok {
		return errors.Conflict("packet already exists")
	}
	m.packets[p.ID] = p
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Packet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.packets[id]
	if !ok {
		return nil, errors.NotFound("packet", id)
	}
	return p, nil
}

func (m *MemoryStore) ListByCase(ctx context.Context, caseID string, limit int) ([]Summary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*Packet
	for _, p := range m.packets {
		if p.CaseID == caseID {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].GeneratedAt.After(matched[j].GeneratedAt)
	})

	var out []Summary
	for _, p := range matched {
		if len(out) >= limit {
			break
		}
		out = append(out, Summary{
			ID:             p.ID,
			CaseID:         p.CaseID,
			SessionID:      p.SessionID,
			GeneratedAt:    p.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
			LiabilityLevel: string(p.Executive.LiabilityLevel),
			Compliance:     string(p.Compliance.Status),
		})
	}
	return out, nil
}
