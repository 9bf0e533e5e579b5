package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/settlex-hq/settlex-settler/pkg/models"
)

// Store persists payroll history and templates locally. It is a UI
// convenience; the chain remains the authority for what was paid.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// AppendRecord inserts one resolved run into the history.
func (s *Store) AppendRecord(record models.PayrollRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO payroll_history
		(id, date, employees, total, fee, tx_hash, status, settlement_time)
		VALUES (?,?,?,?,?,?,?,?)`,
		record.ID, record.Date.Format(time.RFC3339), record.Employees,
		record.Total, record.Fee, record.TxHash, record.Status, record.SettlementTime,
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// History returns the most recent runs, newest first.
func (s *Store) History(limit int) ([]models.PayrollRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, date, employees, total, fee, tx_hash, status, settlement_time
		FROM payroll_history ORDER BY date DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []models.PayrollRecord
	for rows.Next() {
		var rec models.PayrollRecord
		var date string
		if err := rows.Scan(&rec.ID, &date, &rec.Employees, &rec.Total,
			&rec.Fee, &rec.TxHash, &rec.Status, &rec.SettlementTime); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.Date, _ = time.Parse(time.RFC3339, date)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveTemplate persists a named batch of intents. A zero ID gets assigned.
func (s *Store) SaveTemplate(tpl *models.PayrollTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}
	intents, err := json.Marshal(tpl.Intents)
	if err != nil {
		return fmt.Errorf("marshal template intents: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO payroll_templates (id, name, created_at, intents)
		VALUES (?,?,?,?)`,
		tpl.ID, tpl.Name, tpl.CreatedAt.Format(time.RFC3339), string(intents),
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// Template loads one template by ID.
func (s *Store) Template(id string) (*models.PayrollTemplate, error) {
	row := s.db.QueryRow(
		`SELECT id, name, created_at, intents FROM payroll_templates WHERE id = ?`, id,
	)
	tpl, err := scanTemplate(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %s not found", id)
	}
	return tpl, err
}

// Templates lists all saved templates, newest first.
func (s *Store) Templates() ([]models.PayrollTemplate, error) {
	rows, err := s.db.Query(
		`SELECT id, name, created_at, intents FROM payroll_templates ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var templates []models.PayrollTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes one template by ID.
func (s *Store) DeleteTemplate(id string) error {
	res, err := s.db.Exec(`DELETE FROM payroll_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s not found", id)
	}
	return nil
}

func scanTemplate(scan func(...any) error) (*models.PayrollTemplate, error) {
	var tpl models.PayrollTemplate
	var createdAt, intents string
	if err := scan(&tpl.ID, &tpl.Name, &createdAt, &intents); err != nil {
		return nil, err
	}
	tpl.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if err := json.Unmarshal([]byte(intents), &tpl.Intents); err != nil {
		return nil, fmt.Errorf("unmarshal template intents: %w", err)
	}
	return &tpl, nil
}
