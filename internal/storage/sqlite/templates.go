package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
)

func (s *Store) AddDayTemplate(t models.DayTemplate) error {
	blocks, err := json.Marshal(t.Blocks)
	if err != nil {
		return fmt.Errorf("failed to encode template blocks: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO day_templates (id, user_id, org_id, name, version, blocks, applied_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.OrgID, t.Name, t.Version, string(blocks), t.AppliedCount, t.CreatedAt,
	)
	return err
}

func (s *Store) UpdateDayTemplate(t models.DayTemplate) error {
	blocks, err := json.Marshal(t.Blocks)
	if err != nil {
		return fmt.Errorf("failed to encode template blocks: %w", err)
	}
	res, err := s.db.Exec(`
		UPDATE day_templates SET name = ?, blocks = ? WHERE id = ?`,
		t.Name, string(blocks), t.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "template", t.ID)
}

func (s *Store) GetDayTemplate(id string) (models.DayTemplate, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, org_id, name, version, blocks, applied_count, created_at
		FROM day_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DayTemplate{}, &apperr.NotFoundError{Kind: "template", ID: id}
	}
	return t, err
}

func (s *Store) GetDayTemplates(userID string) ([]models.DayTemplate, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, org_id, name, version, blocks, applied_count, created_at
		FROM day_templates WHERE user_id = ?
		ORDER BY name, version`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.DayTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Store) ApplyDayTemplate(templateID string, blocks []models.TimeBlock) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if _, err := tx.Exec(`
			INSERT INTO time_blocks (`+blockColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, b.OrgID, b.Name, b.Start, b.End,
			weekdayValue(b.DayOfWeek), b.Workdays, string(b.Energy), b.IsBreak, b.IsActive, b.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	res, err := tx.Exec(`UPDATE day_templates SET applied_count = applied_count + 1 WHERE id = ?`, templateID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n == 0 {
		_ = tx.Rollback()
		return &apperr.NotFoundError{Kind: "template", ID: templateID}
	}
	return tx.Commit()
}

func scanTemplate(row rowScanner) (models.DayTemplate, error) {
	var t models.DayTemplate
	var blocks string
	err := row.Scan(&t.ID, &t.UserID, &t.OrgID, &t.Name, &t.Version, &blocks, &t.AppliedCount, &t.CreatedAt)
	if err != nil {
		return models.DayTemplate{}, err
	}
	if err := json.Unmarshal([]byte(blocks), &t.Blocks); err != nil {
		return models.DayTemplate{}, fmt.Errorf("failed to decode template blocks: %w", err)
	}
	return t, nil
}

func (s *Store) GetAllocationFingerprint(userID, date string) (string, error) {
	var hash string
	err := s.db.QueryRow(`
		SELECT input_hash FROM allocation_runs WHERE user_id = ? AND scheduled_date = ?`,
		userID, date).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

func (s *Store) SaveAllocationFingerprint(userID, date, hash string) error {
	_, err := s.db.Exec(`
		INSERT INTO allocation_runs (user_id, scheduled_date, input_hash, created_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(user_id, scheduled_date) DO UPDATE SET
			input_hash = excluded.input_hash,
			created_at = excluded.created_at`,
		userID, date, hash,
	)
	return err
}
