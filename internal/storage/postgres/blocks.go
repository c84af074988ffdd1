package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
)

const blockColumns = `id, user_id, org_id, name, start_time, end_time, day_of_week, workdays, energy, is_break, is_active, created_at`

func (s *Store) AddTimeBlock(b models.TimeBlock) error {
	_, err := s.db.Exec(`
		INSERT INTO time_blocks (`+blockColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.UserID, b.OrgID, b.Name, b.Start, b.End,
		weekdayValue(b.DayOfWeek), b.Workdays, string(b.Energy), b.IsBreak, b.IsActive, b.CreatedAt,
	)
	return err
}

func (s *Store) AddTimeBlocks(blocks []models.TimeBlock) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if _, err := tx.Exec(`
			INSERT INTO time_blocks (`+blockColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			b.ID, b.UserID, b.OrgID, b.Name, b.Start, b.End,
			weekdayValue(b.DayOfWeek), b.Workdays, string(b.Energy), b.IsBreak, b.IsActive, b.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetTimeBlock(id string) (models.TimeBlock, error) {
	row := s.db.QueryRow(`SELECT `+blockColumns+` FROM time_blocks WHERE id = $1`, id)
	b, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeBlock{}, &apperr.NotFoundError{Kind: "block", ID: id}
	}
	return b, err
}

func (s *Store) GetActiveTimeBlocks(userID string) ([]models.TimeBlock, error) {
	rows, err := s.db.Query(`
		SELECT `+blockColumns+` FROM time_blocks
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY start_time`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []models.TimeBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *Store) UpdateTimeBlock(b models.TimeBlock) error {
	res, err := s.db.Exec(`
		UPDATE time_blocks
		SET name = $1, start_time = $2, end_time = $3, day_of_week = $4, workdays = $5,
		    energy = $6, is_break = $7, is_active = $8
		WHERE id = $9`,
		b.Name, b.Start, b.End, weekdayValue(b.DayOfWeek), b.Workdays,
		string(b.Energy), b.IsBreak, b.IsActive, b.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "block", b.ID)
}

func (s *Store) DeactivateTimeBlock(id string) error {
	res, err := s.db.Exec(`UPDATE time_blocks SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "block", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row rowScanner) (models.TimeBlock, error) {
	var b models.TimeBlock
	var dayOfWeek sql.NullInt64
	var energy string

	err := row.Scan(
		&b.ID, &b.UserID, &b.OrgID, &b.Name, &b.Start, &b.End,
		&dayOfWeek, &b.Workdays, &energy, &b.IsBreak, &b.IsActive, &b.CreatedAt,
	)
	if err != nil {
		return models.TimeBlock{}, err
	}

	b.Energy = models.EnergyLevel(energy)
	if dayOfWeek.Valid {
		wd := time.Weekday(dayOfWeek.Int64)
		b.DayOfWeek = &wd
	}
	return b, nil
}

func weekdayValue(wd *time.Weekday) interface{} {
	if wd == nil {
		return nil
	}
	return int(*wd)
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &apperr.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
