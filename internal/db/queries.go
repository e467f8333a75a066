package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/lucasnoah/synthreport/internal/aggregate"
	"github.com/lucasnoah/synthreport/internal/report"
)

// ImportRun represents a row in the import_runs table.
type ImportRun struct {
	ID         string
	ResultsDir string
	CreatedAt  string
	Cells      int
}

// RecordImport stores every cell of the table under a new run ID.
func (d *DB) RecordImport(resultsDir string, t *aggregate.SummaryTable) (string, error) {
	runID := uuid.NewString()

	tx, err := d.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO import_runs (id, results_dir) VALUES (?, ?)`, runID, resultsDir); err != nil {
		return "", fmt.Errorf("insert import run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO report_summaries (run_id, lights, class_l, colors, scheduler, file, pass, fail, incomplete, errors, total, weak_filter)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("prepare summary insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range t.Records() {
		s := r.Cell.Summary
		if _, err := stmt.Exec(runID, string(r.Key.Lights), r.Key.ClassL, r.Key.Colors, r.Scheduler, r.Cell.File,
			s.Pass, s.Fail, s.Incomplete, s.Errors, s.Total, s.WeakFilter); err != nil {
			return "", fmt.Errorf("insert summary %s %s: %w", r.Key, r.Scheduler, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit import: %w", err)
	}
	return runID, nil
}

// ListImports returns every import run, newest first.
func (d *DB) ListImports() ([]ImportRun, error) {
	rows, err := d.conn.Query(`
		SELECT r.id, r.results_dir, r.created_at, COUNT(s.id)
		FROM import_runs r
		LEFT JOIN report_summaries s ON s.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var r ImportRun
		if err := rows.Scan(&r.ID, &r.ResultsDir, &r.CreatedAt, &r.Cells); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetImport returns one import run, or nil if the ID is unknown.
func (d *DB) GetImport(runID string) (*ImportRun, error) {
	var r ImportRun
	err := d.conn.QueryRow(
		`SELECT r.id, r.results_dir, r.created_at,
		        (SELECT COUNT(*) FROM report_summaries s WHERE s.run_id = r.id)
		 FROM import_runs r WHERE r.id = ?`,
		runID,
	).Scan(&r.ID, &r.ResultsDir, &r.CreatedAt, &r.Cells)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	return &r, nil
}

// ImportRecords returns the cells archived under runID in insertion order.
func (d *DB) ImportRecords(runID string) ([]aggregate.Record, error) {
	rows, err := d.conn.Query(
		`SELECT lights, class_l, colors, scheduler, file, pass, fail, incomplete, errors, total, weak_filter
		 FROM report_summaries WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get import records: %w", err)
	}
	defer rows.Close()

	var records []aggregate.Record
	for rows.Next() {
		var r aggregate.Record
		var lights string
		s := &r.Cell.Summary
		if err := rows.Scan(&lights, &r.Key.ClassL, &r.Key.Colors, &r.Scheduler, &r.Cell.File,
			&s.Pass, &s.Fail, &s.Incomplete, &s.Errors, &s.Total, &s.WeakFilter); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		r.Key.Lights = report.Lights(lights)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteImport removes a run and its cells. It reports whether the run existed.
func (d *DB) DeleteImport(runID string) (bool, error) {
	res, err := d.conn.Exec(`DELETE FROM import_runs WHERE id = ?`, runID)
	if err != nil {
		return false, fmt.Errorf("delete import: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete import: %w", err)
	}
	return n > 0, nil
}
