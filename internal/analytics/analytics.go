package analytics

import (
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/lucasnoah/synthreport/internal/report"
)

// DB is the interface for database queries used by analytics.
type DB interface {
	Conn() *sql.DB
}

// LatestRunID returns the newest archived import, or "" when the archive is empty.
func LatestRunID(database DB) (string, error) {
	var id string
	err := database.Conn().QueryRow(
		`SELECT id FROM import_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return id, nil
}

// SchedulerPassRate aggregates one scheduler over every configuration of a run.
type SchedulerPassRate struct {
	Scheduler string  `json:"scheduler"`
	Configs   int     `json:"configs"`
	Pass      int     `json:"pass"`
	Total     int     `json:"total"`
	PassPct   float64 `json:"pass_pct"`
	Solved    int     `json:"solved_configs"`
	Weak      int     `json:"weak_filter_configs"`
	Attention int     `json:"attention_configs"`
}

// QuerySchedulerPassRates sums pass and total counts per scheduler.
// Solved counts configurations with at least one passing algorithm;
// Attention counts reports with errors or incomplete searches.
func QuerySchedulerPassRates(database DB, runID string) ([]SchedulerPassRate, error) {
	rows, err := database.Conn().Query(`
		SELECT scheduler,
			COUNT(*),
			SUM(pass),
			SUM(total),
			SUM(CASE WHEN pass > 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN weak_filter THEN 1 ELSE 0 END),
			SUM(CASE WHEN errors > 0 OR incomplete > 0 THEN 1 ELSE 0 END)
		FROM report_summaries
		WHERE run_id = ?
		GROUP BY scheduler`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scheduler pass rates: %w", err)
	}
	defer rows.Close()

	var results []SchedulerPassRate
	for rows.Next() {
		var r SchedulerPassRate
		if err := rows.Scan(&r.Scheduler, &r.Configs, &r.Pass, &r.Total, &r.Solved, &r.Weak, &r.Attention); err != nil {
			return nil, fmt.Errorf("scan scheduler pass rate: %w", err)
		}
		r.PassPct = pct(r.Pass, r.Total)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Scheduler < results[j].Scheduler
	})
	return results, nil
}

// ModelPassRate aggregates one (lights, class L) group over colors and schedulers.
type ModelPassRate struct {
	Lights  string  `json:"lights"`
	ClassL  bool    `json:"class_l"`
	Cells   int     `json:"cells"`
	Pass    int     `json:"pass"`
	Total   int     `json:"total"`
	PassPct float64 `json:"pass_pct"`
}

// QueryModelPassRates groups a run by light model and class L.
func QueryModelPassRates(database DB, runID string) ([]ModelPassRate, error) {
	rows, err := database.Conn().Query(`
		SELECT lights, class_l, COUNT(*), SUM(pass), SUM(total)
		FROM report_summaries
		WHERE run_id = ?
		GROUP BY lights, class_l
		ORDER BY CASE lights WHEN 'full' THEN 0 WHEN 'external' THEN 1 ELSE 2 END, class_l DESC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query model pass rates: %w", err)
	}
	defer rows.Close()

	var results []ModelPassRate
	for rows.Next() {
		var r ModelPassRate
		if err := rows.Scan(&r.Lights, &r.ClassL, &r.Cells, &r.Pass, &r.Total); err != nil {
			return nil, fmt.Errorf("scan model pass rate: %w", err)
		}
		r.PassPct = pct(r.Pass, r.Total)
		results = append(results, r)
	}
	return results, rows.Err()
}

// CellChange is a cell whose pass count differs between two runs. A nil
// count means the cell is absent from that run.
type CellChange struct {
	Lights    string `json:"lights"`
	ClassL    bool   `json:"class_l"`
	Colors    int    `json:"colors"`
	Scheduler string `json:"scheduler"`
	Before    *int   `json:"before"`
	After     *int   `json:"after"`
}

type cellKey struct {
	lights    string
	classL    bool
	colors    int
	scheduler string
}

func (k cellKey) change() CellChange {
	return CellChange{Lights: k.lights, ClassL: k.classL, Colors: k.colors, Scheduler: k.scheduler}
}

func loadRunCells(database DB, runID string) (map[cellKey]int, error) {
	rows, err := database.Conn().Query(
		`SELECT lights, class_l, colors, scheduler, pass FROM report_summaries WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	cells := make(map[cellKey]int)
	for rows.Next() {
		var k cellKey
		var pass int
		if err := rows.Scan(&k.lights, &k.classL, &k.colors, &k.scheduler, &pass); err != nil {
			return nil, fmt.Errorf("scan run %s: %w", runID, err)
		}
		cells[k] = pass
	}
	return cells, rows.Err()
}

// QueryRunDiff compares the pass counts of two runs cell by cell.
func QueryRunDiff(database DB, fromRun, toRun string) ([]CellChange, error) {
	before, err := loadRunCells(database, fromRun)
	if err != nil {
		return nil, err
	}
	after, err := loadRunCells(database, toRun)
	if err != nil {
		return nil, err
	}

	var changes []CellChange
	for k, b := range before {
		b := b
		c := k.change()
		c.Before = &b
		if a, ok := after[k]; ok {
			a := a
			if a == b {
				continue
			}
			c.After = &a
		}
		changes = append(changes, c)
	}
	for k, a := range after {
		a := a
		if _, ok := before[k]; ok {
			continue
		}
		c := k.change()
		c.After = &a
		changes = append(changes, c)
	}

	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]
		if a.Lights != b.Lights {
			return report.Lights(a.Lights).Rank() < report.Lights(b.Lights).Rank()
		}
		if a.ClassL != b.ClassL {
			return a.ClassL
		}
		if a.Colors != b.Colors {
			return a.Colors < b.Colors
		}
		return a.Scheduler < b.Scheduler
	})
	return changes, nil
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
