package schedule

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewStore creates a new discovery bookkeeping store.
func NewStore(db *sql.DB) ScheduleStore {
	return &store{
		db: db,
	}
}

// StartRun opens a new discovery run for a gameday.
func (s *store) StartRun(season string, gameday int) (*DiscoveryRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &DiscoveryRun{
		ID:        uuid.New().String(),
		Season:    season,
		Gameday:   gameday,
		StartedAt: time.Now().Unix(),
		Status:    RunStatusRunning,
	}

	_, err := s.db.Exec(`
		INSERT INTO gameday_runs (id, season, gameday, started_at, status)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Season, run.Gameday, run.StartedAt, string(run.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to start discovery run: %w", err)
	}

	log.Info("Started discovery run", "id", run.ID, "season", season, "gameday", gameday)
	return run, nil
}

// RecordMatchIDs replaces the match IDs recorded for a run, preserving
// the order they were discovered in.
func (s *store) RecordMatchIDs(runID string, matchIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM gameday_match_ids WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete existing match ids: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO gameday_match_ids (run_id, match_id, position) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match id insert: %w", err)
	}
	defer stmt.Close()

	for i, matchID := range matchIDs {
		if _, err = stmt.Exec(runID, matchID, i); err != nil {
			return fmt.Errorf("failed to insert match id %s: %w", matchID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match ids: %w", err)
	}

	log.Info("Recorded discovered match ids", "run_id", runID, "count", len(matchIDs))
	return nil
}

// CompleteRun marks a run as finished.
func (s *store) CompleteRun(runID string) error {
	return s.finishRun(runID, RunStatusCompleted, "")
}

// FailRun marks a run as failed and keeps the cause for inspection.
func (s *store) FailRun(runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.finishRun(runID, RunStatusFailed, msg)
}

func (s *store) finishRun(runID string, status RunStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE gameday_runs SET status = ?, completed_at = ?, error = ? WHERE id = ?
	`, string(status), time.Now().Unix(), errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	log.Info("Finished discovery run", "id", runID, "status", status)
	return nil
}

// LatestRun returns the most recently started run for a gameday.
func (s *store) LatestRun(season string, gameday int) (*DiscoveryRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, season, gameday, started_at, completed_at, status, error
		FROM gameday_runs
		WHERE season = ? AND gameday = ?
		ORDER BY started_at DESC, id LIMIT 1
	`, season, gameday)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no discovery run for season %s gameday %d", season, gameday)
		}
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	if err := s.loadMatchIDs(run); err != nil {
		return nil, err
	}
	return run, nil
}

// RunsBySeason returns all runs of a season, newest first.
func (s *store) RunsBySeason(season string) ([]*DiscoveryRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, season, gameday, started_at, completed_at, status, error
		FROM gameday_runs
		WHERE season = ?
		ORDER BY started_at DESC, gameday
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*DiscoveryRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			log.Error("Failed to scan discovery run row", "error", err)
			continue
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, run := range runs {
		if err := s.loadMatchIDs(run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// PendingMatchIDs returns match IDs discovered for a season that the
// league store does not hold yet.
func (s *store) PendingMatchIDs(season string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT DISTINCT gmi.match_id
		FROM gameday_match_ids gmi
		JOIN gameday_runs gr ON gr.id = gmi.run_id
		WHERE gr.season = ?
		  AND gmi.match_id NOT IN (SELECT id FROM matches)
		ORDER BY gmi.match_id
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending match ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanRun(scanner interface{ Scan(...any) error }) (*DiscoveryRun, error) {
	var run DiscoveryRun
	var completedAt sql.NullInt64
	var status string

	err := scanner.Scan(&run.ID, &run.Season, &run.Gameday, &run.StartedAt, &completedAt, &status, &run.Error)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Int64
	}
	return &run, nil
}

func (s *store) loadMatchIDs(run *DiscoveryRun) error {
	rows, err := s.db.Query(`
		SELECT match_id FROM gameday_match_ids WHERE run_id = ? ORDER BY position
	`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load match ids for run %s: %w", run.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		run.MatchIDs = append(run.MatchIDs, id)
	}
	return rows.Err()
}
