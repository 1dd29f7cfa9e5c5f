package league

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"ttstats/internal/stats"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

// UpsertMatch inserts a new match or updates an existing one. It is "dumb" and
// does not change the processing status of an existing match.
func (s *store) UpsertMatch(match *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if err := upsertMatchTx(tx, match); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpsertMatches inserts or updates a batch of matches in one transaction.
func (s *store) UpsertMatches(matches []*Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := upsertMatchTx(tx, match); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert match %s: %w", match.ID, err)
		}
	}
	return tx.Commit()
}

func upsertMatchTx(tx *sql.Tx, match *Match) error {
	// ON CONFLICT, every field is refreshed EXCEPT processing_status.
	_, err := tx.Exec(`
		INSERT INTO matches (id, source, season, gameday, gameday_name, match_state,
			home_team_id, home_team_name, home_team_rank,
			away_team_id, away_team_name, away_team_rank,
			venue, start_time, home_game_wins, away_game_wins, home_set_wins, away_set_wins, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			season = excluded.season,
			gameday = excluded.gameday,
			gameday_name = excluded.gameday_name,
			match_state = excluded.match_state,
			home_team_id = excluded.home_team_id,
			home_team_name = excluded.home_team_name,
			home_team_rank = excluded.home_team_rank,
			away_team_id = excluded.away_team_id,
			away_team_name = excluded.away_team_name,
			away_team_rank = excluded.away_team_rank,
			venue = excluded.venue,
			start_time = excluded.start_time,
			home_game_wins = excluded.home_game_wins,
			away_game_wins = excluded.away_game_wins,
			home_set_wins = excluded.home_set_wins,
			away_set_wins = excluded.away_set_wins;
	`,
		match.ID, match.Source, match.Season, match.Gameday, match.GamedayName, match.State,
		match.HomeTeam.ID, match.HomeTeam.Name, match.HomeTeam.Rank,
		match.AwayTeam.ID, match.AwayTeam.Name, match.AwayTeam.Rank,
		match.Venue, match.StartTime, match.HomeGameWins, match.AwayGameWins,
		match.HomeSetWins, match.AwaySetWins, StatusNew,
	)
	return err
}

// UpsertGames inserts or updates a batch of games in one transaction.
func (s *store) UpsertGames(games []*Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO games (id, source, match_id, game_index,
			player_a_id, player_a_name, player_b_id, player_b_name,
			winner, state, raw_score, sets_a, sets_b, walkover, timestamp,
			tournament_id, event, stage, round)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			match_id = excluded.match_id,
			game_index = excluded.game_index,
			player_a_id = excluded.player_a_id,
			player_a_name = excluded.player_a_name,
			player_b_id = excluded.player_b_id,
			player_b_name = excluded.player_b_name,
			winner = excluded.winner,
			state = excluded.state,
			raw_score = excluded.raw_score,
			sets_a = excluded.sets_a,
			sets_b = excluded.sets_b,
			walkover = excluded.walkover,
			timestamp = excluded.timestamp,
			tournament_id = excluded.tournament_id,
			event = excluded.event,
			stage = excluded.stage,
			round = excluded.round;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, game := range games {
		var matchID any
		if game.MatchID != "" {
			matchID = game.MatchID
		}
		_, err = stmt.Exec(
			game.ID, game.Source, matchID, game.Index,
			game.PlayerAID, game.PlayerAName, game.PlayerBID, game.PlayerBName,
			game.Winner, game.State, game.RawScore, game.SetsA, game.SetsB,
			game.Walkover, game.Timestamp,
			game.Tournament.ID, game.Tournament.Event, game.Tournament.Stage, game.Tournament.Round,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert game %s: %w", game.ID, err)
		}
	}
	return tx.Commit()
}

// UpsertPlayers adds newly seen players and fills in blanks on known
// ones. An already recorded name or team is never overwritten, so the
// first ingested spelling wins.
func (s *store) UpsertPlayers(players []Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, association, team_name, source)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = COALESCE(NULLIF(players.name, ''), excluded.name),
			association = COALESCE(NULLIF(players.association, ''), excluded.association),
			team_name = COALESCE(NULLIF(players.team_name, ''), excluded.team_name);
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, player := range players {
		if player.ID == "" {
			continue
		}
		if _, err := stmt.Exec(player.ID, player.Name, player.Association, player.TeamName, player.Source); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert player %s: %w", player.ID, err)
		}
	}
	return tx.Commit()
}

// GetMatch retrieves a single match by ID.
func (s *store) GetMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(matchSelect+" WHERE id = ?", matchID)
	match, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match not found: %s", matchID)
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return match, nil
}

// GetAllMatches retrieves all matches, most recent first.
func (s *store) GetAllMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(matchSelect + " ORDER BY start_time DESC")
}

// GetMatchesForProcessing retrieves all matches that are not yet in a completed state.
func (s *store) GetMatchesForProcessing() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(matchSelect+" WHERE processing_status != ? ORDER BY start_time", StatusCompleted)
}

const matchSelect = `
	SELECT id, source, season, gameday, gameday_name, match_state,
		home_team_id, home_team_name, home_team_rank,
		away_team_id, away_team_name, away_team_rank,
		venue, start_time, home_game_wins, away_game_wins, home_set_wins, away_set_wins, processing_status
	FROM matches`

func (s *store) queryMatches(query string, args ...any) ([]*Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// scanMatch is a helper function to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var match Match
	err := scanner.Scan(
		&match.ID, &match.Source, &match.Season, &match.Gameday, &match.GamedayName, &match.State,
		&match.HomeTeam.ID, &match.HomeTeam.Name, &match.HomeTeam.Rank,
		&match.AwayTeam.ID, &match.AwayTeam.Name, &match.AwayTeam.Rank,
		&match.Venue, &match.StartTime, &match.HomeGameWins, &match.AwayGameWins,
		&match.HomeSetWins, &match.AwaySetWins, &match.ProcessingStatus,
	)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// UpdateProcessingStatus transitions a match to a new state.
func (s *store) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE matches SET processing_status = ? WHERE id = ?", status, matchID)
	return err
}

const gameSelect = `
	SELECT id, source, match_id, game_index,
		player_a_id, player_a_name, player_b_id, player_b_name,
		winner, state, raw_score, sets_a, sets_b, walkover, timestamp,
		tournament_id, event, stage, round
	FROM games`

// GetGamesForMatch retrieves the games of one match in board order.
func (s *store) GetGamesForMatch(matchID string) ([]*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryGames(gameSelect+" WHERE match_id = ? ORDER BY game_index", matchID)
}

// GetAllGames retrieves all games, optionally filtered by source.
func (s *store) GetAllGames(source Source) ([]*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if source == "" {
		return s.queryGames(gameSelect + " ORDER BY timestamp, id")
	}
	return s.queryGames(gameSelect+" WHERE source = ? ORDER BY timestamp, id", source)
}

func (s *store) queryGames(query string, args ...any) ([]*Game, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			log.Error("Failed to scan game row", "error", err)
			continue
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// scanGame is a helper function to scan a single game row.
func scanGame(scanner interface{ Scan(...any) error }) (*Game, error) {
	var game Game
	var matchID sql.NullString
	err := scanner.Scan(
		&game.ID, &game.Source, &matchID, &game.Index,
		&game.PlayerAID, &game.PlayerAName, &game.PlayerBID, &game.PlayerBName,
		&game.Winner, &game.State, &game.RawScore, &game.SetsA, &game.SetsB,
		&game.Walkover, &game.Timestamp,
		&game.Tournament.ID, &game.Tournament.Event, &game.Tournament.Stage, &game.Tournament.Round,
	)
	if err != nil {
		return nil, err
	}
	game.MatchID = matchID.String
	return &game, nil
}

// KnownGameIDs returns the set of game IDs already stored for a source,
// used to de-duplicate paginated fetches.
func (s *store) KnownGameIDs(source Source) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id FROM games WHERE source = ?", source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// GameRecords projects every stored game into the normalized form the
// aggregation engine consumes. Filtering stays with the engine; the
// store reports what it has.
func (s *store) GameRecords() ([]stats.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, player_a_id, player_a_name, player_b_id, player_b_name, winner, state, timestamp
		FROM games ORDER BY timestamp, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []stats.GameRecord
	for rows.Next() {
		var record stats.GameRecord
		if err := rows.Scan(
			&record.GameID,
			&record.PlayerAID, &record.PlayerAName,
			&record.PlayerBID, &record.PlayerBName,
			&record.Winner, &record.State, &record.Timestamp,
		); err != nil {
			log.Error("Failed to scan game record row", "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MatchStateCounts returns how many matches sit in each state.
func (s *store) MatchStateCounts() (map[MatchState]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT match_state, COUNT(*) FROM matches GROUP BY match_state")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[MatchState]int)
	for rows.Next() {
		var state MatchState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[state] = count
	}
	return counts, rows.Err()
}

// GetAllPlayers retrieves the player directory sorted by name.
func (s *store) GetAllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, association, team_name, source, world_rank, rank_checked_at
		FROM players ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

// GetPlayerByName retrieves a single player by name. The lookup is
// case-insensitive and fuzzy, so "boll" matches "Timo Boll".
func (s *store) GetPlayerByName(name string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := "%" + name + "%"
	row := s.db.QueryRow(`
		SELECT id, name, association, team_name, source, world_rank, rank_checked_at
		FROM players WHERE name LIKE ? COLLATE NOCASE ORDER BY name LIMIT 1
	`, pattern)

	player, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player matching '%s' not found", name)
		}
		return nil, fmt.Errorf("failed to query player by name: %w", err)
	}
	return player, nil
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var player Player
	var name, association, teamName sql.NullString
	var worldRank sql.NullInt64
	var rankCheckedAt sql.NullInt64

	err := scanner.Scan(&player.ID, &name, &association, &teamName, &player.Source, &worldRank, &rankCheckedAt)
	if err != nil {
		return nil, err
	}
	player.Name = name.String
	player.Association = association.String
	player.TeamName = teamName.String
	if worldRank.Valid {
		rank := int(worldRank.Int64)
		player.WorldRank = &rank
	}
	if rankCheckedAt.Valid {
		checked := rankCheckedAt.Int64
		player.RankCheckedAt = &checked
	}
	return &player, nil
}

// SetPlayerRank records a player's current world ranking.
func (s *store) SetPlayerRank(playerID string, rank int, checkedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(
		"UPDATE players SET world_rank = ?, rank_checked_at = ? WHERE id = ?",
		rank, checkedAt, playerID,
	)
	if err != nil {
		return fmt.Errorf("failed to set player rank: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("player not found: %s", playerID)
	}
	return nil
}

// Summary returns store-wide counts.
func (s *store) Summary() (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary Summary
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM matches", &summary.Matches},
		{"SELECT COUNT(*) FROM matches WHERE match_state = 'FINISHED'", &summary.FinishedMatches},
		{"SELECT COUNT(DISTINCT gameday) FROM matches WHERE gameday > 0", &summary.Gamedays},
		{"SELECT COUNT(*) FROM games", &summary.Games},
		{"SELECT COUNT(*) FROM players", &summary.Players},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return Summary{}, fmt.Errorf("failed to count: %w", err)
		}
	}
	return summary, nil
}

// Clear wipes all league data. Used by tests and the dev-only clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	// Games first so the match foreign key never dangles mid-clear.
	for _, table := range []string{"games", "matches", "players", "gameday_match_ids", "gameday_runs", "metrics"} {
		if _, err = tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}
