package wtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

const (
	userAgent = "TTStatsClient/1.0"

	// Upper bound on pages per year sweep in case the list keeps
	// serving fresh-looking rows forever.
	maxPagesPerYear = 500
)

// ErrNotRanked is returned when the rankings gateway has no entry for a
// player.
var ErrNotRanked = errors.New("player has no current world ranking")

// APIClient is a fabrik list client that implements the WTTClient interface.
type APIClient struct {
	httpClient  *http.Client
	BaseURL     string
	RankingsURL string
	listID      string
	pageLimit   int
	delay       time.Duration
	newBackOff  func() backoff.BackOff
}

// NewClient creates a new WTT client.
func NewClient(cfg Config) WTTClient {
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = 100
	}
	return &APIClient{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		BaseURL:     cfg.BaseURL,
		RankingsURL: cfg.RankingsURL,
		listID:      cfg.ListID,
		pageLimit:   pageLimit,
		delay:       cfg.Delay,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// Ensure APIClient implements the WTTClient interface.
var _ WTTClient = (*APIClient)(nil)

// FetchYear sweeps the fabrik match list for one year, paginating until
// the list runs dry. Rows are de-duplicated by match id because the
// list endpoint sometimes ignores the offset and serves the same page
// again.
func (c *APIClient) FetchYear(ctx context.Context, year int) (*YearResult, error) {
	result := &YearResult{}
	seenRows := make(map[string]struct{})
	seenPlayers := make(map[string]struct{})
	offset := 0
	stagnant := 0

	for page := 0; page < maxPagesPerYear; page++ {
		rows, err := c.fetchPage(ctx, year, offset)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
		result.Pages++

		newRows := 0
		for i := range rows {
			row := &rows[i]
			if row.ID == "" {
				continue
			}
			if _, ok := seenRows[string(row.ID)]; ok {
				continue
			}
			seenRows[string(row.ID)] = struct{}{}
			newRows++

			game, players, diags := mapRow(row)
			result.Games = append(result.Games, game)
			result.Diagnostics = append(result.Diagnostics, diags...)
			for _, player := range players {
				if _, ok := seenPlayers[player.ID]; ok {
					continue
				}
				seenPlayers[player.ID] = struct{}{}
				result.Players = append(result.Players, player)
			}
		}

		if newRows == 0 {
			stagnant++
			if stagnant >= 2 {
				log.Warn("Fabrik pagination appears stagnant, stopping", "year", year, "pages", result.Pages)
				break
			}
		} else {
			stagnant = 0
		}

		if len(rows) < c.pageLimit {
			break
		}

		offset += c.pageLimit
		if err := c.throttle(ctx); err != nil {
			return nil, err
		}
	}

	log.Info("Fetched fabrik year", "year", year, "games", len(result.Games), "players", len(result.Players), "pages", result.Pages)
	return result, nil
}

// GetWorldRank looks a player up on the WTT rankings gateway.
func (c *APIClient) GetWorldRank(ctx context.Context, ittfID string) (*Ranking, error) {
	requestURL := fmt.Sprintf("%s?IttfId=%s&q=1", c.RankingsURL, url.QueryEscape(ittfID))

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch world rank for %s: %w", ittfID, err)
	}

	var resp rankingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode rankings response: %w", err)
	}
	if len(resp.Result) == 0 {
		return nil, ErrNotRanked
	}
	return &resp.Result[0], nil
}

func (c *APIClient) fetchPage(ctx context.Context, year, offset int) ([]matchRow, error) {
	params := url.Values{}
	params.Set("option", "com_fabrik")
	params.Set("view", "list")
	params.Set("listid", c.listID)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("vw_matches___yr[value]", strconv.Itoa(year))
	params.Set("limitstart"+c.listID, strconv.Itoa(offset))

	requestURL := fmt.Sprintf("%s/index.php?%s", c.BaseURL, params.Encode())
	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fabrik page at offset %d: %w", offset, err)
	}
	return decodeRows(body)
}

// decodeRows handles the list endpoint's two envelope shapes: a plain
// row array, or the same array wrapped in another array.
func decodeRows(body []byte) ([]matchRow, error) {
	var rows []matchRow
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var nested [][]matchRow
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, fmt.Errorf("failed to decode fabrik response: %w", err)
	}
	if len(nested) == 0 {
		return nil, nil
	}
	return nested[0], nil
}

func mapRow(row *matchRow) (*league.Game, []league.Player, []RowDiagnostic) {
	raw := string(row.GamesRaw)
	parsed, diags := scores.Parse(raw, row.walkover())

	game := &league.Game{
		ID:          string(row.ID),
		Source:      league.SourceWTT,
		PlayerAID:   string(row.PlayerAID),
		PlayerAName: string(row.PlayerAName),
		PlayerBID:   string(row.PlayerXID),
		PlayerBName: string(row.PlayerXName),
		Winner:      parsed.Winner,
		// The list only serves historical results, so every row is
		// finished. Walkovers keep Winner NONE and fall out of the
		// stats fold as NO_WINNER.
		State:     stats.StateFinished,
		RawScore:  raw,
		SetsA:     parsed.SetsWonA,
		SetsB:     parsed.SetsWonB,
		Walkover:  parsed.Walkover,
		Timestamp: yearStart(row.year()),
		Tournament: league.TournamentInfo{
			ID:    string(row.TournamentID),
			Event: string(row.Event),
			Stage: string(row.Stage),
			Round: string(row.Round),
		},
	}

	var players []league.Player
	if row.PlayerAID != "" {
		players = append(players, league.Player{
			ID:          string(row.PlayerAID),
			Name:        string(row.PlayerAName),
			Association: string(row.PlayerAAssoc),
			Source:      league.SourceWTT,
		})
	}
	if row.PlayerXID != "" {
		players = append(players, league.Player{
			ID:          string(row.PlayerXID),
			Name:        string(row.PlayerXName),
			Association: string(row.PlayerXAssoc),
			Source:      league.SourceWTT,
		})
	}

	var rowDiags []RowDiagnostic
	for _, diag := range diags {
		rowDiags = append(rowDiags, RowDiagnostic{GameID: game.ID, Diagnostic: diag})
	}
	if len(rowDiags) > 0 {
		log.Debug("Score string produced diagnostics", "game", game.ID, "raw", raw, "count", len(rowDiags))
	}

	return game, players, rowDiags
}

// yearStart pins a match to Jan 1 midnight UTC of its year. Fabrik only
// exposes the year, not the date.
func yearStart(year string) int64 {
	y, err := strconv.Atoi(year)
	if err != nil || y == 0 {
		return 0
	}
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
}

// get performs a GET with exponential backoff. A 404 is permanent and
// not retried.
func (c *APIClient) get(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		log.Debug("Requesting from fabrik", "url", requestURL)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(fmt.Errorf("received HTTP 404 for %s", requestURL))
		}
		if resp.StatusCode != http.StatusOK {
			log.Warn("Received non-OK HTTP status from fabrik", "status", resp.StatusCode, "url", requestURL)
			return fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *APIClient) throttle(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
