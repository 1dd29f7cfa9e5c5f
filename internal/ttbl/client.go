package ttbl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

const userAgent = "TTStatsClient/1.0"

// APIClient is a TTBL client that implements the TTBLClient interface.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
	newBackOff func() backoff.BackOff
}

// NewClient creates a new TTBL client.
func NewClient(baseURL string) TTBLClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		BaseURL:    baseURL,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// Ensure APIClient implements the TTBLClient interface.
var _ TTBLClient = (*APIClient)(nil)

// Throttle pauses between upstream calls so we don't hammer the site,
// returning early if the context is cancelled.
func Throttle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DiscoverMatchIDs scrapes a schedule page and returns the match IDs it
// links to, de-duplicated with page order preserved.
func (c *APIClient) DiscoverMatchIDs(ctx context.Context, season string, gameday int) ([]string, error) {
	url := fmt.Sprintf("%s/bundesliga/gameschedule/%s/%d/all", c.BaseURL, season, gameday)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule page: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, "/bundesliga/gameday/") {
			return
		}
		// Match detail links end in a 36-character UUID.
		candidate := href[strings.LastIndex(href, "/")+1:]
		if len(candidate) != 36 {
			return
		}
		if _, err := uuid.Parse(candidate); err != nil {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		ids = append(ids, candidate)
	})

	log.Info("Discovered match ids", "season", season, "gameday", gameday, "count", len(ids))
	return ids, nil
}

// GetMatch fetches a single match from the internal API and maps it to
// league types.
func (c *APIClient) GetMatch(ctx context.Context, matchID string) (*MatchDetail, error) {
	url := fmt.Sprintf("%s/api/internal/match/%s", c.BaseURL, matchID)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}

	var resp matchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode match %s: %w", matchID, err)
	}

	return mapMatch(matchID, &resp), nil
}

// get performs a GET with exponential backoff. A 404 is permanent and
// not retried.
func (c *APIClient) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", userAgent)

		log.Debug("Requesting from TTBL", "url", url)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(fmt.Errorf("received HTTP 404 for %s", url))
		}
		if resp.StatusCode != http.StatusOK {
			log.Warn("Received non-OK HTTP status from TTBL", "status", resp.StatusCode, "url", url)
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

func mapMatch(matchID string, resp *matchResponse) *MatchDetail {
	if resp.ID != "" {
		matchID = resp.ID
	}

	match := &league.Match{
		ID:           matchID,
		Source:       league.SourceTTBL,
		GamedayName:  resp.Gameday.Name,
		State:        mapMatchState(matchID, resp.MatchState),
		HomeTeam:     league.TeamInfo{ID: resp.HomeTeam.ID, Name: resp.HomeTeam.Name, Rank: resp.HomeTeam.Rank},
		AwayTeam:     league.TeamInfo{ID: resp.AwayTeam.ID, Name: resp.AwayTeam.Name, Rank: resp.AwayTeam.Rank},
		Venue:        resp.Venue.Name,
		StartTime:    resp.TimeStamp,
		HomeGameWins: resp.HomeGameWins,
		AwayGameWins: resp.AwayGameWins,
		HomeSetWins:  resp.HomeSetWins,
		AwaySetWins:  resp.AwaySetWins,
	}

	collector := newPlayerCollector()
	for _, entry := range []*playerEntry{resp.HomePlayerOne, resp.HomePlayerTwo, resp.HomePlayerThree} {
		collector.add(entry, resp.HomeTeam.Name)
	}
	for _, entry := range []*playerEntry{resp.GuestPlayerOne, resp.GuestPlayerTwo, resp.GuestPlayerThree} {
		collector.add(entry, resp.AwayTeam.Name)
	}

	var games []*league.Game
	for _, entry := range resp.Games {
		home := entry.HomePlayer
		if home == nil {
			home = entry.HomeLeaguePlayer
		}
		away := entry.AwayPlayer
		if away == nil {
			away = entry.AwayLeaguePlayer
		}
		collector.add(home, resp.HomeTeam.Name)
		collector.add(away, resp.AwayTeam.Name)

		gameID := entry.ID
		if gameID == "" {
			gameID = fmt.Sprintf("%s-game-%d", matchID, entry.Index)
		}

		state := stats.StateNotFinished
		if entry.GameState == "Finished" {
			state = stats.StateFinished
		}

		games = append(games, &league.Game{
			ID:          gameID,
			Source:      league.SourceTTBL,
			MatchID:     matchID,
			Index:       entry.Index,
			PlayerAID:   playerID(home),
			PlayerAName: playerName(home),
			PlayerBID:   playerID(away),
			PlayerBName: playerName(away),
			Winner:      mapWinnerSide(matchID, entry.WinnerSide),
			State:       state,
			Timestamp:   resp.TimeStamp,
		})
	}

	return &MatchDetail{
		Match:   match,
		Games:   games,
		Players: collector.players,
	}
}

func mapMatchState(matchID, raw string) league.MatchState {
	switch raw {
	case "Finished":
		return league.MatchStateFinished
	case "Live", "Running":
		return league.MatchStateLive
	case "Scheduled", "Planned":
		return league.MatchStateScheduled
	default:
		log.Warn("Unknown match state received from TTBL API", "state", raw, "matchID", matchID)
		return league.MatchStateUnknown
	}
}

func mapWinnerSide(matchID, raw string) scores.Side {
	switch raw {
	case "Home":
		return scores.SideA
	case "Away":
		return scores.SideB
	case "", "None":
		return scores.SideNone
	default:
		log.Warn("Unknown winner side received from TTBL API", "side", raw, "matchID", matchID)
		return scores.SideNone
	}
}

func playerID(entry *playerEntry) string {
	if entry == nil {
		return ""
	}
	return entry.ID
}

func playerName(entry *playerEntry) string {
	if entry == nil {
		return "Unknown"
	}
	name := strings.TrimSpace(strings.TrimSpace(entry.FirstName) + " " + strings.TrimSpace(entry.LastName))
	if name == "" {
		return "Unknown"
	}
	return name
}

// playerCollector gathers the unique players referenced by a match, both
// the announced lineups and whoever actually turned up in the games.
type playerCollector struct {
	seen    map[string]struct{}
	players []league.Player
}

func newPlayerCollector() *playerCollector {
	return &playerCollector{seen: make(map[string]struct{})}
}

func (pc *playerCollector) add(entry *playerEntry, teamName string) {
	if entry == nil || entry.ID == "" {
		return
	}
	if _, ok := pc.seen[entry.ID]; ok {
		return
	}
	pc.seen[entry.ID] = struct{}{}
	pc.players = append(pc.players, league.Player{
		ID:       entry.ID,
		Name:     playerName(entry),
		TeamName: teamName,
		Source:   league.SourceTTBL,
	})
}
