package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"ttstats/internal/league"
	"ttstats/internal/metrics"
	"ttstats/internal/notifier"
	"ttstats/internal/scores"
	"ttstats/internal/stats"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, kind string, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "kind", kind, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotificationsFailed(kind)
		log.Error("Failed to send Slack message", "error", err, "channel", channelID, "kind", kind)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotificationsSent(kind)
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp, "kind", kind)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(match *league.Match, games []*league.Game, dryRun bool) error {
	msg := s.formatResultNotification(match, games)
	_, _, err := s.sendMessage(msg, "result", dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(entries []stats.LeaderboardEntry, minGames int, dryRun bool) error {
	msg := s.formatLeaderboard(entries, minGames)
	_, _, err := s.sendMessage(msg, "leaderboard", dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(entries []stats.LeaderboardEntry, minGames int) (any, error) {
	return s.formatLeaderboard(entries, minGames), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(stat *stats.PlayerStats, query string) (any, error) {
	return s.formatPlayerStats(stat, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

// FormatParsedScoreResponse formats a parsed score breakdown for a slash command response.
func (s *Notifier) FormatParsedScoreResponse(raw string, game scores.Game, diagnostics []scores.Diagnostic) (any, error) {
	return s.formatParsedScore(raw, game, diagnostics), nil
}

// FormatMetricsResponse formats the business counters for a slash command response.
func (s *Notifier) FormatMetricsResponse(counters map[string]int) (any, error) {
	return s.formatMetrics(counters), nil
}

// formatResultNotification creates the Slack message for a finished match using Block Kit.
func (s *Notifier) formatResultNotification(match *league.Match, games []*league.Game) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header - The Header block itself provides bolding. No asterisks needed.
	headerText := slack.NewTextBlockObject("plain_text", "🏓 Match finished! 🏓", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	loc, err := time.LoadLocation("Europe/Berlin")
	var timeStr string
	if err == nil {
		timeStr = time.Unix(match.StartTime, 0).In(loc).Format("Monday 02 Jan, 15:04")
	} else {
		timeStr = time.Unix(match.StartTime, 0).Format("Monday 02 Jan, 15:04")
	}
	detailsText := fmt.Sprintf("%s vs %s\n%s at %s", match.HomeTeam.Name, match.AwayTeam.Name, match.GamedayName, timeStr)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	// Result with one field per game
	var winningTeamName string
	if match.HomeGameWins > match.AwayGameWins {
		winningTeamName = match.HomeTeam.Name
	} else if match.AwayGameWins > match.HomeGameWins {
		winningTeamName = match.AwayTeam.Name
	}

	resultHeaderText := fmt.Sprintf("Result: %d:%d", match.HomeGameWins, match.AwayGameWins)
	if winningTeamName != "" {
		resultHeaderText = fmt.Sprintf("Result: %s won %d:%d! 🏆", winningTeamName, match.HomeGameWins, match.AwayGameWins)
	}

	var gameFields []*slack.TextBlockObject
	for _, game := range games {
		gameText := fmt.Sprintf("Game %d\n%s %d:%d %s", game.Index, game.PlayerAName, game.SetsA, game.SetsB, game.PlayerBName)
		if game.Walkover {
			gameText += "\n(walkover)"
		} else if game.RawScore != "" {
			gameText += "\n" + game.RawScore
		}
		gameFields = append(gameFields, slack.NewTextBlockObject("plain_text", gameText, true, false))
	}

	if len(gameFields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultHeaderText, true, false), gameFields, nil))
	} else {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Result: No games reported.", true, false), nil, nil))
	}

	// Context - For simpler, single-line info.
	contextText := fmt.Sprintf("Sets %d:%d", match.HomeSetWins, match.AwaySetWins)
	if match.Venue != "" {
		contextText = fmt.Sprintf("Sets %d:%d | %s", match.HomeSetWins, match.AwaySetWins, match.Venue)
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(entries []stats.LeaderboardEntry, minGames int) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		emptyText := fmt.Sprintf("No players with %d+ games yet. Go ingest some results!", minGames)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", emptyText, true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, entry := range entries {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> Win Rate: %d%% (%d/%d) | Losses: %d",
			rank,
			medal,
			entry.PlayerName,
			entry.WinRate,
			entry.Wins,
			entry.GamesPlayed,
			entry.Losses,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	contextText := fmt.Sprintf("Minimum %d games played", minGames)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(stat *stats.PlayerStats, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := fmt.Sprintf("🏓 Stats for %s 🏓", stat.PlayerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Win Rate*: %d%% (%d/%d)\n> *Losses*: %d",
		stat.WinRate,
		stat.Wins,
		stat.GamesPlayed,
		stat.Losses,
	)
	if stat.LastGameID != "" {
		playerText += fmt.Sprintf("\n> *Last Game*: %s", stat.LastGameID)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

// formatParsedScore creates a Slack message breaking down a parsed raw score.
func (s *Notifier) formatParsedScore(raw string, game scores.Game, diagnostics []scores.Diagnostic) slack.Message {
	blocks := make([]slack.Block, 0)

	var verdict string
	switch {
	case game.Walkover:
		verdict = "walkover, no winner"
	case game.Winner == scores.SideA:
		verdict = "side A wins"
	case game.Winner == scores.SideB:
		verdict = "side B wins"
	default:
		verdict = "no winner"
	}

	resultText := fmt.Sprintf("*%s*\nSets %d:%d (%s)", raw, game.SetsWonA, game.SetsWonB, verdict)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", resultText, false, false), nil, nil))

	if len(diagnostics) > 0 {
		var lines []string
		for _, d := range diagnostics {
			lines = append(lines, fmt.Sprintf("token %d `%s`: %s", d.Position, d.Token, d.Reason))
		}
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMetrics creates a Slack message listing the business counters.
func (s *Notifier) formatMetrics(counters map[string]int) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "📊 Ingest Metrics 📊", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(counters) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No metrics recorded yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	keys := make([]string, 0, len(counters))
	for key := range counters {
		keys = append(keys, key)
	}
	sort.Strings(keys) // Sort to ensure deterministic order

	var lines []string
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("• %s: %d", key, counters[key]))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
