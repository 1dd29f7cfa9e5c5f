package processor

import (
	"time"

	"ttstats/internal/league"
	"ttstats/internal/metrics"
	"ttstats/internal/pubsub"

	"github.com/charmbracelet/log"
)

// resultNotificationWindow bounds how old a match may be and still
// trigger a Slack post. Backfilled seasons advance through the state
// machine without notifying anyone.
const resultNotificationWindow = 48 * time.Hour

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, topic string) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
		topic:    topic,
	}
}

// ProcessMatches fetches matches that need processing and advances them through the state machine.
func (p *Processor) ProcessMatches(dryRun bool) {
	log.Info("Starting match processing...")
	matches, err := p.store.GetMatchesForProcessing()
	if err != nil {
		log.Error("Failed to get matches for processing", "error", err)
		return
	}

	if len(matches) == 0 {
		log.Info("No matches to process.")
		return
	}

	log.Info("Found matches to process", "count", len(matches))
	for _, match := range matches {
		startTime := time.Now()
		p.processMatch(match, dryRun)
		p.metrics.ObserveProcessingDuration(time.Since(startTime).Seconds())
	}
	log.Info("Match processing finished.")
}

func (p *Processor) processMatch(match *league.Match, dryRun bool) {
	log.Info("Processing match", "matchID", match.ID, "initial_status", match.ProcessingStatus, "state", match.State)
	for {
		currentState := match.ProcessingStatus
		log.Debug("Evaluating match state", "matchID", match.ID, "status", currentState)

		switch currentState {
		case league.StatusNew:
			if match.State == league.MatchStateFinished {
				log.Info("Match is finished. Marking result as available.", "matchID", match.ID)
				p.updateStatus(match, league.StatusResultAvailable, dryRun)
			}

		case league.StatusResultAvailable:
			games, err := p.store.GetGamesForMatch(match.ID)
			if err != nil {
				log.Error("Failed to load games for result notification", "error", err, "matchID", match.ID)
				return
			}
			// Backfilled seasons advance without a Slack post; only fresh
			// results are worth announcing.
			if time.Since(time.Unix(match.StartTime, 0)) < resultNotificationWindow {
				log.Info("Match result is available. Sending result notification.", "matchID", match.ID)
				if err := p.notifier.SendResultNotification(match, games, dryRun); err != nil {
					log.Error("Failed to send result notification", "error", err, "matchID", match.ID)
				}
			} else {
				log.Info("Match ended too long ago. Skipping result notification.", "matchID", match.ID)
			}
			p.updateStatus(match, league.StatusResultNotified, dryRun)

		case league.StatusResultNotified:
			log.Info("Match result has been notified. Requesting player stats update.", "matchID", match.ID)
			if !dryRun {
				event := pubsub.Event{
					Type:    pubsub.EventTypePlayerStatsUpdate,
					MatchID: match.ID,
					Season:  match.Season,
				}
				if err := p.pubsub.SendMessage(p.topic, event); err != nil {
					log.Error("Failed to publish stats update event", "error", err, "matchID", match.ID)
				}
			}
			p.updateStatus(match, league.StatusStatsUpdated, dryRun)

		case league.StatusStatsUpdated:
			log.Info("Player stats updated. Marking match as complete.", "matchID", match.ID)
			p.updateStatus(match, league.StatusCompleted, dryRun)

		case league.StatusCompleted:
			log.Debug("Match is complete. No further processing needed.", "matchID", match.ID)
			return // End of the line for this match

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", match.ID)
			return // Exit if status is unknown
		}

		// If the status hasn't changed, we're done with this match for now.
		if match.ProcessingStatus == currentState {
			log.Debug("Match state did not change. Finished processing for now.", "matchID", match.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing match", "matchID", match.ID, "final_status", match.ProcessingStatus)
}

func (p *Processor) updateStatus(match *league.Match, newStatus league.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update match status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(match.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", match.ID)
	} else {
		log.Debug("Successfully updated status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Keep the in-memory object in sync
		p.metrics.IncProcessorTransitions(string(newStatus))
	}
}
