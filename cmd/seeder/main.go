package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"ttstats/internal/database"
	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "ttstats-seed.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

var seedPlayers = []league.Player{
	{ID: "seed-1", Name: "MA Long", Association: "CHN", Source: league.SourceWTT},
	{ID: "seed-2", Name: "FAN Zhendong", Association: "CHN", Source: league.SourceWTT},
	{ID: "seed-3", Name: "Truls MOREGARD", Association: "SWE", Source: league.SourceWTT},
	{ID: "seed-4", Name: "Tomokazu HARIMOTO", Association: "JPN", Source: league.SourceWTT},
	{ID: "seed-5", Name: "Hugo CALDERANO", Association: "BRA", Source: league.SourceWTT},
	{ID: "seed-6", Name: "Felix LEBRUN", Association: "FRA", Source: league.SourceWTT},
}

// randomScore produces a plausible best-of-five raw score string.
func randomScore() string {
	sets := []string{}
	winsA, winsB := 0, 0
	for winsA < 3 && winsB < 3 {
		loser := 5 + rand.Intn(5)
		if rand.Intn(2) == 0 {
			sets = append(sets, fmt.Sprintf("11:%d", loser))
			winsA++
		} else {
			sets = append(sets, fmt.Sprintf("%d:11", loser))
			winsB++
		}
	}
	return strings.Join(sets, " ")
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], "", "", cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := league.New(db)

	if err := store.UpsertPlayers(seedPlayers); err != nil {
		log.Fatalf("Failed to insert seed players: %s", err)
	}
	log.Info("Ensured seed players exist.", "count", len(seedPlayers))

	const numGames = 200
	const batchSize = 50

	log.Info("Preparing to insert seed games...", "total", numGames, "batch_size", batchSize)
	startTime := time.Now()

	batch := make([]*league.Game, 0, batchSize)
	inserted := 0
	for i := 0; i < numGames; i++ {
		a := rand.Intn(len(seedPlayers))
		b := rand.Intn(len(seedPlayers) - 1)
		if b >= a {
			b++
		}
		playerA, playerB := seedPlayers[a], seedPlayers[b]

		raw := randomScore()
		game, _ := scores.Parse(raw)
		timestamp := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

		batch = append(batch, &league.Game{
			ID:          uuid.NewString(),
			Source:      league.SourceWTT,
			Index:       1,
			PlayerAID:   playerA.ID,
			PlayerAName: playerA.Name,
			PlayerBID:   playerB.ID,
			PlayerBName: playerB.Name,
			Winner:      game.Winner,
			State:       stats.StateFinished,
			RawScore:    raw,
			SetsA:       game.SetsWonA,
			SetsB:       game.SetsWonB,
			Timestamp:   timestamp.Unix(),
			Tournament:  league.TournamentInfo{Event: "Seeded Open", Stage: "MS"},
		})

		if len(batch) == batchSize || i+1 == numGames {
			if err := store.UpsertGames(batch); err != nil {
				log.Fatalf("Failed to insert game batch: %s", err)
			}
			inserted += len(batch)
			batch = batch[:0]
			log.Info("Inserted batch", "completed", inserted, "total", numGames)
		}
	}

	// A few edge-case games the random generator never produces: a
	// walkover, an abandoned game and a score with a malformed token.
	walkover, _ := scores.Parse("", true)
	edgeCases := []*league.Game{
		{
			ID: uuid.NewString(), Source: league.SourceWTT, Index: 1,
			PlayerAID: "seed-1", PlayerAName: "MA Long",
			PlayerBID: "seed-6", PlayerBName: "Felix LEBRUN",
			Winner: walkover.Winner, State: stats.StateFinished,
			Walkover: true, Timestamp: time.Now().Unix(),
		},
		{
			ID: uuid.NewString(), Source: league.SourceWTT, Index: 1,
			PlayerAID: "seed-2", PlayerAName: "FAN Zhendong",
			PlayerBID: "seed-5", PlayerBName: "Hugo CALDERANO",
			Winner: scores.SideNone, State: stats.StateNotFinished,
			RawScore: "11:9 7:11", Timestamp: time.Now().Unix(),
		},
		{
			ID: uuid.NewString(), Source: league.SourceWTT, Index: 1,
			PlayerAID: "seed-3", PlayerAName: "Truls MOREGARD",
			PlayerBID: "seed-4", PlayerBName: "Tomokazu HARIMOTO",
			Winner: scores.SideA, State: stats.StateFinished,
			RawScore: "11:9 xx:yy 11:7 11:4", SetsA: 3, SetsB: 0,
			Timestamp: time.Now().Unix(),
		},
	}
	if err := store.UpsertGames(edgeCases); err != nil {
		log.Fatalf("Failed to insert edge-case games: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all seed games.", "count", inserted+len(edgeCases), "duration", duration)

	// Run the aggregation once and print the table as a smoke check.
	records, err := store.GameRecords()
	if err != nil {
		log.Fatalf("Failed to load game records: %s", err)
	}
	table, excluded := stats.Aggregate(records)

	players := make([]*stats.PlayerStats, 0, len(table))
	for _, player := range table {
		players = append(players, player)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].WinRate != players[j].WinRate {
			return players[i].WinRate > players[j].WinRate
		}
		return players[i].PlayerID < players[j].PlayerID
	})

	fmt.Printf("\n%-20s %6s %6s %6s %8s\n", "PLAYER", "GAMES", "WINS", "LOSSES", "WINRATE")
	for _, player := range players {
		fmt.Printf("%-20s %6d %6d %6d %7d%%\n", player.PlayerName, player.GamesPlayed, player.Wins, player.Losses, player.WinRate)
	}
	fmt.Printf("\nExcluded games: %d\n", len(excluded))
}
