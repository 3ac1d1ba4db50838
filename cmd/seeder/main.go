package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/psdleague/psdl-bot/internal/match"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Ten dummy players, enough for two full rosters.
	type seedPlayer struct {
		ID     string
		Handle string
		Role   string
		Tier   int
	}
	dummyPlayers := make([]seedPlayer, 0, 10)
	for i := 0; i < 10; i++ {
		role := "core"
		if i%2 == 1 {
			role = "support"
		}
		dummyPlayers = append(dummyPlayers, seedPlayer{
			ID:     fmt.Sprintf("player-%d", i+1),
			Handle: fmt.Sprintf("seeder_%d", i+1),
			Role:   role,
			Tier:   1 + i%5,
		})
	}

	for _, p := range dummyPlayers {
		_, err := db.Exec(
			"INSERT OR IGNORE INTO players (id, handle, role, tier, points, active, registered_at) VALUES (?, ?, ?, ?, 1000, 1, ?)",
			p.ID, p.Handle, p.Role, p.Tier, time.Now().Unix(),
		)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Handle, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	const batchSize = 100
	const numMatches = 10000

	log.Info("Preparing to insert dummy matches...", "total", numMatches, "batch_size", batchSize)
	startTime := time.Now()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	radiant := match.Roster{Players: []string{dummyPlayers[0].ID, dummyPlayers[1].ID, dummyPlayers[2].ID, dummyPlayers[3].ID, dummyPlayers[4].ID}}
	dire := match.Roster{Players: []string{dummyPlayers[5].ID, dummyPlayers[6].ID, dummyPlayers[7].ID, dummyPlayers[8].ID, dummyPlayers[9].ID}}
	radiantJSON, _ := json.Marshal(radiant)
	direJSON, _ := json.Marshal(dire)

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*8) // 8 columns per match

	for i := 0; i < numMatches; i++ {
		matchTime := time.Now().Add(-time.Duration(rng.Intn(365*24)) * time.Hour)
		winner := match.SideRadiant
		if rng.Intn(2) == 1 {
			winner = match.SideDire
		}

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			string(match.TypeStart),
			string(radiantJSON),
			string(direJSON),
			string(winner),
			match.GenerateLobbyName(rng),
			match.GeneratePassword(rng),
			matchTime.Unix(),
		)

		if (i+1)%batchSize == 0 || (i+1) == numMatches {
			stmt := fmt.Sprintf(`
				INSERT INTO finalized_matches (id, type, radiant_json, dire_json, winner, lobby_name, password, created_at)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*8)
			log.Info("Inserted batch", "completed", i+1, "total", numMatches)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy matches.", "duration", duration)
}
