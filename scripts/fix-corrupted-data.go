package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
)

const stateKeyPattern = "campaign_state:*"

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning for corrupted campaign state...")

	iter := client.Scan(ctx, 0, stateKeyPattern, 0).Iterator()

	var corruptedKeys []string
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()
		checkedCount++

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		var state entities.CampaignState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			fmt.Printf("✗ Corrupted JSON in %s\n", key)
			corruptedKeys = append(corruptedKeys, key)
			continue
		}

		if issues := problems(key, &state); len(issues) > 0 {
			fmt.Printf("✗ %s: %s\n", key, strings.Join(issues, "; "))
			corruptedKeys = append(corruptedKeys, key)
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	fmt.Printf("\nChecked %d keys, found %d corrupted entries\n", checkedCount, len(corruptedKeys))

	if len(corruptedKeys) == 0 {
		fmt.Println("No corrupted data found!")
		return
	}

	fmt.Println("\nCorrupted keys:")
	for _, key := range corruptedKeys {
		fmt.Printf("  - %s\n", key)
	}

	// Ask for confirmation before deletion
	fmt.Print("\nDo you want to DELETE these corrupted entries? (yes/no): ")
	var response string
	_, _ = fmt.Scanln(&response)

	if response == "yes" {
		for _, key := range corruptedKeys {
			if err := client.Del(ctx, key).Err(); err != nil {
				fmt.Printf("Failed to delete %s: %v\n", key, err)
			} else {
				fmt.Printf("Deleted %s\n", key)
			}
		}
		fmt.Println("\nCleanup complete!")
	} else {
		fmt.Println("Aborted - no changes made")
	}
}

// problems lists the ways a stored state breaks what the combat server
// relies on when it loads a campaign
func problems(key string, state *entities.CampaignState) []string {
	var issues []string
	if want := strings.TrimPrefix(key, "campaign_state:"); state.CampaignID != want {
		issues = append(issues, fmt.Sprintf("campaign_id %q does not match key", state.CampaignID))
	}

	enc := state.Encounter
	if enc == nil {
		return issues
	}
	if enc.CampaignID != state.CampaignID {
		issues = append(issues, fmt.Sprintf("encounter belongs to campaign %q", enc.CampaignID))
	}
	if len(enc.Party) == 0 || len(enc.Enemies) == 0 {
		issues = append(issues, "encounter is missing a side")
	}
	for _, c := range enc.Combatants() {
		if c == nil {
			issues = append(issues, "nil combatant")
			continue
		}
		if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
			issues = append(issues, fmt.Sprintf("%s has hp %d of %d", c.ID, c.CurrentHP, c.MaxHP))
		}
	}
	return issues
}
