package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"zonewatch/internal/services"
	"zonewatch/pkg/chat"
)

func main() {
	redisURL := getEnv("REDIS_URL", "redis://localhost:6379")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid REDIS_URL: %v\n", err)
		os.Exit(1)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to Redis. Is the watcher's Redis running?\n")
		os.Exit(1)
	}

	pubsub := client.Subscribe(ctx, services.ChatChannel)
	defer pubsub.Close()

	p := tea.NewProgram(NewConsoleUI(),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())

	// Pump chat messages from Pub/Sub into the UI.
	go func() {
		for m := range pubsub.Channel() {
			var msg chat.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			p.Send(chatReceivedMsg{message: msg})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
