// Command seed fills the Event Hub database with demo users and events.
package main

import (
	"context"
	"flag"
	"log"

	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	eventsPerUser := flag.Int("events", defaults.EventsPerUser, "Number of upcoming events per user")
	daysAhead := flag.Int("days", defaults.MaxDaysAhead, "Spread event dates over this many days")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	flag.Parse()

	log.Printf("Target: %d users, %d events each, clean=%v", *numUsers, *eventsPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if *eventsPerUser > cfg.MaxEventsPerDay {
		log.Printf("Warning: %d events per user exceeds the daily limit of %d", *eventsPerUser, cfg.MaxEventsPerDay)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:         *numUsers,
		EventsPerUser:    *eventsPerUser,
		MaxDaysAhead:     *daysAhead,
		ShouldClean:      *shouldClean,
		RandomSeed:       *randomSeed,
		DescriptionRatio: defaults.DescriptionRatio,
	})
	res, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users and %d events", len(res.Users), res.Events)
}
