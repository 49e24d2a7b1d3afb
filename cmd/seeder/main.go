// Command seeder replaces every event with the sample catalogue. Existing
// registrations are removed with them.
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/farellandr/eventhub/config"
	"github.com/farellandr/eventhub/internal/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := config.InitLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := config.InitStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer s.Close()

	events, err := catalogue()
	if err != nil {
		logger.WithError(err).Fatal("Invalid sample catalogue")
	}

	registrations := services.NewRegistrationService(s, logger)
	if err := registrations.SeedEvents(ctx, events); err != nil {
		logger.WithError(err).Fatal("Failed to seed events")
	}
	logger.Info("Data imported")
}
