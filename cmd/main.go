package main

import (
	"github.com/sirupsen/logrus"

	"github.com/farellandr/eventhub/internal/server"
)

func main() {
	if err := server.Start(); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
