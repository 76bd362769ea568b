package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sangjo/reservation-desk/internal/cli"
	log "github.com/sirupsen/logrus"
)

func init() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
