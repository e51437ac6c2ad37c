package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"chatnotify/internal/app"
)

func main() {
	_ = godotenv.Load(".env")

	var log zerolog.Logger
	if os.Getenv("NOTIFY_LOG_JSON") != "" {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}

	app.Run(log)
}
