package main

import (
	"log"

	"gate/cmd/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; real environment variables always win.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
