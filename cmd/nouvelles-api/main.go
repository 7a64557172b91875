package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	nouvelles "github.com/NullCleric/sf-nouvelles-api"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	app := nouvelles.New(nouvelles.Config{
		Addr:          envOr("ADDR", ":3000"),
		DatabasePath:  envOr("DATABASE_PATH", "data/nouvelles.db"),
		UploadDir:     envOr("UPLOAD_DIR", "public/uploads/stories"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  envBool("COOKIE_SECURE"),
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
