package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"form_automation/application/session"
	"form_automation/infrastructure/ai"
	"form_automation/presentation/server"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	interpreter, err := ai.NewGeminiClient(logger)
	if err != nil {
		logger.Fatalf("Failed to initialize AI client: %v", err)
	}

	cfg := session.ConfigFromEnv()
	srv := server.NewServer(interpreter, cfg, logger)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5000"
	}

	logger.Infof("Form automation server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
