package main

import (
	"context"
	"log"

	"evalyze-client/internal/config"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/internal/stub"
	"evalyze-client/internal/tracer"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Logger
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 3. Run the stub backend
	srv := stub.New(cfg.Stub, sysLogger)
	log.Fatal(srv.Run())
}
