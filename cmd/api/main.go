package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	acarepo "github.com/Party4Bread/academy-core-go/internal/academy/repo"
	licrepo "github.com/Party4Bread/academy-core-go/internal/license/repo"
	"github.com/Party4Bread/academy-core-go/internal/router"
	scorepo "github.com/Party4Bread/academy-core-go/internal/score/repo"
	sturepo "github.com/Party4Bread/academy-core-go/internal/student/repo"
	"github.com/Party4Bread/academy-core-go/pkg/database"
	"github.com/Party4Bread/academy-core-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting academy-core-go")

	// init db
	cfg := database.ConfigFromEnv()
	db, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// ensure schema in foreign-key order: licenses before academies,
	// academies before students, students before the record tables
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()
	if err := licrepo.NewLicenseRepo(db).EnsureTable(initCtx); err != nil {
		sugar.Fatalf("ensure licenses table: %v", err)
	}
	if err := acarepo.NewAcademyRepo(db).EnsureTable(initCtx); err != nil {
		sugar.Fatalf("ensure academies table: %v", err)
	}
	if err := sturepo.NewStudentRepo(db).EnsureTable(initCtx); err != nil {
		sugar.Fatalf("ensure students table: %v", err)
	}
	if err := scorepo.NewScoreRepo(db).EnsureTables(initCtx); err != nil {
		sugar.Fatalf("ensure score tables: %v", err)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}

	// mount http server
	handler := router.RegisterRoutes(sugar, db)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	sugar.Infow("service is running; press Ctrl+C to stop", "addr", addr)

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// ping db once more
	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
