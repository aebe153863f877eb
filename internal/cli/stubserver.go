package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-runner/internal/config"
	"exam-runner/internal/domain"
	"exam-runner/internal/stub"
	stubpg "exam-runner/internal/stub/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewStubServerCmd starts the reference scoring endpoint for local
// development and testing.
func NewStubServerCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "stubserver",
		Short: "Serve a reference scoring endpoint (dev/testing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStubServer(cmd.Context(), *configPath, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "seed the sample question bank into the store")
	return cmd
}

func runStubServer(ctx context.Context, configPath string, seed bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	port := cfg.Stub.Port
	if port == "" {
		port = "8080"
	}

	var store stub.Store = stub.NewMemoryStore(sampleBank())
	if cfg.Stub.Postgres.URL != "" {
		if err := runStubMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Stub.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgStore := stubpg.NewStore(pool)
		if seed {
			if err := pgStore.SeedQuestions(ctx, sampleBank()); err != nil {
				return err
			}
			log.Printf("seeded %d sample questions", len(sampleBank()))
		}
		store = pgStore
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      stub.NewServer(store).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting stub scoring endpoint on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start stub server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down stub server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down stub server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBank provides a minimal question bank for stub runs without Postgres.
func sampleBank() []domain.Question {
	return []domain.Question{
		{
			ID:      "q1",
			Text:    "What is 2 + 2?",
			OptionA: "3",
			OptionB: "4",
			OptionC: "5",
			OptionD: "22",
			Correct: domain.OptionB,
		},
		{
			ID:      "q2",
			Text:    "Which planet is known as the Red Planet?",
			OptionA: "Venus",
			OptionB: "Jupiter",
			OptionC: "Mars",
			OptionD: "Saturn",
			Correct: domain.OptionC,
		},
		{
			ID:      "q3",
			Text:    "What is the capital of France?",
			OptionA: "Paris",
			OptionB: "Lyon",
			OptionC: "Marseille",
			OptionD: "Nice",
			Correct: domain.OptionA,
		},
	}
}
