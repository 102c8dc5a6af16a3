package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/peergrade/internal/adapters/repository"
	"github.com/okian/peergrade/internal/seeding"
	"github.com/okian/peergrade/pkg/logger"
)

// Default generation constants.
const (
	defaultDimensions  = 4
	defaultSubmissions = 1000
	defaultReviewers   = 5
	defaultNoise       = 0.1
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	var (
		dbPath      = flag.String("db", "peergrade.db", "Path to the SQLite database")
		dimensions  = flag.Int("dimensions", defaultDimensions, "Number of rubric dimensions")
		submissions = flag.Int("submissions", defaultSubmissions, "Number of submissions")
		reviewers   = flag.Int("reviewers", defaultReviewers, "Assessments per submission")
		noise       = flag.Float64("noise", defaultNoise, "Reviewer noise as a fraction of the dimension scale")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed (same seed reproduces the same data)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	store, err := repository.NewSQLiteStore(ctx, *dbPath)
	if err != nil {
		os.Stderr.WriteString("failed to open store: " + err.Error() + "\n")
		return
	}
	defer func() { _ = store.Close() }()

	cfg := seeding.Config{
		NumDimensions:          *dimensions,
		NumSubmissions:         *submissions,
		ReviewersPerSubmission: *reviewers,
		Noise:                  *noise,
		Seed:                   *seed,
	}

	stats, err := seeding.Generate(ctx, cfg, store)
	if err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Get().Info(ctx, "seed data written",
		logger.String("db", *dbPath),
		logger.Int("dimensions", stats.Dimensions),
		logger.Int("submissions", stats.Submissions),
		logger.Int("assessments", stats.Assessments),
		logger.Int("grades", stats.Grades),
	)
}
