package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sangjo/reservation-desk/internal/config"
	"github.com/sangjo/reservation-desk/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	startOnce sync.Once
	container *postgres.PostgresContainer
	dbConfig  config.Database
	startErr  error
)

func preparePostgresContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %v", err)
	}

	return postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase("desk"),
		postgres.WithUsername("test_desk"),
		postgres.WithPassword("test_desk"),
		postgres.BasicWaitStrategies(),
	)
}

func start(ctx context.Context) {
	container, startErr = preparePostgresContainer(ctx)
	if startErr != nil {
		return
	}

	host, err := container.Host(ctx)
	if err != nil {
		startErr = err
		return
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		startErr = err
		return
	}
	log.Infof("Postgres container started at %s:%d", host, port.Int())

	dbConfig = config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   "test_desk",
		Pass:   "test_desk",
		Name:   "desk",
		Schema: "desk",
	}
	startErr = database.Migrate(dbConfig)
}

// TestDB returns a pool to a migrated Postgres running in a container shared by
// the whole test binary. Tests are skipped when no container runtime is available.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	startOnce.Do(func() { start(ctx) })
	if startErr != nil {
		t.Fatalf("failed to start postgres container: %v", startErr)
	}

	pool, err := database.Open(ctx, dbConfig)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// TerminateDB stops the shared container, if one was started. Call it from TestMain.
func TerminateDB() {
	if container == nil {
		return
	}
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Errorf("failed to terminate postgres container: %v", err)
	}
}

// findProjectRoot walks up from the working directory to the directory holding go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}
