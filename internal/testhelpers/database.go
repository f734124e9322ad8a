package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/database"
	"github.com/pageza/chefbook/backend/internal/logger"
)

// SetupTestDatabase opens a migrated SQLite database in a temp directory.
// A file is used rather than :memory: so every pooled connection sees the
// same schema.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chefbook_test.db")
	db, err := database.Open(sqlite.Open(path), database.NewGormLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// SetupPostgresDatabase starts a PostgreSQL container and returns a migrated
// connection to it. The test is skipped when docker is unavailable.
func SetupPostgresDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	const (
		user     = "chefbook"
		password = "chefbook"
		dbName   = "chefbook_test"
	)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       dbName,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), dbName)
				}),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, mappedPort.Port(), user, password, dbName)
	db, err := database.Open(postgres.Open(dsn), database.NewGormLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
