// test/helpers/postgres.go
package helpers

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/migrations"
)

// TestDB is a migrated PostgreSQL container. The container is purged when
// the test that created it finishes.
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Config   *db.Config
}

// dataTables in truncation order; async_jobs has no foreign keys
var dataTables = []string{
	"sale_items", "sales", "purchase_items", "purchases",
	"products", "employees", "suppliers", "async_jobs",
}

// SetupTestDB starts postgres:16-alpine, waits for it and applies the
// embedded migrations
func SetupTestDB(t testing.TB) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "docker is not reachable")
	pool.MaxWait = 90 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=bodega",
			"POSTGRES_PASSWORD=bodega",
			"POSTGRES_DB=backoffice_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "postgres container did not start")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("purge postgres container: %v", err)
		}
	})

	cfg := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "bodega",
		Password:           "bodega",
		Database:           "backoffice_test",
		SSLMode:            "disable",
		MaxConnections:     8,
		MinConnections:     1,
		ConnectTimeout:     5 * time.Second,
		LockTimeout:        2 * time.Second,
		EnableQueryLogging: testing.Verbose(),
	}

	ctx := context.Background()
	var database *db.Database
	require.NoError(t, pool.Retry(func() error {
		var err error
		database, err = db.NewDatabase(ctx, cfg, TestLogger())
		return err
	}), "postgres never became ready")
	t.Cleanup(database.Close)

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     cfg.Database,
		RawQuery: "sslmode=disable",
	}
	err = db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
		DatabaseURL: dsn.String(),
		Source:      migrations.FS,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, TestLogger(), 3)
	require.NoError(t, err, "migrations failed")

	return &TestDB{PgxPool: database.Pool(), Database: database, Config: cfg}
}

// TruncateAllTables empties every data table in one statement
func TruncateAllTables(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE TABLE "+strings.Join(dataTables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err, "truncate failed")
}

// SeedSupplier inserts a supplier and returns its id
func SeedSupplier(t testing.TB, pool *pgxpool.Pool, name, ruc string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO suppliers (name, ruc) VALUES ($1, $2) RETURNING id`, name, ruc).Scan(&id)
	require.NoError(t, err, "seed supplier %s", ruc)
	return id
}

// SeedEmployee inserts an employee linked to userID and returns its id
func SeedEmployee(t testing.TB, pool *pgxpool.Pool, userID, fullname, dni string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO employees (user_id, fullname, dni) VALUES ($1, $2, $3) RETURNING id`,
		userID, fullname, dni).Scan(&id)
	require.NoError(t, err, "seed employee %s", userID)
	return id
}

// SeedProducts inserts products as given, ids included
func SeedProducts(t testing.TB, pool *pgxpool.Pool, products []*domain.Product) {
	t.Helper()

	const insert = `
		INSERT INTO products (
			id, sku, name, description, stock, initial_stock, stock_min,
			cost, price, has_expiration, expiration_date, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for _, p := range products {
		_, err := pool.Exec(context.Background(), insert,
			p.ID, p.SKU, p.Name, p.Description, p.Stock, p.InitialStock, p.StockMin,
			p.Cost, p.Price, p.HasExpiration, p.ExpirationDate, string(p.Status),
			p.CreatedAt, p.UpdatedAt,
		)
		require.NoError(t, err, "seed product %s", p.SKU)
	}
}

// SeedSale records a sale of quantity units of each product at list price.
// Stock is not touched; callers adjust it when the test needs that.
func SeedSale(t testing.TB, pool *pgxpool.Pool, number string, at time.Time, quantity int, products ...*domain.Product) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	qty := decimal.NewFromInt(int64(quantity))
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price.Mul(qty))
	}

	var id uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO sales (number, customer_name, customer_dni, total, created_at)
		 VALUES ($1, 'Cliente Prueba', '12345678', $2, $3) RETURNING id`,
		number, total, at).Scan(&id)
	require.NoError(t, err, "seed sale %s", number)

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
			id, p.ID, quantity, p.Price)
		require.NoError(t, err, "seed sale item %s", p.SKU)
	}
	return id
}
