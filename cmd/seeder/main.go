// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/services"
	"github.com/ammerola/backoffice-be/internal/pkg/config"
	"github.com/ammerola/backoffice-be/internal/pkg/logger"
	"github.com/ammerola/backoffice-be/migrations"
)

type supplierSeed struct {
	Name string
	RUC  string
}

type employeeSeed struct {
	UserID   string
	Fullname string
	DNI      string
}

var suppliers = []supplierSeed{
	{"Distribuidora Andina SAC", "20512345678"},
	{"Alimentos del Sur EIRL", "20698765432"},
	{"Lacteos La Campiña SA", "20455566677"},
}

var employees = []employeeSeed{
	{"auth0|admin", "Rosa Huaman Torres", "41234567"},
	{"auth0|cajero1", "Luis Ccori Mamani", "42345678"},
}

func defaultProducts() []*domain.Product {
	expires := time.Now().AddDate(0, 0, 5).Truncate(24 * time.Hour)
	mk := func(sku, name string, stock, stockMin int, cost, price string, exp *time.Time) *domain.Product {
		return &domain.Product{
			SKU:            sku,
			Name:           name,
			Stock:          stock,
			StockMin:       stockMin,
			Cost:           decimal.RequireFromString(cost),
			Price:          decimal.RequireFromString(price),
			HasExpiration:  exp != nil,
			ExpirationDate: exp,
			Status:         domain.ProductActive,
		}
	}
	return []*domain.Product{
		mk("ARZ-5", "Arroz Extra 5kg", 40, 10, "18.50", "24.90", nil),
		mk("ACE-1L", "Aceite Vegetal 1L", 30, 8, "7.20", "9.50", nil),
		mk("AZU-1", "Azucar Rubia 1kg", 50, 15, "3.10", "4.20", nil),
		mk("LEC-1", "Leche Evaporada 400g", 60, 24, "3.40", "4.30", &expires),
		mk("YOG-1", "Yogurt Fresa 1L", 12, 6, "4.80", "6.50", &expires),
		mk("FID-500", "Fideos Spaghetti 500g", 35, 10, "2.30", "3.20", nil),
		mk("ATN-170", "Atun en Aceite 170g", 8, 12, "4.10", "5.90", nil),
		mk("DET-1", "Detergente 1kg", 20, 5, "8.90", "11.50", nil),
	}
}

func main() {
	var (
		productsFile = flag.String("products", "", "Optional product import workbook; the built-in catalogue is used when empty")
		salesCount   = flag.Int("sales", 10, "Number of random sales to record")
		purchases    = flag.Int("purchases", 3, "Number of random purchases to record through the purchase service")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		migrate      = flag.Bool("migrate", true, "Run migrations before seeding")
		dryRun       = flag.Bool("dry-run", false, "Preview the seed without touching the database")
	)
	flag.Parse()

	log := logger.SetupLogger(*logLevel, "text")

	products := defaultProducts()
	if *productsFile != "" {
		loaded, err := readProducts(*productsFile, log)
		if err != nil {
			log.Error("failed to read products workbook", slog.String("error", err.Error()))
			os.Exit(1)
		}
		products = loaded
	}

	if *dryRun {
		log.Info("dry run",
			slog.Int("suppliers", len(suppliers)),
			slog.Int("employees", len(employees)),
			slog.Int("products", len(products)),
			slog.Int("sales", *salesCount),
			slog.Int("purchases", *purchases))
		return
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if *migrate {
		if err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
			DatabaseURL: cfg.GetDatabaseURL(),
			Source:      migrations.FS,
			TableName:   "schema_migrations",
			SchemaName:  "public",
		}, log, 3); err != nil {
			log.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	database, err := db.NewDatabase(ctx, db.ConfigFrom(cfg.Database, 4), log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	if err := seed(ctx, database, products, *salesCount, *purchases, log); err != nil {
		log.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("seeding complete")
}

func seed(ctx context.Context, database *db.Database, products []*domain.Product, salesCount, purchaseCount int, log *slog.Logger) error {
	if err := seedPeople(ctx, database); err != nil {
		return err
	}
	log.Info("suppliers and employees seeded",
		slog.Int("suppliers", len(suppliers)),
		slog.Int("employees", len(employees)))

	// Existing SKUs keep their stock
	catalogue := services.NewProductService(db.NewProductRepository(database, log), nil, 7, log)
	created, updated, err := catalogue.ImportProducts(ctx, products)
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	log.Info("products seeded", slog.Int("created", created), slog.Int("updated", updated))

	stored, err := catalogue.Find(ctx, domain.ListQuery{SortDirection: domain.SortAsc, SortColumn: "sku"})
	if err != nil {
		return err
	}
	if len(stored.Products) == 0 {
		return nil
	}

	if err := seedPurchases(ctx, database, stored.Products, purchaseCount, log); err != nil {
		return err
	}

	return seedSales(ctx, database, stored.Products, salesCount, log)
}

func seedPeople(ctx context.Context, database *db.Database) error {
	return database.Transaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, s := range suppliers {
			batch.Queue(`INSERT INTO suppliers (name, ruc) VALUES ($1, $2) ON CONFLICT (ruc) DO NOTHING`, s.Name, s.RUC)
		}
		for _, e := range employees {
			batch.Queue(`INSERT INTO employees (user_id, fullname, dni) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`,
				e.UserID, e.Fullname, e.DNI)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// seedPurchases goes through the purchase service so stock moves exactly as
// it does for the API
func seedPurchases(ctx context.Context, database *db.Database, products []*domain.Product, count int, log *slog.Logger) error {
	if count <= 0 {
		return nil
	}

	var supplierID uuid.UUID
	if err := database.QueryRow(ctx, `SELECT id FROM suppliers WHERE ruc = $1`, suppliers[0].RUC).Scan(&supplierID); err != nil {
		return fmt.Errorf("failed to load supplier: %w", err)
	}

	purchases := services.NewPurchaseService(
		db.NewUnitOfWork(database, 5*time.Second, log),
		db.NewPurchaseRepository(database, log),
		db.NewEmployeeRepository(database, log),
		log,
	)

	stamp := time.Now().Format("060102150405")
	for i := range count {
		var items []domain.PurchaseItem
		for _, p := range pick(products, 3) {
			items = append(items, domain.PurchaseItem{
				ProductID: p.ID,
				Quantity:  1 + rand.IntN(12),
				UnitCost:  p.Cost,
			})
		}

		purchase, err := purchases.Create(ctx, domain.PurchaseInput{
			Number:     fmt.Sprintf("F001-%s%02d", stamp, i),
			SupplierID: supplierID,
			Items:      items,
		}, employees[0].UserID)
		if err != nil {
			return fmt.Errorf("failed to seed purchase %d: %w", i, err)
		}
		log.Debug("purchase seeded", slog.String("number", purchase.Number), slog.String("total", purchase.Total.String()))
	}

	log.Info("purchases seeded", slog.Int("count", count))
	return nil
}

// seedSales records sales over the last 30 days. Stock is decremented in the
// same transaction and a line is skipped when stock would go negative.
func seedSales(ctx context.Context, database *db.Database, products []*domain.Product, count int, log *slog.Logger) error {
	customers := []struct{ name, dni string }{
		{"Maria Quispe", "45678912"},
		{"Jorge Salazar", "47891234"},
		{"", ""},
	}

	stamp := time.Now().Format("060102150405")
	recorded := 0

	for i := range count {
		err := database.Transaction(ctx, func(tx pgx.Tx) error {
			saleID := uuid.New()
			at := time.Now().AddDate(0, 0, -rand.IntN(30))
			customer := customers[rand.IntN(len(customers))]

			total := decimal.Zero
			var lines int
			for _, p := range pick(products, 2) {
				qty := 1 + rand.IntN(3)
				tag, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`, p.ID, qty)
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					continue
				}
				if lines == 0 {
					if _, err := tx.Exec(ctx, `INSERT INTO sales (id, number, customer_name, customer_dni, created_at) VALUES ($1, $2, $3, $4, $5)`,
						saleID, fmt.Sprintf("B001-%s%03d", stamp, i), customer.name, customer.dni, at); err != nil {
						return err
					}
				}
				if _, err := tx.Exec(ctx, `INSERT INTO sale_items (sale_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
					saleID, p.ID, qty, p.Price); err != nil {
					return err
				}
				total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
				lines++
			}

			if lines == 0 {
				return nil
			}
			recorded++
			_, err := tx.Exec(ctx, `UPDATE sales SET total = $2 WHERE id = $1`, saleID, total)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to seed sale %d: %w", i, err)
		}
	}

	log.Info("sales seeded", slog.Int("requested", count), slog.Int("recorded", recorded))
	return nil
}

func readProducts(path string, log *slog.Logger) ([]*domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	products, rowErrs, err := documents.ReadProducts(data)
	if err != nil {
		return nil, err
	}
	for _, re := range rowErrs {
		log.Warn("skipping product row", slog.Int("row", re.Row), slog.String("reason", re.Reason))
	}
	return products, nil
}

// pick returns up to n distinct products
func pick(products []*domain.Product, n int) []*domain.Product {
	idx := rand.Perm(len(products))
	out := make([]*domain.Product, 0, n)
	for _, i := range idx[:min(n, len(idx))] {
		out = append(out, products[i])
	}
	return out
}
