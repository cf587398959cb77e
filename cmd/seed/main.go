package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with planning fixtures",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "master",
				Usage:  "Seed product master data (SKUs and lead times)",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: seedMaster,
			},
			{
				Name:   "transactions",
				Usage:  "Seed orders, factory deliveries, shipments and inventory snapshots",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: seedTransactions,
			},
			{
				Name:  "sales",
				Usage: "Seed weekly sales forecasts and actuals",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "forecast-dir",
						Usage:   "Directory containing forecast CSV files",
						Value:   "./data/seeds/forecasts",
						EnvVars: []string{"FORECAST_DIR"},
					},
					&cli.StringFlag{
						Name:    "actuals-dir",
						Usage:   "Directory containing sales actuals CSV files",
						Value:   "./data/seeds/actuals",
						EnvVars: []string{"ACTUALS_DIR"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent file loaders",
						Value: 4,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedSales,
			},
			{
				Name:   "all",
				Usage:  "Seed master data, transactions and sales",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := seedMaster(c); err != nil {
						return fmt.Errorf("error seeding master data: %w", err)
					}
					if err := seedTransactions(c); err != nil {
						return fmt.Errorf("error seeding transactions: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedMaster(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")

	ctx := c.Context
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Seeding product master data...")

	if err := seedTable(ctx, tx, "products", "sku",
		[]string{"sku", "name", "channel", "production_weeks", "shipping_weeks", "safety_stock_weeks"},
		filepath.Join(dataDir, "products.csv")); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Product master seeding completed")
	return nil
}

func seedTransactions(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")

	ctx := c.Context
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Seeding transactional data...")

	if err := seedTable(ctx, tx, "purchase_orders", "order_no",
		[]string{"order_no", "channel", "placed_at"},
		filepath.Join(dataDir, "purchase_orders.csv")); err != nil {
		return fmt.Errorf("failed to seed purchase orders: %w", err)
	}

	if err := seedOrderItems(ctx, tx, filepath.Join(dataDir, "purchase_order_items.csv")); err != nil {
		return fmt.Errorf("failed to seed purchase order items: %w", err)
	}

	if err := seedDeliveries(ctx, tx, filepath.Join(dataDir, "factory_deliveries.csv")); err != nil {
		return fmt.Errorf("failed to seed factory deliveries: %w", err)
	}

	if err := seedTable(ctx, tx, "shipments", "shipment_no",
		[]string{"shipment_no", "shipped_at", "arrived_at"},
		filepath.Join(dataDir, "shipments.csv")); err != nil {
		return fmt.Errorf("failed to seed shipments: %w", err)
	}

	if err := seedShipmentItems(ctx, tx, filepath.Join(dataDir, "shipment_items.csv")); err != nil {
		return fmt.Errorf("failed to seed shipment items: %w", err)
	}

	if err := seedTable(ctx, tx, "inventory_snapshots", "",
		[]string{"sku", "location", "qty", "taken_at"},
		filepath.Join(dataDir, "inventory_snapshots.csv")); err != nil {
		return fmt.Errorf("failed to seed inventory snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Transactional seeding completed")
	return nil
}

// seedTable loads one CSV into one table. conflictCol names the unique
// column for the upsert; empty means plain inserts. Timestamp columns may be
// empty in the CSV and land as NULL.
func seedTable(ctx context.Context, tx *sql.Tx, tableName, conflictCol string, columns []string, filePath string) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		tableName,
		buildColumnList(columns),
		strings.Join(placeholders, ", "),
	)
	if conflictCol != "" {
		query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
			conflictCol, buildUpdateClause(columns, conflictCol))
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			idx := getColumnIndex(header, col)
			if idx >= len(record) {
				return fmt.Errorf("column index %d out of bounds for column '%s' (record has %d columns)", idx, col, len(record))
			}
			args[i] = nullIfEmpty(strings.TrimSpace(record[idx]))
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	log.Printf("Successfully seeded %s\n", tableName)
	return nil
}

// seedOrderItems resolves order_no to purchase_orders.id at insert time, so
// the fixture files can reference orders by their business key.
func seedOrderItems(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding purchase_order_items from %s\n", filePath)

	const query = `
		INSERT INTO purchase_order_items (order_id, sku, qty)
		SELECT o.id, $2, $3
		FROM purchase_orders o
		WHERE o.order_no = $1
		ON CONFLICT (order_id, sku)
		DO UPDATE SET qty = EXCLUDED.qty
	`

	return forEachRecord(filePath, []string{"order_no", "sku", "qty"}, func(record []string) error {
		_, err := tx.ExecContext(ctx, query, record[0], record[1], record[2])
		return err
	})
}

func seedDeliveries(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding factory_deliveries from %s\n", filePath)

	const query = `
		INSERT INTO factory_deliveries (order_line_id, sku, qty, delivered_at)
		SELECT i.id, $3, $4, $5
		FROM purchase_order_items i
		JOIN purchase_orders o ON o.id = i.order_id
		WHERE o.order_no = $1 AND i.sku = $2
	`

	return forEachRecord(filePath, []string{"order_no", "sku", "delivery_sku", "qty", "delivered_at"}, func(record []string) error {
		_, err := tx.ExecContext(ctx, query,
			record[0],              // $1 order_no
			record[1],              // $2 line sku
			record[2],              // $3 delivered sku
			record[3],              // $4 qty
			nullIfEmpty(record[4]), // $5 delivered_at
		)
		return err
	})
}

func seedShipmentItems(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding shipment_items from %s\n", filePath)

	const query = `
		INSERT INTO shipment_items (shipment_id, sku, qty)
		SELECT s.id, $2, $3
		FROM shipments s
		WHERE s.shipment_no = $1
		ON CONFLICT (shipment_id, sku)
		DO UPDATE SET qty = EXCLUDED.qty
	`

	return forEachRecord(filePath, []string{"shipment_no", "sku", "qty"}, func(record []string) error {
		_, err := tx.ExecContext(ctx, query, record[0], record[1], record[2])
		return err
	})
}

// forEachRecord streams a CSV, checking the header carries the expected
// columns in order, and hands each trimmed record to fn.
func forEachRecord(filePath string, columns []string, fn func(record []string) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	for _, col := range columns {
		getColumnIndex(header, col)
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) < len(columns) {
			return fmt.Errorf("invalid record (expected at least %d columns): %v", len(columns), record)
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if err := fn(record); err != nil {
			return fmt.Errorf("failed to insert record %v: %w", record, err)
		}
	}

	return nil
}

func buildColumnList(columns []string) string {
	return `"` + strings.Join(columns, `", "`) + `"`
}

func buildUpdateClause(columns []string, conflictCol string) string {
	updates := make([]string, 0, len(columns))
	for _, col := range columns {
		if col != conflictCol {
			updates = append(updates, fmt.Sprintf(`"%s" = EXCLUDED."%s"`, col, col))
		}
	}
	return strings.Join(updates, ", ")
}

func getColumnIndex(header []string, column string) int {
	for i, h := range header {
		if h == column {
			return i
		}
	}

	panic(fmt.Sprintf("column '%s' not found in header: %v", column, header))
}
