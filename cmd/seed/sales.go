package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/tradewindhq/planboard/internal/weekcal"
)

// seedSales loads weekly forecast and actuals CSVs. Directories may hold one
// file per SKU or per planning cycle; files load concurrently.
func seedSales(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	forecastDir := c.String("forecast-dir")
	actualsDir := c.String("actuals-dir")
	workerCount := c.Int("workers")
	if workerCount < 1 {
		workerCount = 1
	}

	forecastFiles, err := collectCSVFiles(forecastDir)
	if err != nil {
		return fmt.Errorf("error walking forecast directory: %w", err)
	}
	if len(forecastFiles) == 0 {
		log.Printf("No forecast CSV files found in %s", forecastDir)
	} else {
		log.Printf("Loading %d forecast file(s) with %d worker(s)...", len(forecastFiles), workerCount)
		if err := processFilesWithWorkers(c.Context, forecastFiles, workerCount, func(path string) error {
			log.Printf("Loading forecast file: %s", path)
			return loadWeeklyFile(c.Context, db, "sales_forecasts", path)
		}); err != nil {
			return err
		}
	}

	actualFiles, err := collectCSVFiles(actualsDir)
	if err != nil {
		return fmt.Errorf("error walking actuals directory: %w", err)
	}
	if len(actualFiles) == 0 {
		log.Printf("No actuals CSV files found in %s", actualsDir)
	} else {
		log.Printf("Loading %d actuals file(s) with %d worker(s)...", len(actualFiles), workerCount)
		if err := processFilesWithWorkers(c.Context, actualFiles, workerCount, func(path string) error {
			log.Printf("Loading actuals file: %s", path)
			return loadWeeklyFile(c.Context, db, "sales_actuals", path)
		}); err != nil {
			return err
		}
	}

	return nil
}

// loadWeeklyFile upserts sku,week,qty rows from one CSV. Each file commits in
// its own transaction so a bad file does not roll back its siblings.
func loadWeeklyFile(ctx context.Context, db *sql.DB, table, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	skuIdx := getColumnIndex(header, "sku")
	weekIdx := getColumnIndex(header, "week")
	qtyIdx := getColumnIndex(header, "qty")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (sku, week, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (sku, week)
		DO UPDATE SET qty = EXCLUDED.qty
	`, table)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		sku := record[skuIdx]
		week, ok := weekcal.Parse(record[weekIdx])
		if !ok {
			return fmt.Errorf("invalid week %q for sku %s in %s", record[weekIdx], sku, path)
		}
		qty, err := strconv.Atoi(record[qtyIdx])
		if err != nil || qty < 0 {
			return fmt.Errorf("invalid qty %q for sku %s in %s", record[qtyIdx], sku, path)
		}

		if _, err := stmt.ExecContext(ctx, sku, week.String(), qty); err != nil {
			return fmt.Errorf("failed to upsert %s/%s: %w", sku, week, err)
		}
		rowCount++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Loaded %d rows from %s into %s", rowCount, path, table)
	return nil
}

func collectCSVFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".csv" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func processFilesWithWorkers(ctx context.Context, files []string, workers int, fn func(string) error) error {
	if len(files) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	jobs := make(chan string)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case path, ok := <-jobs:
					if !ok {
						return
					}
					if err := fn(path); err != nil {
						select {
						case errCh <- err:
						default:
						}
						cancel()
						return
					}
				}
			}
		}()
	}
loop:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break loop
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
		if ctx.Err() != nil && ctx.Err() != context.Canceled {
			return ctx.Err()
		}
	}
	return nil
}
