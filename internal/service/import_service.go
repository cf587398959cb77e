package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/repository"
	"github.com/tradewindhq/planboard/internal/storage"
	"github.com/tradewindhq/planboard/internal/weekcal"
)

// ImportResult tallies a forecast upload. Rows are validated independently;
// a bad row never blocks the good ones.
type ImportResult struct {
	TotalRows int      `json:"total_rows"`
	Imported  int      `json:"imported"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// ImportService ingests weekly forecast CSV files (sku,week,qty) and keeps
// the raw upload in the object archive.
type ImportService struct {
	repo    repository.ImportRepository
	archive storage.ObjectArchive
	now     func() time.Time
}

func NewImportService(repo repository.ImportRepository, archive storage.ObjectArchive) *ImportService {
	if archive == nil {
		archive = storage.NoopArchive{}
	}
	return &ImportService{repo: repo, archive: archive, now: time.Now}
}

// ImportForecastCSV parses the upload, upserts the valid rows, and archives
// the raw file. The header row "sku,week,qty" is optional.
func (s *ImportService) ImportForecastCSV(ctx context.Context, filename string, data []byte) (*ImportResult, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	result := &ImportResult{}
	var rows []domain.WeeklySales
	lineNo := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}

		if lineNo == 1 && isHeaderRow(record) {
			continue
		}
		result.TotalRows++

		row, err := parseForecastRow(record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := s.repo.UpsertForecasts(ctx, rows); err != nil {
			return nil, err
		}
		result.Imported = len(rows)
	}

	key := fmt.Sprintf("imports/%s/%s", s.now().Format("2006-01-02"), filename)
	if err := s.archive.Put(ctx, key, "text/csv", data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("import: archiving upload failed")
	}

	return result, nil
}

func parseForecastRow(record []string) (domain.WeeklySales, error) {
	if len(record) < 3 {
		return domain.WeeklySales{}, fmt.Errorf("want 3 fields sku,week,qty, got %d", len(record))
	}

	sku := strings.TrimSpace(record[0])
	if sku == "" {
		return domain.WeeklySales{}, fmt.Errorf("empty sku")
	}

	week := strings.TrimSpace(record[1])
	if _, ok := weekcal.Parse(week); !ok {
		return domain.WeeklySales{}, fmt.Errorf("invalid week %q", week)
	}

	qty, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil || qty < 0 {
		return domain.WeeklySales{}, fmt.Errorf("invalid qty %q", record[2])
	}

	return domain.WeeklySales{SKU: sku, Week: week, Qty: qty}, nil
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "sku")
}
