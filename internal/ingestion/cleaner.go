package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"github.com/retail-lens/backend/internal/dataset"
	"github.com/retail-lens/backend/pkg/logger"
)

// Cleaner turns raw uploaded bytes into a canonical transaction table.
type Cleaner struct {
	fuzzyThreshold int
	sampleSize     int
	scorer         Scorer
}

func NewCleaner(fuzzyThreshold, encodingSampleSize int) *Cleaner {
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}
	if encodingSampleSize <= 0 {
		encodingSampleSize = 100000
	}
	return &Cleaner{
		fuzzyThreshold: fuzzyThreshold,
		sampleSize:     encodingSampleSize,
		scorer:         DefaultScorer(),
	}
}

// WithScorer overrides the fuzzy scorer. Used by tests; callers normally
// keep the token-sort default.
func (c *Cleaner) WithScorer(s Scorer) *Cleaner {
	c.scorer = s
	return c
}

// CleanAndLoad runs the full pipeline: detect encoding, parse, map headers,
// validate the schema, coerce types, derive TotalPrice and drop unusable
// rows. Row-level defects drop the row and are counted; schema-level
// defects return a typed error.
func (c *Cleaner) CleanAndLoad(raw []byte) (*dataset.Table, error) {
	charset := DetectEncoding(raw, c.sampleSize)
	text, err := decodeBytes(raw, charset)
	if err != nil {
		return nil, err
	}

	header, records, malformed := parseRecords(text)
	if len(header) == 0 {
		return nil, &dataset.EmptyDatasetError{}
	}

	mapping := MapHeaders(header, c.fuzzyThreshold, c.scorer)
	logger.Debug("headers mapped",
		zap.Strings("original", header),
		zap.Any("mapping", mapping))

	// First occurrence wins when two source columns map to the same
	// canonical name.
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		mapped := mapping[col]
		if _, exists := colIndex[mapped]; !exists {
			colIndex[mapped] = i
		}
	}

	if err := validateColumns(colIndex); err != nil {
		return nil, err
	}

	idIdx, hasID := colIndex[dataset.ColCustomerID]
	if !hasID {
		// Name substitutes for ID: explicit policy, not an accident.
		idIdx = colIndex[dataset.ColCustomerName]
		logger.Info("using Customer Name as CustomerID")
	}
	countryIdx, hasCountry := colIndex[dataset.ColCountry]

	table := &dataset.Table{Dropped: dataset.DropCounts{MalformedLines: malformed}}

	for _, rec := range records {
		get := func(col string) string {
			idx, ok := colIndex[col]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		at := func(idx int) string {
			if idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		invoiceNo := get(dataset.ColInvoiceNo)
		qtyStr := get(dataset.ColQuantity)
		priceStr := get(dataset.ColUnitPrice)
		dateStr := get(dataset.ColInvoiceDate)
		customerID := at(idIdx)

		if invoiceNo == "" || qtyStr == "" || priceStr == "" || dateStr == "" || customerID == "" {
			table.Dropped.MissingFields++
			continue
		}

		invoiceDate, err := dateparse.ParseAny(dateStr)
		if err != nil {
			table.Dropped.BadDates++
			continue
		}

		quantity, ok := parseQuantity(qtyStr)
		if !ok {
			table.Dropped.BadNumbers++
			continue
		}

		unitPrice, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || unitPrice < 0 {
			table.Dropped.BadNumbers++
			continue
		}

		country := ""
		if hasCountry {
			country = at(countryIdx)
		}
		if country == "" {
			country = "Unknown"
		}

		table.Rows = append(table.Rows, dataset.Transaction{
			InvoiceNo:   invoiceNo,
			StockCode:   get(dataset.ColStockCode),
			Description: get(dataset.ColDescription),
			Quantity:    quantity,
			InvoiceDate: invoiceDate,
			UnitPrice:   unitPrice,
			CustomerID:  customerID,
			Country:     country,
			Email:       get(dataset.ColEmail),
			TotalPrice:  float64(quantity) * unitPrice,
		})
	}

	if len(table.Rows) == 0 {
		return nil, &dataset.EmptyDatasetError{Dropped: table.Dropped}
	}

	if table.Dropped.Total() > 0 {
		logger.Warn("rows dropped during cleaning",
			zap.Int("malformed_lines", table.Dropped.MalformedLines),
			zap.Int("missing_fields", table.Dropped.MissingFields),
			zap.Int("bad_dates", table.Dropped.BadDates),
			zap.Int("bad_numbers", table.Dropped.BadNumbers),
			zap.Int("kept", len(table.Rows)))
	}

	return table, nil
}

// parseRecords reads delimited text with every field as raw string.
// Malformed lines are skipped and counted, never fatal.
func parseRecords(text []byte) (header []string, records [][]string, malformed int) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				malformed++
				continue
			}
			break
		}
		if header == nil {
			header = make([]string, len(rec))
			for i, col := range rec {
				header[i] = strings.TrimSpace(col)
			}
			continue
		}
		records = append(records, rec)
	}
	return header, records, malformed
}

func validateColumns(colIndex map[string]int) error {
	hasIdentifier := false
	for _, col := range dataset.IdentifierColumns {
		if _, ok := colIndex[col]; ok {
			hasIdentifier = true
			break
		}
	}
	if !hasIdentifier {
		return &dataset.MissingIdentifierError{Candidates: dataset.IdentifierColumns}
	}

	var missing []string
	for _, col := range dataset.RequiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &dataset.MissingColumnsError{Missing: missing}
	}
	return nil
}

// parseQuantity accepts integers and whole-number floats ("3", "3.0").
func parseQuantity(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
