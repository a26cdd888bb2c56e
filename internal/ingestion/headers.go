package ingestion

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/retail-lens/backend/internal/dataset"
)

// DefaultFuzzyThreshold is the minimum similarity score a fuzzy match must
// reach before a column is renamed.
const DefaultFuzzyThreshold = 80

// Scorer is the string-similarity capability behind fuzzy header matching.
// Implementations return a score in [0,100] and are expected to be
// insensitive to token order.
type Scorer interface {
	Score(a, b string) int
}

type tokenSortScorer struct{}

func (tokenSortScorer) Score(a, b string) int {
	return fuzzy.TokenSortRatio(a, b)
}

// DefaultScorer returns the token-sort-ratio scorer.
func DefaultScorer() Scorer {
	return tokenSortScorer{}
}

// headerAliases maps each canonical column to the spellings seen in the
// wild. Alias lookup is case-insensitive and runs before fuzzy matching so
// that ambiguous short names ("Qty") never reach the similarity scorer.
var headerAliases = map[string][]string{
	dataset.ColCustomerName: {"CustName", "Customer", "ClientName"},
	dataset.ColInvoiceNo:    {"InvNum", "InvoiceNumber", "OrderNo"},
	dataset.ColStockCode:    {"StCode", "ProductCode", "ItemCode"},
	dataset.ColDescription:  {"Desc", "ProductDescription", "ItemDesc"},
	dataset.ColQuantity:     {"Quant", "Qty", "Amount"},
	dataset.ColInvoiceDate:  {"InvDate", "OrderDate", "PurchaseDate"},
	dataset.ColUnitPrice:    {"UnitPrive", "Price", "UnitCost"},
	dataset.ColCustomerID:   {"CustId", "ClientID", "CustomerNo"},
	dataset.ColCountry:      {"Cntry", "Location", "Region"},
	dataset.ColEmail:        {"EmaiCust", "CustomerEmail", "EmailAddress"},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	index := make(map[string]string)
	for _, canonical := range dataset.CanonicalColumns {
		index[strings.ToLower(canonical)] = canonical
		for _, alias := range headerAliases[canonical] {
			index[strings.ToLower(alias)] = canonical
		}
	}
	return index
}

// MapHeaders maps each uploaded column name to a canonical column name, or
// to itself when no confident match exists. Three tiers, in priority order:
// exact match, alias lookup, fuzzy matching at or above threshold. Pure and
// deterministic: fuzzy ties resolve by canonical column order, never by
// scorer internals.
func MapHeaders(columns []string, threshold int, scorer Scorer) map[string]string {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	if scorer == nil {
		scorer = DefaultScorer()
	}

	mapping := make(map[string]string, len(columns))

	for _, col := range columns {
		if isCanonical(col) {
			mapping[col] = col
			continue
		}
		if canonical, ok := aliasIndex[strings.ToLower(col)]; ok {
			mapping[col] = canonical
		}
	}

	for _, col := range columns {
		if _, done := mapping[col]; done {
			continue
		}

		best := ""
		bestScore := -1
		for _, canonical := range dataset.CanonicalColumns {
			if score := scorer.Score(col, canonical); score > bestScore {
				best = canonical
				bestScore = score
			}
		}

		if bestScore >= threshold {
			mapping[col] = best
		} else {
			// Keeping the original name routes the column into the
			// required-column check downstream; renaming at low
			// confidence could merge two distinct real columns.
			mapping[col] = col
		}
	}

	return mapping
}

func isCanonical(name string) bool {
	for _, canonical := range dataset.CanonicalColumns {
		if name == canonical {
			return true
		}
	}
	return false
}
