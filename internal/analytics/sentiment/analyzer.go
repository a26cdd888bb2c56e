// Package sentiment scores product descriptions with a tokenized polarity
// lexicon.
package sentiment

import (
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/retail-lens/backend/internal/dataset"
)

type Record struct {
	Description    string  `json:"description"`
	Polarity       float64 `json:"polarity"`
	Recommendation string  `json:"recommendation"`
}

// Analyze scores each distinct description once. A description's polarity
// is constant across its rows, so scoring per row would only repeat work.
func Analyze(table *dataset.Table) ([]Record, error) {
	seen := make(map[string]struct{})
	var descs []string
	for _, row := range table.Rows {
		if _, ok := seen[row.Description]; ok {
			continue
		}
		seen[row.Description] = struct{}{}
		descs = append(descs, row.Description)
	}
	sort.Strings(descs)

	records := make([]Record, 0, len(descs))
	for _, desc := range descs {
		score, err := Score(desc)
		if err != nil {
			return nil, err
		}
		rec := "Neutral; monitor customer feedback."
		if score > 0.2 {
			rec = "Highlight in marketing."
		} else if score < -0.2 {
			rec = "Review description for negative tone."
		}
		records = append(records, Record{
			Description:    desc,
			Polarity:       score,
			Recommendation: rec,
		})
	}
	return records, nil
}

// Score returns the mean lexicon polarity of the text's sentiment-bearing
// tokens, or zero when none match.
func Score(text string) (float64, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithTagging(false),
		prose.WithSegmentation(false))
	if err != nil {
		return 0, err
	}

	sum := 0.0
	hits := 0
	for _, tok := range doc.Tokens() {
		if p, ok := polarity[strings.ToLower(tok.Text)]; ok {
			sum += p
			hits++
		}
	}
	if hits == 0 {
		return 0, nil
	}
	return sum / float64(hits), nil
}
