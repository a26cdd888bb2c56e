package affinity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-lens/backend/internal/dataset"
)

func line(invoice, description string, quantity int) dataset.Transaction {
	return dataset.Transaction{InvoiceNo: invoice, Description: description, Quantity: quantity}
}

func pairedBasketTable() *dataset.Table {
	table := &dataset.Table{}
	// A and B always co-occur; C and D appear alone.
	for i := 0; i < 5; i++ {
		inv := fmt.Sprintf("INV-AB-%d", i)
		table.Rows = append(table.Rows, line(inv, "A", 1), line(inv, "B", 1))
	}
	for i := 0; i < 3; i++ {
		table.Rows = append(table.Rows, line(fmt.Sprintf("INV-C-%d", i), "C", 1))
	}
	for i := 0; i < 2; i++ {
		table.Rows = append(table.Rows, line(fmt.Sprintf("INV-D-%d", i), "D", 1))
	}
	return table
}

func TestRulesFindsPairedItems(t *testing.T) {
	cfg := Config{MinSupport: 0.3, MaxRules: 10, MinItemCount: 0}

	rules := Rules(pairedBasketTable(), cfg)

	require.Len(t, rules, 2)
	assert.Equal(t, "A", rules[0].Antecedents)
	assert.Equal(t, "B", rules[0].Consequents)
	assert.Equal(t, "B", rules[1].Antecedents)
	assert.Equal(t, "A", rules[1].Consequents)

	for _, rule := range rules {
		assert.InDelta(t, 0.5, rule.Support, 1e-9)
		assert.InDelta(t, 1.0, rule.Confidence, 1e-9)
		assert.InDelta(t, 2.0, rule.Lift, 1e-9)
		assert.Contains(t, rule.Recommendation, "Bundle")
	}
}

func TestRulesEmptyTable(t *testing.T) {
	rules := Rules(&dataset.Table{}, DefaultConfig())

	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestRulesIgnoresReturnsAndBlankDescriptions(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		line("INV1", "A", -2),
		line("INV1", "", 1),
	}}

	rules := Rules(table, Config{MinSupport: 0.01, MaxRules: 10, MinItemCount: 0})

	assert.Empty(t, rules)
}

func TestRulesLiftBelowOneFiltered(t *testing.T) {
	table := &dataset.Table{}
	// A and B co-occur in 2 of 10 baskets but each appears in 8, so the
	// pair is anti-correlated and every candidate rule has lift below 1.
	for i := 0; i < 2; i++ {
		inv := fmt.Sprintf("INV-AB-%d", i)
		table.Rows = append(table.Rows, line(inv, "A", 1), line(inv, "B", 1))
	}
	for i := 0; i < 6; i++ {
		table.Rows = append(table.Rows, line(fmt.Sprintf("INV-A-%d", i), "A", 1))
		table.Rows = append(table.Rows, line(fmt.Sprintf("INV-B-%d", i), "B", 1))
	}

	rules := Rules(table, Config{MinSupport: 0.1, MaxRules: 10, MinItemCount: 0})

	assert.Empty(t, rules)
}

func TestRulesMaxRulesCap(t *testing.T) {
	rules := Rules(pairedBasketTable(), Config{MinSupport: 0.3, MaxRules: 1, MinItemCount: 0})

	require.Len(t, rules, 1)
	assert.Equal(t, "A", rules[0].Antecedents)
}

func TestRulesDeterministic(t *testing.T) {
	cfg := Config{MinSupport: 0.3, MaxRules: 10, MinItemCount: 0}
	table := pairedBasketTable()

	first := Rules(table, cfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Rules(table, cfg))
	}
}

func TestSubsetSplits(t *testing.T) {
	splits := subsetSplits([]string{"A", "B", "C"})

	// Every non-empty proper subset as antecedent: 2^3 - 2.
	assert.Len(t, splits, 6)
	for _, s := range splits {
		assert.NotEmpty(t, s.antecedent)
		assert.NotEmpty(t, s.consequent)
		assert.Equal(t, 3, len(s.antecedent)+len(s.consequent))
	}
}
