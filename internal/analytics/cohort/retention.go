// Package cohort builds month-over-month retention matrices. Unlike RFM,
// this analysis is advisory: thin input degrades to an explicit
// insufficient-data report instead of failing.
package cohort

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/retail-lens/backend/internal/dataset"
)

const insufficientDataMessage = "Insufficient data for retention analysis."

// Row is one cohort's retention curve. Rates[0] is the acquisition month
// and is always exactly 1 for a non-empty cohort.
type Row struct {
	Cohort string    `json:"cohort"`
	Rates  []float64 `json:"rates"`
}

type Report struct {
	Cohorts        []Row   `json:"retention_data"`
	AvgRetention   float64 `json:"avg_retention"`
	Recommendation string  `json:"recommendation"`
}

// monthKey linearizes a calendar month so offsets across year boundaries
// subtract correctly.
func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func monthLabel(key int) string {
	return fmt.Sprintf("%04d-%02d", key/12, key%12+1)
}

// Compute assigns every customer to the calendar month of their first
// invoice, pivots distinct active customers by cohort month and months
// since acquisition, and normalizes each cohort by its own size.
func Compute(table *dataset.Table) Report {
	type cell struct{ cohort, offset int }

	firstMonth := make(map[string]int)
	activeMonths := make(map[string]map[int]struct{})
	for _, row := range table.Rows {
		m := monthKey(row.InvoiceDate)
		if prev, ok := firstMonth[row.CustomerID]; !ok || m < prev {
			firstMonth[row.CustomerID] = m
		}
		months, ok := activeMonths[row.CustomerID]
		if !ok {
			months = make(map[int]struct{})
			activeMonths[row.CustomerID] = months
		}
		months[m] = struct{}{}
	}

	if len(firstMonth) == 0 {
		return Report{Cohorts: []Row{}, Recommendation: insufficientDataMessage}
	}

	counts := make(map[cell]int)
	maxOffset := 0
	cohortSet := make(map[int]struct{})
	for id, months := range activeMonths {
		cohort := firstMonth[id]
		cohortSet[cohort] = struct{}{}
		for m := range months {
			offset := m - cohort
			counts[cell{cohort, offset}]++
			if offset > maxOffset {
				maxOffset = offset
			}
		}
	}

	cohorts := make([]int, 0, len(cohortSet))
	for c := range cohortSet {
		cohorts = append(cohorts, c)
	}
	sort.Ints(cohorts)

	rows := make([]Row, 0, len(cohorts))
	for _, cohort := range cohorts {
		size := counts[cell{cohort, 0}]
		rates := make([]float64, maxOffset+1)
		for offset := 0; offset <= maxOffset; offset++ {
			if size > 0 {
				rates[offset] = round2(float64(counts[cell{cohort, offset}]) / float64(size))
			}
		}
		rows = append(rows, Row{Cohort: monthLabel(cohort), Rates: rates})
	}

	// Offset zero is 1.0 by construction and would bias the mean, so the
	// average covers offsets >= 1 only.
	avg := 0.0
	if maxOffset >= 1 {
		sum := 0.0
		for offset := 1; offset <= maxOffset; offset++ {
			colSum := 0.0
			for _, row := range rows {
				colSum += row.Rates[offset]
			}
			sum += colSum / float64(len(rows))
		}
		avg = sum / float64(maxOffset)
	} else {
		return Report{Cohorts: rows, Recommendation: insufficientDataMessage}
	}

	return Report{
		Cohorts:        rows,
		AvgRetention:   avg,
		Recommendation: recommendation(avg),
	}
}

func recommendation(avg float64) string {
	pct := fmt.Sprintf("%.1f%%", avg*100)
	switch {
	case avg < 0.3:
		return fmt.Sprintf("Low retention rate of %s; focus on loyalty programs and customer engagement.", pct)
	case avg < 0.6:
		return fmt.Sprintf("Moderate retention rate of %s; enhance customer engagement with personalized offers.", pct)
	default:
		return fmt.Sprintf("High retention rate of %s; maintain current strategies and consider referral programs.", pct)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
