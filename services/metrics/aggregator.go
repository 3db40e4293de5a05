// Package metrics folds a provider's completed requests and feedback into
// earnings and rating rollups. The aggregation functions are pure and keep no
// state between calls.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"repairhub/models"
)

const recentTransactionLimit = 10

// Aggregate builds the rollup of providerID from already-fetched records.
// Series follow the order in which buckets are first seen in requests; use
// PerformanceRollup.SortedChronologically for calendar order.
func Aggregate(providerID string, requests []models.ServiceRequest, feedback []models.ProviderFeedbackRecord, granularity models.PeriodGranularity, loc *time.Location) models.PerformanceRollup {
	if loc == nil {
		loc = time.UTC
	}
	rollup := models.PerformanceRollup{
		ProviderID:       providerID,
		Granularity:      granularity,
		EarningsByPeriod: []models.PeriodAmount{},
		ServicesByPeriod: []models.PeriodCount{},
	}

	index := map[string]int{}
	for _, req := range requests {
		if req.Status != models.StatusCompleted || req.ProviderID != providerID {
			continue
		}
		rollup.CompletedServices++
		if req.PaymentAmount != nil {
			rollup.TotalEarnings += *req.PaymentAmount
		}

		ts, ok := settledAt(req)
		if !ok {
			continue
		}
		label, start := bucket(ts.In(loc), granularity)
		i, seen := index[label]
		if !seen {
			i = len(rollup.EarningsByPeriod)
			index[label] = i
			rollup.EarningsByPeriod = append(rollup.EarningsByPeriod, models.PeriodAmount{Period: label, Start: start})
			rollup.ServicesByPeriod = append(rollup.ServicesByPeriod, models.PeriodCount{Period: label, Start: start})
		}
		rollup.ServicesByPeriod[i].Count++
		if req.PaymentAmount != nil {
			rollup.EarningsByPeriod[i].Amount += *req.PaymentAmount
		}
	}

	rollup.AverageRating, rollup.RatingCount = averageRating(providerID, feedback)
	return rollup
}

// averageRating returns nil when no usable rating exists. Out-of-range scores are
// skipped and only the first record per request counts.
func averageRating(providerID string, feedback []models.ProviderFeedbackRecord) (*float64, int) {
	seen := map[string]bool{}
	total, count := 0, 0
	for _, f := range feedback {
		if f.ProviderID != providerID || !f.ValidScore() {
			continue
		}
		if f.RequestID != "" {
			if seen[f.RequestID] {
				continue
			}
			seen[f.RequestID] = true
		}
		total += f.WorkQuality
		count++
	}
	if count == 0 {
		return nil, 0
	}
	avg := float64(total) / float64(count)
	return &avg, count
}

// SummarizeEarnings computes the windowed earnings view as of now: since local
// midnight, the last seven days, since the first of the month and since Jan 1.
func SummarizeEarnings(providerID string, requests []models.ServiceRequest, now time.Time, loc *time.Location) models.EarningsSummary {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := dayStart.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)

	summary := models.EarningsSummary{
		ProviderID:         providerID,
		AsOf:               now,
		RecentTransactions: []models.Transaction{},
		MonthlyData:        []models.PeriodAmount{},
	}
	index := map[string]int{}
	for _, req := range requests {
		if req.Status != models.StatusCompleted || req.ProviderID != providerID || req.PaymentAmount == nil {
			continue
		}
		ts, ok := settledAt(req)
		if !ok {
			continue
		}
		ts = ts.In(loc)
		amount := *req.PaymentAmount

		if !ts.Before(dayStart) {
			summary.Daily += amount
		}
		if !ts.Before(weekStart) {
			summary.Weekly += amount
		}
		if !ts.Before(monthStart) {
			summary.Monthly += amount
		}
		if !ts.Before(yearStart) {
			summary.Yearly += amount
		}

		label, start := bucket(ts, models.PeriodMonth)
		i, seen := index[label]
		if !seen {
			i = len(summary.MonthlyData)
			index[label] = i
			summary.MonthlyData = append(summary.MonthlyData, models.PeriodAmount{Period: label, Start: start})
		}
		summary.MonthlyData[i].Amount += amount

		summary.RecentTransactions = append(summary.RecentTransactions, models.Transaction{
			RequestID:     req.ID,
			Amount:        amount,
			Date:          ts,
			ServiceType:   req.ServiceType,
			PaymentMethod: req.PaymentMethod,
		})
	}

	sort.SliceStable(summary.RecentTransactions, func(i, j int) bool {
		return summary.RecentTransactions[i].Date.After(summary.RecentTransactions[j].Date)
	})
	if len(summary.RecentTransactions) > recentTransactionLimit {
		summary.RecentTransactions = summary.RecentTransactions[:recentTransactionLimit]
	}
	return summary
}

// settledAt prefers the payment timestamp and falls back to completion time.
func settledAt(req models.ServiceRequest) (time.Time, bool) {
	switch {
	case req.PaymentTimestamp != nil && !req.PaymentTimestamp.IsZero():
		return *req.PaymentTimestamp, true
	case req.CompletedAt != nil && !req.CompletedAt.IsZero():
		return *req.CompletedAt, true
	}
	return time.Time{}, false
}

func bucket(t time.Time, g models.PeriodGranularity) (string, time.Time) {
	loc := t.Location()
	switch g {
	case models.PeriodDay:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return start.Format("2006-01-02"), start
	case models.PeriodWeek:
		year, week := t.ISOWeek()
		offset := (int(t.Weekday()) + 6) % 7 // days since Monday
		start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
		return fmt.Sprintf("%04d-W%02d", year, week), start
	case models.PeriodYear:
		start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return start.Format("2006"), start
	default:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		return start.Format("Jan 2006"), start
	}
}
