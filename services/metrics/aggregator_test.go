package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"repairhub/models"
)

func completed(id, provider string, amount *float64, at time.Time) models.ServiceRequest {
	ts := at
	return models.ServiceRequest{
		ID:               id,
		ServiceType:      "Plumbing",
		Status:           models.StatusCompleted,
		ProviderID:       provider,
		CompletedAt:      &ts,
		PaymentAmount:    amount,
		PaymentMethod:    "cash",
		PaymentTimestamp: &ts,
	}
}

func amount(v float64) *float64 { return &v }

func TestAggregateEmptyHistory(t *testing.T) {
	rollup := Aggregate("prov-a", nil, nil, models.PeriodMonth, time.UTC)

	if rollup.TotalEarnings != 0 || rollup.CompletedServices != 0 {
		t.Fatalf("expected zero totals, got %+v", rollup)
	}
	if rollup.AverageRating != nil {
		t.Fatalf("expected undefined average rating, got %v", *rollup.AverageRating)
	}
	if len(rollup.EarningsByPeriod) != 0 || len(rollup.ServicesByPeriod) != 0 {
		t.Fatalf("expected empty series")
	}

	b, err := json.Marshal(rollup)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(b, []byte(`"averageRating":null`)) || !bytes.Contains(b, []byte(`"earningsByPeriod":[]`)) {
		t.Fatalf("unexpected encoding: %s", b)
	}
}

func TestAggregateSingleCompletion(t *testing.T) {
	at := time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)
	requests := []models.ServiceRequest{completed("r1", "prov-a", amount(150), at)}

	rollup := Aggregate("prov-a", requests, nil, models.PeriodMonth, time.UTC)

	if rollup.TotalEarnings != 150 {
		t.Fatalf("expected total 150, got %v", rollup.TotalEarnings)
	}
	if rollup.CompletedServices != 1 {
		t.Fatalf("expected 1 completed service, got %d", rollup.CompletedServices)
	}
	if len(rollup.EarningsByPeriod) != 1 || rollup.EarningsByPeriod[0].Period != "Mar 2025" || rollup.EarningsByPeriod[0].Amount != 150 {
		t.Fatalf("unexpected earnings series: %+v", rollup.EarningsByPeriod)
	}
	if rollup.ServicesByPeriod[0].Count != 1 {
		t.Fatalf("unexpected services series: %+v", rollup.ServicesByPeriod)
	}
}

func TestAggregateFiltersAndMissingData(t *testing.T) {
	march := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 5, 9, 0, 0, 0, time.UTC)

	noTimestamp := models.ServiceRequest{ID: "r4", Status: models.StatusCompleted, ProviderID: "prov-a", PaymentAmount: amount(40)}
	inProgress := models.ServiceRequest{ID: "r5", Status: models.StatusInProgress, ProviderID: "prov-a"}

	requests := []models.ServiceRequest{
		completed("r1", "prov-a", amount(100), april),
		completed("r2", "prov-a", nil, march),
		completed("r3", "prov-b", amount(999), march),
		noTimestamp,
		inProgress,
	}

	rollup := Aggregate("prov-a", requests, nil, models.PeriodMonth, time.UTC)

	if rollup.CompletedServices != 3 {
		t.Fatalf("expected 3 completed services, got %d", rollup.CompletedServices)
	}
	if rollup.TotalEarnings != 140 {
		t.Fatalf("expected 140, got %v", rollup.TotalEarnings)
	}
	// First-seen order: April appears before March in the input.
	if got := rollup.EarningsByPeriod; len(got) != 2 || got[0].Period != "Apr 2025" || got[1].Period != "Mar 2025" {
		t.Fatalf("unexpected series order: %+v", got)
	}
	if rollup.EarningsByPeriod[1].Amount != 0 || rollup.ServicesByPeriod[1].Count != 1 {
		t.Fatalf("record without amount should count but not earn: %+v %+v", rollup.EarningsByPeriod[1], rollup.ServicesByPeriod[1])
	}

	sorted := rollup.SortedChronologically()
	if sorted.EarningsByPeriod[0].Period != "Mar 2025" {
		t.Fatalf("expected chronological order, got %+v", sorted.EarningsByPeriod)
	}
	if rollup.EarningsByPeriod[0].Period != "Apr 2025" {
		t.Fatalf("sorting must not modify the original rollup")
	}
}

func TestAggregateRatings(t *testing.T) {
	feedback := []models.ProviderFeedbackRecord{
		{RequestID: "r1", ProviderID: "prov-a", WorkQuality: 5},
		{RequestID: "r1", ProviderID: "prov-a", WorkQuality: 1}, // duplicate for the same request
		{RequestID: "r2", ProviderID: "prov-a", WorkQuality: 4},
		{RequestID: "r3", ProviderID: "prov-a", WorkQuality: 9},
		{RequestID: "r4", ProviderID: "prov-b", WorkQuality: 1},
	}

	rollup := Aggregate("prov-a", nil, feedback, models.PeriodMonth, time.UTC)

	if rollup.AverageRating == nil || *rollup.AverageRating != 4.5 {
		t.Fatalf("expected average 4.5, got %v", rollup.AverageRating)
	}
	if rollup.RatingCount != 2 {
		t.Fatalf("expected 2 ratings, got %d", rollup.RatingCount)
	}
}

func TestBucketLabels(t *testing.T) {
	// 2025-01-01 is a Wednesday in ISO week 1 of 2025.
	ts := time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		g         models.PeriodGranularity
		wantLabel string
		wantStart time.Time
	}{
		{models.PeriodDay, "2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{models.PeriodWeek, "2025-W01", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
		{models.PeriodMonth, "Jan 2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{models.PeriodYear, "2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		label, start := bucket(ts, tt.g)
		if label != tt.wantLabel || !start.Equal(tt.wantStart) {
			t.Fatalf("%s: got %q %v, want %q %v", tt.g, label, start, tt.wantLabel, tt.wantStart)
		}
	}
}

func TestBucketUsesLocation(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	// 22:30 UTC on Mar 31 is already April in UTC+3.
	at := time.Date(2025, 3, 31, 22, 30, 0, 0, time.UTC)
	rollup := Aggregate("prov-a", []models.ServiceRequest{completed("r1", "prov-a", amount(10), at)}, nil, models.PeriodMonth, loc)

	if rollup.EarningsByPeriod[0].Period != "Apr 2025" {
		t.Fatalf("expected Apr 2025, got %s", rollup.EarningsByPeriod[0].Period)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	base := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	var requests []models.ServiceRequest
	for i := 0; i < 20; i++ {
		requests = append(requests, completed("r", "prov-a", amount(float64(i)*12.5), base.AddDate(0, 0, i*3)))
	}
	feedback := []models.ProviderFeedbackRecord{{RequestID: "r", ProviderID: "prov-a", WorkQuality: 3}}

	first, _ := json.Marshal(Aggregate("prov-a", requests, feedback, models.PeriodWeek, time.UTC))
	second, _ := json.Marshal(Aggregate("prov-a", requests, feedback, models.PeriodWeek, time.UTC))
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated aggregation differs:\n%s\n%s", first, second)
	}
}

func TestSummarizeEarningsWindows(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	requests := []models.ServiceRequest{
		completed("today", "prov-a", amount(10), time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)),
		completed("week", "prov-a", amount(20), time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)),
		completed("month", "prov-a", amount(30), time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)),
		completed("year", "prov-a", amount(40), time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)),
		completed("old", "prov-a", amount(50), time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)),
		completed("unpaid", "prov-a", nil, time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)),
	}

	summary := SummarizeEarnings("prov-a", requests, now, time.UTC)

	if summary.Daily != 10 || summary.Weekly != 30 || summary.Monthly != 60 || summary.Yearly != 100 {
		t.Fatalf("unexpected windows: %+v", summary)
	}
	if len(summary.RecentTransactions) != 5 || summary.RecentTransactions[0].RequestID != "today" {
		t.Fatalf("unexpected transactions: %+v", summary.RecentTransactions)
	}
	if len(summary.MonthlyData) != 3 || summary.MonthlyData[0].Period != "Mar 2025" || summary.MonthlyData[0].Amount != 60 {
		t.Fatalf("unexpected monthly data: %+v", summary.MonthlyData)
	}
}

func TestSummarizeEarningsCapsTransactions(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	var requests []models.ServiceRequest
	for i := 0; i < 15; i++ {
		requests = append(requests, completed("r", "prov-a", amount(1), now.Add(-time.Duration(i)*time.Hour)))
	}

	summary := SummarizeEarnings("prov-a", requests, now, time.UTC)

	if len(summary.RecentTransactions) != recentTransactionLimit {
		t.Fatalf("expected %d transactions, got %d", recentTransactionLimit, len(summary.RecentTransactions))
	}
	if summary.Daily != 13 {
		t.Fatalf("expected 13 in today's window, got %v", summary.Daily)
	}
}
