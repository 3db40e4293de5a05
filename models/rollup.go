// File: models/rollup.go
package models

import (
	"sort"
	"time"
)

// PeriodGranularity selects the calendar bucket used for time series.
type PeriodGranularity string

const (
	PeriodDay   PeriodGranularity = "day"
	PeriodWeek  PeriodGranularity = "week"
	PeriodMonth PeriodGranularity = "month"
	PeriodYear  PeriodGranularity = "year"
)

// Valid reports whether g is a supported granularity.
func (g PeriodGranularity) Valid() bool {
	switch g {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// PeriodAmount is one bucket of an earnings series.
type PeriodAmount struct {
	Period string    `json:"period"` // Bucket label, e.g. "Mar 2025"
	Start  time.Time `json:"start"`  // First instant of the bucket
	Amount float64   `json:"earnings"`
}

// PeriodCount is one bucket of a completed-services series.
type PeriodCount struct {
	Period string    `json:"period"`
	Start  time.Time `json:"start"`
	Count  int       `json:"value"`
}

// PerformanceRollup is the derived earnings/rating summary of one provider.
// AverageRating is nil when the provider has no ratings.
type PerformanceRollup struct {
	ProviderID        string            `json:"providerId"`
	Granularity       PeriodGranularity `json:"granularity"`
	TotalEarnings     float64           `json:"totalEarnings"`
	AverageRating     *float64          `json:"averageRating"`
	RatingCount       int               `json:"ratingCount"`
	CompletedServices int               `json:"completedServices"`
	EarningsByPeriod  []PeriodAmount    `json:"earningsByPeriod"`
	ServicesByPeriod  []PeriodCount     `json:"servicesByPeriod"`
}

// SortedChronologically returns a copy whose series are ordered by bucket start.
// The series are otherwise in first-seen order.
func (r PerformanceRollup) SortedChronologically() PerformanceRollup {
	earnings := append([]PeriodAmount(nil), r.EarningsByPeriod...)
	services := append([]PeriodCount(nil), r.ServicesByPeriod...)
	sort.SliceStable(earnings, func(i, j int) bool { return earnings[i].Start.Before(earnings[j].Start) })
	sort.SliceStable(services, func(i, j int) bool { return services[i].Start.Before(services[j].Start) })
	r.EarningsByPeriod = earnings
	r.ServicesByPeriod = services
	return r
}

// Transaction is one completed, paid request in an earnings listing.
type Transaction struct {
	RequestID     string    `json:"id"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	ServiceType   string    `json:"serviceType"`
	PaymentMethod string    `json:"paymentMethod"`
}

// EarningsSummary is the windowed earnings view of one provider as of a point in time.
type EarningsSummary struct {
	ProviderID         string         `json:"providerId"`
	AsOf               time.Time      `json:"asOf"`
	Daily              float64        `json:"daily"`
	Weekly             float64        `json:"weekly"`
	Monthly            float64        `json:"monthly"`
	Yearly             float64        `json:"yearly"`
	RecentTransactions []Transaction  `json:"recentTransactions"`
	MonthlyData        []PeriodAmount `json:"monthlyData"`
}
