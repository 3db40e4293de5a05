package feed

import (
	"errors"
	"sort"

	"repairhub/models"
)

// Filter narrows the provider's request feed.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterPending    Filter = "pending"
	FilterInProgress Filter = "in-progress"
	FilterCompleted  Filter = "completed"
	FilterUrgent     Filter = "urgent"
)

var ErrUnknownFilter = errors.New("filter must be one of all, pending, in-progress, completed, urgent")

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterInProgress, FilterCompleted, FilterUrgent:
		return f, nil
	}
	return "", ErrUnknownFilter
}

// visible reports whether providerID may see req at all: open requests are
// visible to everyone, claimed ones only to their claimant.
func visible(req models.ServiceRequest, providerID string) bool {
	return req.Status == models.StatusPending || (providerID != "" && req.ProviderID == providerID)
}

func (f Filter) match(req models.ServiceRequest, providerID string) bool {
	switch f {
	case FilterPending:
		return req.Status == models.StatusPending
	case FilterInProgress:
		return req.Status == models.StatusInProgress && req.ProviderID == providerID
	case FilterCompleted:
		return req.Status == models.StatusCompleted && req.ProviderID == providerID
	case FilterUrgent:
		return req.IsUrgent
	default:
		return true
	}
}

// Apply returns the requests providerID sees under f, newest first. The input
// slice is not modified.
func Apply(requests []models.ServiceRequest, providerID string, f Filter) []models.ServiceRequest {
	out := make([]models.ServiceRequest, 0, len(requests))
	for _, req := range requests {
		if visible(req, providerID) && f.match(req, providerID) {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
