package models

import "time"

// ProviderFeedbackRecord is a customer's rating of one completed request ("feedback" collection).
type ProviderFeedbackRecord struct {
	ID                 string    `bson:"id" json:"id" firestore:"-"`
	RequestID          string    `bson:"serviceId" json:"serviceId" firestore:"serviceId"`    // Rated request
	ProviderID         string    `bson:"providerId" json:"providerId" firestore:"providerId"` // Rated provider
	UserID             string    `bson:"userId,omitempty" json:"userId,omitempty" firestore:"userId,omitempty"`
	ProviderName       string    `bson:"providerName,omitempty" json:"providerName,omitempty" firestore:"providerName,omitempty"`
	ServiceUsed        string    `bson:"serviceUsed,omitempty" json:"serviceUsed,omitempty" firestore:"serviceUsed,omitempty"`
	WorkQuality        int       `bson:"workQuality" json:"workQuality" firestore:"workQuality"`                // 1..5
	ExperienceRating   string    `bson:"experienceRating" json:"experienceRating" firestore:"experienceRating"` // e.g. "Very Satisfied"
	AdditionalFeedback string    `bson:"additionalFeedback,omitempty" json:"additionalFeedback,omitempty" firestore:"additionalFeedback,omitempty"`
	ProviderOnTime     Flag      `bson:"providerOnTime" json:"providerOnTime" firestore:"providerOnTime"`
	Recommended        Flag      `bson:"recommendation" json:"recommendation" firestore:"recommendation"`
	IssueResolved      Flag      `bson:"issueResolution" json:"issueResolution" firestore:"issueResolution"`
	ServiceCompletion  string    `bson:"serviceCompletion,omitempty" json:"serviceCompletion,omitempty" firestore:"serviceCompletion,omitempty"`
	Timestamp          time.Time `bson:"timestamp" json:"timestamp" firestore:"timestamp"`
}

const (
	MinWorkQuality = 1
	MaxWorkQuality = 5
)

// ValidScore reports whether the quality score is inside the rating scale.
func (f *ProviderFeedbackRecord) ValidScore() bool {
	return f.WorkQuality >= MinWorkQuality && f.WorkQuality <= MaxWorkQuality
}
