package model

import "time"

// TrainingSample is a labeled (description, category) pair used to train the
// statistical classifier. Samples created from user feedback are verified.
type TrainingSample struct {
	CreatedAt         time.Time
	Description       string
	Category          string
	Amount            float64
	TransactionTypeID int
	ID                int64
	Verified          bool
}

// Feedback is the caller-supplied record of a user accepting or correcting a
// category suggestion.
type Feedback struct {
	Amount            *float64
	UserID            string
	Description       string
	SuggestedCategory string
	ActualCategory    string
	Confidence        float64
	WasAccepted       bool
}

// FeedbackRecord is the persisted, append-only audit entry for one feedback
// event. Records are never mutated after creation.
type FeedbackRecord struct {
	CreatedAt         time.Time
	Amount            *float64
	ID                string
	UserID            string
	Description       string
	SuggestedCategory string
	ActualCategory    string
	MerchantPattern   string
	ConfidenceScore   float64
	WasAccepted       bool
}
