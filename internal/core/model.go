package core

import (
	"time"
)

// Invoice represents an invoice record looked up by the pipeline
type Invoice struct {
	Number   string
	Vendor   string
	Amount   float64
	Currency string
	Status   string
	IssuedAt time.Time
	DueAt    time.Time
}

// Classification represents the result of the classification stage
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Email categories produced by the classifier
const (
	CategoryInvoice    = "invoice"
	CategorySupport    = "support"
	CategoryComplaint  = "complaint"
	CategoryNewsletter = "newsletter"
	CategoryOther      = "other"
)
