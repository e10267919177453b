package entity

import "time"

type GreetingStatus string

const (
	StatusSent    GreetingStatus = "sent"
	StatusPending GreetingStatus = "pending"
	StatusFailed  GreetingStatus = "failed"
)

func (s GreetingStatus) Valid() bool {
	switch s {
	case StatusSent, StatusPending, StatusFailed:
		return true
	}
	return false
}

// GreetingRecord is a greeting a wallet has minted or is minting.
type GreetingRecord struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Recipient      string         `json:"recipient"`
	RecipientName  string         `json:"recipientName,omitempty"`
	Type           string         `json:"type"`
	Status         GreetingStatus `json:"status"`
	TxHash         string         `json:"txHash,omitempty"`
	MetadataURI    string         `json:"metadataUri,omitempty"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	SelectedDesign string         `json:"selectedDesign"`
	Owner          string         `json:"owner"`
	Greeting       GreetingResult `json:"greeting"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// SimilarGreeting is a history hit from a semantic search.
type SimilarGreeting struct {
	Record GreetingRecord `json:"record"`
	Score  float32        `json:"score"`
}
