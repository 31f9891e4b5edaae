package model

// ConcurrencyStatus represents the LLM concurrency slot usage
type ConcurrencyStatus struct {
	Model              string `json:"model"`
	CurrentConcurrency int    `json:"current_concurrency"`
	MaxConcurrency     int    `json:"max_concurrency"`
	AvailableSlots     int    `json:"available_slots"`
	Error              string `json:"error,omitempty"`
}

// InterpretResponse represents the interpret endpoint response
type InterpretResponse struct {
	Success  bool      `json:"success"`
	AIReport *AIReport `json:"aiReport"`
}
