package models

// StackedDealResult is the outcome of one optimization call. Created fresh
// per request; never an error — degraded outcomes are carried in Warnings.
type StackedDealResult struct {
	Deals            []Deal   `json:"deals"`
	TotalSavings     float64  `json:"total_savings"`
	FinalPrice       float64  `json:"final_price"`
	OriginalPrice    float64  `json:"original_price"`
	Confidence       float64  `json:"confidence"`
	ApplicationOrder []string `json:"application_order"`
	Warnings         []string `json:"warnings"`
	ProcessingTime   float64  `json:"processing_time"`
}

// StackValidation is the outcome of checking a caller-supplied stack.
// An incompatible stack is reported through Valid/Error, not an error value.
type StackValidation struct {
	Valid        bool     `json:"valid"`
	TotalSavings float64  `json:"total_savings,omitempty"`
	FinalPrice   float64  `json:"final_price,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
	Warnings     []string `json:"warnings"`
	Error        string   `json:"error,omitempty"`
}
