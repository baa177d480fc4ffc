package models

// --- API Input Structs ---

type CreateIntentInput struct {
	OrderID int64 `json:"orderId" binding:"required"`
}

// --- API Output Structs ---

// PaymentIntentView echoes back the processor handle the frontend needs to
// complete the payment.
type PaymentIntentView struct {
	ClientSecret string  `json:"clientSecret"`
	OrderID      int64   `json:"orderId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
}
