package market

import (
	"encoding/json"
	"time"
)

const (
	EventProductViewed     = "ProductViewed"
	EventPurchaseCompleted = "PurchaseCompleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "market-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya product_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type ProductViewedPayload struct {
	ProductID string `json:"product_id"`
	ViewerID  string `json:"viewer_id,omitempty"` // kosong utk anonymous
}

type PurchaseCompletedPayload struct {
	PurchaseID    string `json:"purchase_id"`
	ProductID     string `json:"product_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	Price         string `json:"price"` // decimal string
	PaymentMethod string `json:"payment_method,omitempty"`
}
