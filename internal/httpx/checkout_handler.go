package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/checkout"
	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/go-chi/chi/v5"
)

// Purchaser abstraksi checkout.Coordinator untuk handler (dan test-nya).
type Purchaser interface {
	Purchase(ctx context.Context, buyerID string, productIDs []string) (*checkout.BatchResult, error)
	BuyNow(ctx context.Context, buyerID, productID, paymentMethod string) (*checkout.BuyNowResult, error)
}

// CartLister: isi cart user untuk checkout semua sekaligus.
type CartLister interface {
	ProductIDs(ctx context.Context, userID string) ([]string, error)
}

type CheckoutHandler struct {
	Checkout Purchaser
	Cart     CartLister
	Prod     bool
}

func (h *CheckoutHandler) RegisterProtected(r chi.Router) {
	r.Post("/purchase", h.purchase)
	r.Post("/buy-now", h.buyNow)
	r.Post("/checkout", h.checkoutCart)
}

type purchaseReq struct {
	ProductIDs []string `json:"product_ids"`
}

type purchaseResp struct {
	Message   string `json:"message"`
	Purchased int    `json:"purchased"`
}

func (h *CheckoutHandler) purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, market.NewError(market.CodeValidation, "invalid json"), h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.Purchase(ctx, UserID(r), req.ProductIDs)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, purchaseResp{
		Message:   "purchase completed",
		Purchased: len(res.Purchases),
	})
}

// checkoutCart = purchase seluruh isi cart (konversi CartEntry -> Purchase).
func (h *CheckoutHandler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ids, err := h.Cart.ProductIDs(ctx, UserID(r))
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	if len(ids) == 0 {
		writeError(w, market.NewError(market.CodeValidation, "cart is empty"), h.Prod)
		return
	}

	res, err := h.Checkout.Purchase(ctx, UserID(r), ids)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, purchaseResp{
		Message:   "purchase completed",
		Purchased: len(res.Purchases),
	})
}

type buyNowReq struct {
	ProductID     string `json:"product_id"`
	PaymentMethod string `json:"payment_method"`
}

type buyNowResp struct {
	Message       string         `json:"message"`
	PurchaseID    string         `json:"purchase_id"`
	Product       market.Product `json:"product"`
	PaymentMethod string         `json:"payment_method"`
	TotalAmount   string         `json:"total_amount"`
}

func (h *CheckoutHandler) buyNow(w http.ResponseWriter, r *http.Request) {
	var req buyNowReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, market.NewError(market.CodeValidation, "invalid json"), h.Prod)
		return
	}
	if req.ProductID == "" {
		writeError(w, market.NewError(market.CodeValidation, "product_id is required"), h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Checkout.BuyNow(ctx, UserID(r), req.ProductID, req.PaymentMethod)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, buyNowResp{
		Message:       "purchase completed",
		PurchaseID:    res.Purchase.ID,
		Product:       res.Product,
		PaymentMethod: res.Purchase.PaymentMethod,
		TotalAmount:   res.Total.StringFixed(2),
	})
}
