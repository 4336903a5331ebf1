package checkout

import (
	"context"
	"fmt"
	"sort"
	"time"

	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Coordinator menjalankan transisi cart -> purchase. Satu-satunya jalur yang
// boleh mengubah status product jadi sold.
type Coordinator struct {
	Store    market.CheckoutStore
	Producer *kafkax.Producer // purchase.completed; boleh nil (mis. di test)
	Service  string
}

type RejectDetail struct {
	ProductID string         `json:"product_id"`
	Reason    market.ErrCode `json:"reason"`
}

type BatchResult struct {
	Purchases []market.Purchase `json:"purchases"`
	Total     decimal.Decimal   `json:"total"`
}

type BuyNowResult struct {
	Purchase market.Purchase `json:"purchase"`
	Product  market.Product  `json:"product"`
	Total    decimal.Decimal `json:"total_amount"`
}

var paymentMethods = map[string]bool{
	"paypal":        true,
	"credit_card":   true,
	"debit_card":    true,
	"bank_transfer": true,
	"cash":          true,
}

func ValidPaymentMethod(m string) bool { return paymentMethods[m] }

// Purchase: batch all-or-nothing. Setiap product dicek dan di-flip dalam satu
// transaksi; satu saja gagal validasi -> seluruh batch rollback dan error
// menyebutkan product mana yang gagal plus alasannya.
func (c *Coordinator) Purchase(ctx context.Context, buyerID string, productIDs []string) (*BatchResult, error) {
	ids, verr := normalizeIDs(buyerID, productIDs)
	if verr != nil {
		return nil, verr
	}

	var res BatchResult
	err := c.Store.InTx(ctx, func(tx market.CheckoutTx) error {
		var rejects []RejectDetail
		total := decimal.Zero
		for _, id := range ids {
			p, err := tx.ProductForUpdate(ctx, id)
			if err != nil {
				return err
			}
			switch {
			case p == nil:
				rejects = append(rejects, RejectDetail{ProductID: id, Reason: market.CodeNotFound})
				continue
			case p.Status != market.StatusAvailable:
				rejects = append(rejects, RejectDetail{ProductID: id, Reason: market.CodeUnavailable})
				continue
			case p.OwnerID == buyerID:
				rejects = append(rejects, RejectDetail{ProductID: id, Reason: market.CodeSelfPurchase})
				continue
			}

			ok, err := tx.MarkSold(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				// conditional update tidak apply -> status sudah bukan available
				rejects = append(rejects, RejectDetail{ProductID: id, Reason: market.CodeUnavailable})
				continue
			}

			pur := market.Purchase{
				ID:        uuid.NewString(),
				BuyerID:   buyerID,
				SellerID:  p.OwnerID,
				ProductID: p.ID,
				Price:     p.Price, // snapshot harga saat jual
			}
			if err := tx.InsertPurchase(ctx, &pur); err != nil {
				return err
			}
			if err := tx.ClearCartEntry(ctx, buyerID, p.ID); err != nil {
				return err
			}
			res.Purchases = append(res.Purchases, pur)
			total = total.Add(p.Price)
		}
		if len(rejects) > 0 {
			return rejectError(rejects) // rollback seluruh batch
		}
		res.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, pur := range res.Purchases {
		c.publishCompleted(pur)
	}
	return &res, nil
}

// BuyNow: varian satu product dengan payment method sebagai metadata
// (tidak ada call ke gateway manapun).
func (c *Coordinator) BuyNow(ctx context.Context, buyerID, productID, paymentMethod string) (*BuyNowResult, error) {
	if buyerID == "" {
		return nil, market.NewError(market.CodeUnauthorized, "missing buyer")
	}
	if _, err := uuid.Parse(productID); err != nil {
		return nil, market.NewError(market.CodeValidation, "invalid product id", productID)
	}
	if !ValidPaymentMethod(paymentMethod) {
		return nil, market.NewError(market.CodeValidation, "invalid payment method", paymentMethod)
	}

	var res BuyNowResult
	err := c.Store.InTx(ctx, func(tx market.CheckoutTx) error {
		p, err := tx.ProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return market.ErrProductNotFound
		}
		if p.Status != market.StatusAvailable {
			return market.ErrProductUnavailable
		}
		if p.OwnerID == buyerID {
			return market.ErrSelfPurchase
		}

		ok, err := tx.MarkSold(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return market.ErrProductUnavailable
		}

		pur := market.Purchase{
			ID:            uuid.NewString(),
			BuyerID:       buyerID,
			SellerID:      p.OwnerID,
			ProductID:     p.ID,
			Price:         p.Price,
			PaymentMethod: paymentMethod,
		}
		if err := tx.InsertPurchase(ctx, &pur); err != nil {
			return err
		}
		if err := tx.ClearCartEntry(ctx, buyerID, p.ID); err != nil {
			return err
		}

		p.Status = market.StatusSold
		res = BuyNowResult{Purchase: pur, Product: *p, Total: pur.Price}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publishCompleted(res.Purchase)
	return &res, nil
}

// normalizeIDs: validasi uuid, buang duplikat, urutkan.
// Urutan deterministik mencegah deadlock antar batch yang saling silang
// (lock selalu diambil dengan urutan sama).
func normalizeIDs(buyerID string, productIDs []string) ([]string, *market.Error) {
	if buyerID == "" {
		return nil, market.NewError(market.CodeUnauthorized, "missing buyer")
	}
	if len(productIDs) == 0 {
		return nil, market.NewError(market.CodeValidation, "product_ids is required")
	}
	var bad []string
	seen := map[string]bool{}
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if _, err := uuid.Parse(id); err != nil {
			bad = append(bad, id)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(bad) > 0 {
		return nil, market.NewError(market.CodeValidation, "invalid product ids", bad...)
	}
	sort.Strings(ids)
	return ids, nil
}

// Urutan prioritas reason kalau batch gagal campuran; code error batch
// tidak boleh tergantung urutan product id.
var rejectPrecedence = map[market.ErrCode]int{
	market.CodeNotFound:     0,
	market.CodeSelfPurchase: 1,
	market.CodeUnavailable:  2,
}

func rejectError(rejects []RejectDetail) *market.Error {
	code := rejects[0].Reason
	details := make([]string, 0, len(rejects))
	for _, r := range rejects {
		if rejectPrecedence[r.Reason] < rejectPrecedence[code] {
			code = r.Reason
		}
		details = append(details, fmt.Sprintf("%s: %s", r.ProductID, r.Reason))
	}
	return market.NewError(code, "purchase rejected", details...)
}

func (c *Coordinator) publishCompleted(pur market.Purchase) {
	if c.Producer == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventPurchaseCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      c.Service,
		CorrelationID: pur.ProductID,
		Payload: kafkax.MustMarshal(market.PurchaseCompletedPayload{
			PurchaseID:    pur.ID,
			ProductID:     pur.ProductID,
			BuyerID:       pur.BuyerID,
			SellerID:      pur.SellerID,
			Price:         pur.Price.String(),
			PaymentMethod: pur.PaymentMethod,
		}),
	}
	c.Producer.Publish(market.PartitionKey(pur.ProductID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventPurchaseCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
