package market

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepo struct{ DB *pgxpool.Pool }

const purchaseCols = `id, buyer_id, seller_id, product_id, price, payment_method, created_at`

func (r *PurchaseRepo) list(ctx context.Context, where, id string) ([]Purchase, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+purchaseCols+` FROM purchases WHERE `+where+`=$1
		ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, WrapInternal(err, "list purchases")
	}
	defer rows.Close()

	out := []Purchase{}
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.BuyerID, &p.SellerID, &p.ProductID,
			&p.Price, &p.PaymentMethod, &p.CreatedAt); err != nil {
			return nil, WrapInternal(err, "scan purchase")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByBuyer = riwayat pembelian user.
func (r *PurchaseRepo) ListByBuyer(ctx context.Context, buyerID string) ([]Purchase, error) {
	return r.list(ctx, "buyer_id", buyerID)
}

// ListBySeller = riwayat penjualan user.
func (r *PurchaseRepo) ListBySeller(ctx context.Context, sellerID string) ([]Purchase, error) {
	return r.list(ctx, "seller_id", sellerID)
}
