package market

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutTx adalah operasi yang tersedia di dalam satu transaksi checkout.
// Semuanya jalan di atas satu tx yang sama; commit/rollback diatur InTx.
type CheckoutTx interface {
	// ProductForUpdate membaca product + lock row (FOR UPDATE).
	ProductForUpdate(ctx context.Context, id string) (*Product, error)
	// MarkSold conditional update: hanya apply kalau status masih available.
	MarkSold(ctx context.Context, id string) (bool, error)
	InsertPurchase(ctx context.Context, p *Purchase) error
	// ClearCartEntry no-op kalau entry tidak ada.
	ClearCartEntry(ctx context.Context, userID, productID string) error
}

// CheckoutStore menjalankan fn dalam satu transaksi database.
// fn return error -> rollback total, tidak ada side effect yang tersisa.
type CheckoutStore interface {
	InTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

type CheckoutRepo struct{ DB *pgxpool.Pool }

func (r *CheckoutRepo) InTx(ctx context.Context, fn func(tx CheckoutTx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return WrapInternal(err, "begin checkout tx")
	}
	defer tx.Rollback(ctx)

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		return err // rollback via defer
	}
	if err := tx.Commit(ctx); err != nil {
		return WrapInternal(err, "commit checkout tx")
	}
	return nil
}

type checkoutTx struct{ tx pgx.Tx }

func (c *checkoutTx) ProductForUpdate(ctx context.Context, id string) (*Product, error) {
	row := c.tx.QueryRow(ctx, `
		SELECT `+productCols+` FROM products WHERE id=$1 FOR UPDATE`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, WrapInternal(err, "lock product")
	}
	return p, nil
}

func (c *checkoutTx) MarkSold(ctx context.Context, id string) (bool, error) {
	ct, err := c.tx.Exec(ctx, `
		UPDATE products SET status='sold', updated_at=now()
		WHERE id=$1 AND status='available'`, id)
	if err != nil {
		return false, WrapInternal(err, "mark sold")
	}
	return ct.RowsAffected() == 1, nil
}

func (c *checkoutTx) InsertPurchase(ctx context.Context, p *Purchase) error {
	err := c.tx.QueryRow(ctx, `
		INSERT INTO purchases(id, buyer_id, seller_id, product_id, price, payment_method)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		p.ID, p.BuyerID, p.SellerID, p.ProductID, p.Price, p.PaymentMethod).Scan(&p.CreatedAt)
	if err != nil {
		return WrapInternal(err, "insert purchase")
	}
	return nil
}

func (c *checkoutTx) ClearCartEntry(ctx context.Context, userID, productID string) error {
	if _, err := c.tx.Exec(ctx, `
		DELETE FROM cart_entries WHERE user_id=$1 AND product_id=$2`, userID, productID); err != nil {
		return WrapInternal(err, "clear cart entry")
	}
	return nil
}
