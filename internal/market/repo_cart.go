package market

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepo struct{ DB *pgxpool.Pool }

// Entry duplikat tidak boleh bikin error ataupun baris kedua.
const insertCartEntrySQL = `
		INSERT INTO cart_entries(user_id, product_id)
		VALUES ($1,$2)
		ON CONFLICT (user_id, product_id) DO NOTHING`

// Add idempotent: entry duplikat di-skip via ON CONFLICT.
// Product sendiri atau yang sudah sold ditolak di sini, bukan saat checkout saja,
// supaya cart tidak pernah berisi barang yang pasti gagal dibeli.
func (r *CartRepo) Add(ctx context.Context, userID, productID string) error {
	p, err := (&ProductRepo{DB: r.DB}).Get(ctx, productID)
	if err != nil {
		return err
	}
	if p.Status != StatusAvailable {
		return ErrProductUnavailable
	}
	if p.OwnerID == userID {
		return ErrSelfPurchase
	}
	_, err = r.DB.Exec(ctx, insertCartEntrySQL, userID, productID)
	if err != nil {
		return WrapInternal(err, "add cart entry")
	}
	return nil
}

// Remove no-op kalau entry tidak ada.
func (r *CartRepo) Remove(ctx context.Context, userID, productID string) error {
	if _, err := r.DB.Exec(ctx, `
		DELETE FROM cart_entries WHERE user_id=$1 AND product_id=$2`, userID, productID); err != nil {
		return WrapInternal(err, "remove cart entry")
	}
	return nil
}

func (r *CartRepo) List(ctx context.Context, userID string) ([]CartItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.owner_id, p.title, p.description, p.category, p.price,
		       p.image_url, p.status, p.view_count, p.created_at, p.updated_at,
		       c.added_at
		FROM cart_entries c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.added_at DESC`, userID)
	if err != nil {
		return nil, WrapInternal(err, "list cart")
	}
	defer rows.Close()

	out := []CartItem{}
	for rows.Next() {
		var it CartItem
		p := &it.Product
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Category,
			&p.Price, &p.ImageURL, &p.Status, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
			&it.AddedAt); err != nil {
			return nil, WrapInternal(err, "scan cart item")
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ProductIDs untuk checkout batch dari isi cart.
func (r *CartRepo) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id FROM cart_entries WHERE user_id=$1 ORDER BY added_at`, userID)
	if err != nil {
		return nil, WrapInternal(err, "list cart ids")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, WrapInternal(err, "scan cart id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
