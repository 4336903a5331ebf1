package market

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteRepo struct{ DB *pgxpool.Pool }

// INSERT ... SELECT sekalian verifikasi product-nya ada; duplikat di-skip.
const insertFavoriteSQL = `
		INSERT INTO favorites(user_id, product_id)
		SELECT $1, id FROM products WHERE id=$2
		ON CONFLICT (user_id, product_id) DO NOTHING`

func (r *FavoriteRepo) Add(ctx context.Context, userID, productID string) error {
	ct, err := r.DB.Exec(ctx, insertFavoriteSQL, userID, productID)
	if err != nil {
		return WrapInternal(err, "add favorite")
	}
	// insert 0 baris & bukan conflict -> product tidak ada
	if ct.RowsAffected() == 0 {
		exists, err := r.exists(ctx, userID, productID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
	}
	return nil
}

func (r *FavoriteRepo) exists(ctx context.Context, userID, productID string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM favorites WHERE user_id=$1 AND product_id=$2`,
		userID, productID).Scan(&n)
	if err != nil {
		return false, WrapInternal(err, "check favorite")
	}
	return n > 0, nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID, productID string) error {
	if _, err := r.DB.Exec(ctx, `
		DELETE FROM favorites WHERE user_id=$1 AND product_id=$2`, userID, productID); err != nil {
		return WrapInternal(err, "remove favorite")
	}
	return nil
}

func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.owner_id, p.title, p.description, p.category, p.price,
		       p.image_url, p.status, p.view_count, p.created_at, p.updated_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.added_at DESC`, userID)
	if err != nil {
		return nil, WrapInternal(err, "list favorites")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, WrapInternal(err, "scan favorite")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
