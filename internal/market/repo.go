package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ DB *pgxpool.Pool }

type ProductInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

func (in ProductInput) Validate() *Error {
	var details []string
	if strings.TrimSpace(in.Title) == "" {
		details = append(details, "title is required")
	}
	if !in.Price.IsPositive() {
		details = append(details, "price must be positive")
	}
	if len(details) > 0 {
		return NewError(CodeValidation, "invalid product", details...)
	}
	return nil
}

const productCols = `id, owner_id, title, description, category, price, image_url, status, view_count, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Category,
		&p.Price, &p.ImageURL, &p.Status, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, ownerID string, in ProductInput) (*Product, error) {
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}
	id := uuid.NewString()
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, owner_id, title, description, category, price, image_url, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'available')
		RETURNING `+productCols,
		id, ownerID, in.Title, in.Description, in.Category, in.Price, in.ImageURL)
	p, err := scanProduct(row)
	if err != nil {
		return nil, WrapInternal(err, "insert product")
	}
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, WrapInternal(err, "get product")
	}
	return p, nil
}

// Update hanya oleh owner; product sold tidak bisa di-edit.
func (r *ProductRepo) Update(ctx context.Context, id, ownerID string, in ProductInput) (*Product, error) {
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}
	cur, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.OwnerID != ownerID {
		return nil, NewError(CodeForbidden, "only the owner can edit a listing")
	}
	if cur.Status == StatusSold {
		return nil, NewError(CodeUnavailable, "sold products cannot be edited")
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE products
		SET title=$3, description=$4, category=$5, price=$6, image_url=$7, updated_at=now()
		WHERE id=$1 AND owner_id=$2
		RETURNING `+productCols,
		id, ownerID, in.Title, in.Description, in.Category, in.Price, in.ImageURL)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, WrapInternal(err, "update product")
	}
	return p, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id, ownerID string) error {
	cur, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if cur.OwnerID != ownerID {
		return NewError(CodeForbidden, "only the owner can delete a listing")
	}
	if _, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1 AND owner_id=$2`, id, ownerID); err != nil {
		return WrapInternal(err, "delete product")
	}
	return nil
}

type ListFilter struct {
	Query       string
	Category    string
	OwnerID     string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	IncludeSold bool
	Page        int
	Limit       int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// buildListQuery menyusun WHERE dinamis; dipisah biar gampang dites.
func buildListQuery(f ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.IncludeSold {
		conds = append(conds, "status = 'available'")
	}
	if f.Query != "" {
		conds = append(conds, "title ILIKE "+arg("%"+f.Query+"%"))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.OwnerID != "" {
		conds = append(conds, "owner_id = "+arg(f.OwnerID))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}

	q := `SELECT ` + productCols + ` FROM products`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	q += " ORDER BY created_at DESC"
	q += " LIMIT " + arg(limit)
	q += " OFFSET " + arg((page-1)*limit)
	return q, args
}

func (r *ProductRepo) List(ctx context.Context, f ListFilter) ([]Product, error) {
	q, args := buildListQuery(f)
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, WrapInternal(err, "list products")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, WrapInternal(err, "scan product")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapInternal(err, "list products")
	}
	return out, nil
}

// BumpViewCount dipanggil dari analytics consumer, bukan dari request path.
func (r *ProductRepo) BumpViewCount(ctx context.Context, id string, delta int64) (int64, error) {
	var n int64
	err := r.DB.QueryRow(ctx, `
		UPDATE products SET view_count = view_count + $2 WHERE id=$1
		RETURNING view_count`, id, delta).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, WrapInternal(err, "bump view count")
	}
	return n, nil
}

func (r *ProductRepo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, WrapInternal(err, "list categories")
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, WrapInternal(err, "scan category")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
