package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Status      Status          `json:"status"`
	ViewCount   int64           `json:"view_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CartEntry struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// CartItem = entry + product yang di-join untuk listing cart.
type CartItem struct {
	Product Product   `json:"product"`
	AddedAt time.Time `json:"added_at"`
}

// Purchase immutable setelah insert; price adalah snapshot saat jual.
type Purchase struct {
	ID            string          `json:"id"`
	BuyerID       string          `json:"buyer_id"`
	SellerID      string          `json:"seller_id"`
	ProductID     string          `json:"product_id"`
	Price         decimal.Decimal `json:"price"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Favorite struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
