package redisx

import "time"

const (
	// Session token: session:{token} -> user_id
	KeySession = "session:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cache daftar kategori: categories -> JSON array
	KeyCategories = "categories"

	// Mirror view count per product: views:{product_id} -> int
	KeyProductViews = "views:%s"

	// Counter penjualan harian: sales:{YYYY-MM-DD} -> int
	KeyDailySales = "sales:%s"
)

var (
	TTLSession    = 7 * 24 * time.Hour
	TTLDedup      = 48 * time.Hour
	TTLCategories = 10 * time.Minute
	TTLViews      = 24 * time.Hour
)
