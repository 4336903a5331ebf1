package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQueryDefaults(t *testing.T) {
	q, args := buildListQuery(ListFilter{})
	assert.Contains(t, q, "status = 'available'")
	assert.Contains(t, q, "ORDER BY created_at DESC")
	// default limit 20, offset 0
	require.Len(t, args, 2)
	assert.Equal(t, defaultLimit, args[0])
	assert.Equal(t, 0, args[1])
}

func TestBuildListQueryFilters(t *testing.T) {
	min := decimal.RequireFromString("1.50")
	max := decimal.RequireFromString("20")
	q, args := buildListQuery(ListFilter{
		Query:    "sepeda",
		Category: "sports",
		MinPrice: &min,
		MaxPrice: &max,
		Page:     3,
		Limit:    10,
	})
	assert.Contains(t, q, "title ILIKE $1")
	assert.Contains(t, q, "category = $2")
	assert.Contains(t, q, "price >= $3")
	assert.Contains(t, q, "price <= $4")
	require.Len(t, args, 6)
	assert.Equal(t, "%sepeda%", args[0])
	assert.Equal(t, "sports", args[1])
	assert.Equal(t, 10, args[4])
	assert.Equal(t, 20, args[5]) // offset = (3-1)*10
}

func TestBuildListQueryClampsLimit(t *testing.T) {
	q, args := buildListQuery(ListFilter{Limit: 10_000, Page: -5})
	require.Len(t, args, 2)
	assert.Equal(t, maxLimit, args[0])
	assert.Equal(t, 0, args[1]) // page < 1 dianggap page 1
	assert.Contains(t, q, "LIMIT $1")
}

func TestBuildListQueryIncludeSold(t *testing.T) {
	q, _ := buildListQuery(ListFilter{IncludeSold: true})
	assert.NotContains(t, q, "status = 'available'")
}

func TestProductInputValidate(t *testing.T) {
	ok := ProductInput{Title: "Sepeda bekas", Price: decimal.RequireFromString("150.00")}
	assert.Nil(t, ok.Validate())

	t.Run("missing title", func(t *testing.T) {
		in := ProductInput{Price: decimal.RequireFromString("1")}
		verr := in.Validate()
		require.NotNil(t, verr)
		assert.Equal(t, CodeValidation, verr.Code)
		assert.Contains(t, verr.Details, "title is required")
	})

	t.Run("non-positive price", func(t *testing.T) {
		for _, price := range []string{"0", "-3.50"} {
			in := ProductInput{Title: "x", Price: decimal.RequireFromString(price)}
			verr := in.Validate()
			require.NotNil(t, verr)
			assert.Contains(t, verr.Details, "price must be positive")
		}
	})
}
