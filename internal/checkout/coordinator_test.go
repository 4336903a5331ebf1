package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore: CheckoutStore in-memory dengan semantik transaksi (rollback =
// restore snapshot). Mutex-nya sekalian mensimulasikan row-level
// serialization database.
type memStore struct {
	mu        sync.Mutex
	products  map[string]*market.Product
	purchases []market.Purchase
	cart      map[string]map[string]bool // userID -> productID -> ada
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]*market.Product{},
		cart:     map[string]map[string]bool{},
	}
}

func (s *memStore) addProduct(ownerID, price string) string {
	id := uuid.NewString()
	s.products[id] = &market.Product{
		ID:      id,
		OwnerID: ownerID,
		Title:   "item " + id[:8],
		Price:   decimal.RequireFromString(price),
		Status:  market.StatusAvailable,
	}
	return id
}

func (s *memStore) addCart(userID, productID string) {
	if s.cart[userID] == nil {
		s.cart[userID] = map[string]bool{}
	}
	s.cart[userID][productID] = true
}

func (s *memStore) InTx(ctx context.Context, fn func(tx market.CheckoutTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products  map[string]market.Product
	purchases []market.Purchase
	cart      map[string]map[string]bool
}

func (s *memStore) snapshot() snapshot {
	ps := map[string]market.Product{}
	for id, p := range s.products {
		ps[id] = *p
	}
	cart := map[string]map[string]bool{}
	for u, m := range s.cart {
		cp := map[string]bool{}
		for id := range m {
			cp[id] = true
		}
		cart[u] = cp
	}
	return snapshot{products: ps, purchases: append([]market.Purchase{}, s.purchases...), cart: cart}
}

func (s *memStore) restore(snap snapshot) {
	s.products = map[string]*market.Product{}
	for id := range snap.products {
		p := snap.products[id]
		s.products[id] = &p
	}
	s.purchases = snap.purchases
	s.cart = snap.cart
}

type memTx struct{ s *memStore }

func (t *memTx) ProductForUpdate(ctx context.Context, id string) (*market.Product, error) {
	p, ok := t.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) MarkSold(ctx context.Context, id string) (bool, error) {
	p, ok := t.s.products[id]
	if !ok || p.Status != market.StatusAvailable {
		return false, nil
	}
	p.Status = market.StatusSold
	return true, nil
}

func (t *memTx) InsertPurchase(ctx context.Context, p *market.Purchase) error {
	t.s.purchases = append(t.s.purchases, *p)
	return nil
}

func (t *memTx) ClearCartEntry(ctx context.Context, userID, productID string) error {
	delete(t.s.cart[userID], productID)
	return nil
}

// Invariant: setiap purchase punya product sold, setiap product sold punya
// tepat satu purchase.
func assertLedgerConsistent(t *testing.T, s *memStore) {
	t.Helper()
	byProduct := map[string]int{}
	for _, pur := range s.purchases {
		byProduct[pur.ProductID]++
		require.Contains(t, s.products, pur.ProductID)
		assert.Equal(t, market.StatusSold, s.products[pur.ProductID].Status,
			"purchase tanpa status sold")
	}
	for id, p := range s.products {
		if p.Status == market.StatusSold {
			assert.Equal(t, 1, byProduct[id], "product sold tanpa purchase row (atau dobel)")
		}
	}
}

func TestBuyNow(t *testing.T) {
	store := newMemStore()
	seller := uuid.NewString()
	buyer := uuid.NewString()
	pid := store.addProduct(seller, "10.00")
	store.addCart(buyer, pid)

	co := &Coordinator{Store: store}

	res, err := co.BuyNow(context.Background(), buyer, pid, "paypal")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Purchase.ID)
	assert.Equal(t, "10.00", res.Total.StringFixed(2))
	assert.Equal(t, seller, res.Purchase.SellerID)
	assert.Equal(t, "paypal", res.Purchase.PaymentMethod)
	assert.Equal(t, market.StatusSold, res.Product.Status)

	// status di store berubah & cart pembeli bersih
	assert.Equal(t, market.StatusSold, store.products[pid].Status)
	assert.NotContains(t, store.cart[buyer], pid)
	assertLedgerConsistent(t, store)

	// pembeli berikutnya kalah
	other := uuid.NewString()
	_, err = co.BuyNow(context.Background(), other, pid, "cash")
	assert.ErrorIs(t, err, market.ErrProductUnavailable)
	assertLedgerConsistent(t, store)
}

func TestBuyNowValidation(t *testing.T) {
	store := newMemStore()
	pid := store.addProduct(uuid.NewString(), "5.00")
	co := &Coordinator{Store: store}

	t.Run("invalid payment method", func(t *testing.T) {
		_, err := co.BuyNow(context.Background(), uuid.NewString(), pid, "gold_bars")
		var me *market.Error
		require.ErrorAs(t, err, &me)
		assert.Equal(t, market.CodeValidation, me.Code)
	})

	t.Run("invalid product id", func(t *testing.T) {
		_, err := co.BuyNow(context.Background(), uuid.NewString(), "not-a-uuid", "paypal")
		var me *market.Error
		require.ErrorAs(t, err, &me)
		assert.Equal(t, market.CodeValidation, me.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := co.BuyNow(context.Background(), uuid.NewString(), uuid.NewString(), "paypal")
		assert.ErrorIs(t, err, market.ErrProductNotFound)
	})

	// tidak ada side effect dari kegagalan di atas
	assert.Empty(t, store.purchases)
	assert.Equal(t, market.StatusAvailable, store.products[pid].Status)
}

func TestSelfPurchaseForbidden(t *testing.T) {
	store := newMemStore()
	owner := uuid.NewString()
	pid := store.addProduct(owner, "7.50")
	store.addCart(owner, pid) // ada di cart sendiri pun tetap ditolak
	co := &Coordinator{Store: store}

	_, err := co.Purchase(context.Background(), owner, []string{pid})
	assert.ErrorIs(t, err, market.ErrSelfPurchase)
	assert.Empty(t, store.purchases)
	assert.Equal(t, market.StatusAvailable, store.products[pid].Status)

	_, err = co.BuyNow(context.Background(), owner, pid, "paypal")
	assert.ErrorIs(t, err, market.ErrSelfPurchase)
	assert.Empty(t, store.purchases)
}

func TestPurchaseBatch(t *testing.T) {
	store := newMemStore()
	seller := uuid.NewString()
	buyer := uuid.NewString()
	a := store.addProduct(seller, "10.00")
	b := store.addProduct(seller, "2.50")
	store.addCart(buyer, a)
	store.addCart(buyer, b)

	co := &Coordinator{Store: store}

	res, err := co.Purchase(context.Background(), buyer, []string{a, b})
	require.NoError(t, err)
	assert.Len(t, res.Purchases, 2)
	assert.Equal(t, "12.50", res.Total.StringFixed(2))
	assert.Empty(t, store.cart[buyer])
	assertLedgerConsistent(t, store)
}

func TestPurchaseBatchAllOrNothing(t *testing.T) {
	store := newMemStore()
	seller := uuid.NewString()
	buyer := uuid.NewString()
	a := store.addProduct(seller, "10.00")
	b := store.addProduct(seller, "4.00")
	store.products[b].Status = market.StatusSold // B keburu laku

	co := &Coordinator{Store: store}

	_, err := co.Purchase(context.Background(), buyer, []string{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrProductUnavailable)

	var me *market.Error
	require.ErrorAs(t, err, &me)
	require.Len(t, me.Details, 1)
	assert.Contains(t, me.Details[0], b)

	// A tidak boleh ikut berubah
	assert.Equal(t, market.StatusAvailable, store.products[a].Status)
	assert.Empty(t, store.purchases)
}

func TestPurchaseBatchMixedRejectPrecedence(t *testing.T) {
	store := newMemStore()
	buyer := uuid.NewString()
	sold := store.addProduct(uuid.NewString(), "4.00")
	store.products[sold].Status = market.StatusSold
	missing := uuid.NewString()

	co := &Coordinator{Store: store}

	_, err := co.Purchase(context.Background(), buyer, []string{sold, missing})
	var me *market.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, market.CodeNotFound, me.Code)
	assert.Len(t, me.Details, 2)
	assert.Empty(t, store.purchases)

	// code tidak boleh tergantung urutan reject
	forward := []RejectDetail{
		{ProductID: sold, Reason: market.CodeUnavailable},
		{ProductID: missing, Reason: market.CodeNotFound},
	}
	backward := []RejectDetail{forward[1], forward[0]}
	assert.Equal(t, market.CodeNotFound, rejectError(forward).Code)
	assert.Equal(t, market.CodeNotFound, rejectError(backward).Code)

	selfVsSold := []RejectDetail{
		{ProductID: sold, Reason: market.CodeUnavailable},
		{ProductID: uuid.NewString(), Reason: market.CodeSelfPurchase},
	}
	assert.Equal(t, market.CodeSelfPurchase, rejectError(selfVsSold).Code)
}

func TestPurchaseBatchValidation(t *testing.T) {
	co := &Coordinator{Store: newMemStore()}

	t.Run("empty", func(t *testing.T) {
		_, err := co.Purchase(context.Background(), uuid.NewString(), nil)
		var me *market.Error
		require.ErrorAs(t, err, &me)
		assert.Equal(t, market.CodeValidation, me.Code)
	})

	t.Run("bad ids", func(t *testing.T) {
		_, err := co.Purchase(context.Background(), uuid.NewString(), []string{"abc", "123"})
		var me *market.Error
		require.ErrorAs(t, err, &me)
		assert.Equal(t, market.CodeValidation, me.Code)
		assert.ElementsMatch(t, []string{"abc", "123"}, me.Details)
	})

	t.Run("missing buyer", func(t *testing.T) {
		_, err := co.Purchase(context.Background(), "", []string{uuid.NewString()})
		var me *market.Error
		require.ErrorAs(t, err, &me)
		assert.Equal(t, market.CodeUnauthorized, me.Code)
	})
}

func TestPurchaseDuplicateIDsCollapse(t *testing.T) {
	store := newMemStore()
	buyer := uuid.NewString()
	pid := store.addProduct(uuid.NewString(), "3.00")

	co := &Coordinator{Store: store}

	res, err := co.Purchase(context.Background(), buyer, []string{pid, pid, pid})
	require.NoError(t, err)
	assert.Len(t, res.Purchases, 1)
	assertLedgerConsistent(t, store)
}

func TestConcurrentBuyersExactlyOneWins(t *testing.T) {
	store := newMemStore()
	pid := store.addProduct(uuid.NewString(), "99.99")
	co := &Coordinator{Store: store}

	const buyers = 8
	errs := make(chan error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := co.BuyNow(context.Background(), uuid.NewString(), pid, "credit_card")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.True(t, errors.Is(err, market.ErrProductUnavailable), "unexpected error: %v", err)
		losses++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, buyers-1, losses)
	require.Len(t, store.purchases, 1)
	assertLedgerConsistent(t, store)
}

func TestPriceSnapshotAtSaleTime(t *testing.T) {
	store := newMemStore()
	seller := uuid.NewString()
	buyer := uuid.NewString()
	pid := store.addProduct(seller, "10.00")

	co := &Coordinator{Store: store}
	res, err := co.BuyNow(context.Background(), buyer, pid, "bank_transfer")
	require.NoError(t, err)

	// harga di listing berubah setelah laku; snapshot tidak ikut
	store.products[pid].Price = decimal.RequireFromString("999.00")
	assert.Equal(t, "10.00", res.Purchase.Price.StringFixed(2))
	assert.Equal(t, "10.00", store.purchases[0].Price.StringFixed(2))
}
