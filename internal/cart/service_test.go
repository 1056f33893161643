package cart

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/avolkov/go_retail/internal/cache"
	"github.com/avolkov/go_retail/internal/catalog"
	"github.com/avolkov/go_retail/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func setupService(t *testing.T) (*Service, *catalog.MemoryStore) {
	t.Helper()
	cat := catalog.NewMemoryStore()
	cat.Upsert(domain.Product{ID: 1, Name: "ThinkBook 14", Kind: domain.KindLaptop, Price: 10.00, Stock: 10})
	cat.Upsert(domain.Product{ID: 2, Name: "MX Vertical", Kind: domain.KindMouse, Price: 5.00, Stock: 3})

	svc := NewService(NewMemoryRepository(), cat, &mockCache{})
	return svc, cat
}

func TestGetCart_EmptyForNewUser(t *testing.T) {
	svc, _ := setupService(t)

	c, err := svc.GetCart(context.Background(), "user1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestAddLine_Success(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 2))

	c, err := svc.GetCart(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int32(2), c.Items[0].Quantity)
}

func TestAddLine_InvalidQuantity(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddLine(ctx, "user1", 1, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, svc.AddLine(ctx, "user1", 1, -3), ErrInvalidQuantity)
}

func TestAddLine_OutOfStock(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.AddLine(context.Background(), "user1", 2, 4) // stock is 3
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestAddLine_UnknownProduct(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.AddLine(context.Background(), "user1", 999, 1)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestAddLine_MergesExistingLine(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 2))
	require.NoError(t, svc.AddLine(ctx, "user1", 1, 3))

	c, err := svc.GetCart(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1, "one line per product")
	assert.Equal(t, int32(5), c.Items[0].Quantity)
}

func TestAddLine_MergedQuantityRevalidatedAgainstStock(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 8))

	// 8 + 5 exceeds stock of 10
	assert.ErrorIs(t, svc.AddLine(ctx, "user1", 1, 5), ErrOutOfStock)

	c, _ := svc.GetCart(ctx, "user1")
	assert.Equal(t, int32(8), c.Items[0].Quantity, "failed add leaves the line untouched")
}

func TestAddLine_MergedQuantityOverflowRejected(t *testing.T) {
	svc, cat := setupService(t)
	ctx := context.Background()

	cat.Upsert(domain.Product{ID: 3, Name: "Bulk Widget", Kind: domain.KindAccessory, Price: 0.01, Stock: math.MaxInt32})
	require.NoError(t, svc.AddLine(ctx, "user1", 3, math.MaxInt32))

	// the sum wraps negative, which must read as out of stock, not success
	assert.ErrorIs(t, svc.AddLine(ctx, "user1", 3, 1), ErrOutOfStock)

	c, _ := svc.GetCart(ctx, "user1")
	assert.Equal(t, int32(math.MaxInt32), c.Items[0].Quantity)
}

func TestUpdateQuantity_Success(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 2))
	require.NoError(t, svc.UpdateQuantity(ctx, "user1", 1, 7))

	c, _ := svc.GetCart(ctx, "user1")
	assert.Equal(t, int32(7), c.Items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 2))
	require.NoError(t, svc.UpdateQuantity(ctx, "user1", 1, 0))

	c, _ := svc.GetCart(ctx, "user1")
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantity_ExceedsStock(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 2, 1))
	assert.ErrorIs(t, svc.UpdateQuantity(ctx, "user1", 2, 4), ErrOutOfStock)
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.UpdateQuantity(context.Background(), "user1", 1, 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveLine_Idempotent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 2))
	require.NoError(t, svc.RemoveLine(ctx, "user1", 1))
	require.NoError(t, svc.RemoveLine(ctx, "user1", 1), "removing an absent line is a no-op")

	c, _ := svc.GetCart(ctx, "user1")
	assert.True(t, c.IsEmpty())
}

func TestClear_EmptyCartIsNoOp(t *testing.T) {
	svc, _ := setupService(t)

	assert.NoError(t, svc.Clear(context.Background(), "user1"))
}

func TestTotal_EmptyCartIsZero(t *testing.T) {
	svc, _ := setupService(t)

	total, err := svc.Total(context.Background(), "user1")
	require.NoError(t, err)
	assert.Zero(t, total)
}

// Total must equal the sum of line subtotals after any mutation sequence.
func TestTotal_MatchesSumOfSubtotals(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 2)) // 2 x 10.00
	require.NoError(t, svc.AddLine(ctx, "user1", 2, 1)) // 1 x 5.00
	require.NoError(t, svc.UpdateQuantity(ctx, "user1", 1, 3))
	require.NoError(t, svc.RemoveLine(ctx, "user1", 2))
	require.NoError(t, svc.AddLine(ctx, "user1", 2, 2))

	snapshot, err := svc.Snapshot(ctx, "user1")
	require.NoError(t, err)

	var sum float64
	for _, line := range snapshot.Items {
		assert.InDelta(t, line.UnitPrice*float64(line.Quantity), line.Subtotal, 1e-9)
		sum += line.Subtotal
	}
	assert.InDelta(t, sum, snapshot.TotalAmount, 1e-9)
	assert.InDelta(t, 40.00, snapshot.TotalAmount, 1e-9)
}

// Prices are not frozen at add time: a catalog price change shows up in the
// next snapshot.
func TestSnapshot_RederivesCurrentPrices(t *testing.T) {
	svc, cat := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, "user1", 1, 2))

	cat.Upsert(domain.Product{ID: 1, Name: "ThinkBook 14", Kind: domain.KindLaptop, Price: 12.50, Stock: 10})

	snapshot, err := svc.Snapshot(ctx, "user1")
	require.NoError(t, err)
	assert.InDelta(t, 25.00, snapshot.TotalAmount, 1e-9)
}
