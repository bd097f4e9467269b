// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zodak/storefront-api/internal/domain/product"
)

type fakeCatalog struct {
	snapshots map[uint]*product.Snapshot
}

func (f *fakeCatalog) SnapshotVariant(productID uint, size, color string) (*product.Snapshot, error) {
	snap, ok := f.snapshots[productID]
	if !ok {
		return nil, product.ErrVariantNotFound
	}
	return snap, nil
}

type recordingNotifier struct {
	sessions []string
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, sessionID, message string) {
	n.sessions = append(n.sessions, sessionID)
	n.messages = append(n.messages, message)
}

func newTestService() (*Service, *MemoryStore, *recordingNotifier) {
	store := NewMemoryStore()
	notifier := &recordingNotifier{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	catalog := &fakeCatalog{snapshots: map[uint]*product.Snapshot{
		1: {
			ProductID:  1,
			Name:       "Essential Heavyweight Hoodie",
			UnitPrice:  decimal.NewFromInt(50),
			ImageRef:   "/uploads/hoodie.jpg",
			StockLimit: 3,
		},
	}}

	return NewService(store, catalog, notifier, logger), store, notifier
}

func TestService_AddPersistsAcrossLoads(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	resp, err := svc.Add(ctx, nil, "sess-1", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.False(t, resp.Clamped)
	assert.Equal(t, []string{"Added Essential Heavyweight Hoodie to bag"}, notifier.messages)

	// Fresh read goes through the store.
	got, err := svc.Get(ctx, nil, "sess-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, "50.00", got.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "69.00", got.Totals.TotalAmount.StringFixed(2))
}

func TestService_AddUnknownVariant(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Add(context.Background(), nil, "sess-1", &AddRequest{ProductID: 99, Size: "M", Color: "Black"})
	assert.ErrorIs(t, err, product.ErrVariantNotFound)
}

func TestService_ClampSurfacedToCaller(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Add(ctx, nil, "sess-1", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 10})
	require.NoError(t, err)
	assert.True(t, resp.Clamped)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.True(t, resp.Items[0].AtStockLimit)
}

func TestService_UpdateQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Add(ctx, nil, "sess-1", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 1})
	require.NoError(t, err)
	lineID := resp.Items[0].ID

	t.Run("clamp on update", func(t *testing.T) {
		got, err := svc.UpdateQuantity(ctx, nil, "sess-1", lineID, 5)
		require.NoError(t, err)
		assert.True(t, got.Clamped)
		assert.Equal(t, 3, got.Items[0].Quantity)
		assert.Equal(t, "150.00", got.Totals.Subtotal.StringFixed(2))
		assert.Equal(t, "177.00", got.Totals.TotalAmount.StringFixed(2))
	})

	t.Run("zero removes", func(t *testing.T) {
		got, err := svc.UpdateQuantity(ctx, nil, "sess-1", lineID, 0)
		require.NoError(t, err)
		assert.Empty(t, got.Items)
	})

	t.Run("unknown line is a no-op", func(t *testing.T) {
		got, err := svc.UpdateQuantity(ctx, nil, "sess-1", "missing", 2)
		require.NoError(t, err)
		assert.Empty(t, got.Items)
	})
}

func TestService_RemoveNotifies(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	resp, err := svc.Add(ctx, nil, "sess-1", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 1})
	require.NoError(t, err)

	got, err := svc.Remove(ctx, nil, "sess-1", resp.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Contains(t, notifier.messages, "Removed Essential Heavyweight Hoodie")

	// Removing again is silent.
	before := len(notifier.messages)
	_, err = svc.Remove(ctx, nil, "sess-1", resp.Items[0].ID)
	require.NoError(t, err)
	assert.Len(t, notifier.messages, before)
}

func TestService_NotificationChannelFollowsIdentity(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()
	userID := uint(7)

	t.Run("guest uses the session channel", func(t *testing.T) {
		_, err := svc.Add(ctx, nil, "sess-1", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 1})
		require.NoError(t, err)
		require.NotEmpty(t, notifier.sessions)
		assert.Equal(t, "sess-1", notifier.sessions[len(notifier.sessions)-1])
	})

	t.Run("authenticated user gets a user channel even without a cookie", func(t *testing.T) {
		resp, err := svc.Add(ctx, &userID, "", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 1})
		require.NoError(t, err)
		require.NotEmpty(t, notifier.sessions)
		assert.Equal(t, "user:7", notifier.sessions[len(notifier.sessions)-1])

		_, err = svc.Remove(ctx, &userID, "", resp.Items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "user:7", notifier.sessions[len(notifier.sessions)-1])
	})

	for _, session := range notifier.sessions {
		assert.NotEmpty(t, session)
	}
}

func TestService_LinesWithoutIdentityIsEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	// A guest who never touched the cart has no session cookie; order
	// placement should see an empty cart, not an error.
	lines, err := svc.Lines(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestService_CorruptPayloadStartsEmpty(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cart:session:sess-1", []byte("{not json"), time.Hour))

	got, err := svc.Get(ctx, nil, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.True(t, got.Totals.Subtotal.IsZero())
}

func TestService_ClearAfterOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, nil, "sess-1", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, nil, "sess-1"))

	got, err := svc.Get(ctx, nil, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Totals.TotalItems)
	assert.True(t, got.Totals.Subtotal.IsZero())
}

func TestService_MergeGuestCart(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	userID := uint(7)

	// Guest has 2, user already has 2 of the same variant; stock is 3.
	_, err := svc.Add(ctx, nil, "sess-1", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.Add(ctx, &userID, "", &AddRequest{ProductID: 1, Size: "M", Color: "Black", Quantity: 2})
	require.NoError(t, err)

	got, err := svc.MergeGuestCart(ctx, userID, "sess-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)

	// Guest cart is gone after the merge.
	guest, err := svc.Get(ctx, nil, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, guest.Items)
}

func TestService_GuestRequiresSession(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), nil, "")
	assert.Error(t, err)
}
