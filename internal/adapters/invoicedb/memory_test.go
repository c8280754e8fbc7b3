package invoicedb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
)

// TestMemoryRepository_PutGet tests the round trip through the in-memory store
func TestMemoryRepository_PutGet(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())
	ctx := context.Background()

	invoice := &core.Invoice{
		Number:   "INV-2024-001",
		Vendor:   "Acme Corp",
		Amount:   1250.50,
		Currency: "EUR",
		Status:   "open",
	}
	require.NoError(t, repo.Put(ctx, invoice))

	got, err := repo.GetByNumber(ctx, "INV-2024-001")
	require.NoError(t, err)
	assert.Equal(t, invoice, got)
}

// TestMemoryRepository_NotFound tests the sentinel error for unknown numbers
func TestMemoryRepository_NotFound(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())

	_, err := repo.GetByNumber(context.Background(), "INV-0000-000")

	assert.ErrorIs(t, err, core.ErrInvoiceNotFound)
}

// TestMemoryRepository_CopySemantics tests that callers cannot mutate stored
// records through returned pointers
func TestMemoryRepository_CopySemantics(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())
	ctx := context.Background()

	original := &core.Invoice{Number: "INV-1", Vendor: "Acme Corp"}
	require.NoError(t, repo.Put(ctx, original))

	got, err := repo.GetByNumber(ctx, "INV-1")
	require.NoError(t, err)
	got.Vendor = "mutated"

	again, err := repo.GetByNumber(ctx, "INV-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", again.Vendor)
}

// TestMemoryRepository_Overwrite tests that Put replaces an existing record
func TestMemoryRepository_Overwrite(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &core.Invoice{Number: "INV-1", Status: "open"}))
	require.NoError(t, repo.Put(ctx, &core.Invoice{Number: "INV-1", Status: "paid"}))

	got, err := repo.GetByNumber(ctx, "INV-1")
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
}
