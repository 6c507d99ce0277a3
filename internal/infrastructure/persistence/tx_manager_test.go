package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/Goutham009/tradewave-sub005/internal/domain/audit"
	"github.com/Goutham009/tradewave-sub005/internal/domain/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/persistence/dbtx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTxManager_InTx(t *testing.T) {
	db := setupRepositoryTestDB(t)
	txm := NewGormTxManager(db)
	transactions := NewGormTransactionRepository(db)
	escrows := NewGormEscrowRepository(db)
	ctx := context.Background()

	newPair := func() (uuid.UUID, func(ctx context.Context) error) {
		tx := newAdmittedTransaction(t, acceptedTestOffer())
		e, err := escrow.Open(uuid.New(), escrow.OpenParams{TransactionID: tx.ID, Total: tx.Amount}, testNow)
		require.NoError(t, err)
		return tx.ID, func(ctx context.Context) error {
			_, ok := dbtx.From(ctx)
			require.True(t, ok)
			if err := transactions.CreateWithEvents(ctx, tx, nil); err != nil {
				return err
			}
			return escrows.CreateWithEvents(ctx, e, nil)
		}
	}

	t.Run("commits both writes", func(t *testing.T) {
		id, write := newPair()
		require.NoError(t, txm.InTx(ctx, write))

		_, err := transactions.FindByID(ctx, id)
		require.NoError(t, err)
		_, err = escrows.FindByTransaction(ctx, id)
		require.NoError(t, err)
	})

	t.Run("rolls back both writes", func(t *testing.T) {
		id, write := newPair()
		boom := errors.New("boom")
		err := txm.InTx(ctx, func(ctx context.Context) error {
			if err := write(ctx); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = transactions.FindByID(ctx, id)
		assert.True(t, shared.IsNotFound(err))
		_, err = escrows.FindByTransaction(ctx, id)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		auditRepo := NewGormAuditRepository(db)
		entry, err := audit.NewEntry(shared.Caller{UserID: uuid.New(), Role: shared.RoleSystem},
			audit.ActionOutboxRetried, "outbox", uuid.New(), "", nil, testNow)
		require.NoError(t, err)

		err = txm.InTx(ctx, func(ctx context.Context) error {
			if err := txm.InTx(ctx, func(ctx context.Context) error {
				return auditRepo.Create(ctx, entry)
			}); err != nil {
				return err
			}
			return errors.New("outer fails")
		})
		require.Error(t, err)

		entries, err := auditRepo.FindByResource(ctx, "outbox", entry.ResourceID, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
