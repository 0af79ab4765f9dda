package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deposit(client ClientID, tx TxID, amount string) Transaction {
	return Deposit{Client: client, Tx: tx, Amount: MustParseAmount(amount)}
}

func withdraw(client ClientID, tx TxID, amount string) Transaction {
	return Withdraw{Client: client, Tx: tx, Amount: MustParseAmount(amount)}
}

// applyAll runs txs against a fresh account for client and returns it.
func applyAll(client ClientID, txs ...Transaction) *Account {
	acc := NewAccount(client)
	for _, tx := range txs {
		acc.Apply(tx)
	}
	return acc
}

func requireBalances(t *testing.T, acc *Account, available, held, total string, locked bool) {
	t.Helper()
	assert.Equal(t, available, acc.Available().String(), "available")
	assert.Equal(t, held, acc.Held().String(), "held")
	assert.Equal(t, total, acc.Total().String(), "total")
	assert.Equal(t, locked, acc.Locked(), "locked")
}

func TestAccount_Scenarios(t *testing.T) {
	t.Run("deposits then withdraw", func(t *testing.T) {
		acc := applyAll(1,
			deposit(1, 1, "1.0000"),
			deposit(1, 2, "2.0000"),
			withdraw(1, 3, "1.5000"),
		)
		requireBalances(t, acc, "1.5000", "0.0000", "1.5000", false)
	})

	t.Run("dispute holds funds", func(t *testing.T) {
		acc := applyAll(1,
			deposit(1, 1, "1.0000"),
			Dispute{Client: 1, Tx: 1},
		)
		requireBalances(t, acc, "0.0000", "1.0000", "1.0000", false)
	})

	t.Run("chargeback locks", func(t *testing.T) {
		acc := applyAll(1,
			deposit(1, 1, "1.0000"),
			Dispute{Client: 1, Tx: 1},
			Chargeback{Client: 1, Tx: 1},
		)
		requireBalances(t, acc, "0.0000", "0.0000", "0.0000", true)

		assert.False(t, acc.Apply(deposit(1, 2, "5.0000")), "locked account must ignore deposits")
		requireBalances(t, acc, "0.0000", "0.0000", "0.0000", true)
	})

	t.Run("resolve releases funds", func(t *testing.T) {
		acc := applyAll(1,
			deposit(1, 1, "3.5"),
			Dispute{Client: 1, Tx: 1},
			Resolve{Client: 1, Tx: 1},
		)
		requireBalances(t, acc, "3.5000", "0.0000", "3.5000", false)

		entry, ok := acc.LookupDeposit(1)
		require.True(t, ok)
		assert.Equal(t, DisputeNone, entry.Status)
	})

	t.Run("resolved deposit can be disputed again", func(t *testing.T) {
		acc := applyAll(1,
			deposit(1, 1, "2"),
			Dispute{Client: 1, Tx: 1},
			Resolve{Client: 1, Tx: 1},
			Dispute{Client: 1, Tx: 1},
		)
		requireBalances(t, acc, "0.0000", "2.0000", "2.0000", false)
	})

	t.Run("chargeback after withdraw goes negative", func(t *testing.T) {
		acc := applyAll(1,
			deposit(1, 1, "10"),
			withdraw(1, 2, "8"),
			Dispute{Client: 1, Tx: 1},
			Chargeback{Client: 1, Tx: 1},
		)
		requireBalances(t, acc, "-8.0000", "0.0000", "-8.0000", true)
	})

	t.Run("several deposits disputed at once", func(t *testing.T) {
		acc := applyAll(1,
			deposit(1, 1, "1"),
			deposit(1, 2, "2"),
			deposit(1, 3, "4"),
			Dispute{Client: 1, Tx: 1},
			Dispute{Client: 1, Tx: 3},
		)
		requireBalances(t, acc, "2.0000", "5.0000", "7.0000", false)
	})
}

func TestAccount_IgnoredRecords(t *testing.T) {
	tests := []struct {
		name  string
		setup []Transaction
		tx    Transaction
	}{
		{
			name:  "dispute of a withdrawal",
			setup: []Transaction{deposit(1, 1, "5"), withdraw(1, 2, "1")},
			tx:    Dispute{Client: 1, Tx: 2},
		},
		{
			name:  "dispute of unknown tx",
			setup: []Transaction{deposit(1, 1, "5")},
			tx:    Dispute{Client: 1, Tx: 99},
		},
		{
			name:  "dispute from another client",
			setup: []Transaction{deposit(1, 1, "5")},
			tx:    Dispute{Client: 2, Tx: 1},
		},
		{
			name:  "dispute twice",
			setup: []Transaction{deposit(1, 1, "5"), Dispute{Client: 1, Tx: 1}},
			tx:    Dispute{Client: 1, Tx: 1},
		},
		{
			name:  "resolve without dispute",
			setup: []Transaction{deposit(1, 1, "5")},
			tx:    Resolve{Client: 1, Tx: 1},
		},
		{
			name:  "chargeback without dispute",
			setup: []Transaction{deposit(1, 1, "5")},
			tx:    Chargeback{Client: 1, Tx: 1},
		},
		{
			name:  "resolve of unknown tx",
			setup: []Transaction{deposit(1, 1, "5"), Dispute{Client: 1, Tx: 1}},
			tx:    Resolve{Client: 1, Tx: 2},
		},
		{
			name:  "duplicate deposit id",
			setup: []Transaction{deposit(1, 1, "5")},
			tx:    deposit(1, 1, "7"),
		},
		{
			name:  "insufficient funds",
			setup: []Transaction{deposit(1, 1, "5")},
			tx:    withdraw(1, 2, "5.0001"),
		},
		{
			name:  "withdraw of held funds",
			setup: []Transaction{deposit(1, 1, "5"), Dispute{Client: 1, Tx: 1}},
			tx:    withdraw(1, 2, "1"),
		},
		{
			name: "any record on locked account",
			setup: []Transaction{
				deposit(1, 1, "5"), deposit(1, 2, "3"),
				Dispute{Client: 1, Tx: 1}, Chargeback{Client: 1, Tx: 1},
			},
			tx: Dispute{Client: 1, Tx: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := applyAll(1, tt.setup...)
			before := acc.Snapshot()

			assert.False(t, acc.Apply(tt.tx))

			after := acc.Snapshot()
			assert.True(t, before.Available.Equal(after.Available))
			assert.True(t, before.Held.Equal(after.Held))
			assert.True(t, before.Total.Equal(after.Total))
			assert.Equal(t, before.Locked, after.Locked)
		})
	}
}

func TestAccount_DisputeDoesNotChangeTotal(t *testing.T) {
	acc := applyAll(1, deposit(1, 1, "4.2"), deposit(1, 2, "1.1"))
	total := acc.Total()

	for _, tx := range []Transaction{
		Dispute{Client: 1, Tx: 1},
		Resolve{Client: 1, Tx: 1},
		Dispute{Client: 1, Tx: 2},
		Dispute{Client: 1, Tx: 1},
		Resolve{Client: 1, Tx: 2},
	} {
		require.True(t, acc.Apply(tx))
		assert.True(t, total.Equal(acc.Total()), "total changed after %v", tx)
	}
}

func TestAccount_ExactWithdrawal(t *testing.T) {
	acc := applyAll(1, deposit(1, 1, "1.2345"))
	assert.True(t, acc.Apply(withdraw(1, 2, "1.2345")))
	requireBalances(t, acc, "0.0000", "0.0000", "0.0000", false)
}

func TestAccount_ChargebackMarksEntryTerminal(t *testing.T) {
	acc := applyAll(1, deposit(1, 1, "1"), Dispute{Client: 1, Tx: 1}, Chargeback{Client: 1, Tx: 1})

	entry, ok := acc.LookupDeposit(1)
	require.True(t, ok)
	assert.Equal(t, DisputeChargedBack, entry.Status)
	assert.Equal(t, "charged_back", entry.Status.String())
}
