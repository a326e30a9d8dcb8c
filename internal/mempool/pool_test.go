package mempool_test

import (
	"testing"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/mempool"
	"github.com/agentledger/chain/internal/types"
)

func newTx(t *testing.T, fee, nonce uint64) *types.Transaction {
	t.Helper()
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	return types.NewSignedTransaction(sk, nonce, fee, []types.Op{types.OpTransfer{To: pk, Amount: 1}})
}

func TestAddAndHas(t *testing.T) {
	p := mempool.New(mempool.Config{MaxSize: 10})
	tx := newTx(t, 5, 0)
	if err := p.Add(tx, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !p.Has(tx.Hash()) {
		t.Fatal("expected pool to contain the admitted transaction")
	}
	if p.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", p.Len())
	}
}

func TestAddDuplicateRejected(t *testing.T) {
	p := mempool.New(mempool.Config{MaxSize: 10})
	tx := newTx(t, 5, 0)
	if err := p.Add(tx, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Add(tx, 1); err != mempool.ErrAlreadyPresent {
		t.Fatalf("got %v, want ErrAlreadyPresent", err)
	}
}

func TestSenderQuotaEnforced(t *testing.T) {
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	p := mempool.New(mempool.Config{MaxSize: 10, MaxPerSender: 1})

	_, other, _ := crypto.GenerateKeyPair()
	tx1 := types.NewSignedTransaction(sk, 0, 1, []types.Op{types.OpTransfer{To: other, Amount: 1}})
	tx2 := types.NewSignedTransaction(sk, 1, 1, []types.Op{types.OpTransfer{To: other, Amount: 1}})
	_ = pk

	if err := p.Add(tx1, 1); err != nil {
		t.Fatalf("Add tx1: %v", err)
	}
	if err := p.Add(tx2, 1); err != mempool.ErrSenderQuota {
		t.Fatalf("got %v, want ErrSenderQuota", err)
	}
}

func TestTakeOrdersByFeeRate(t *testing.T) {
	p := mempool.New(mempool.Config{MaxSize: 10, Order: mempool.OrderFeeRate})
	low := newTx(t, 1, 0)
	high := newTx(t, 100, 0)
	if err := p.Add(low, 1); err != nil {
		t.Fatalf("Add low: %v", err)
	}
	if err := p.Add(high, 1); err != nil {
		t.Fatalf("Add high: %v", err)
	}

	taken := p.Take(2)
	if taken[0].Hash() != high.Hash() {
		t.Fatal("expected higher fee-rate transaction to come first")
	}
}

func TestPoolFullEvictsLowerPriority(t *testing.T) {
	p := mempool.New(mempool.Config{MaxSize: 1, Order: mempool.OrderFeeRate})
	low := newTx(t, 1, 0)
	high := newTx(t, 100, 0)

	if err := p.Add(low, 1); err != nil {
		t.Fatalf("Add low: %v", err)
	}
	if err := p.Add(high, 1); err != nil {
		t.Fatalf("expected high fee tx to evict low fee tx, got %v", err)
	}
	if p.Has(low.Hash()) {
		t.Fatal("expected low-priority transaction to be evicted")
	}
	if !p.Has(high.Hash()) {
		t.Fatal("expected high-priority transaction to remain")
	}
}

func TestPoolFullRejectsLowerPriority(t *testing.T) {
	p := mempool.New(mempool.Config{MaxSize: 1, Order: mempool.OrderFeeRate})
	high := newTx(t, 100, 0)
	low := newTx(t, 1, 0)

	if err := p.Add(high, 1); err != nil {
		t.Fatalf("Add high: %v", err)
	}
	if err := p.Add(low, 1); err != mempool.ErrPoolFull {
		t.Fatalf("got %v, want ErrPoolFull", err)
	}
}

func TestSweepExpired(t *testing.T) {
	p := mempool.New(mempool.Config{MaxSize: 10, ExpiryThreshold: 100})
	tx := newTx(t, 1, 0)
	if err := p.Add(tx, 1000); err != nil {
		t.Fatalf("Add: %v", err)
	}
	expired := p.SweepExpired(2000)
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired entry, got %d", len(expired))
	}
	if p.Has(tx.Hash()) {
		t.Fatal("expected expired transaction to be removed")
	}
}

func TestPendingForSenderSortedByNonce(t *testing.T) {
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	_, other, _ := crypto.GenerateKeyPair()

	p := mempool.New(mempool.Config{MaxSize: 10})
	tx3 := types.NewSignedTransaction(sk, 3, 1, []types.Op{types.OpTransfer{To: other, Amount: 1}})
	tx1 := types.NewSignedTransaction(sk, 1, 1, []types.Op{types.OpTransfer{To: other, Amount: 1}})
	tx2 := types.NewSignedTransaction(sk, 2, 1, []types.Op{types.OpTransfer{To: other, Amount: 1}})

	for _, tx := range []*types.Transaction{tx3, tx1, tx2} {
		if err := p.Add(tx, 1); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	pending := p.PendingForSender(pk)
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending transactions, got %d", len(pending))
	}
	for i, want := range []uint64{1, 2, 3} {
		if pending[i].Nonce != want {
			t.Fatalf("pending[%d].Nonce: got %d, want %d", i, pending[i].Nonce, want)
		}
	}
}

func TestRemove(t *testing.T) {
	p := mempool.New(mempool.Config{MaxSize: 10})
	tx := newTx(t, 1, 0)
	if err := p.Add(tx, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	p.Remove(tx.Hash())
	if p.Has(tx.Hash()) {
		t.Fatal("expected transaction to be removed")
	}
}
