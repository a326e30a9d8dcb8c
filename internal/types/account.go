// Package types holds the ledger's core data model: accounts, agent
// certificates, claims, namespaces, KV values, transactions, operations,
// blocks, and the genesis configuration. Every type that participates in a
// hash or signature exposes a CanonicalBytes/SigningBytes method built on
// internal/codec — those byte layouts are the consensus contract.
package types

import (
	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// LockId names a stake lock on an account. It wraps a content-addressed
// Hash so locks from distinct claims or attestations never collide.
type LockId crypto.Hash

func (l LockId) Hash() crypto.Hash { return crypto.Hash(l) }

// Account is the mutable per-public-key record held in chain state.
//
// Invariant: Balance + sum(Locked) equals the total tokens this account
// controls. Locking moves funds from Balance into Locked; unlocking
// reverses it; slashing removes funds from Locked without crediting
// Balance. A zero-valued Locked entry must be deleted, never left at 0.
type Account struct {
	Nonce   uint64
	Balance uint64
	Locked  map[LockId]uint64
}

// NewAccount returns an account with the given starting balance and an
// empty lock table.
func NewAccount(balance uint64) *Account {
	return &Account{
		Balance: balance,
		Locked:  make(map[LockId]uint64),
	}
}

// TotalBalance returns Balance plus every locked amount.
func (a *Account) TotalBalance() uint64 {
	total := a.Balance
	for _, amt := range a.Locked {
		total += amt
	}
	return total
}

// GetLocked returns the amount held under lock, or 0 if absent.
func (a *Account) GetLocked(lock LockId) uint64 {
	return a.Locked[lock]
}

// Credit increases Balance by amount. A zero amount is a no-op.
func (a *Account) Credit(amount uint64) {
	if amount == 0 {
		return
	}
	a.Balance += amount
}

// Debit decreases Balance by amount. The caller must have already checked
// availability; Debit itself does not error.
func (a *Account) Debit(amount uint64) {
	if amount == 0 {
		return
	}
	a.Balance -= amount
}

// Lock moves amount from Balance into Locked[lock]. Returns false without
// mutating the account if Balance is insufficient.
func (a *Account) Lock(lock LockId, amount uint64) bool {
	if a.Balance < amount {
		return false
	}
	a.Debit(amount)
	if a.Locked == nil {
		a.Locked = make(map[LockId]uint64)
	}
	a.Locked[lock] += amount
	return true
}

// Unlock removes lock entirely and credits its amount back to Balance,
// returning the amount released (0 if the lock did not exist).
func (a *Account) Unlock(lock LockId) uint64 {
	amount, ok := a.Locked[lock]
	if !ok {
		return 0
	}
	delete(a.Locked, lock)
	a.Credit(amount)
	return amount
}

// SlashLocked removes up to amount from Locked[lock] without crediting
// Balance, deleting the entry if it reaches zero. Returns the amount
// actually slashed.
func (a *Account) SlashLocked(lock LockId, amount uint64) uint64 {
	current, ok := a.Locked[lock]
	if !ok {
		return 0
	}
	slashed := amount
	if current < slashed {
		slashed = current
	}
	remaining := current - slashed
	if remaining == 0 {
		delete(a.Locked, lock)
	} else {
		a.Locked[lock] = remaining
	}
	return slashed
}

// RemoveLock deletes a lock entry outright, with no balance effect —
// used by settlement, which computes final balances itself.
func (a *Account) RemoveLock(lock LockId) {
	delete(a.Locked, lock)
}

// CanonicalBytes encodes the account deterministically for state-root
// hashing: nonce, balance, then locks sorted by lock-id bytes.
func (a *Account) CanonicalBytes() []byte {
	w := codec.NewWriter()
	w.Uint64(a.Nonce)
	w.Uint64(a.Balance)

	keys := make([][]byte, 0, len(a.Locked))
	byKey := make(map[string]LockId, len(a.Locked))
	for lock := range a.Locked {
		h := lock.Hash()
		keys = append(keys, h.Bytes())
		byKey[string(h.Bytes())] = lock
	}
	sorted := codec.SortedKeys(keys)
	w.SeqLen(len(sorted))
	for _, k := range sorted {
		lock := byKey[string(k)]
		w.RawFixed(k)
		w.Uint64(a.Locked[lock])
	}
	return w.Bytes()
}
