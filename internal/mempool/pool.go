// Package mempool holds transactions awaiting inclusion in a block. It
// keeps three synchronized indices — by hash, by sender, and by priority —
// so the block builder can pull the highest-priority transactions in
// constant time per entry. Admission and removal are linear in the pool
// size: a sorted-slice insert and a scan of the sender and priority lists.
package mempool

import (
	"errors"
	"sort"
	"sync"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
)

var (
	ErrAlreadyPresent = errors.New("transaction already in mempool")
	ErrPoolFull        = errors.New("mempool is full")
	ErrSenderQuota      = errors.New("sender has reached its pending transaction quota")
)

// OrderMode selects how Take ranks eligible transactions.
type OrderMode uint8

const (
	OrderFeeRate OrderMode = iota // highest (fee per operation, then earliest timestamp) first
	OrderFIFO                      // earliest admission timestamp first
)

type entry struct {
	tx        *types.Transaction
	hash      crypto.Hash
	admitted  uint64 // admission timestamp
	feeRate   uint64 // fee per operation, for priority ordering
}

// Config bounds a Pool's behavior.
type Config struct {
	MaxSize         int
	MaxPerSender    int
	ExpiryThreshold uint64 // entries older than this many timestamp units are swept
	Order           OrderMode
}

// Pool is a thread-safe transaction mempool with fixed lock acquisition
// order by_hash -> by_sender -> by_priority, matching every method below,
// to avoid deadlock between concurrent admissions and evictions.
type Pool struct {
	cfg Config

	muHash sync.RWMutex
	byHash map[crypto.Hash]*entry

	muSender sync.RWMutex
	bySender map[crypto.PublicKey][]*entry

	muPriority sync.RWMutex
	byPriority []*entry // kept sorted per cfg.Order
}

// New returns an empty Pool.
func New(cfg Config) *Pool {
	return &Pool{
		cfg:      cfg,
		byHash:   make(map[crypto.Hash]*entry),
		bySender: make(map[crypto.PublicKey][]*entry),
	}
}

// Add admits tx at admission timestamp now, evicting the lowest-priority
// entry if the pool is full and tx outranks it. Returns ErrAlreadyPresent,
// ErrSenderQuota, or ErrPoolFull (when full and tx does not outrank the
// lowest-priority entry) without modifying the pool.
func (p *Pool) Add(tx *types.Transaction, now uint64) error {
	h := tx.Hash()

	p.muHash.Lock()
	defer p.muHash.Unlock()
	p.muSender.Lock()
	defer p.muSender.Unlock()
	p.muPriority.Lock()
	defer p.muPriority.Unlock()

	if _, exists := p.byHash[h]; exists {
		return ErrAlreadyPresent
	}
	if p.cfg.MaxPerSender > 0 && len(p.bySender[tx.SenderPubkey]) >= p.cfg.MaxPerSender {
		return ErrSenderQuota
	}

	e := &entry{tx: tx, hash: h, admitted: now, feeRate: feeRate(tx)}

	if p.cfg.MaxSize > 0 && len(p.byHash) >= p.cfg.MaxSize {
		lowest := p.lowestPriorityLocked()
		if lowest == nil || !outranks(e, lowest, p.cfg.Order) {
			return ErrPoolFull
		}
		p.removeLocked(lowest.hash)
	}

	p.byHash[h] = e
	p.bySender[tx.SenderPubkey] = append(p.bySender[tx.SenderPubkey], e)
	p.byPriority = insertSorted(p.byPriority, e, p.cfg.Order)
	return nil
}

// Remove evicts the transaction with the given hash, if present.
func (p *Pool) Remove(hash crypto.Hash) {
	p.muHash.Lock()
	defer p.muHash.Unlock()
	p.muSender.Lock()
	defer p.muSender.Unlock()
	p.muPriority.Lock()
	defer p.muPriority.Unlock()
	p.removeLocked(hash)
}

// removeLocked assumes all three locks are held.
func (p *Pool) removeLocked(hash crypto.Hash) {
	e, ok := p.byHash[hash]
	if !ok {
		return
	}
	delete(p.byHash, hash)

	senderList := p.bySender[e.tx.SenderPubkey]
	for i, se := range senderList {
		if se.hash == hash {
			p.bySender[e.tx.SenderPubkey] = append(senderList[:i], senderList[i+1:]...)
			break
		}
	}
	if len(p.bySender[e.tx.SenderPubkey]) == 0 {
		delete(p.bySender, e.tx.SenderPubkey)
	}

	for i, pe := range p.byPriority {
		if pe.hash == hash {
			p.byPriority = append(p.byPriority[:i], p.byPriority[i+1:]...)
			break
		}
	}
}

// Has reports whether hash is currently pending.
func (p *Pool) Has(hash crypto.Hash) bool {
	p.muHash.RLock()
	defer p.muHash.RUnlock()
	_, ok := p.byHash[hash]
	return ok
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	p.muHash.RLock()
	defer p.muHash.RUnlock()
	return len(p.byHash)
}

// PendingForSender returns the sender's pending transactions sorted by
// nonce, so callers can detect nonce gaps in sequence.
func (p *Pool) PendingForSender(sender crypto.PublicKey) []*types.Transaction {
	p.muSender.RLock()
	defer p.muSender.RUnlock()
	entries := p.bySender[sender]
	out := make([]*types.Transaction, len(entries))
	for i, e := range entries {
		out[i] = e.tx
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nonce < out[j].Nonce })
	return out
}

// Take returns up to limit transactions in priority order, without
// removing them — the proposer removes committed transactions explicitly
// once a block applies.
func (p *Pool) Take(limit int) []*types.Transaction {
	p.muPriority.RLock()
	defer p.muPriority.RUnlock()
	if limit <= 0 || limit > len(p.byPriority) {
		limit = len(p.byPriority)
	}
	out := make([]*types.Transaction, limit)
	for i := 0; i < limit; i++ {
		out[i] = p.byPriority[i].tx
	}
	return out
}

// SweepExpired removes every entry admitted before now - ExpiryThreshold,
// returning the hashes removed. A zero ExpiryThreshold disables sweeping.
func (p *Pool) SweepExpired(now uint64) []crypto.Hash {
	if p.cfg.ExpiryThreshold == 0 {
		return nil
	}
	p.muHash.Lock()
	defer p.muHash.Unlock()
	p.muSender.Lock()
	defer p.muSender.Unlock()
	p.muPriority.Lock()
	defer p.muPriority.Unlock()

	var expired []crypto.Hash
	cutoff := int64(now) - int64(p.cfg.ExpiryThreshold)
	for h, e := range p.byHash {
		if int64(e.admitted) < cutoff {
			expired = append(expired, h)
		}
	}
	for _, h := range expired {
		p.removeLocked(h)
	}
	return expired
}

func (p *Pool) lowestPriorityLocked() *entry {
	if len(p.byPriority) == 0 {
		return nil
	}
	return p.byPriority[len(p.byPriority)-1]
}

func feeRate(tx *types.Transaction) uint64 {
	if len(tx.Ops) == 0 {
		return tx.Fee
	}
	return tx.Fee / uint64(len(tx.Ops))
}

// outranks reports whether candidate should be admitted ahead of the
// current lowest-priority entry under mode.
func outranks(candidate, lowest *entry, mode OrderMode) bool {
	switch mode {
	case OrderFIFO:
		return candidate.admitted < lowest.admitted
	default:
		if candidate.feeRate != lowest.feeRate {
			return candidate.feeRate > lowest.feeRate
		}
		return candidate.admitted < lowest.admitted
	}
}

// insertSorted inserts e into a slice kept sorted best-first under mode.
func insertSorted(list []*entry, e *entry, mode OrderMode) []*entry {
	idx := sort.Search(len(list), func(i int) bool {
		return !outranks(list[i], e, mode)
	})
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = e
	return list
}
