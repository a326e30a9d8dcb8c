// Package storage persists committed blocks and chain metadata. Two
// backends are provided: an embedded key-value store built on
// cometbft-db (for single-node and devnet operation) and a Postgres
// store (for multi-reader deployments that want SQL-side querying of
// block history). Both implement the same Store
// interface, so a node's choice of backend is a configuration detail, not
// a code-path fork.
package storage

import (
	"context"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
)

// Store persists blocks by height and hash, and tracks the chain tip.
type Store interface {
	PutBlock(ctx context.Context, block *types.Block) error
	GetBlockByHeight(ctx context.Context, height uint64) (*types.Block, error)
	GetBlockByHash(ctx context.Context, hash crypto.Hash) (*types.Block, error)
	SetTip(ctx context.Context, height uint64, hash crypto.Hash) error
	GetTip(ctx context.Context) (height uint64, hash crypto.Hash, err error)
	Close() error
}
