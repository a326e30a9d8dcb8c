package storage

import (
	"context"
	"encoding/binary"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
	"github.com/agentledger/chain/internal/wire"
)

const (
	prefixBlockByHeight = "h/"
	prefixHashToHeight  = "b/"
	keyTip              = "tip"
)

// KVStore persists blocks in an embedded cometbft-db database — GoLevelDB
// on disk, or MemDB for devnet and tests.
type KVStore struct {
	db dbm.DB
}

// OpenGoLevelDB opens (creating if absent) a GoLevelDB-backed store at
// dir/name.
func OpenGoLevelDB(name, dir string) (*KVStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, fmt.Errorf("open goleveldb: %w", err)
	}
	return &KVStore{db: db}, nil
}

// OpenMemDB returns a store backed entirely by memory, for devnets and
// tests that should never touch disk.
func OpenMemDB() *KVStore {
	return &KVStore{db: dbm.NewMemDB()}
}

func heightKey(height uint64) []byte {
	key := make([]byte, len(prefixBlockByHeight)+8)
	copy(key, prefixBlockByHeight)
	binary.BigEndian.PutUint64(key[len(prefixBlockByHeight):], height)
	return key
}

func hashKey(hash crypto.Hash) []byte {
	return append([]byte(prefixHashToHeight), hash.Bytes()...)
}

func (s *KVStore) PutBlock(_ context.Context, block *types.Block) error {
	data, err := wire.EncodeBlock(block)
	if err != nil {
		return fmt.Errorf("encode block: %w", err)
	}
	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(heightKey(block.Header.Height), data); err != nil {
		return err
	}
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, block.Header.Height)
	if err := batch.Set(hashKey(block.Hash()), heightBytes); err != nil {
		return err
	}
	return batch.Write()
}

func (s *KVStore) GetBlockByHeight(_ context.Context, height uint64) (*types.Block, error) {
	data, err := s.db.Get(heightKey(height))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("no block at height %d", height)
	}
	return wire.DecodeBlock(data)
}

func (s *KVStore) GetBlockByHash(ctx context.Context, hash crypto.Hash) (*types.Block, error) {
	heightBytes, err := s.db.Get(hashKey(hash))
	if err != nil {
		return nil, err
	}
	if heightBytes == nil {
		return nil, fmt.Errorf("no block with hash %s", hash.Hex())
	}
	return s.GetBlockByHeight(ctx, binary.BigEndian.Uint64(heightBytes))
}

func (s *KVStore) SetTip(_ context.Context, height uint64, hash crypto.Hash) error {
	value := make([]byte, 8+crypto.HashSize)
	binary.BigEndian.PutUint64(value[:8], height)
	copy(value[8:], hash.Bytes())
	return s.db.Set([]byte(keyTip), value)
}

func (s *KVStore) GetTip(_ context.Context) (uint64, crypto.Hash, error) {
	value, err := s.db.Get([]byte(keyTip))
	if err != nil {
		return 0, crypto.Hash{}, err
	}
	if value == nil {
		return 0, crypto.ZeroHash, nil
	}
	height := binary.BigEndian.Uint64(value[:8])
	hash, err := crypto.HashFromBytes(value[8:])
	return height, hash, err
}

func (s *KVStore) Close() error {
	return s.db.Close()
}
