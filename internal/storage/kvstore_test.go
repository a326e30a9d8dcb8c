package storage_test

import (
	"context"
	"testing"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/storage"
	"github.com/agentledger/chain/internal/types"
)

func TestKVStorePutAndGetBlock(t *testing.T) {
	ctx := context.Background()
	store := storage.OpenMemDB()
	defer store.Close()

	_, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	block := &types.Block{
		Header: types.BlockHeader{
			ChainID:        "test-chain",
			Height:         1,
			PrevHash:       crypto.ZeroHash,
			TxRoot:         crypto.ZeroHash,
			StateRoot:      crypto.ZeroHash,
			ProposerPubkey: pk,
		},
	}

	if err := store.PutBlock(ctx, block); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}

	byHeight, err := store.GetBlockByHeight(ctx, 1)
	if err != nil {
		t.Fatalf("GetBlockByHeight: %v", err)
	}
	if byHeight.Hash() != block.Hash() {
		t.Fatal("block retrieved by height does not match stored block")
	}

	byHash, err := store.GetBlockByHash(ctx, block.Hash())
	if err != nil {
		t.Fatalf("GetBlockByHash: %v", err)
	}
	if byHash.Hash() != block.Hash() {
		t.Fatal("block retrieved by hash does not match stored block")
	}
}

func TestKVStoreTip(t *testing.T) {
	ctx := context.Background()
	store := storage.OpenMemDB()
	defer store.Close()

	height, hash, err := store.GetTip(ctx)
	if err != nil {
		t.Fatalf("GetTip on empty store: %v", err)
	}
	if height != 0 || hash != crypto.ZeroHash {
		t.Fatalf("expected zero tip on empty store, got height=%d hash=%s", height, hash.Hex())
	}

	want := crypto.HashBytes([]byte("tip-block"))
	if err := store.SetTip(ctx, 42, want); err != nil {
		t.Fatalf("SetTip: %v", err)
	}
	gotHeight, gotHash, err := store.GetTip(ctx)
	if err != nil {
		t.Fatalf("GetTip: %v", err)
	}
	if gotHeight != 42 || gotHash != want {
		t.Fatalf("GetTip: got height=%d hash=%s, want height=42 hash=%s", gotHeight, gotHash.Hex(), want.Hex())
	}
}

func TestKVStoreMissingBlock(t *testing.T) {
	ctx := context.Background()
	store := storage.OpenMemDB()
	defer store.Close()

	if _, err := store.GetBlockByHeight(ctx, 99); err == nil {
		t.Fatal("expected error retrieving a block at an unstored height")
	}
}
