package consensus_test

import (
	"testing"

	"github.com/agentledger/chain/internal/consensus"
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/types"
)

func threeValidators(t *testing.T) ([]crypto.SecretKey, []crypto.PublicKey) {
	t.Helper()
	sks := make([]crypto.SecretKey, 3)
	pks := make([]crypto.PublicKey, 3)
	for i := range sks {
		sk, pk, err := crypto.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair: %v", err)
		}
		sks[i] = sk
		pks[i] = pk
	}
	return sks, pks
}

func TestLeaderRotation(t *testing.T) {
	_, validators := threeValidators(t)
	for h := uint64(0); h < 6; h++ {
		want := validators[h%3]
		if got := consensus.LeaderAt(validators, h); got != want {
			t.Fatalf("height %d: got leader %s, want %s", h, got.Hex(), want.Hex())
		}
	}
	if !consensus.IsLeader(validators, 0, validators[0]) {
		t.Fatal("expected validator 0 to lead height 0")
	}
	if consensus.IsLeader(validators, 0, validators[1]) {
		t.Fatal("did not expect validator 1 to lead height 0")
	}
}

func TestQcBuilderReachesQuorum(t *testing.T) {
	sks, pks := threeValidators(t)
	blockHash := crypto.HashBytes([]byte("block"))
	threshold := types.QuorumThreshold(len(pks))

	qb := consensus.NewQcBuilder(blockHash, pks, threshold)
	if qb.HasQuorum() {
		t.Fatal("should not have quorum before any signature")
	}

	for i, sk := range sks {
		if _, err := qb.AddSignature(pks[i], crypto.Sign(sk, blockHash.Bytes())); err != nil {
			t.Fatalf("AddSignature: %v", err)
		}
		if i+1 < threshold && qb.HasQuorum() {
			t.Fatalf("unexpected quorum after %d signatures (threshold %d)", i+1, threshold)
		}
	}
	if !qb.HasQuorum() {
		t.Fatal("expected quorum after every validator signed")
	}
	qc, ok := qb.Build()
	if !ok {
		t.Fatal("Build: expected ok=true")
	}
	if err := consensus.VerifyQC(qc, blockHash, pks, threshold); err != nil {
		t.Fatalf("VerifyQC: %v", err)
	}
}

func TestQcBuilderDuplicateSignatureNoOp(t *testing.T) {
	sks, pks := threeValidators(t)
	blockHash := crypto.HashBytes([]byte("block"))
	qb := consensus.NewQcBuilder(blockHash, pks, 2)
	if _, err := qb.AddSignature(pks[0], crypto.Sign(sks[0], blockHash.Bytes())); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}
	if _, err := qb.AddSignature(pks[0], crypto.Sign(sks[0], blockHash.Bytes())); err != nil {
		t.Fatalf("AddSignature (duplicate): %v", err)
	}
	if qb.HasQuorum() {
		t.Fatal("duplicate signature from the same validator must not count twice")
	}
}

func TestQcBuilderRejectsUnknownValidator(t *testing.T) {
	sks, pks := threeValidators(t)
	blockHash := crypto.HashBytes([]byte("block"))
	outsideSK, outsidePK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	qb := consensus.NewQcBuilder(blockHash, pks, 1)
	if _, err := qb.AddSignature(outsidePK, crypto.Sign(outsideSK, blockHash.Bytes())); err == nil {
		t.Fatal("expected AddSignature to reject a signature from a non-validator key")
	}
	if qb.HasQuorum() {
		t.Fatal("a rejected signature must not count toward quorum")
	}

	if _, err := qb.AddSignature(pks[0], crypto.Sign(sks[0], blockHash.Bytes())); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}
	if !qb.HasQuorum() {
		t.Fatal("expected quorum after one valid validator signature at threshold 1")
	}
}

func TestQcBuilderRejectsForgedSignature(t *testing.T) {
	_, pks := threeValidators(t)
	blockHash := crypto.HashBytes([]byte("block"))
	forgedSK, _, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	qb := consensus.NewQcBuilder(blockHash, pks, 1)
	forged := crypto.Sign(forgedSK, blockHash.Bytes())
	if _, err := qb.AddSignature(pks[0], forged); err == nil {
		t.Fatal("expected AddSignature to reject a signature that does not verify for the claimed validator")
	}
	if qb.HasQuorum() {
		t.Fatal("a forged signature must not count toward quorum")
	}
}

func TestVerifyQCRejectsUnknownValidator(t *testing.T) {
	sks, pks := threeValidators(t)
	blockHash := crypto.HashBytes([]byte("block"))
	qc := types.NewQuorumCertificate(blockHash)

	outsideSK, outsidePK, _ := crypto.GenerateKeyPair()
	qc.AddSignature(outsidePK, crypto.Sign(outsideSK, blockHash.Bytes()))
	qc.AddSignature(pks[0], crypto.Sign(sks[0], blockHash.Bytes()))

	if err := consensus.VerifyQC(qc, blockHash, pks, 1); err == nil {
		t.Fatal("expected VerifyQC to reject a signature from a non-validator key")
	}
}

func TestChainCommitBlockAdvancesTip(t *testing.T) {
	sks, pks := threeValidators(t)
	_, issuerPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	cfg := &types.GenesisConfig{
		ChainID:        "test-chain",
		Validators:     pks,
		TrustedIssuers: []crypto.PublicKey{issuerPK},
	}
	genesisState := state.InitGenesis(cfg)
	genesisBlock := cfg.CreateGenesisBlock(genesisState.Root())
	chain := consensus.NewChain(genesisBlock, genesisState, pks)

	if chain.Height() != 0 {
		t.Fatalf("genesis height: got %d, want 0", chain.Height())
	}

	threshold := types.QuorumThreshold(len(pks))
	snapshot := chain.StateSnapshot()
	block := &types.Block{
		Header: types.BlockHeader{
			ChainID:        cfg.ChainID,
			Height:         1,
			PrevHash:       chain.TipHash(),
			Timestamp:      1,
			TxRoot:         genesisBlock.Header.TxRoot,
			StateRoot:      snapshot.Root(),
			ProposerPubkey: pks[0],
		},
	}
	qc := types.NewQuorumCertificate(block.Hash())
	for i := 0; i < threshold; i++ {
		qc.AddSignature(pks[i], crypto.Sign(sks[i], block.Hash().Bytes()))
	}
	block.QC = qc

	if err := chain.CommitBlock(block, threshold); err != nil {
		t.Fatalf("CommitBlock: %v", err)
	}
	if chain.Height() != 1 {
		t.Fatalf("height after commit: got %d, want 1", chain.Height())
	}
	if chain.TipHash() != block.Hash() {
		t.Fatal("tip hash did not advance to the committed block's hash")
	}
}
