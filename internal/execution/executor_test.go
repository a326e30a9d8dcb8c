package execution_test

import (
	"testing"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/execution"
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/types"
)

func certifiedSender(t *testing.T, st *state.State, caps ...types.Capability) (crypto.SecretKey, crypto.PublicKey) {
	t.Helper()
	issuerSK, issuerPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	issuerID := st.AddTrustedIssuer(issuerPK)

	agentSK, agentPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	cert := types.NewAgentCertificate(issuerID, agentPK, 0, 1_000_000, caps, crypto.Hash{})
	signed := types.NewSignedAgentCertificate(cert, issuerSK)
	st.Certs[agentPK] = &signed

	return agentSK, agentPK
}

func TestExecuteTransferSuccess(t *testing.T) {
	st := state.New()
	senderSK, senderPK := certifiedSender(t, st, types.CapTxSubmit)
	st.GetAccount(senderPK).Credit(100)

	_, recipientPK, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	tx := types.NewSignedTransaction(senderSK, 1, 5, []types.Op{
		types.OpTransfer{To: recipientPK, Amount: 20},
	})

	events, err := execution.ExecuteTransaction(st, tx, 1, 0, nil)
	if err != nil {
		t.Fatalf("ExecuteTransaction: %v", err)
	}
	if len(events) != 1 || events[0].Kind != execution.EventTransfer {
		t.Fatalf("unexpected events: %+v", events)
	}
	if got := st.GetAccount(senderPK).Balance; got != 75 {
		t.Fatalf("sender balance: got %d, want 75", got)
	}
	if got := st.GetAccount(recipientPK).Balance; got != 20 {
		t.Fatalf("recipient balance: got %d, want 20", got)
	}
	if got := st.GetAccount(senderPK).Nonce; got != 1 {
		t.Fatalf("sender nonce: got %d, want 1", got)
	}
}

func TestExecuteInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	st := state.New()
	senderSK, senderPK := certifiedSender(t, st, types.CapTxSubmit)
	st.GetAccount(senderPK).Credit(10)

	before := st.Root()

	_, recipientPK, _ := crypto.GenerateKeyPair()
	tx := types.NewSignedTransaction(senderSK, 1, 0, []types.Op{
		types.OpTransfer{To: recipientPK, Amount: 9999},
	})

	if _, err := execution.ExecuteTransaction(st, tx, 1, 0, nil); err == nil {
		t.Fatal("expected insufficient balance error")
	}
	if st.Root() != before {
		t.Fatal("state mutated after a failed execution")
	}
	if got := st.GetAccount(senderPK).Nonce; got != 0 {
		t.Fatalf("nonce advanced despite failed execution: got %d", got)
	}
}

func TestExecuteWrongNonceRejected(t *testing.T) {
	st := state.New()
	senderSK, senderPK := certifiedSender(t, st, types.CapTxSubmit)
	st.GetAccount(senderPK).Credit(100)

	_, recipientPK, _ := crypto.GenerateKeyPair()
	tx := types.NewSignedTransaction(senderSK, 5, 0, []types.Op{
		types.OpTransfer{To: recipientPK, Amount: 1},
	})

	if _, err := execution.ExecuteTransaction(st, tx, 1, 0, nil); err == nil {
		t.Fatal("expected invalid nonce error")
	}
}

func TestExecuteMissingCapabilityRejected(t *testing.T) {
	st := state.New()
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	st.GetAccount(pk).Credit(100)

	_, recipientPK, _ := crypto.GenerateKeyPair()
	tx := types.NewSignedTransaction(sk, 0, 0, []types.Op{
		types.OpTransfer{To: recipientPK, Amount: 1},
	})

	if _, err := execution.ExecuteTransaction(st, tx, 1, 0, nil); err != types.ErrAgentNotCertified {
		t.Fatalf("got %v, want ErrAgentNotCertified", err)
	}
}

func TestFeeDistributedAcrossValidators(t *testing.T) {
	st := state.New()
	senderSK, senderPK := certifiedSender(t, st, types.CapTxSubmit)
	st.GetAccount(senderPK).Credit(100)

	_, v1, _ := crypto.GenerateKeyPair()
	_, v2, _ := crypto.GenerateKeyPair()
	validators := []crypto.PublicKey{v1, v2}

	_, recipientPK, _ := crypto.GenerateKeyPair()
	tx := types.NewSignedTransaction(senderSK, 1, 10, []types.Op{
		types.OpTransfer{To: recipientPK, Amount: 1},
	})

	if _, err := execution.ExecuteTransaction(st, tx, 1, 0, validators); err != nil {
		t.Fatalf("ExecuteTransaction: %v", err)
	}
	if got := st.GetAccount(v1).Balance; got != 5 {
		t.Fatalf("validator 1 balance: got %d, want 5", got)
	}
	if got := st.GetAccount(v2).Balance; got != 5 {
		t.Fatalf("validator 2 balance: got %d, want 5", got)
	}
}

func TestClaimCreateAttestAndFinalize(t *testing.T) {
	st := state.New()
	creatorSK, creatorPK := certifiedSender(t, st, types.CapClaim, types.CapAttest)
	st.GetAccount(creatorPK).Credit(100)

	createTx := types.NewSignedTransaction(creatorSK, 1, 0, []types.Op{
		types.OpClaimCreate{ClaimType: "fact", PayloadHash: crypto.HashBytes([]byte("payload")), Stake: 20},
	})
	if _, err := execution.ExecuteTransaction(st, createTx, 1, 0, nil); err != nil {
		t.Fatalf("create claim: %v", err)
	}

	var claimID crypto.Hash
	for id := range st.Claims {
		claimID = id
	}
	if st.Claims[claimID].Status != types.ClaimPending {
		t.Fatalf("expected claim pending after creation, got %v", st.Claims[claimID].Status)
	}

	attesterSK, attesterPK := certifiedSender(t, st, types.CapAttest)
	st.GetAccount(attesterPK).Credit(100)
	attestTx := types.NewSignedTransaction(attesterSK, 1, 0, []types.Op{
		types.OpAttest{ClaimID: claimID, Vote: types.VoteYes, Stake: 20},
	})
	if _, err := execution.ExecuteTransaction(st, attestTx, 2, 0, nil); err != nil {
		t.Fatalf("attest: %v", err)
	}
	if st.Claims[claimID].Status != types.ClaimFinalizedYes {
		t.Fatalf("expected claim finalized YES after attestation, got %v", st.Claims[claimID].Status)
	}
}
