package execution

import (
	"fmt"

	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/types"
)

// ExecuteTransaction validates and applies tx against st as of the given
// block height and timestamp. Execution runs against a private working
// copy of st; on any error st is left completely untouched (the working
// copy is simply discarded), and on success the working copy replaces st
// in place. validators receives the block's fee split.
func ExecuteTransaction(st *state.State, tx *types.Transaction, height, timestamp uint64, validators []crypto.PublicKey) ([]Event, error) {
	if err := Validate(st, tx, timestamp); err != nil {
		return nil, err
	}

	working := st.Clone()
	events, err := apply(working, tx, height, timestamp, validators)
	if err != nil {
		return nil, err
	}
	*st = *working
	return events, nil
}

func apply(st *state.State, tx *types.Transaction, height, timestamp uint64, validators []crypto.PublicKey) ([]Event, error) {
	acc := st.GetAccount(tx.SenderPubkey)

	if tx.Fee > 0 {
		acc.Debit(tx.Fee)
		distributeFee(st, tx.Fee, validators)
	}

	var events []Event
	for i, op := range tx.Ops {
		ev, err := applyOp(st, tx, i, op, height, timestamp)
		if err != nil {
			return nil, err
		}
		events = append(events, ev...)
	}

	acc.Nonce++
	return events, nil
}

// distributeFee splits fee evenly across validators, crediting each
// account's balance; any remainder from integer division is burned.
func distributeFee(st *state.State, fee uint64, validators []crypto.PublicKey) {
	if len(validators) == 0 {
		return
	}
	share := fee / uint64(len(validators))
	if share == 0 {
		return
	}
	for _, v := range validators {
		st.GetAccount(v).Credit(share)
	}
}

func applyOp(st *state.State, tx *types.Transaction, opIndex int, op types.Op, height, timestamp uint64) ([]Event, error) {
	sender := tx.SenderPubkey

	switch o := op.(type) {
	case types.OpAgentCertRegister:
		return applyAgentCertRegister(st, o)

	case types.OpTransfer:
		senderAcc := st.GetAccount(sender)
		if senderAcc.Balance < o.Amount {
			return nil, types.ErrInsufficientBalance(senderAcc.Balance, o.Amount)
		}
		senderAcc.Debit(o.Amount)
		st.GetAccount(o.To).Credit(o.Amount)
		return []Event{{Kind: EventTransfer, Subject: sender, Detail: fmt.Sprintf("%d to %s", o.Amount, o.To.Hex())}}, nil

	case types.OpClaimCreate:
		return applyClaimCreate(st, tx, opIndex, o, height)

	case types.OpAttest:
		return applyAttest(st, sender, o, height)

	case types.OpAppRegister:
		if _, exists := st.Apps[o.Meta.AppID]; exists {
			return nil, types.ErrAppExists
		}
		st.Apps[o.Meta.AppID] = o.Meta
		return []Event{{Kind: EventAppRegistered, Subject: sender, Detail: o.Meta.AppID.Hex()}}, nil

	case types.OpKvPut:
		if err := checkNamespaceWrite(st, sender, o.NsID); err != nil {
			return nil, err
		}
		st.KvPut(o.NsID, o.Key, o.Value)
		return []Event{{Kind: EventKvPut, Subject: sender, Detail: o.Key}}, nil

	case types.OpKvDel:
		if err := checkNamespaceWrite(st, sender, o.NsID); err != nil {
			return nil, err
		}
		if _, ok := st.KvGet(o.NsID, o.Key); !ok {
			return nil, types.ErrKeyNotFound
		}
		st.KvDelete(o.NsID, o.Key)
		return []Event{{Kind: EventKvDeleted, Subject: sender, Detail: o.Key}}, nil

	case types.OpKvAppend:
		if err := checkNamespaceWrite(st, sender, o.NsID); err != nil {
			return nil, err
		}
		existing, ok := st.KvGet(o.NsID, o.Key)
		var merged types.KvValue
		if ok {
			merged = types.Append(existing, o.Value)
		} else {
			merged = o.Value
		}
		st.KvPut(o.NsID, o.Key, merged)
		return []Event{{Kind: EventKvPut, Subject: sender, Detail: o.Key}}, nil

	case types.OpNamespaceCreate:
		if _, exists := st.Namespaces[o.NsID]; exists {
			return nil, types.ErrNamespaceExists
		}
		st.Namespaces[o.NsID] = &types.Namespace{
			NsID:          o.NsID,
			Owner:         sender,
			Policy:        o.Policy,
			Allowlist:     o.Allowlist,
			MinWriteStake: o.MinWriteStake,
		}
		return []Event{{Kind: EventNamespaceCreated, Subject: sender, Detail: o.NsID.Hex()}}, nil

	default:
		return nil, types.ErrInvalidOperation(fmt.Sprintf("unknown operation type %T", op))
	}
}

func applyAgentCertRegister(st *state.State, o types.OpAgentCertRegister) ([]Event, error) {
	issuerPubkey, ok := st.Issuers[o.Cert.Cert.IssuerID]
	if !ok {
		return nil, types.ErrIssuerNotTrusted
	}
	if err := o.Cert.VerifySignature(issuerPubkey); err != nil {
		return nil, types.ErrInvalidSignature
	}
	st.Certs[o.Cert.Cert.AgentPubkey] = &o.Cert
	return []Event{{Kind: EventAgentCertRegistered, Subject: o.Cert.Cert.AgentPubkey, Detail: o.Cert.Cert.AgentID.Hex()}}, nil
}

// claimLockID derives the stake lock identifier for one attester (or the
// creator, who is attester index 0) on a claim.
func claimLockID(claimID crypto.Hash, attester crypto.PublicKey) types.LockId {
	w := codec.NewWriter()
	w.RawFixed(claimID.Bytes())
	w.RawFixed(attester.Bytes())
	return types.LockId(crypto.HashBytes(w.Bytes()))
}

func applyClaimCreate(st *state.State, tx *types.Transaction, opIndex int, o types.OpClaimCreate, height uint64) ([]Event, error) {
	sender := tx.SenderPubkey
	senderAcc := st.GetAccount(sender)
	if senderAcc.Balance < o.Stake {
		return nil, types.ErrInsufficientBalance(senderAcc.Balance, o.Stake)
	}

	w := codec.NewWriter()
	w.RawFixed(sender.Bytes())
	w.Uint64(tx.Nonce)
	w.Uint32(uint32(opIndex))
	w.String(o.ClaimType)
	w.RawFixed(o.PayloadHash.Bytes())
	claimID := crypto.HashBytes(w.Bytes())

	lockID := claimLockID(claimID, sender)
	if !senderAcc.Lock(lockID, o.Stake) {
		return nil, types.ErrInsufficientBalance(senderAcc.Balance, o.Stake)
	}

	claim := types.NewClaim(claimID, o.ClaimType, o.PayloadHash, sender, o.Stake, height)
	st.Claims[claimID] = claim

	return []Event{{Kind: EventClaimCreated, Subject: sender, Detail: claimID.Hex()}}, nil
}

func applyAttest(st *state.State, sender crypto.PublicKey, o types.OpAttest, height uint64) ([]Event, error) {
	claim, ok := st.Claims[o.ClaimID]
	if !ok {
		return nil, types.ErrClaimNotFound
	}
	if claim.Status != types.ClaimPending {
		return nil, types.ErrClaimAlreadyFinal
	}
	if claim.HasAttested(sender) {
		return nil, types.ErrAlreadyAttested
	}

	senderAcc := st.GetAccount(sender)
	if senderAcc.Balance < o.Stake {
		return nil, types.ErrInsufficientBalance(senderAcc.Balance, o.Stake)
	}
	lockID := claimLockID(o.ClaimID, sender)
	if !senderAcc.Lock(lockID, o.Stake) {
		return nil, types.ErrInsufficientBalance(senderAcc.Balance, o.Stake)
	}

	claim.AddAttestation(sender, o.Vote, o.Stake, height)
	events := []Event{{Kind: EventAttested, Subject: sender, Detail: o.ClaimID.Hex()}}

	if claim.TryFinalize() {
		settleClaim(st, claim)
		events = append(events, Event{Kind: EventClaimFinalized, Subject: claim.Creator, Detail: o.ClaimID.Hex()})
	}

	return events, nil
}

// settleClaim applies a finalized claim's settlement transfers: every
// attester's lock is slashed and/or rewarded per CalculateSettlement, then
// fully released (locks are removed, never left at zero).
func settleClaim(st *state.State, claim *types.Claim) {
	transfers := claim.CalculateSettlement()
	for i, t := range transfers {
		attester := claim.Attestations[i].Attester
		acc := st.GetAccount(attester)
		lockID := claimLockID(claim.ID, attester)
		locked := acc.GetLocked(lockID)
		acc.RemoveLock(lockID)
		acc.Credit(locked - t.Slashed + t.Reward)
	}
}

func checkNamespaceWrite(st *state.State, sender crypto.PublicKey, nsID crypto.Hash) error {
	ns, ok := st.Namespaces[nsID]
	if !ok {
		return types.ErrNamespaceNotFound
	}
	balance := st.GetAccount(sender).Balance
	if !ns.CanWrite(sender, balance) {
		return types.ErrNamespaceUnauthorized
	}
	return nil
}
