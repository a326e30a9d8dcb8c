package types

import (
	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// Vote is an attester's position on a Claim.
type Vote uint8

const (
	VoteYes Vote = iota
	VoteNo
)

// ClaimStatus tracks a Claim through its settlement lifecycle.
type ClaimStatus uint8

const (
	ClaimPending ClaimStatus = iota
	ClaimFinalizedYes
	ClaimFinalizedNo
)

// slashPercentage is the percentage of a losing attester's locked stake
// slashed at settlement. The slashed total is redistributed pro-rata to
// winners; the loser gets the rest of their stake back.
const slashPercentage = 20

// Attestation records one attester's staked vote on a Claim.
type Attestation struct {
	Attester    crypto.PublicKey
	Vote        Vote
	Stake       uint64
	BlockHeight uint64
}

// Claim is a staked assertion that attesters vote to confirm or reject.
// The creator's stake counts as an implicit first YES vote.
type Claim struct {
	ID           crypto.Hash
	ClaimType    string
	PayloadHash  crypto.Hash
	Creator      crypto.PublicKey
	CreatorStake uint64
	YesStake     uint64
	NoStake      uint64
	Status       ClaimStatus
	CreatedAt    uint64
	Attestations []Attestation
}

// NewClaim creates a claim with the creator already recorded as a YES
// attestation for their own stake.
func NewClaim(id crypto.Hash, claimType string, payloadHash crypto.Hash, creator crypto.PublicKey, creatorStake, createdAt uint64) *Claim {
	return &Claim{
		ID:           id,
		ClaimType:    claimType,
		PayloadHash:  payloadHash,
		Creator:      creator,
		CreatorStake: creatorStake,
		YesStake:     creatorStake,
		Status:       ClaimPending,
		CreatedAt:    createdAt,
		Attestations: []Attestation{{Attester: creator, Vote: VoteYes, Stake: creatorStake, BlockHeight: createdAt}},
	}
}

// HasAttested reports whether attester has already voted on this claim.
func (c *Claim) HasAttested(attester crypto.PublicKey) bool {
	for _, a := range c.Attestations {
		if a.Attester == attester {
			return true
		}
	}
	return false
}

// AddAttestation records a new attester's staked vote and updates the
// running YES/NO totals. The caller must have already rejected duplicate
// attesters via HasAttested.
func (c *Claim) AddAttestation(attester crypto.PublicKey, vote Vote, stake, blockHeight uint64) {
	c.Attestations = append(c.Attestations, Attestation{
		Attester:    attester,
		Vote:        vote,
		Stake:       stake,
		BlockHeight: blockHeight,
	})
	switch vote {
	case VoteYes:
		c.YesStake += stake
	case VoteNo:
		c.NoStake += stake
	}
}

// CheckFinality reports whether either side has reached twice the
// creator's original stake, and which side.
func (c *Claim) CheckFinality() (finalized bool, status ClaimStatus) {
	threshold := 2 * c.CreatorStake
	if c.YesStake >= threshold {
		return true, ClaimFinalizedYes
	}
	if c.NoStake >= threshold {
		return true, ClaimFinalizedNo
	}
	return false, ClaimPending
}

// TryFinalize applies CheckFinality's verdict to Status if the claim is
// still pending, returning whether it just finalized.
func (c *Claim) TryFinalize() bool {
	if c.Status != ClaimPending {
		return false
	}
	finalized, status := c.CheckFinality()
	if !finalized {
		return false
	}
	c.Status = status
	return true
}

// SettlementTransfer is one account's net stake movement resulting from a
// Claim's settlement: some amount slashed (for a loser), some amount received
// as a reward from the losing side's slashed pool (for a winner).
type SettlementTransfer struct {
	Attester crypto.PublicKey
	Slashed  uint64
	Reward   uint64
}

// CalculateSettlement computes, for a finalized claim, the slash and reward
// due to every attester: losing-side stake is slashed at slashPercentage,
// the slashed total is redistributed pro-rata across winning-side stake
// (floor division; any rounding residue is burned, not distributed), and
// every attestation's stake lock is released in full regardless of side.
func (c *Claim) CalculateSettlement() []SettlementTransfer {
	if c.Status == ClaimPending {
		return nil
	}
	winningVote := VoteYes
	winningTotal := c.YesStake
	if c.Status == ClaimFinalizedNo {
		winningVote = VoteNo
		winningTotal = c.NoStake
	}

	var totalSlashed uint64
	transfers := make([]SettlementTransfer, 0, len(c.Attestations))
	for _, a := range c.Attestations {
		if a.Vote != winningVote {
			slashed := a.Stake * slashPercentage / 100
			totalSlashed += slashed
			transfers = append(transfers, SettlementTransfer{Attester: a.Attester, Slashed: slashed})
		} else {
			transfers = append(transfers, SettlementTransfer{Attester: a.Attester})
		}
	}

	if winningTotal == 0 {
		return transfers
	}
	for i, a := range c.Attestations {
		if a.Vote != winningVote {
			continue
		}
		transfers[i].Reward = totalSlashed * a.Stake / winningTotal
	}
	return transfers
}

// CanonicalBytes encodes the claim deterministically for state-root hashing.
func (c *Claim) CanonicalBytes() []byte {
	w := codec.NewWriter()
	w.RawFixed(c.ID.Bytes())
	w.String(c.ClaimType)
	w.RawFixed(c.PayloadHash.Bytes())
	w.RawFixed(c.Creator.Bytes())
	w.Uint64(c.CreatorStake)
	w.Uint64(c.YesStake)
	w.Uint64(c.NoStake)
	w.Uint8(uint8(c.Status))
	w.Uint64(c.CreatedAt)
	w.SeqLen(len(c.Attestations))
	for _, a := range c.Attestations {
		w.RawFixed(a.Attester.Bytes())
		w.Uint8(uint8(a.Vote))
		w.Uint64(a.Stake)
		w.Uint64(a.BlockHeight)
	}
	return w.Bytes()
}
