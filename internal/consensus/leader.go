// Package consensus implements rotating-leader block production and
// quorum-certificate finalization: no view-change, no fork choice — a
// single fixed validator set takes turns proposing, and a block finalizes
// the instant two-thirds-plus-one of that set have signed it.
package consensus

import "github.com/agentledger/chain/internal/crypto"

// LeaderAt returns the validator responsible for proposing at height,
// rotating through validators in order.
func LeaderAt(validators []crypto.PublicKey, height uint64) crypto.PublicKey {
	return validators[height%uint64(len(validators))]
}

// IsLeader reports whether self is the leader at height. An empty
// validator set has no leader, so it reports false rather than dividing
// by zero.
func IsLeader(validators []crypto.PublicKey, height uint64, self crypto.PublicKey) bool {
	if len(validators) == 0 {
		return false
	}
	return LeaderAt(validators, height) == self
}
