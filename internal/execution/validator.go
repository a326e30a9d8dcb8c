// Package execution implements the pre-flight validator and transaction
// executor: the two-phase contract every transaction passes through before
// it can mutate chain state. Validate never mutates; Execute mutates a
// state.State in place and rolls back cleanly on any failure partway
// through a transaction's operation list.
package execution

import (
	"github.com/agentledger/chain/internal/state"
	"github.com/agentledger/chain/internal/types"
)

// Validate runs the fixed-order pre-flight checks against st for tx, as of
// currentTime: signature, then (for operations that require one) agent
// certification and capability, then nonce, then balance. It does not
// mutate st.
func Validate(st *state.State, tx *types.Transaction, currentTime uint64) error {
	if err := tx.VerifySignature(); err != nil {
		return types.ErrInvalidSignature
	}

	if err := checkCapabilities(st, tx, currentTime); err != nil {
		return err
	}

	acc, ok := st.Accounts[tx.SenderPubkey]
	if !ok {
		acc = types.NewAccount(0)
	}
	if tx.Nonce != acc.Nonce+1 {
		return types.ErrInvalidNonce(acc.Nonce+1, tx.Nonce)
	}

	cost := tx.EstimatedCost()
	if acc.Balance < cost {
		return types.ErrInsufficientBalance(acc.Balance, cost)
	}

	return nil
}

// checkCapabilities confirms the sender holds a live, registered agent
// certificate carrying every capability the transaction's operations
// require. A transaction consisting solely of OpAgentCertRegister needs no
// prior certificate.
func checkCapabilities(st *state.State, tx *types.Transaction, currentTime uint64) error {
	var needsCert bool
	for _, op := range tx.Ops {
		if _, required := types.RequiredCapability(op); required {
			needsCert = true
			break
		}
	}
	if !needsCert {
		return nil
	}

	cert, ok := st.CertFor(tx.SenderPubkey)
	if !ok {
		return types.ErrAgentNotCertified
	}
	if !st.IsTrustedIssuer(cert.Cert.IssuerID) {
		return types.ErrIssuerNotTrusted
	}
	if cert.IsExpired(currentTime) {
		return types.ErrAgentNotCertified
	}

	for _, op := range tx.Ops {
		cap, required := types.RequiredCapability(op)
		if !required {
			continue
		}
		if !cert.HasCapability(cap) {
			return types.ErrMissingCapability(cap)
		}
	}
	return nil
}
