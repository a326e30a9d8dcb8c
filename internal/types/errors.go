package types

import (
	"errors"
	"fmt"

	"github.com/agentledger/chain/internal/crypto"
)

// Execution-layer error sentinels and constructors. These are returned by
// the pre-flight validator and the opcode executor; callers use errors.Is
// / errors.As to branch on them.
var (
	ErrInvalidSignature    = errors.New("invalid transaction signature")
	ErrAgentNotCertified   = errors.New("sender has no registered agent certificate")
	ErrIssuerNotTrusted    = errors.New("certificate issuer is not a trusted issuer")
	ErrClaimNotFound       = errors.New("claim not found")
	ErrClaimAlreadyFinal   = errors.New("claim already finalized")
	ErrAlreadyAttested     = errors.New("sender has already attested to this claim")
	ErrNamespaceNotFound   = errors.New("namespace not found")
	ErrNamespaceExists     = errors.New("namespace already exists")
	ErrNamespaceUnauthorized = errors.New("sender is not authorized to write to this namespace")
	ErrAppExists           = errors.New("application already registered")
	ErrKeyNotFound         = errors.New("key not found")
)

// InvalidNonceError reports a nonce mismatch against the account's expected
// next nonce.
type InvalidNonceError struct {
	Expected uint64
	Got      uint64
}

func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("invalid nonce: expected %d, got %d", e.Expected, e.Got)
}

func ErrInvalidNonce(expected, got uint64) error {
	return &InvalidNonceError{Expected: expected, Got: got}
}

// InsufficientBalanceError reports an account lacking the funds a
// transaction requires.
type InsufficientBalanceError struct {
	Have uint64
	Need uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Have, e.Need)
}

func ErrInsufficientBalance(have, need uint64) error {
	return &InsufficientBalanceError{Have: have, Need: need}
}

// MissingCapabilityError reports an agent certificate lacking a capability
// an operation requires.
type MissingCapabilityError struct {
	Capability Capability
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("agent certificate missing required capability: %s", e.Capability)
}

func ErrMissingCapability(cap Capability) error {
	return &MissingCapabilityError{Capability: cap}
}

// InvalidOperationError reports a structurally or semantically malformed
// operation that does not fit one of the more specific error kinds above.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation: %s", e.Message)
}

func ErrInvalidOperation(message string) error {
	return &InvalidOperationError{Message: message}
}

// Consensus-layer error sentinels and constructors. These are returned by
// the block builder, validator, and proposer.
var (
	ErrNotLeader          = errors.New("this validator is not the leader for the current height")
	ErrPrevHashMismatch   = errors.New("block's prev_hash does not match the local chain tip")
	ErrInvalidStateRoot   = errors.New("block's state_root does not match the locally computed state root")
)

// InvalidBlockError reports a block that fails structural or semantic
// validation for a reason not covered by a more specific error kind.
type InvalidBlockError struct {
	Message string
}

func (e *InvalidBlockError) Error() string {
	return fmt.Sprintf("invalid block: %s", e.Message)
}

func ErrInvalidBlock(message string) error {
	return &InvalidBlockError{Message: message}
}

// HeightMismatchError reports a block proposed for the wrong height.
type HeightMismatchError struct {
	Expected uint64
	Got      uint64
}

func (e *HeightMismatchError) Error() string {
	return fmt.Sprintf("height mismatch: expected %d, got %d", e.Expected, e.Got)
}

func ErrHeightMismatch(expected, got uint64) error {
	return &HeightMismatchError{Expected: expected, Got: got}
}

// ExecutionFailedError wraps an error raised while re-executing a block's
// transactions during verification.
type ExecutionFailedError struct {
	Message string
}

func (e *ExecutionFailedError) Error() string {
	return fmt.Sprintf("block execution failed: %s", e.Message)
}

func ErrExecutionFailed(message string) error {
	return &ExecutionFailedError{Message: message}
}

// InsufficientSignaturesError reports a quorum certificate that does not
// yet carry enough validator signatures for finality.
type InsufficientSignaturesError struct {
	Have uint64
	Need uint64
}

func (e *InsufficientSignaturesError) Error() string {
	return fmt.Sprintf("insufficient quorum certificate signatures: have %d, need %d", e.Have, e.Need)
}

func ErrInsufficientSignatures(have, need uint64) error {
	return &InsufficientSignaturesError{Have: have, Need: need}
}

// ValidatorNotFoundError reports a signature from a public key outside the
// active validator set.
type ValidatorNotFoundError struct {
	Pubkey crypto.PublicKey
}

func (e *ValidatorNotFoundError) Error() string {
	return fmt.Sprintf("validator not found: %s", e.Pubkey.Hex())
}

func ErrValidatorNotFound(pk crypto.PublicKey) error {
	return &ValidatorNotFoundError{Pubkey: pk}
}

// BlockExistsError reports an attempt to apply a block at a height the
// chain has already committed.
type BlockExistsError struct {
	Height uint64
}

func (e *BlockExistsError) Error() string {
	return fmt.Sprintf("block already exists at height %d", e.Height)
}

func ErrBlockExists(height uint64) error {
	return &BlockExistsError{Height: height}
}
