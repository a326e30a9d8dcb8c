package types

import "github.com/agentledger/chain/internal/crypto"

// NativeTokenID is the identifier of the chain's single native balance
// token. It is the only token this ledger's Operation set can ever move;
// TokenMeta below is descriptive genesis metadata only and never enters
// balance arithmetic.
var NativeTokenID = crypto.ZeroHash

// TokenMeta describes the native token for genesis and client display. No
// opcode reads or mutates this — Account.Balance is the sole source of
// truth for native-token accounting.
type TokenMeta struct {
	TokenID     crypto.Hash
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply uint64
	Creator     crypto.PublicKey
}
