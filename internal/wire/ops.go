package wire

import "github.com/agentledger/chain/internal/types"

func encodeOp(op types.Op) (rlpOp, error) {
	tag, payload := types.EncodeOp(op)
	return rlpOp{Tag: tag, Payload: payload}, nil
}

func decodeOp(r rlpOp) (types.Op, error) {
	return types.DecodeOp(r.Tag, r.Payload)
}
