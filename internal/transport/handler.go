package transport

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentledger/chain/internal/consensus"
	"github.com/agentledger/chain/internal/types"
	"github.com/agentledger/chain/internal/wire"
)

// Handler answers the two requests a peer validator makes of this node:
// sign a proposed block, and learn about a committed one.
type Handler struct {
	Proposer *consensus.Proposer
	OnCommit func(block *types.Block) error
	Logger   zerolog.Logger
}

// HandleSign serves POST /consensus/sign: decode the candidate block,
// re-execute it locally via Proposer.ReceiveProposal, and write back the
// raw signature bytes on success.
func (h *Handler) HandleSign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	block, err := wire.DecodeBlock(body)
	if err != nil {
		http.Error(w, "decode block: "+err.Error(), http.StatusBadRequest)
		return
	}

	sig, err := h.Proposer.ReceiveProposal(block)
	if err != nil {
		h.Logger.Warn().Err(err).Uint64("height", block.Header.Height).Msg("refusing to sign proposal")
		http.Error(w, "refused: "+err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(sig.Bytes())
}

// HandleCommit serves POST /consensus/commit: decode the finalized block
// and hand it to OnCommit, which typically applies it to a follower's
// local chain via Chain.CommitBlock.
func (h *Handler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	block, err := wire.DecodeBlock(body)
	if err != nil {
		http.Error(w, "decode block: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.OnCommit(block); err != nil {
		h.Logger.Warn().Err(err).Uint64("height", block.Header.Height).Msg("rejected committed block")
		http.Error(w, "rejected: "+err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// RegisterRoutes wires this handler's endpoints into mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/consensus/sign", h.HandleSign)
	mux.HandleFunc("/consensus/commit", h.HandleCommit)
}
