package execution

import "github.com/agentledger/chain/internal/crypto"

// EventKind names the kind of state change an Event reports.
type EventKind uint8

const (
	EventAgentCertRegistered EventKind = iota
	EventTransfer
	EventClaimCreated
	EventAttested
	EventClaimFinalized
	EventAppRegistered
	EventKvPut
	EventKvDeleted
	EventNamespaceCreated
)

// Event is an audit record emitted by the executor for one applied
// operation, surfaced to RPC subscribers and log output.
type Event struct {
	Kind    EventKind
	Subject crypto.PublicKey // the account the event is most associated with
	Detail  string
}
