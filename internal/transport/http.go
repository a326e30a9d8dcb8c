// Package transport implements consensus.Transport over HTTP: the leader
// POSTs an RLP-encoded candidate block to each peer's /consensus/sign
// endpoint and reads back a raw signature, then POSTs the finalized block
// (QC attached) to /consensus/commit on every peer once quorum is
// reached. Grounded on the teacher's HTTPPeerManager/BLSAttestationHandler
// pair: a registered peer list plus a timeout-bounded http.Client on the
// client side, a small request handler on the server side.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentledger/chain/internal/consensus"
	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
	"github.com/agentledger/chain/internal/wire"
)

// Peer is one validator's network address.
type Peer struct {
	PublicKey crypto.PublicKey
	Endpoint  string // e.g. "http://10.0.0.2:26657"
}

// HTTPTransport implements consensus.Transport by calling peer validators
// directly over HTTP. It keeps no consensus state of its own.
type HTTPTransport struct {
	client *http.Client
	logger zerolog.Logger

	mu    sync.RWMutex
	peers map[crypto.PublicKey]string
}

var _ consensus.Transport = (*HTTPTransport)(nil)

// NewHTTPTransport builds a transport over the given peer set. timeout
// bounds every individual HTTP call; ProposeIfLeader wraps the whole
// signature-gathering round in its own shorter context deadline.
func NewHTTPTransport(peers []Peer, timeout time.Duration, logger zerolog.Logger) *HTTPTransport {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	t := &HTTPTransport{
		client: &http.Client{Timeout: timeout},
		logger: logger,
		peers:  make(map[crypto.PublicKey]string, len(peers)),
	}
	for _, p := range peers {
		t.peers[p.PublicKey] = p.Endpoint
	}
	return t
}

// AddPeer registers or replaces a peer's endpoint.
func (t *HTTPTransport) AddPeer(p Peer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers[p.PublicKey] = p.Endpoint
}

// RemovePeer drops a peer from the registry.
func (t *HTTPTransport) RemovePeer(pubkey crypto.PublicKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.peers, pubkey)
}

func (t *HTTPTransport) endpoint(pubkey crypto.PublicKey) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ep, ok := t.peers[pubkey]
	return ep, ok
}

// RequestSignature posts block to peer's /consensus/sign endpoint and
// parses the raw 64-byte ed25519 signature from the response body.
func (t *HTTPTransport) RequestSignature(ctx context.Context, peer crypto.PublicKey, block *types.Block) (crypto.Signature, error) {
	endpoint, ok := t.endpoint(peer)
	if !ok {
		return crypto.Signature{}, fmt.Errorf("transport: no endpoint registered for peer %s", peer)
	}

	body, err := wire.EncodeBlock(block)
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("encode block: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/consensus/sign", bytes.NewReader(body))
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("build sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("sign request to %s: %w", peer, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("read sign response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return crypto.Signature{}, fmt.Errorf("peer %s refused signature: status %d: %s", peer, resp.StatusCode, respBody)
	}

	sig, err := crypto.SignatureFromBytes(respBody)
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("parse signature from %s: %w", peer, err)
	}
	return sig, nil
}

// BroadcastCommit posts the finalized block to every known peer
// concurrently. Delivery is best-effort: a peer that is unreachable is
// logged and skipped, it never fails the commit for the caller.
func (t *HTTPTransport) BroadcastCommit(ctx context.Context, block *types.Block) error {
	body, err := wire.EncodeBlock(block)
	if err != nil {
		return fmt.Errorf("encode block: %w", err)
	}

	t.mu.RLock()
	endpoints := make([]string, 0, len(t.peers))
	for _, ep := range t.peers {
		endpoints = append(endpoints, ep)
	}
	t.mu.RUnlock()

	var wg sync.WaitGroup
	for _, endpoint := range endpoints {
		endpoint := endpoint
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/consensus/commit", bytes.NewReader(body))
			if err != nil {
				return
			}
			req.Header.Set("Content-Type", "application/octet-stream")
			resp, err := t.client.Do(req)
			if err != nil {
				t.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("broadcast commit failed")
				return
			}
			resp.Body.Close()
		}()
	}
	wg.Wait()
	return nil
}
