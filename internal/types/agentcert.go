package types

import (
	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// Capability is a named right an AgentCertificate grants to its holder.
type Capability uint8

const (
	CapTxSubmit Capability = iota
	CapClaim
	CapAttest
	CapKvWrite
)

func (c Capability) String() string {
	switch c {
	case CapTxSubmit:
		return "TxSubmit"
	case CapClaim:
		return "Claim"
	case CapAttest:
		return "Attest"
	case CapKvWrite:
		return "KvWrite"
	default:
		return "Unknown"
	}
}

// AgentCertificateVersion is the only certificate wire version this ledger
// understands.
const AgentCertificateVersion uint8 = 1

// AgentCertificate is issued by a trusted issuer over an agent's public key.
type AgentCertificate struct {
	Version      uint8
	IssuerID     crypto.Hash
	AgentPubkey  crypto.PublicKey
	AgentID      crypto.Hash
	IssuedAt     uint64
	ExpiresAt    uint64
	Capabilities []Capability
	MetadataHash crypto.Hash
}

// NewAgentCertificate builds a certificate and computes its content-derived
// AgentID.
func NewAgentCertificate(issuerID crypto.Hash, agentPubkey crypto.PublicKey, issuedAt, expiresAt uint64, caps []Capability, metadataHash crypto.Hash) AgentCertificate {
	cert := AgentCertificate{
		Version:      AgentCertificateVersion,
		IssuerID:     issuerID,
		AgentPubkey:  agentPubkey,
		IssuedAt:     issuedAt,
		ExpiresAt:    expiresAt,
		Capabilities: caps,
		MetadataHash: metadataHash,
	}
	cert.AgentID = cert.ComputeAgentID()
	return cert
}

// ComputeAgentID hashes the certificate's identifying fields.
func (c AgentCertificate) ComputeAgentID() crypto.Hash {
	w := codec.NewWriter()
	w.Uint8(c.Version)
	w.RawFixed(c.IssuerID.Bytes())
	w.RawFixed(c.AgentPubkey.Bytes())
	w.Uint64(c.IssuedAt)
	w.Uint64(c.ExpiresAt)
	for _, cap_ := range c.Capabilities {
		w.Uint8(uint8(cap_))
	}
	w.RawFixed(c.MetadataHash.Bytes())
	return crypto.HashBytes(w.Bytes())
}

// IsExpired reports whether currentTime has reached or passed ExpiresAt.
func (c AgentCertificate) IsExpired(currentTime uint64) bool {
	return currentTime >= c.ExpiresAt
}

// HasCapability reports whether cap is present in the certificate.
func (c AgentCertificate) HasCapability(cap Capability) bool {
	for _, have := range c.Capabilities {
		if have == cap {
			return true
		}
	}
	return false
}

// SigningBytes returns the canonical encoding the issuer signs over.
func (c AgentCertificate) SigningBytes() []byte {
	w := codec.NewWriter()
	w.Uint8(c.Version)
	w.RawFixed(c.IssuerID.Bytes())
	w.RawFixed(c.AgentPubkey.Bytes())
	w.RawFixed(c.AgentID.Bytes())
	w.Uint64(c.IssuedAt)
	w.Uint64(c.ExpiresAt)
	w.SeqLen(len(c.Capabilities))
	for _, cap_ := range c.Capabilities {
		w.Uint8(uint8(cap_))
	}
	w.RawFixed(c.MetadataHash.Bytes())
	return w.Bytes()
}

// SignedAgentCertificate bundles a certificate with the issuer's signature
// over its SigningBytes.
type SignedAgentCertificate struct {
	Cert            AgentCertificate
	IssuerSignature crypto.Signature
}

// NewSignedAgentCertificate signs cert with issuerSecret.
func NewSignedAgentCertificate(cert AgentCertificate, issuerSecret crypto.SecretKey) SignedAgentCertificate {
	sig := crypto.Sign(issuerSecret, cert.SigningBytes())
	return SignedAgentCertificate{Cert: cert, IssuerSignature: sig}
}

// VerifySignature checks the issuer's signature over the certificate.
func (s SignedAgentCertificate) VerifySignature(issuerPubkey crypto.PublicKey) error {
	return crypto.Verify(issuerPubkey, s.Cert.SigningBytes(), s.IssuerSignature)
}

func (s SignedAgentCertificate) IsExpired(currentTime uint64) bool {
	return s.Cert.IsExpired(currentTime)
}

func (s SignedAgentCertificate) HasCapability(cap Capability) bool {
	return s.Cert.HasCapability(cap)
}

// RequiredCapability returns the capability a given operation variant
// requires, or (0, false) when the operation needs none (AgentCertRegister).
func RequiredCapability(op Op) (Capability, bool) {
	switch op.(type) {
	case OpAgentCertRegister:
		return 0, false
	case OpTransfer, OpAppRegister, OpNamespaceCreate:
		return CapTxSubmit, true
	case OpClaimCreate:
		return CapClaim, true
	case OpAttest:
		return CapAttest, true
	case OpKvPut, OpKvDel, OpKvAppend:
		return CapKvWrite, true
	default:
		return 0, false
	}
}
