package types

import (
	"fmt"

	"github.com/agentledger/chain/internal/codec"
	"github.com/agentledger/chain/internal/crypto"
)

// EncodeOp returns op's tag and canonical payload, for transports and
// storage that cannot encode the Op interface's polymorphism directly
// (see internal/wire).
func EncodeOp(op Op) (tag uint8, payload []byte) {
	w := codec.NewWriter()
	op.encode(w)
	return op.opTag(), w.Bytes()
}

// DecodeOp reconstructs the Op variant identified by tag from payload, the
// inverse of EncodeOp.
func DecodeOp(tag uint8, payload []byte) (Op, error) {
	r := codec.NewReader(payload)
	switch tag {
	case opTagAgentCertRegister:
		return decodeOpAgentCertRegister(r)
	case opTagTransfer:
		return decodeOpTransfer(r)
	case opTagClaimCreate:
		return decodeOpClaimCreate(r)
	case opTagAttest:
		return decodeOpAttest(r)
	case opTagAppRegister:
		return decodeOpAppRegister(r)
	case opTagKvPut:
		return decodeOpKvPut(r)
	case opTagKvDel:
		return decodeOpKvDel(r)
	case opTagKvAppend:
		return decodeOpKvAppend(r)
	case opTagNamespaceCreate:
		return decodeOpNamespaceCreate(r)
	default:
		return nil, fmt.Errorf("types: unknown operation tag %d", tag)
	}
}

func readHash(r *codec.Reader) (crypto.Hash, error) {
	b, err := r.RawFixed(crypto.HashSize)
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashFromBytes(b)
}

func readPublicKey(r *codec.Reader) (crypto.PublicKey, error) {
	b, err := r.RawFixed(crypto.PublicKeySize)
	if err != nil {
		return crypto.PublicKey{}, err
	}
	return crypto.PublicKeyFromBytes(b)
}

func readSignature(r *codec.Reader) (crypto.Signature, error) {
	b, err := r.RawFixed(crypto.SignatureSize)
	if err != nil {
		return crypto.Signature{}, err
	}
	return crypto.SignatureFromBytes(b)
}

func decodeOpAgentCertRegister(r *codec.Reader) (Op, error) {
	version, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	issuerID, err := readHash(r)
	if err != nil {
		return nil, err
	}
	agentPubkey, err := readPublicKey(r)
	if err != nil {
		return nil, err
	}
	agentID, err := readHash(r)
	if err != nil {
		return nil, err
	}
	issuedAt, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	expiresAt, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	n, err := r.SeqLen()
	if err != nil {
		return nil, err
	}
	caps := make([]Capability, n)
	for i := range caps {
		c, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		caps[i] = Capability(c)
	}
	metadataHash, err := readHash(r)
	if err != nil {
		return nil, err
	}
	sig, err := readSignature(r)
	if err != nil {
		return nil, err
	}
	cert := AgentCertificate{
		Version:      version,
		IssuerID:     issuerID,
		AgentPubkey:  agentPubkey,
		AgentID:      agentID,
		IssuedAt:     issuedAt,
		ExpiresAt:    expiresAt,
		Capabilities: caps,
		MetadataHash: metadataHash,
	}
	return OpAgentCertRegister{Cert: SignedAgentCertificate{Cert: cert, IssuerSignature: sig}}, nil
}

func decodeOpTransfer(r *codec.Reader) (Op, error) {
	to, err := readPublicKey(r)
	if err != nil {
		return nil, err
	}
	amount, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	return OpTransfer{To: to, Amount: amount}, nil
}

func decodeOpClaimCreate(r *codec.Reader) (Op, error) {
	claimType, err := r.String()
	if err != nil {
		return nil, err
	}
	payloadHash, err := readHash(r)
	if err != nil {
		return nil, err
	}
	stake, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	return OpClaimCreate{ClaimType: claimType, PayloadHash: payloadHash, Stake: stake}, nil
}

func decodeOpAttest(r *codec.Reader) (Op, error) {
	claimID, err := readHash(r)
	if err != nil {
		return nil, err
	}
	vote, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	stake, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	return OpAttest{ClaimID: claimID, Vote: Vote(vote), Stake: stake}, nil
}

func decodeAppMeta(r *codec.Reader) (AppMeta, error) {
	appID, err := readHash(r)
	if err != nil {
		return AppMeta{}, err
	}
	version, err := r.String()
	if err != nil {
		return AppMeta{}, err
	}
	publisher, err := readPublicKey(r)
	if err != nil {
		return AppMeta{}, err
	}
	metadataHash, err := readHash(r)
	if err != nil {
		return AppMeta{}, err
	}
	namespaces, err := readHashSlice(r)
	if err != nil {
		return AppMeta{}, err
	}
	schemas, err := readHashSlice(r)
	if err != nil {
		return AppMeta{}, err
	}
	recipes, err := readHashSlice(r)
	if err != nil {
		return AppMeta{}, err
	}
	registeredAt, err := r.Uint64()
	if err != nil {
		return AppMeta{}, err
	}
	return AppMeta{
		AppID: appID, Version: version, Publisher: publisher, MetadataHash: metadataHash,
		Namespaces: namespaces, Schemas: schemas, Recipes: recipes, RegisteredAt: registeredAt,
	}, nil
}

func readHashSlice(r *codec.Reader) ([]crypto.Hash, error) {
	n, err := r.SeqLen()
	if err != nil {
		return nil, err
	}
	out := make([]crypto.Hash, n)
	for i := range out {
		h, err := readHash(r)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func decodeOpAppRegister(r *codec.Reader) (Op, error) {
	meta, err := decodeAppMeta(r)
	if err != nil {
		return nil, err
	}
	return OpAppRegister{Meta: meta}, nil
}

func decodeKvValue(r *codec.Reader) (KvValue, error) {
	codecLabel, err := r.String()
	if err != nil {
		return KvValue{}, err
	}
	isRef, err := r.Uint8()
	if err != nil {
		return KvValue{}, err
	}
	if isRef == 1 {
		hash, err := readHash(r)
		if err != nil {
			return KvValue{}, err
		}
		hasURI, err := r.Bool()
		if err != nil {
			return KvValue{}, err
		}
		uri, err := r.String()
		if err != nil {
			return KvValue{}, err
		}
		if !hasURI {
			uri = ""
		}
		return NewReferenceValue(codecLabel, hash, uri), nil
	}
	data, err := r.BytesField()
	if err != nil {
		return KvValue{}, err
	}
	return NewInlineValue(codecLabel, data), nil
}

func decodeOpKvPut(r *codec.Reader) (Op, error) {
	nsID, err := readHash(r)
	if err != nil {
		return nil, err
	}
	key, err := r.String()
	if err != nil {
		return nil, err
	}
	value, err := decodeKvValue(r)
	if err != nil {
		return nil, err
	}
	return OpKvPut{NsID: nsID, Key: key, Value: value}, nil
}

func decodeOpKvDel(r *codec.Reader) (Op, error) {
	nsID, err := readHash(r)
	if err != nil {
		return nil, err
	}
	key, err := r.String()
	if err != nil {
		return nil, err
	}
	return OpKvDel{NsID: nsID, Key: key}, nil
}

func decodeOpKvAppend(r *codec.Reader) (Op, error) {
	nsID, err := readHash(r)
	if err != nil {
		return nil, err
	}
	key, err := r.String()
	if err != nil {
		return nil, err
	}
	value, err := decodeKvValue(r)
	if err != nil {
		return nil, err
	}
	return OpKvAppend{NsID: nsID, Key: key, Value: value}, nil
}

func decodeOpNamespaceCreate(r *codec.Reader) (Op, error) {
	nsID, err := readHash(r)
	if err != nil {
		return nil, err
	}
	policy, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	n, err := r.SeqLen()
	if err != nil {
		return nil, err
	}
	allowlist := make([]crypto.PublicKey, n)
	for i := range allowlist {
		pk, err := readPublicKey(r)
		if err != nil {
			return nil, err
		}
		allowlist[i] = pk
	}
	minWriteStake, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	return OpNamespaceCreate{NsID: nsID, Policy: NamespacePolicy(policy), Allowlist: allowlist, MinWriteStake: minWriteStake}, nil
}
