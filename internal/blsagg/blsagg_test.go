package blsagg_test

import (
	"testing"

	"github.com/agentledger/chain/internal/blsagg"
)

func TestSignAndVerify(t *testing.T) {
	sk, pk, err := blsagg.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	payload := []byte("attestation payload")
	sig := sk.Sign(payload)
	if !pk.Verify(sig, payload) {
		t.Fatal("expected signature to verify")
	}
	if pk.Verify(sig, []byte("different payload")) {
		t.Fatal("signature must not verify against a different payload")
	}
}

func TestKeyAndSignatureByteRoundTrip(t *testing.T) {
	sk, pk, err := blsagg.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	recoveredSK, err := blsagg.PrivateKeyFromBytes(sk.Bytes())
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	wantPub := sk.PublicKey().Bytes()
	gotPub := recoveredSK.PublicKey().Bytes()
	if len(wantPub) != len(gotPub) {
		t.Fatalf("recovered private key derives a public key of a different length: got %d, want %d", len(gotPub), len(wantPub))
	}
	for i := range wantPub {
		if wantPub[i] != gotPub[i] {
			t.Fatal("recovered private key does not derive the same public key")
		}
	}

	recoveredPK, err := blsagg.PublicKeyFromBytes(pk.Bytes())
	if err != nil {
		t.Fatalf("PublicKeyFromBytes: %v", err)
	}
	sig := sk.Sign([]byte("round trip"))
	if !recoveredPK.Verify(sig, []byte("round trip")) {
		t.Fatal("recovered public key failed to verify a valid signature")
	}

	recoveredSig, err := blsagg.SignatureFromBytes(sig.Bytes())
	if err != nil {
		t.Fatalf("SignatureFromBytes: %v", err)
	}
	if !pk.Verify(recoveredSig, []byte("round trip")) {
		t.Fatal("recovered signature failed to verify")
	}
}

func TestAggregateSignaturesAndVerify(t *testing.T) {
	payload := []byte("shared attestation")

	var sigs []*blsagg.Signature
	var pks []*blsagg.PublicKey
	for i := 0; i < 4; i++ {
		sk, pk, err := blsagg.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair: %v", err)
		}
		sigs = append(sigs, sk.Sign(payload))
		pks = append(pks, pk)
	}

	aggSig, err := blsagg.Aggregate(sigs)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !blsagg.VerifyAggregate(aggSig, pks, payload) {
		t.Fatal("expected aggregate signature to verify")
	}
	if blsagg.VerifyAggregate(aggSig, pks, []byte("wrong payload")) {
		t.Fatal("aggregate signature must not verify against the wrong payload")
	}
}

func TestAggregateRejectsEmptyInput(t *testing.T) {
	if _, err := blsagg.Aggregate(nil); err == nil {
		t.Fatal("expected Aggregate to reject an empty signature list")
	}
	if _, err := blsagg.AggregatePublicKeys(nil); err == nil {
		t.Fatal("expected AggregatePublicKeys to reject an empty key list")
	}
}
