package kex

import (
	"math/big"
	"testing"
)

func TestGroupForAlgorithmKnown(t *testing.T) {
	g14, err := groupForAlgorithm("diffie-hellman-group14-sha1")
	if err != nil {
		t.Fatal(err)
	}
	if g14.p.BitLen() != 2048 {
		t.Errorf("group14 prime bit length = %d, want 2048", g14.p.BitLen())
	}
	g1, err := groupForAlgorithm("diffie-hellman-group1-sha1")
	if err != nil {
		t.Fatal(err)
	}
	if g1.p.BitLen() != 1024 {
		t.Errorf("group1 prime bit length = %d, want 1024", g1.p.BitLen())
	}
}

func TestGroupForAlgorithmUnknown(t *testing.T) {
	if _, err := groupForAlgorithm("ecdh-sha2-nistp256"); err == nil {
		t.Fatal("expected error for unsupported kex method")
	}
}

func TestDiffieHellmanAgreement(t *testing.T) {
	g, err := groupForAlgorithm("diffie-hellman-group14-sha1")
	if err != nil {
		t.Fatal(err)
	}
	ax, aX, err := g.privateKey()
	if err != nil {
		t.Fatal(err)
	}
	bx, bX, err := g.privateKey()
	if err != nil {
		t.Fatal(err)
	}
	ka, err := g.diffieHellman(bX, ax)
	if err != nil {
		t.Fatal(err)
	}
	kb, err := g.diffieHellman(aX, bx)
	if err != nil {
		t.Fatal(err)
	}
	if ka.Cmp(kb) != 0 {
		t.Error("shared secrets disagree")
	}
}

func TestDiffieHellmanRejectsOutOfRangePublic(t *testing.T) {
	g, err := groupForAlgorithm("diffie-hellman-group14-sha1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.diffieHellman(g.p, big.NewInt(5)); err == nil {
		t.Fatal("expected out-of-bounds rejection for public value == p")
	}
}

func TestDiffieHellmanRejectsBoundaryValues(t *testing.T) {
	g, err := groupForAlgorithm("diffie-hellman-group14-sha1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.diffieHellman(big.NewInt(1), big.NewInt(5)); err == nil {
		t.Fatal("expected rejection for public value == 1")
	}
	pMinus1 := new(big.Int).Sub(g.p, big.NewInt(1))
	if _, err := g.diffieHellman(pMinus1, big.NewInt(5)); err == nil {
		t.Fatal("expected rejection for public value == p-1")
	}
	if _, err := g.diffieHellman(big.NewInt(2), big.NewInt(5)); err != nil {
		t.Errorf("public value == 2 should be accepted: %v", err)
	}
}
