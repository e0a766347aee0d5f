package kex

import "testing"

func TestFindCommonPrefersClientOrder(t *testing.T) {
	client := []string{"aes128-ctr", "aes128-cbc", "blowfish-cbc"}
	server := []string{"blowfish-cbc", "aes128-cbc"}
	got, ok := findCommon(client, server)
	if !ok {
		t.Fatal("expected a match")
	}
	if got != "aes128-cbc" {
		t.Errorf("got %q, want aes128-cbc (first client pref present on server)", got)
	}
}

func TestFindCommonNoOverlap(t *testing.T) {
	_, ok := findCommon([]string{"a"}, []string{"b"})
	if ok {
		t.Fatal("expected no match")
	}
}

func TestNegotiateAlgorithmsSelectsFirstAgreed(t *testing.T) {
	client := &kexInitMsg{
		KexAlgos:              []string{"diffie-hellman-group14-sha1", "diffie-hellman-group1-sha1"},
		ServerHostKeyAlgos:    []string{"rsa-sha2-512", "rsa-sha2-256", "ssh-rsa"},
		CiphersClientToServer: []string{"aes128-ctr", "aes128-cbc"},
		CiphersServerToClient: []string{"aes128-ctr", "aes128-cbc"},
		MACsClientToServer:    []string{"hmac-sha2-256", "hmac-sha2-512"},
		MACsServerToClient:    []string{"hmac-sha2-256", "hmac-sha2-512"},
	}
	server := &kexInitMsg{
		KexAlgos:              []string{"diffie-hellman-group1-sha1"},
		ServerHostKeyAlgos:    []string{"ssh-rsa"},
		CiphersClientToServer: []string{"aes128-cbc"},
		CiphersServerToClient: []string{"aes128-cbc"},
		MACsClientToServer:    []string{"hmac-sha2-512"},
		MACsServerToClient:    []string{"hmac-sha2-512"},
	}
	n, err := negotiateAlgorithms(client, server)
	if err != nil {
		t.Fatal(err)
	}
	if n.kexAlgo != "diffie-hellman-group1-sha1" {
		t.Errorf("kexAlgo = %q", n.kexAlgo)
	}
	if n.hostKeyAlgo != "ssh-rsa" {
		t.Errorf("hostKeyAlgo = %q", n.hostKeyAlgo)
	}
	if n.cipherC2S != "aes128-cbc" || n.cipherS2C != "aes128-cbc" {
		t.Errorf("cipher = %q/%q", n.cipherC2S, n.cipherS2C)
	}
	if n.macC2S != "hmac-sha2-512" {
		t.Errorf("mac = %q", n.macC2S)
	}
}

func TestNegotiateAlgorithmsFailsWithoutCommonKex(t *testing.T) {
	client := &kexInitMsg{KexAlgos: []string{"diffie-hellman-group14-sha1"}}
	server := &kexInitMsg{KexAlgos: []string{"ecdh-sha2-nistp256"}}
	if _, err := negotiateAlgorithms(client, server); err == nil {
		t.Fatal("expected no-algorithm-in-common error")
	}
}

func TestKexInitMarshalParseRoundTrip(t *testing.T) {
	m := &kexInitMsg{
		KexAlgos:                  []string{"diffie-hellman-group14-sha1"},
		ServerHostKeyAlgos:        []string{"ssh-rsa"},
		CiphersClientToServer:     []string{"aes128-ctr"},
		CiphersServerToClient:     []string{"aes128-ctr"},
		MACsClientToServer:        []string{"hmac-sha2-256"},
		MACsServerToClient:        []string{"hmac-sha2-256"},
		CompressionClientToServer: []string{"none"},
		CompressionServerToClient: []string{"none"},
	}
	b := m.marshal()
	got, err := parseKexInitMsg(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.KexAlgos[0] != m.KexAlgos[0] {
		t.Errorf("got %v", got.KexAlgos)
	}
	if got.CompressionClientToServer[0] != "none" {
		t.Errorf("compression = %v", got.CompressionClientToServer)
	}
}
