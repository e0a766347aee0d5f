// handshake.go - client-side KEXINIT + fixed-group DH handshake orchestration

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package kex

import (
	"hash"
	"math/big"

	"github.com/pkg/errors"

	"blitter.com/go/eessh/internal/sshcrypto"
	"blitter.com/go/eessh/internal/wire"
	"blitter.com/go/eessh/transport"
)

// Magics are both peers' version-identification strings, fed into the
// exchange hash per RFC 4253 section 8 ahead of the two KEXINIT
// payloads, which Handshake records itself. The version exchange
// itself is out of this package's scope; the caller (typically the
// demo CLI) performs it and passes the resulting strings in.
type Magics struct {
	ClientVersion []byte
	ServerVersion []byte
}

// Result is everything a caller needs after a successful handshake: the
// persistent session identifier and the negotiated per-direction cipher
// and MAC key material, ready to hand to transport.Stream's
// Install{Read,Write}Keys.
type Result struct {
	SessionID      []byte
	HostKey        *sshcrypto.HostKey
	WriteKeys      transport.KeyMaterial
	ReadKeys       transport.KeyMaterial
	NegotiatedKex  string
	NegotiatedHost string
}

// Handshake runs one client-side KEXINIT negotiation and fixed-group DH
// key exchange over stream, verifies the server's host key signature,
// consults cfg.HostIdentityHook, and returns the derived key material.
// The caller is responsible for calling stream.InstallReadKeys /
// InstallWriteKeys with the returned Result — this function never
// mutates stream's cipher state itself, breaking the otherwise circular
// "kex needs the stream, stream needs kex's output" dependency.
func Handshake(stream *transport.Stream, cfg *Config, magics Magics, host string, port int, priorSessionID []byte) (*Result, error) {
	if cfg.MaxPacketSize > 0 {
		stream.SetMaxPacketSize(cfg.MaxPacketSize)
	}

	clientInit, err := buildKexInit(cfg, defaultRand)
	if err != nil {
		return nil, err
	}
	clientInitBytes := clientInit.marshal()
	if err := stream.Send(clientInitBytes); err != nil {
		return nil, errors.Wrap(err, "kex: sending KEXINIT")
	}

	serverInitBytes, err := recvSkippingChatter(stream)
	if err != nil {
		return nil, errors.Wrap(err, "kex: receiving KEXINIT")
	}
	serverInit, err := parseKexInitMsg(serverInitBytes)
	if err != nil {
		return nil, err
	}

	neg, err := negotiateAlgorithms(clientInit, serverInit)
	if err != nil {
		return nil, err
	}

	group, err := groupForAlgorithm(neg.kexAlgo)
	if err != nil {
		return nil, err
	}
	hashName := "sha1" // both group1-sha1 and group14-sha1 use sha1
	newHash, err := sshcrypto.NewHash(hashName)
	if err != nil {
		return nil, err
	}

	x, X, err := group.privateKey()
	if err != nil {
		return nil, errors.Wrap(ErrCryptoFailure, err.Error())
	}
	init := &kexDHInitMsg{E: X}
	if err := stream.Send(init.marshal()); err != nil {
		return nil, errors.Wrap(err, "kex: sending KEXDH_INIT")
	}

	replyBytes, err := recvSkippingChatter(stream)
	if err != nil {
		return nil, errors.Wrap(err, "kex: receiving KEXDH_REPLY")
	}
	reply, err := parseKexDHReplyMsg(replyBytes)
	if err != nil {
		return nil, err
	}

	k, err := group.diffieHellman(reply.F, x)
	if err != nil {
		return nil, errors.Wrap(ErrCryptoFailure, err.Error())
	}

	h := computeExchangeHash(newHash, magics, clientInitBytes, serverInitBytes, reply.HostKey, X, reply.F, k)

	hostKey, err := sshcrypto.ParseHostKey(reply.HostKey)
	if err != nil {
		return nil, err
	}
	if err := hostKey.VerifySignature(h, reply.Signature); err != nil {
		return nil, errors.Wrap(ErrSignatureInvalid, err.Error())
	}

	if cfg.HostIdentityHook != nil {
		if err := cfg.HostIdentityHook.Check(host, port, neg.hostKeyAlgo, reply.HostKey); err != nil {
			return nil, errors.Wrap(ErrUntrustedHost, err.Error())
		}
	}

	sessionID := priorSessionID
	if sessionID == nil {
		sessionID = h
	}

	writeKeyLen, writeIVLen, writeMacKeyLen, err := algorithmSizes(neg.cipherC2S, neg.macC2S)
	if err != nil {
		return nil, err
	}
	readKeyLen, readIVLen, readMacKeyLen, err := algorithmSizes(neg.cipherS2C, neg.macS2C)
	if err != nil {
		return nil, err
	}

	writeIV := deriveKey(newHash, k, h, sessionID, labelIVClientToServer, writeIVLen)
	readIV := deriveKey(newHash, k, h, sessionID, labelIVServerToClient, readIVLen)
	writeKey := deriveKey(newHash, k, h, sessionID, labelKeyClientToServer, writeKeyLen)
	readKey := deriveKey(newHash, k, h, sessionID, labelKeyServerToClient, readKeyLen)
	writeMacKey := deriveKey(newHash, k, h, sessionID, labelMACClientToServer, writeMacKeyLen)
	readMacKey := deriveKey(newHash, k, h, sessionID, labelMACServerToClient, readMacKeyLen)

	if err := stream.Send([]byte{MsgNewKeys}); err != nil {
		return nil, errors.Wrap(err, "kex: sending NEWKEYS")
	}
	newKeysBytes, err := recvSkippingChatter(stream)
	if err != nil {
		return nil, errors.Wrap(err, "kex: receiving NEWKEYS")
	}
	if len(newKeysBytes) == 0 || newKeysBytes[0] != MsgNewKeys {
		return nil, errors.Wrap(ErrUnexpectedMessage, "expected NEWKEYS")
	}

	return &Result{
		SessionID: sessionID,
		HostKey:   hostKey,
		WriteKeys: transport.KeyMaterial{
			CipherName: neg.cipherC2S, CipherKey: writeKey, CipherIV: writeIV,
			MACName: neg.macC2S, MACKey: writeMacKey,
		},
		ReadKeys: transport.KeyMaterial{
			CipherName: neg.cipherS2C, CipherKey: readKey, CipherIV: readIV,
			MACName: neg.macS2C, MACKey: readMacKey,
		},
		NegotiatedKex:  neg.kexAlgo,
		NegotiatedHost: neg.hostKeyAlgo,
	}, nil
}

// recvSkippingChatter reads packets from stream until it sees one that
// isn't IGNORE, DEBUG or UNIMPLEMENTED, which are allowed to appear
// interleaved with key exchange traffic per RFC 4253 section 11.
func recvSkippingChatter(stream *transport.Stream) ([]byte, error) {
	for {
		payload, err := stream.Recv()
		if err != nil {
			return nil, err
		}
		if len(payload) == 0 {
			return nil, errors.Wrap(ErrMalformed, "empty payload")
		}
		switch payload[0] {
		case MsgIgnore, MsgDebug, MsgUnimplement:
			continue
		default:
			return payload, nil
		}
	}
}

func computeExchangeHash(newHash func() hash.Hash, magics Magics, clientInit, serverInit, hostKey []byte, x, f, k *big.Int) []byte {
	h := newHash()
	writeHashString(h, magics.ClientVersion)
	writeHashString(h, magics.ServerVersion)
	writeHashString(h, clientInit)
	writeHashString(h, serverInit)
	writeHashString(h, hostKey)
	writeHashMPInt(h, x)
	writeHashMPInt(h, f)
	writeHashMPInt(h, k)
	return h.Sum(nil)
}

func writeHashString(h interface{ Write([]byte) (int, error) }, b []byte) {
	w := &wire.Buffer{}
	w.PutString(b)
	h.Write(w.Bytes())
}

func writeHashMPInt(h interface{ Write([]byte) (int, error) }, n *big.Int) {
	w := &wire.Buffer{}
	w.PutMPInt(n)
	h.Write(w.Bytes())
}

// algorithmSizes returns the key length, IV length and MAC key length
// implied by one direction's negotiated cipher/MAC names. Since
// negotiateAlgorithms picks client-to-server and server-to-client
// algorithms independently, the two directions can disagree (e.g.
// aes128-ctr one way, aes128-cbc the other) and must each derive key
// material sized for their own cipher/MAC, not a shared pair.
func algorithmSizes(cipherName, macName string) (keyLen, ivLen, macKeyLen int, err error) {
	c, err := sshcrypto.NewCipher(cipherName)
	if err != nil {
		return 0, 0, 0, err
	}
	m, err := sshcrypto.NewMAC(macName)
	if err != nil {
		return 0, 0, 0, err
	}
	return c.KeyLen, c.IVLen, m.KeyLen, nil
}
