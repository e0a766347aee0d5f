// negotiate.go - KEXINIT construction and first-match-wins algorithm selection

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package kex

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

// negotiated holds the single algorithm chosen per category after
// comparing the client's and server's KEXINIT name-lists.
type negotiated struct {
	kexAlgo     string
	hostKeyAlgo string
	cipherC2S   string
	cipherS2C   string
	macC2S      string
	macS2C      string
}

// buildKexInit constructs this client's KEXINIT payload from cfg,
// following massiveart-go.crypto/ssh's clientKexInit construction.
func buildKexInit(cfg *Config, randSource io.Reader) (*kexInitMsg, error) {
	m := &kexInitMsg{
		KexAlgos:                  cfg.PreferredKex,
		ServerHostKeyAlgos:        cfg.PreferredHostKeyAlgs,
		CiphersClientToServer:     cfg.PreferredCiphers,
		CiphersServerToClient:     cfg.PreferredCiphers,
		MACsClientToServer:        cfg.PreferredMACs,
		MACsServerToClient:        cfg.PreferredMACs,
		CompressionClientToServer: []string{"none"},
		CompressionServerToClient: []string{"none"},
	}
	if _, err := io.ReadFull(randSource, m.Cookie[:]); err != nil {
		return nil, errors.Wrap(err, "kex: generating cookie")
	}
	return m, nil
}

// findCommon returns the first name in client's list that also appears
// in server's list, the selection rule RFC 4253 section 7.1 specifies:
// "the first algorithm on the client's list that is also supported by
// the server MUST be chosen".
func findCommon(client, server []string) (string, bool) {
	for _, c := range client {
		for _, s := range server {
			if c == s {
				return c, true
			}
		}
	}
	return "", false
}

// negotiateAlgorithms picks one algorithm per category by intersecting
// this client's KEXINIT with the server's, in the client's preference
// order.
func negotiateAlgorithms(client, server *kexInitMsg) (*negotiated, error) {
	n := &negotiated{}
	var ok bool
	if n.kexAlgo, ok = findCommon(client.KexAlgos, server.KexAlgos); !ok {
		return nil, errors.Wrap(ErrNoAlgorithmInCommon, "kex algorithm")
	}
	if n.hostKeyAlgo, ok = findCommon(client.ServerHostKeyAlgos, server.ServerHostKeyAlgos); !ok {
		return nil, errors.Wrap(ErrNoAlgorithmInCommon, "host key algorithm")
	}
	if n.cipherC2S, ok = findCommon(client.CiphersClientToServer, server.CiphersClientToServer); !ok {
		return nil, errors.Wrap(ErrNoAlgorithmInCommon, "cipher client-to-server")
	}
	if n.cipherS2C, ok = findCommon(client.CiphersServerToClient, server.CiphersServerToClient); !ok {
		return nil, errors.Wrap(ErrNoAlgorithmInCommon, "cipher server-to-client")
	}
	if n.macC2S, ok = findCommon(client.MACsClientToServer, server.MACsClientToServer); !ok {
		return nil, errors.Wrap(ErrNoAlgorithmInCommon, "mac client-to-server")
	}
	if n.macS2C, ok = findCommon(client.MACsServerToClient, server.MACsServerToClient); !ok {
		return nil, errors.Wrap(ErrNoAlgorithmInCommon, "mac server-to-client")
	}
	return n, nil
}

// defaultRand is the cookie source used outside of tests.
var defaultRand = rand.Reader
