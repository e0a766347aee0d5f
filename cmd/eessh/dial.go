// dial.go - underlying transport selection (tcp or KCP)

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package main

import (
	"crypto/sha1"
	"fmt"
	"net"
	"os"
	"strconv"

	kcp "github.com/xtaci/kcp-go"
	"golang.org/x/crypto/pbkdf2"
)

// dial opens conn over the requested transportID, defaulting to a
// plain TCP dial; "kcp" routes through github.com/xtaci/kcp-go with
// an AES BlockCrypt keyed from a passphrase, the same pattern the
// underlying KCP transport uses for its own UDP session encryption
// (a layer below, and unrelated to, the binary packet protocol this
// repository implements on top of it).
func dial(transportID, addr string) (net.Conn, error) {
	switch transportID {
	case "", "tcp":
		return net.Dial("tcp", addr)
	case "kcp":
		return kcpDial(addr)
	default:
		return nil, fmt.Errorf("unknown transport %q", transportID)
	}
}

func kcpDial(addr string) (net.Conn, error) {
	passphrase := kcpPassphrase()
	key := pbkdf2.Key([]byte(passphrase), []byte("eessh-kcp-salt"), 1024, 32, sha1.New)
	block, err := kcp.NewAESBlockCrypt(key)
	if err != nil {
		return nil, err
	}
	return kcp.DialWithOptions(addr, block, 10, 3)
}

// kcpPassphrase reads the KCP session passphrase from the
// EESSH_KCP_PASSPHRASE environment variable, falling back to a fixed
// development default so -transport kcp works out of the box against
// a matching test listener.
func kcpPassphrase() string {
	if p, ok := os.LookupEnv("EESSH_KCP_PASSPHRASE"); ok {
		return p
	}
	return "eessh-development-only"
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}
