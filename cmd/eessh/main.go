// main.go - demo client exercising the binary packet protocol and
// fixed-group DH key exchange against a real or test SSH-like peer.

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"

	isatty "github.com/mattn/go-isatty"

	"blitter.com/go/eessh/hostkey"
	"blitter.com/go/eessh/kex"
	"blitter.com/go/eessh/logger"
	"blitter.com/go/eessh/transport"
)

const clientVersion = "SSH-2.0-eessh_1.0"

func main() {
	var (
		server      string
		transportID string
		insecure    bool
		hostDB      string
		dbg         bool
	)

	flag.StringVar(&server, "s", "localhost:22", "server hostname/address[:port]")
	flag.StringVar(&transportID, "transport", "tcp", "underlying transport [\"tcp\" | \"kcp\"]")
	flag.BoolVar(&insecure, "insecure", false, "accept any host key without persisting it (testing only)")
	flag.StringVar(&hostDB, "hostkeys", defaultHostKeyPath(), "path to the trust-on-first-use host key store")
	flag.BoolVar(&dbg, "d", false, "log handshake progress to syslog")
	flag.Parse()

	if dbg {
		if _, err := logger.New(logger.LOG_USER|logger.LOG_DEBUG, "eessh"); err != nil {
			log.Printf("logger unavailable: %v", err)
		}
		defer logger.LogClose()
	}

	host, port, err := splitHostPort(server)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eessh:", err)
		os.Exit(1)
	}

	conn, err := dial(transportID, server)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eessh: dial:", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.LogInfo(fmt.Sprintf("connected to %s over %s", server, transportID))

	serverVersion, err := exchangeVersions(conn)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eessh: version exchange:", err)
		os.Exit(1)
	}
	logger.LogDebug(fmt.Sprintf("server version: %s", serverVersion))

	var hook hostkey.Checker
	if insecure {
		hook = acceptAllHook{}
	} else {
		hook = hostkey.NewStore(hostDB)
	}

	cfg := kex.DefaultConfig(hook)
	stream := transport.NewStream(conn)
	magics := kex.Magics{
		ClientVersion: []byte(clientVersion),
		ServerVersion: []byte(serverVersion),
	}

	result, err := kex.Handshake(stream, cfg, magics, host, port, nil)
	if err != nil {
		logger.LogErr(fmt.Sprintf("handshake failed: %v", err))
		kex.SendDisconnect(stream, err)
		fmt.Fprintln(os.Stderr, "eessh: handshake:", err)
		os.Exit(1)
	}

	if err := stream.InstallWriteKeys(result.WriteKeys); err != nil {
		fmt.Fprintln(os.Stderr, "eessh: installing write keys:", err)
		os.Exit(1)
	}
	if err := stream.InstallReadKeys(result.ReadKeys); err != nil {
		fmt.Fprintln(os.Stderr, "eessh: installing read keys:", err)
		os.Exit(1)
	}

	logger.LogInfo(fmt.Sprintf("handshake complete: kex=%s host-key=%s cipher=%s/%s",
		result.NegotiatedKex, result.NegotiatedHost, result.WriteKeys.CipherName, result.ReadKeys.CipherName))

	fmt.Printf("session_id=%x\n", result.SessionID)
	fmt.Printf("kex=%s host-key-alg=%s\n", result.NegotiatedKex, result.NegotiatedHost)
	fmt.Printf("write-cipher=%s write-mac=%s\n", result.WriteKeys.CipherName, result.WriteKeys.MACName)
	fmt.Printf("read-cipher=%s read-mac=%s\n", result.ReadKeys.CipherName, result.ReadKeys.MACName)

	if isatty.IsTerminal(os.Stdin.Fd()) {
		logger.LogDebug("stdin is a tty; demo client does not implement a channel layer")
	}
}

type acceptAllHook struct{}

func (acceptAllHook) Check(host string, port int, algorithm string, keyBlob []byte) error {
	return nil
}

// exchangeVersions performs the SSH version-banner line exchange
// (RFC 4253 section 4.2). It is not part of the binary packet
// protocol or key exchange this repository implements, but some
// peer has to send its version line before KEXINIT can begin. The
// line is read one byte at a time rather than through a buffered
// reader, since over-reading even a single byte past the \n would
// swallow the start of the first KEXINIT record that follows it on
// the wire.
func exchangeVersions(conn net.Conn) (string, error) {
	if _, err := conn.Write([]byte(clientVersion + "\r\n")); err != nil {
		return "", err
	}
	var line []byte
	var b [1]byte
	for {
		if _, err := conn.Read(b[:]); err != nil {
			return "", err
		}
		if b[0] == '\n' {
			break
		}
		line = append(line, b[0])
		if len(line) > 255 {
			return "", fmt.Errorf("server version line too long")
		}
	}
	return trimCRLF(string(line)), nil
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func defaultHostKeyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eessh_known_hosts"
	}
	return filepath.Join(home, ".eessh_known_hosts")
}
