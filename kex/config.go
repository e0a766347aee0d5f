// config.go - negotiable algorithm preferences and limits

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package kex

import "blitter.com/go/eessh/hostkey"

// Config carries the client's negotiation preferences and the
// host-identity hook. A zero Config is not ready to use; call
// DefaultConfig to get one with sane preference orders.
type Config struct {
	PreferredKex         []string
	PreferredCiphers     []string
	PreferredMACs        []string
	PreferredHostKeyAlgs []string
	MaxPacketSize        uint32
	HostIdentityHook     hostkey.Checker
}

// DefaultConfig returns a Config using the minimum required algorithm
// sets in the order this transport prefers them, and the default
// maximum packet size recommended by RFC 4253.
func DefaultConfig(hook hostkey.Checker) *Config {
	return &Config{
		PreferredKex:         []string{"diffie-hellman-group14-sha1", "diffie-hellman-group1-sha1"},
		PreferredCiphers:     []string{"aes128-ctr", "aes128-cbc"},
		PreferredMACs:        []string{"hmac-sha2-256", "hmac-sha2-512"},
		PreferredHostKeyAlgs: []string{"rsa-sha2-512", "rsa-sha2-256", "ssh-rsa"},
		MaxPacketSize:        65536,
		HostIdentityHook:     hook,
	}
}
