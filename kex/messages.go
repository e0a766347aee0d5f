// messages.go - SSH transport message type codes and KEXINIT/KEXDH wire structs

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package kex

import (
	"math/big"

	"github.com/pkg/errors"

	"blitter.com/go/eessh/internal/wire"
	"blitter.com/go/eessh/transport"
)

// Message type codes, RFC 4253 section 12 / 7.1.
const (
	MsgDisconnect  = 1
	MsgIgnore      = 2
	MsgUnimplement = 3
	MsgDebug       = 4
	MsgKexInit     = 20
	MsgNewKeys     = 21
	MsgKexDHInit   = 30
	MsgKexDHReply  = 31
)

// Disconnect reason codes, RFC 4253 section 11.1, used only for the
// subset this transport can actually diagnose.
const (
	DisconnectProtocolError        = 2
	DisconnectKeyExchangeFailed    = 3
	DisconnectMacError             = 5
	DisconnectHostKeyNotVerifiable = 9
)

// kexInitMsg is the RFC 4253 section 7.1 KEXINIT payload, minus the
// leading message-type byte.
type kexInitMsg struct {
	Cookie                    [16]byte
	KexAlgos                  []string
	ServerHostKeyAlgos        []string
	CiphersClientToServer     []string
	CiphersServerToClient     []string
	MACsClientToServer        []string
	MACsServerToClient        []string
	CompressionClientToServer []string
	CompressionServerToClient []string
	LanguagesClientToServer   []string
	LanguagesServerToClient   []string
	FirstKexFollows           bool
	Reserved                  uint32
}

func (m *kexInitMsg) marshal() []byte {
	w := wire.NewBuffer([]byte{MsgKexInit})
	w.PutRaw(m.Cookie[:])
	w.PutNameList(m.KexAlgos)
	w.PutNameList(m.ServerHostKeyAlgos)
	w.PutNameList(m.CiphersClientToServer)
	w.PutNameList(m.CiphersServerToClient)
	w.PutNameList(m.MACsClientToServer)
	w.PutNameList(m.MACsServerToClient)
	w.PutNameList(m.CompressionClientToServer)
	w.PutNameList(m.CompressionServerToClient)
	w.PutNameList(m.LanguagesClientToServer)
	w.PutNameList(m.LanguagesServerToClient)
	w.PutBool(m.FirstKexFollows)
	w.PutUint32(m.Reserved)
	return w.Bytes()
}

func parseKexInitMsg(payload []byte) (*kexInitMsg, error) {
	if len(payload) == 0 || payload[0] != MsgKexInit {
		return nil, errors.Wrap(ErrUnexpectedMessage, "expected KEXINIT")
	}
	r := wire.NewReader(payload[1:])
	m := &kexInitMsg{}
	cookie, err := r.Raw(16)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "kexinit cookie")
	}
	copy(m.Cookie[:], cookie)

	fields := []*[]string{
		&m.KexAlgos, &m.ServerHostKeyAlgos,
		&m.CiphersClientToServer, &m.CiphersServerToClient,
		&m.MACsClientToServer, &m.MACsServerToClient,
		&m.CompressionClientToServer, &m.CompressionServerToClient,
		&m.LanguagesClientToServer, &m.LanguagesServerToClient,
	}
	for _, f := range fields {
		nl, err := r.NameList()
		if err != nil {
			return nil, errors.Wrap(ErrMalformed, "kexinit name-list")
		}
		*f = nl
	}
	firstKexFollows, err := r.Bool()
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "kexinit first_kex_packet_follows")
	}
	m.FirstKexFollows = firstKexFollows
	reserved, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "kexinit reserved")
	}
	m.Reserved = reserved
	return m, nil
}

// kexDHInitMsg is the KEXDH_INIT payload: byte SSH_MSG_KEXDH_INIT | mpint e.
type kexDHInitMsg struct {
	E *big.Int
}

func (m *kexDHInitMsg) marshal() []byte {
	w := wire.NewBuffer([]byte{MsgKexDHInit})
	w.PutMPInt(m.E)
	return w.Bytes()
}

func parseKexDHInitMsg(payload []byte) (*kexDHInitMsg, error) {
	if len(payload) == 0 || payload[0] != MsgKexDHInit {
		return nil, errors.Wrap(ErrUnexpectedMessage, "expected KEXDH_INIT")
	}
	r := wire.NewReader(payload[1:])
	e, err := r.MPInt()
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "kexdh_init e")
	}
	return &kexDHInitMsg{E: e}, nil
}

// kexDHReplyMsg is the KEXDH_REPLY payload:
// byte SSH_MSG_KEXDH_REPLY | string K_S | mpint f | string signature of H.
type kexDHReplyMsg struct {
	HostKey   []byte
	F         *big.Int
	Signature []byte
}

func (m *kexDHReplyMsg) marshal() []byte {
	w := wire.NewBuffer([]byte{MsgKexDHReply})
	w.PutString(m.HostKey)
	w.PutMPInt(m.F)
	w.PutString(m.Signature)
	return w.Bytes()
}

func parseKexDHReplyMsg(payload []byte) (*kexDHReplyMsg, error) {
	if len(payload) == 0 || payload[0] != MsgKexDHReply {
		return nil, errors.Wrap(ErrUnexpectedMessage, "expected KEXDH_REPLY")
	}
	r := wire.NewReader(payload[1:])
	hostKey, err := r.String()
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "kexdh_reply host key")
	}
	f, err := r.MPInt()
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "kexdh_reply f")
	}
	sig, err := r.String()
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "kexdh_reply signature")
	}
	return &kexDHReplyMsg{HostKey: hostKey, F: f, Signature: sig}, nil
}

// disconnectMsg is the DISCONNECT payload sent best-effort before the
// client closes its socket on an unrecoverable error.
type disconnectMsg struct {
	ReasonCode  uint32
	Description string
}

func (m *disconnectMsg) marshal() []byte {
	w := wire.NewBuffer([]byte{MsgDisconnect})
	w.PutUint32(m.ReasonCode)
	w.PutString([]byte(m.Description))
	w.PutString(nil) // language tag
	return w.Bytes()
}

// disconnectReasonFor maps a transport/kex sentinel error to the
// DISCONNECT reason code this client sends when tearing down.
func disconnectReasonFor(err error) uint32 {
	switch {
	case errors.Is(err, transport.ErrBadMac):
		return DisconnectMacError
	case errors.Is(err, ErrNoAlgorithmInCommon), errors.Is(err, ErrSignatureInvalid):
		return DisconnectKeyExchangeFailed
	case errors.Is(err, ErrUntrustedHost):
		return DisconnectHostKeyNotVerifiable
	default:
		return DisconnectProtocolError
	}
}

// SendDisconnect best-effort sends a DISCONNECT message carrying the
// reason code mapped from handshakeErr, then ignores any write failure
// since the connection is being torn down regardless. Callers close
// stream themselves immediately afterward, per spec.md section 7's
// propagation policy: all errors are fatal to the connection.
func SendDisconnect(stream *transport.Stream, handshakeErr error) {
	msg := &disconnectMsg{
		ReasonCode:  disconnectReasonFor(handshakeErr),
		Description: handshakeErr.Error(),
	}
	_ = stream.Send(msg.marshal())
}
