package kex

import (
	"net"
	"testing"

	"blitter.com/go/eessh/internal/wire"
	"blitter.com/go/eessh/transport"
)

func TestDisconnectMsgMarshal(t *testing.T) {
	m := &disconnectMsg{ReasonCode: DisconnectMacError, Description: "mac mismatch"}
	got := m.marshal()
	if got[0] != MsgDisconnect {
		t.Fatalf("message type = %d, want %d", got[0], MsgDisconnect)
	}
	r := wire.NewReader(got[1:])
	code, err := r.Uint32()
	if err != nil {
		t.Fatal(err)
	}
	if code != DisconnectMacError {
		t.Errorf("reason code = %d, want %d", code, DisconnectMacError)
	}
	desc, err := r.String()
	if err != nil {
		t.Fatal(err)
	}
	if string(desc) != "mac mismatch" {
		t.Errorf("description = %q", desc)
	}
}

func TestDisconnectReasonFor(t *testing.T) {
	cases := []struct {
		err  error
		want uint32
	}{
		{transport.ErrBadMac, DisconnectMacError},
		{ErrNoAlgorithmInCommon, DisconnectKeyExchangeFailed},
		{ErrSignatureInvalid, DisconnectKeyExchangeFailed},
		{ErrUntrustedHost, DisconnectHostKeyNotVerifiable},
		{ErrMalformed, DisconnectProtocolError},
	}
	for _, c := range cases {
		if got := disconnectReasonFor(c.err); got != c.want {
			t.Errorf("disconnectReasonFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestSendDisconnect(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	stream := transport.NewStream(clientConn)
	done := make(chan []byte, 1)
	go func() {
		serverStream := transport.NewStream(serverConn)
		payload, err := serverStream.Recv()
		if err != nil {
			done <- nil
			return
		}
		done <- payload
	}()

	SendDisconnect(stream, ErrUntrustedHost)

	payload := <-done
	if payload == nil || payload[0] != MsgDisconnect {
		t.Fatalf("expected DISCONNECT message, got %v", payload)
	}
}
