package mqttwire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildConnect_RoundTripsThroughReadPacket(t *testing.T) {
	packet := BuildConnect("hearsay-probe", 30)
	r := bufio.NewReader(bytes.NewReader(packet))

	p, err := ReadPacket(r)
	require.NoError(t, err)
	require.Equal(t, TypeConnect, p.Type)
	require.Contains(t, string(p.Payload), "MQTT")
	require.Contains(t, string(p.Payload), "hearsay-probe")
}

func TestBuildSubscribe_SetsReservedFlags(t *testing.T) {
	packet := BuildSubscribe(1, "$SYS/#")
	require.Equal(t, byte(TypeSubscribe<<4)|0x02, packet[0])
}

func TestParseConnAck(t *testing.T) {
	p := &Packet{Type: TypeConnAck, Payload: []byte{0x01, byte(ReturnCodeAccepted)}}
	ack, err := ParseConnAck(p)
	require.NoError(t, err)
	require.True(t, ack.SessionPresent)
	require.Equal(t, ReturnCodeAccepted, ack.ReturnCode)
}

func TestParseConnAck_RejectsWrongType(t *testing.T) {
	_, err := ParseConnAck(&Packet{Type: TypePublish})
	require.ErrorIs(t, err, ErrNotConnAck)
}

func TestParseConnAck_RejectsTruncated(t *testing.T) {
	_, err := ParseConnAck(&Packet{Type: TypeConnAck, Payload: []byte{0x00}})
	require.Error(t, err)
}

func TestParsePublish(t *testing.T) {
	raw := BuildPublish("hearsay/test")
	r := bufio.NewReader(bytes.NewReader(raw))
	p, err := ReadPacket(r)
	require.NoError(t, err)

	msg, err := ParsePublish(p)
	require.NoError(t, err)
	require.Equal(t, "hearsay/test", msg.Topic)
	require.Empty(t, msg.Payload)
}

func TestParsePublish_RejectsWrongType(t *testing.T) {
	_, err := ParsePublish(&Packet{Type: TypeConnAck})
	require.ErrorIs(t, err, ErrNotPublish)
}

func TestRemainingLength_RoundTripsAcrossMultiByteBoundary(t *testing.T) {
	payload := make([]byte, 200)
	packet := framePacket(TypeConnect, 0, payload)

	r := bufio.NewReader(bytes.NewReader(packet))
	p, err := ReadPacket(r)
	require.NoError(t, err)
	require.Len(t, p.Payload, 200)
}

func TestBuildDisconnectAndPingReq_AreHeaderOnly(t *testing.T) {
	require.Equal(t, []byte{byte(TypeDisconnect << 4), 0x00}, BuildDisconnect())
	require.Equal(t, []byte{byte(TypePingReq << 4), 0x00}, BuildPingReq())
}
