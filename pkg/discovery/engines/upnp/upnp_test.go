package upnp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders_ExtractsFields(t *testing.T) {
	payload := []byte("HTTP/1.1 200 OK\r\n" +
		"LOCATION: http://10.0.0.2:80/device.xml\r\n" +
		"USN: uuid:abc::urn:schemas-upnp-org:device:MediaServer:1\r\n" +
		"ST: ssdp:all\r\n" +
		"Server: test/1.0\r\n\r\n")

	headers, ok := parseHeaders(payload)
	require.True(t, ok)
	require.Equal(t, "http://10.0.0.2:80/device.xml", headers["LOCATION"])
	require.Equal(t, "ssdp:all", headers["ST"])
	require.Equal(t, "test/1.0", headers["SERVER"])
	require.Contains(t, headers["USN"], "MediaServer")
}

func TestParseHeaders_AppendsTerminatorIfMissing(t *testing.T) {
	payload := []byte("HTTP/1.1 200 OK\r\nLocation: http://10.0.0.2/device.xml\r\n")
	headers, ok := parseHeaders(payload)
	require.True(t, ok)
	require.Equal(t, "http://10.0.0.2/device.xml", headers["LOCATION"])
}

func TestParseHeaders_RejectsGarbage(t *testing.T) {
	_, ok := parseHeaders([]byte{0x00, 0x01, 0x02})
	require.False(t, ok)
}

func TestLocationHost(t *testing.T) {
	require.Equal(t, "10.0.0.2", LocationHost("http://10.0.0.2:80/device.xml"))
	require.Equal(t, "", LocationHost("http://%zz/device.xml"))
}
