package rfc6242

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderEOMFraming(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(bufio.NewWriter(&out))

	_, err := enc.Write([]byte("<hello/>"))
	require.NoError(t, err)
	require.NoError(t, enc.EndOfMessage())

	assert.Equal(t, "<hello/>]]>]]>", out.String())
}

func TestEncoderChunkedFraming(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(bufio.NewWriter(&out))
	enc.SetChunkedFraming()

	_, err := enc.Write([]byte("<rpc/>"))
	require.NoError(t, err)
	require.NoError(t, enc.EndOfMessage())

	assert.Equal(t, "\n#6\n<rpc/>\n##\n", out.String())
}

func TestEncoderChunkedFramingSplitsLargePayload(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(bufio.NewWriter(&out), WithMaximumChunkSize(4))
	enc.SetChunkedFraming()

	payload := "0123456789"
	_, err := enc.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, enc.EndOfMessage())

	assert.Equal(t, "\n#4\n0123\n#4\n4567\n#2\n89\n##\n", out.String())
}

func TestEncoderRoundTripsThroughDecoder(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(bufio.NewWriter(&out))
	enc.SetChunkedFraming()

	messages := []string{"<hello/>", strings.Repeat("<x/>", 5000)}
	for _, m := range messages {
		_, err := enc.Write([]byte(m))
		require.NoError(t, err)
		require.NoError(t, enc.EndOfMessage())
	}

	dec := NewDecoder(&out)
	dec.SetChunkedFraming()
	for _, want := range messages {
		got := make([]byte, 0, len(want))
		buf := make([]byte, 37)
		for len(got) < len(want) {
			n, err := dec.Read(buf)
			require.NoError(t, err)
			got = append(got, buf[:n]...)
		}
		assert.Equal(t, want, string(got))
	}
}
