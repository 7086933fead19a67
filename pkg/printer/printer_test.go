package printer

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_ESCPOS(t *testing.T) {
	doc := NewDocument(32)
	doc.SetAlign(AlignCenter).SetBold(true).Text("DUKA").SetBold(false).Cut()

	out := doc.Bytes()
	assert.Equal(t, []byte{ESC, '@'}, out[:2])
	assert.Contains(t, string(out), "DUKA\n")
	assert.Equal(t, []byte{GS, 'V', 0x00}, out[len(out)-3:])
}

func TestDocument_Plain(t *testing.T) {
	doc := NewPlainDocument(20)
	doc.Init().SetAlign(AlignCenter).SetFontSize(FontDouble).Text("DUKA").
		SetAlign(AlignLeft).
		Separator('-').
		KeyValue("TOTAL", "200.00").
		ItemLine(2, "A very long product name", "200.00").
		Cut()

	out := string(doc.Bytes())
	for _, b := range []byte{ESC, GS} {
		assert.NotContains(t, out, string([]byte{b}))
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "        DUKA", lines[0])
	assert.Equal(t, strings.Repeat("-", 20), lines[1])
	assert.Equal(t, "TOTAL         200.00", lines[2])
	assert.Len(t, lines[3], 20)
	assert.True(t, strings.HasPrefix(lines[3], "2x A very"))
	assert.True(t, strings.HasSuffix(lines[3], "200.00"))
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("none", "", "")
	require.NoError(t, err)
	assert.True(t, IsNull(p))
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("network", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("bluetooth", "", "")
	assert.Error(t, err)
}

func TestNetworkPrinter_Print(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(bufio.NewReader(conn))
		received <- string(data)
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print(context.Background(), []byte("receipt")))

	select {
	case got := <-received:
		assert.Equal(t, "receipt", got)
	case <-time.After(2 * time.Second):
		t.Fatal("printer did not receive data")
	}
}
