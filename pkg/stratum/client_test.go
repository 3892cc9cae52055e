package stratum

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePool accepts one connection, replies to mining.authorize with
// success, then pushes a canned mining.notify line.
func fakePool(t *testing.T) (addr string, done chan struct{}) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done = make(chan struct{})
	go func() {
		defer close(done)
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		scanner := bufio.NewScanner(conn)
		if !scanner.Scan() {
			return
		}
		var req Request
		_ = json.Unmarshal(scanner.Bytes(), &req)
		assert.Equal(t, "mining.authorize", req.Method)

		_, _ = conn.Write([]byte(`{"id":0,"result":true,"error":null}` + "\n"))

		zeros := "0000000000000000000000000000000000000000000000000000000000000000"[:64]
		notify := `{"method":"mining.notify","params":["j1","` + zeros + `","` + zeros[:16] + `","1c","0","` + zeros + `",true]}` + "\n"
		_, _ = conn.Write([]byte(notify))

		// Keep the connection open briefly so the client's read loop
		// has time to process before the test tears down.
		time.Sleep(200 * time.Millisecond)
	}()
	return ln.Addr().String(), done
}

func TestClientAuthorizeAndNotify(t *testing.T) {
	addr, done := fakePool(t)

	c := NewClient(addr, "wallet", "worker1", nil)
	err := c.Connect()
	require.NoError(t, err)
	defer c.Close()

	select {
	case job := <-c.Notifications():
		assert.Equal(t, "j1", job.JobID)
		assert.Equal(t, byte(0x1c), job.Difficulty)
		assert.Equal(t, uint32(0), job.Time0)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mining.notify")
	}

	<-done
}

func TestParseNotifyRejectsWrongMethod(t *testing.T) {
	n := &Notification{Method: "mining.set_difficulty"}
	_, err := ParseNotify(n)
	assert.Error(t, err)
}

func TestParseSetDifficulty(t *testing.T) {
	n := &Notification{
		Method: "mining.set_difficulty",
		Params: []json.RawMessage{json.RawMessage("42")},
	}
	sd, err := ParseSetDifficulty(n)
	require.NoError(t, err)
	assert.Equal(t, 42, sd.Difficulty)
}

func TestResponseAcceptedVariants(t *testing.T) {
	trueResult := &Response{Result: json.RawMessage("true")}
	assert.True(t, trueResult.Accepted())

	falseResult := &Response{Result: json.RawMessage("false")}
	assert.False(t, falseResult.Accepted())

	nullBoth := &Response{Result: json.RawMessage("null"), Error: json.RawMessage("null")}
	assert.True(t, nullBoth.Accepted())
}

func TestParseNumericAcceptsDecimalAndHex(t *testing.T) {
	v, err := parseNumeric("28")
	require.NoError(t, err)
	assert.Equal(t, uint64(28), v)

	v, err = parseNumeric("0x1c")
	require.NoError(t, err)
	assert.Equal(t, uint64(28), v)
}
