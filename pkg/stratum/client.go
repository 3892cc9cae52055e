package stratum

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Client is a Stratum pool connection: it authorizes once, then
// exposes inbound jobs and difficulty updates as channels and accepts
// share submissions. A Client does not reconnect by itself: on any recv
// error the read loop logs and exits, and callers observe this only as
// the Notifications/Difficulty channels going quiet; a new connection
// needs another Connect call.
type Client struct {
	addr   string
	wallet string
	worker string
	log    *logrus.Entry

	mu      sync.Mutex
	conn    net.Conn
	reader  *bufio.Scanner
	nextID  int
	pending map[int]chan *Response

	jobs  chan *Job
	diffs chan int

	accepted uint64
	rejected uint64
}

// NewClient builds a Client for addr ("host:port") authorizing as
// wallet.worker.
func NewClient(addr, wallet, worker string, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		addr:    addr,
		wallet:  wallet,
		worker:  worker,
		log:     log.WithField("pool", addr),
		pending: make(map[int]chan *Response),
		jobs:    make(chan *Job, 8),
		diffs:   make(chan int, 8),
	}
}

// Notifications returns the channel of parsed mining.notify jobs.
func (c *Client) Notifications() <-chan *Job { return c.jobs }

// Difficulty returns the channel of mining.set_difficulty updates.
func (c *Client) Difficulty() <-chan int { return c.diffs }

// Accepted and Rejected report cumulative share counters.
func (c *Client) Accepted() uint64 { return c.accepted }
func (c *Client) Rejected() uint64 { return c.rejected }

// Connect dials the pool, authorizes, and starts the background read
// loop. It blocks until authorization completes or fails.
func (c *Client) Connect() error {
	conn, err := net.DialTimeout("tcp", c.addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("stratum: dial %s: %w", c.addr, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.reader = bufio.NewScanner(conn)
	c.reader.Buffer(make([]byte, 4096), 1<<20)
	c.mu.Unlock()

	go c.readLoop()

	resp, err := c.call("mining.authorize", c.wallet+"."+c.worker, "x")
	if err != nil {
		return fmt.Errorf("stratum: authorize: %w", err)
	}
	if !resp.Accepted() {
		return fmt.Errorf("stratum: authorization rejected")
	}
	c.log.Info("authorized with pool")
	return nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Submit reports a found share. nonce and hash must each be 32 bytes.
func (c *Client) Submit(jobID string, nonce, hash [32]byte) (bool, error) {
	resp, err := c.call("mining.submit", c.wallet+"."+c.worker, jobID, encodeHex(nonce[:]), encodeHex(hash[:]))
	if err != nil {
		return false, err
	}
	ok := resp.Accepted()
	if ok {
		c.accepted++
	} else {
		c.rejected++
	}
	return ok, nil
}

// call sends a Request and blocks for its matching Response.
func (c *Client) call(method string, params ...interface{}) (*Response, error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	ch := make(chan *Response, 1)
	c.pending[id] = ch
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil, fmt.Errorf("stratum: not connected")
	}

	req := Request{ID: id, Method: method, Params: params}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("stratum: write: %w", err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-time.After(30 * time.Second):
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("stratum: %s: timed out waiting for response", method)
	}
}

// readLoop parses inbound lines and routes them to either a pending
// call's channel (a Response keyed by id) or the job/difficulty
// channels (a Notification). Per §7's StratumProtocol handling, a
// line that fails to parse is logged and dropped, not fatal.
func (c *Client) readLoop() {
	for c.reader.Scan() {
		line := c.reader.Bytes()
		if len(line) == 0 {
			continue
		}

		var probe struct {
			ID     *int   `json:"id"`
			Method string `json:"method"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			c.log.WithError(err).Warn("dropping unparseable stratum line")
			continue
		}

		if probe.Method != "" {
			var n Notification
			if err := json.Unmarshal(line, &n); err != nil {
				c.log.WithError(err).Warn("dropping malformed notification")
				continue
			}
			c.dispatch(&n)
			continue
		}

		if probe.ID != nil {
			var resp Response
			if err := json.Unmarshal(line, &resp); err != nil {
				c.log.WithError(err).Warn("dropping malformed response")
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.ID]
			if ok {
				delete(c.pending, resp.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- &resp
			}
		}
	}
	c.log.Warn("stratum connection closed")
}

func (c *Client) dispatch(n *Notification) {
	switch n.Method {
	case "mining.notify":
		job, err := ParseNotify(n)
		if err != nil {
			c.log.WithError(err).Warn("dropping unparseable mining.notify")
			return
		}
		select {
		case c.jobs <- job:
		default:
			c.log.Warn("job channel full, dropping incoming notify")
		}
	case "mining.set_difficulty":
		sd, err := ParseSetDifficulty(n)
		if err != nil {
			c.log.WithError(err).Warn("dropping unparseable mining.set_difficulty")
			return
		}
		select {
		case c.diffs <- sd.Difficulty:
		default:
		}
	default:
		c.log.WithField("method", n.Method).Debug("ignoring unhandled notification")
	}
}
