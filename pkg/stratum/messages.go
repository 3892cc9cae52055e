// Package stratum implements the line-delimited JSON-over-TCP mining
// pool client described in §6: authorize, submit, and the inbound
// mining.notify/mining.set_difficulty notifications.
package stratum

import (
	"encoding/json"
	"fmt"
)

// Request is an outbound JSON-RPC-shaped Stratum call.
type Request struct {
	ID     int           `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// Response is an inbound reply to a Request, keyed by ID.
type Response struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Accepted reports whether the response counts as success: result is
// literal true, or result is absent/null while error is also null —
// pools vary on which of the two they use to mean "ok".
func (r *Response) Accepted() bool {
	if !isJSONNull(r.Result) {
		var asBool bool
		if err := json.Unmarshal(r.Result, &asBool); err == nil {
			return asBool
		}
	}
	return isJSONNull(r.Error)
}

// Notification is an inbound method call with no response expected
// (mining.notify, mining.set_difficulty).
type Notification struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := string(raw)
	return trimmed == "" || trimmed == "null"
}

// Job is a parsed mining.notify payload: a pending block trailer's
// fields, decoded from the wire's hex/decimal mixed encoding.
type Job struct {
	JobID      string
	Phash      [32]byte
	Bnum       uint64
	Difficulty byte
	Time0      uint32
	Mroot      [32]byte
	CleanJobs  bool
}

// ParseNotify decodes a mining.notify notification's params into a Job.
// Params are positional: [job_id, phash_hex, bnum_hex, diff, time0,
// mroot_hex, clean_jobs]; diff and time0 may be plain decimal or
// 0x-prefixed hex, per §6.
func ParseNotify(n *Notification) (*Job, error) {
	if n.Method != "mining.notify" {
		return nil, fmt.Errorf("stratum: not a mining.notify: %s", n.Method)
	}
	if len(n.Params) < 7 {
		return nil, fmt.Errorf("stratum: mining.notify expected 7 params, got %d", len(n.Params))
	}

	var jobID, phashHex, bnumHex, diffRaw, time0Raw, mrootHex string
	var cleanJobs bool
	if err := json.Unmarshal(n.Params[0], &jobID); err != nil {
		return nil, fmt.Errorf("stratum: job_id: %w", err)
	}
	if err := json.Unmarshal(n.Params[1], &phashHex); err != nil {
		return nil, fmt.Errorf("stratum: phash: %w", err)
	}
	if err := json.Unmarshal(n.Params[2], &bnumHex); err != nil {
		return nil, fmt.Errorf("stratum: bnum: %w", err)
	}
	if err := json.Unmarshal(n.Params[3], &diffRaw); err != nil {
		return nil, fmt.Errorf("stratum: diff: %w", err)
	}
	if err := json.Unmarshal(n.Params[4], &time0Raw); err != nil {
		return nil, fmt.Errorf("stratum: time0: %w", err)
	}
	if err := json.Unmarshal(n.Params[5], &mrootHex); err != nil {
		return nil, fmt.Errorf("stratum: mroot: %w", err)
	}
	if err := json.Unmarshal(n.Params[6], &cleanJobs); err != nil {
		return nil, fmt.Errorf("stratum: clean_jobs: %w", err)
	}

	phash, err := decodeHash32(phashHex)
	if err != nil {
		return nil, fmt.Errorf("stratum: phash: %w", err)
	}
	mroot, err := decodeHash32(mrootHex)
	if err != nil {
		return nil, fmt.Errorf("stratum: mroot: %w", err)
	}
	bnum, err := parseNumeric(bnumHex)
	if err != nil {
		return nil, fmt.Errorf("stratum: bnum: %w", err)
	}
	diff, err := parseNumeric(diffRaw)
	if err != nil {
		return nil, fmt.Errorf("stratum: diff: %w", err)
	}
	time0, err := parseNumeric(time0Raw)
	if err != nil {
		return nil, fmt.Errorf("stratum: time0: %w", err)
	}

	return &Job{
		JobID:      jobID,
		Phash:      phash,
		Bnum:       bnum,
		Difficulty: byte(diff),
		Time0:      uint32(time0),
		Mroot:      mroot,
		CleanJobs:  cleanJobs,
	}, nil
}

// SetDifficulty is a parsed mining.set_difficulty notification.
type SetDifficulty struct {
	Difficulty int
}

// ParseSetDifficulty decodes a mining.set_difficulty notification.
func ParseSetDifficulty(n *Notification) (*SetDifficulty, error) {
	if n.Method != "mining.set_difficulty" {
		return nil, fmt.Errorf("stratum: not a mining.set_difficulty: %s", n.Method)
	}
	if len(n.Params) < 1 {
		return nil, fmt.Errorf("stratum: mining.set_difficulty expected 1 param, got %d", len(n.Params))
	}
	var diff int
	if err := json.Unmarshal(n.Params[0], &diff); err != nil {
		return nil, fmt.Errorf("stratum: difficulty: %w", err)
	}
	return &SetDifficulty{Difficulty: diff}, nil
}
