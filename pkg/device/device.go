// Package device implements the per-device state machine and the
// double-buffered build/solve orchestrator described in §4.5: two
// cooperating queues pipelining cache build and nonce search, handed
// off to a fresh cache whenever the previous-block hash changes.
package device

import (
	"time"

	"github.com/peachpow/gominer/pkg/peach"
	"github.com/peachpow/gominer/pkg/trailer"
)

// State is one of the five closed states a device moves through.
type State int

const (
	// StateNull is an unused/unavailable device slot.
	StateNull State = iota
	// StateInit is building (or rebuilding) the cache for the current phash.
	StateInit
	// StateIdle is awaiting a valid job.
	StateIdle
	// StateWork is actively searching for a nonce.
	StateWork
	// StateFail is terminal: the device is skipped for the rest of the run.
	StateFail
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "NULL"
	case StateInit:
		return "INIT"
	case StateIdle:
		return "IDLE"
	case StateWork:
		return "WORK"
	case StateFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// BridgeV3 bounds how old a job's time0 may be before it is considered
// stale, per the pool/network protocol constant named in the glossary.
const BridgeV3 = 180 * time.Second

// Device holds one device's orchestration state: its two command
// queues' scratch (trailer, PRNG, solve slot), its cache, and the
// bookkeeping the state machine and hashrate accounting need.
type Device struct {
	ID    int
	State State

	cache *peach.Cache
	phash [32]byte

	queues [2]*Queue

	buildProgress uint32
	lastActivity  time.Time
	work          uint64
	hps           float64
}

// Queue is one of a device's two command queues: its own trailer
// mirror, PRNG, and solve slot, double-buffered against its sibling.
type Queue struct {
	ID               int
	Trailer          trailer.Trailer
	PRNG             *peach.PRNG
	Slot             *peach.SolveSlot
	ThreadsPerLaunch int
}

// New creates a device in state NULL with its two queues initialized.
func New(id int, threadsPerLaunch int) *Device {
	d := &Device{ID: id, State: StateNull}
	for q := 0; q < 2; q++ {
		d.queues[q] = &Queue{
			ID:               q,
			PRNG:             peach.NewPRNG(uint64(time.Now().UnixNano()), uint32(id), uint32(q)),
			Slot:             peach.NewSolveSlot(),
			ThreadsPerLaunch: threadsPerLaunch,
		}
	}
	return d
}

// Queue returns the device's queue 0 or 1 (q&1 for any other input).
func (d *Device) Queue(q int) *Queue {
	return d.queues[q&1]
}

// Sibling returns the other queue, for double-buffering decisions.
func (d *Device) Sibling(q int) *Queue {
	return d.queues[(q^1)&1]
}

// HashesPerSecond returns the device's current accounted hash rate.
func (d *Device) HashesPerSecond() float64 {
	return d.hps
}

// accountWork folds newly completed work into the hashrate estimate:
// hps = work / max(elapsed, 1), per §4.5.
func (d *Device) accountWork(delta uint64, elapsed time.Duration) {
	d.work += delta
	secs := elapsed.Seconds()
	if secs < 1 {
		secs = 1
	}
	d.hps = float64(d.work) / secs
}
