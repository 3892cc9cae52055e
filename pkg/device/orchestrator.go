package device

import (
	"context"
	"time"

	"github.com/peachpow/gominer/pkg/hardware"
	"github.com/peachpow/gominer/pkg/peach"
	"github.com/peachpow/gominer/pkg/trailer"
	"github.com/sirupsen/logrus"
)

// targetBuildChunk is the un-clamped chunk size BuildCache aims for
// before rounding to a multiple of the device's local_size; it stands
// in for one cache-build kernel launch's un-clamped global size.
const targetBuildChunk = 4096

// Job is one pool-assigned unit of work: a trailer plus the
// difficulty the solver should evaluate against (§6's Device->Solver
// contract already folded in via EffectiveDifficulty).
type Job struct {
	Trailer trailer.Trailer
	Diff    byte
}

// Solution is a published nonce plus the final digest it produced and
// the queue that found it.
type Solution struct {
	QueueID int
	Nonce   [32]byte
	Hash    [32]byte
}

// solveBatch is how many candidate nonces one queue tries per launch
// before checking back in with the orchestrator loop; it stands in
// for one kernel launch's thread count in the reference design.
const solveBatch = 4096

// jobValid implements the IDLE->WORK guard from §4.5:
// tcount!=0 && bnum!=currentBnum && age(time0) < BridgeV3.
func jobValid(j Job, currentBnum uint64, now time.Time) bool {
	if j.Trailer.Tcount == 0 {
		return false
	}
	if j.Trailer.Bnum == currentBnum {
		return false
	}
	age := now.Sub(time.Unix(int64(j.Trailer.Time0), 0))
	return age < BridgeV3
}

// Orchestrator drives one Device through its state machine, rebuilding
// the cache on a phash change and pipelining solve launches across the
// device's two queues.
type Orchestrator struct {
	dev *Device
	log *logrus.Entry
}

// NewOrchestrator wires an Orchestrator around dev.
func NewOrchestrator(dev *Device, log *logrus.Entry) *Orchestrator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Orchestrator{dev: dev, log: log.WithField("device", dev.ID)}
}

// Allocate moves the device from NULL to INIT, as if device/platform
// enumeration just succeeded.
func (o *Orchestrator) Allocate() {
	o.dev.State = Transition(o.dev.State, EventAllocated)
	o.log.WithField("state", o.dev.State).Debug("device allocated")
}

// BuildCache builds the device's cache for phash in chunks, each
// clamped to the remaining tile count and rounded up to a multiple of
// the device's local_size per §4.5, reporting progress through the
// device's buildProgress counter, and transitions INIT -> IDLE once
// complete. ctx cancellation aborts the build early and leaves the
// device in INIT.
func (o *Orchestrator) BuildCache(ctx context.Context, phash [32]byte) {
	o.dev.phash = phash
	o.dev.cache = peach.NewCache(phash)
	o.dev.buildProgress = 0

	localSize := o.dev.Queue(0).ThreadsPerLaunch
	if localSize <= 0 {
		localSize = 256
	}

	for start := uint32(0); start < peach.TileCount; {
		select {
		case <-ctx.Done():
			return
		default:
		}
		remaining := int(peach.TileCount - start)
		want := targetBuildChunk
		if want > remaining {
			want = remaining
		}
		size := hardware.ClampBuildSize(want, localSize)
		end := start + uint32(size)
		if end > peach.TileCount {
			end = peach.TileCount
		}
		o.dev.cache.BuildRange(start, end)
		o.dev.buildProgress = o.dev.cache.Progress()
		start = end
	}

	for q := 0; q < 2; q++ {
		o.dev.queues[q].Slot.Reset()
	}
	o.dev.State = Transition(o.dev.State, EventCacheBuilt)
	o.log.WithField("state", o.dev.State).Debug("cache build complete")
}

// RunJob evaluates job against the IDLE->WORK guard and, if valid,
// drives both queues concurrently until a solution is published, the
// job goes stale, phash changes, or ctx is canceled. It returns the
// winning solution (if any) and the device's resulting state.
func (o *Orchestrator) RunJob(ctx context.Context, job Job) (*Solution, State) {
	now := time.Now()
	if !jobValid(job, o.currentBnum(), now) {
		o.dev.State = Transition(o.dev.State, EventStale)
		return nil, o.dev.State
	}
	if job.Trailer.Phash != o.dev.phash {
		o.dev.State = Transition(o.dev.State, EventPhashChanged)
		if o.dev.State == StateInit {
			o.dev.work = 0
			for q := 0; q < 2; q++ {
				o.dev.queues[q].Slot.Reset()
			}
		}
		return nil, o.dev.State
	}

	o.dev.State = StateWork
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan Solution, 2)
	start := time.Now()

	for q := 0; q < 2; q++ {
		go o.runQueue(runCtx, q, job, results)
	}

	select {
	case sol := <-results:
		elapsed := time.Since(start)
		o.dev.accountWork(uint64(solveBatch)*2, elapsed)
		o.dev.State = Transition(o.dev.State, EventSolveFound)
		o.dev.lastActivity = time.Now()
		return &sol, o.dev.State
	case <-runCtx.Done():
		elapsed := time.Since(start)
		o.dev.accountWork(uint64(solveBatch)*2, elapsed)
		return nil, o.dev.State
	}
}

// runQueue repeatedly launches solveBatch-sized attempts on one queue
// until it finds a solution or the context is canceled, publishing any
// win onto results. It stands in for one OpenCL command queue's
// enqueue-launch/enqueue-read cycle, using a goroutine instead of an
// async marker event.
func (o *Orchestrator) runQueue(ctx context.Context, queueID int, job Job, results chan<- Solution) {
	q := o.dev.Queue(queueID)
	q.Trailer = job.Trailer

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		tried := peach.RunWorkItem(&q.Trailer, o.dev.cache, job.Diff, q.PRNG, uint32(queueID+1), q.Slot, solveBatch)
		if nonce, ok := q.Slot.Winner(); ok {
			hash, verified := peach.VerifyShare(&q.Trailer, o.dev.cache, job.Diff, nonce)
			if verified {
				select {
				case results <- Solution{QueueID: queueID, Nonce: nonce, Hash: hash}:
				case <-ctx.Done():
				}
				return
			}
			// A stale/invalidated slot from a previous round; clear and retry.
			q.Slot.Reset()
		}
		if tried < solveBatch {
			return // the budget wasn't exhausted by an actual win; slot was claimed elsewhere
		}
	}
}

func (o *Orchestrator) currentBnum() uint64 {
	return o.dev.Queue(0).Trailer.Bnum
}
