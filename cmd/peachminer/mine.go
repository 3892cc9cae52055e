package main

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/peachpow/gominer/pkg/config"
	"github.com/peachpow/gominer/pkg/device"
	"github.com/peachpow/gominer/pkg/hardware"
	"github.com/peachpow/gominer/pkg/peach"
	"github.com/peachpow/gominer/pkg/stratum"
	"github.com/peachpow/gominer/pkg/trailer"
	"github.com/sirupsen/logrus"
)

func newAccelerator() *hardware.Accelerator {
	return hardware.NewAccelerator()
}

// fleet is the set of devices the miner drives concurrently, plus the
// shared state the status API reports on.
type fleet struct {
	mu         sync.RWMutex
	devices    []*device.Device
	orchs      []*device.Orchestrator
	acc        *hardware.Accelerator
	currentJob *stratum.Job
}

func newFleet(count int, acc *hardware.Accelerator, log *logrus.Entry) *fleet {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	f := &fleet{acc: acc}
	wd := acc.WorkDimensions()
	for i := 0; i < count; i++ {
		d := device.New(i, wd.LocalSize)
		o := device.NewOrchestrator(d, log)
		o.Allocate()
		f.devices = append(f.devices, d)
		f.orchs = append(f.orchs, o)
	}
	return f
}

func (f *fleet) hashrate() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var total float64
	for _, d := range f.devices {
		total += d.HashesPerSecond()
	}
	return total
}

func (f *fleet) states() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.devices))
	for i, d := range f.devices {
		out[i] = d.State.String()
	}
	return out
}

// runMiner connects to the pool, rebuilds each device's cache whenever
// the previous-block hash changes, and races the fleet against every
// incoming job until the process is asked to stop.
func runMiner(cfg *config.Config, log *logrus.Entry) error {
	acc := newAccelerator()
	f := newFleet(cfg.Workers, acc, log)

	client := stratum.NewClient(cfg.PoolAddr, cfg.Wallet, cfg.Worker, log)
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	if cfg.StatusAddr != "" {
		go serveStatus(cfg.StatusAddr, f, client, log)
	}

	diff := byte(0)
	var lastPhash [32]byte
	haveJob := false

	for {
		select {
		case job := <-client.Notifications():
			f.mu.Lock()
			f.currentJob = job
			f.mu.Unlock()
			haveJob = true

			t := jobToTrailer(job)
			diff = peach.EffectiveDifficulty(cfg.DiffOverride, job.Difficulty)

			if job.Phash != lastPhash {
				lastPhash = job.Phash
				rebuildAll(f, job.Phash, log)
			}

			sol := raceFleet(f, t, diff, log)
			if sol != nil {
				ok, err := client.Submit(job.JobID, sol.Nonce, sol.Hash)
				if err != nil {
					log.WithError(err).Warn("share submission failed")
				} else if ok {
					log.WithField("device", sol.QueueID).Info("share accepted")
				} else {
					log.Warn("share rejected")
				}
			}

		case newDiff := <-client.Difficulty():
			diff = peach.EffectiveDifficulty(cfg.DiffOverride, byte(newDiff))

		case <-time.After(30 * time.Second):
			if !haveJob {
				log.Warn("no job received from pool yet")
			}
		}
	}
}

func jobToTrailer(j *stratum.Job) trailer.Trailer {
	return trailer.Trailer{
		Phash:      j.Phash,
		Bnum:       j.Bnum,
		Tcount:     1,
		Time0:      j.Time0,
		Difficulty: [4]byte{j.Difficulty, 0, 0, 0},
		Mroot:      j.Mroot,
	}
}

func rebuildAll(f *fleet, phash [32]byte, log *logrus.Entry) {
	f.mu.RLock()
	orchs := append([]*device.Orchestrator{}, f.orchs...)
	f.mu.RUnlock()

	var wg sync.WaitGroup
	for _, o := range orchs {
		wg.Add(1)
		go func(o *device.Orchestrator) {
			defer wg.Done()
			o.BuildCache(context.Background(), phash)
		}(o)
	}
	wg.Wait()
	log.Info("cache rebuilt for new block")
}

// raceFleet runs job on every device concurrently and returns the
// first solution found, canceling the rest.
func raceFleet(f *fleet, t trailer.Trailer, diff byte, log *logrus.Entry) *device.Solution {
	f.mu.RLock()
	orchs := append([]*device.Orchestrator{}, f.orchs...)
	f.mu.RUnlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *device.Solution, len(orchs))
	for _, o := range orchs {
		go func(o *device.Orchestrator) {
			sol, _ := o.RunJob(ctx, device.Job{Trailer: t, Diff: diff})
			results <- sol
		}(o)
	}

	for range orchs {
		if sol := <-results; sol != nil {
			return sol
		}
	}
	return nil
}
