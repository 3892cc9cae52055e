package device

import (
	"context"
	"testing"
	"time"

	"github.com/peachpow/gominer/pkg/peach"
	"github.com/peachpow/gominer/pkg/trailer"
	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
		want State
	}{
		{StateNull, EventAllocated, StateInit},
		{StateNull, EventNone, StateNull},
		{StateInit, EventCacheBuilt, StateIdle},
		{StateInit, EventNone, StateInit},
		{StateIdle, EventJobValid, StateWork},
		{StateIdle, EventNone, StateIdle},
		{StateWork, EventPhashChanged, StateInit},
		{StateWork, EventStale, StateIdle},
		{StateWork, EventSolveFound, StateWork},
		{StateInit, EventDeviceError, StateFail},
		{StateWork, EventDeviceError, StateFail},
		{StateFail, EventAllocated, StateFail},
	}
	for _, c := range cases {
		got := Transition(c.from, c.ev)
		assert.Equal(t, c.want, got, "Transition(%v, %v)", c.from, c.ev)
	}
}

func TestJobValidGuard(t *testing.T) {
	now := time.Now()
	valid := Job{Trailer: trailer.Trailer{Tcount: 1, Bnum: 5, Time0: uint32(now.Unix())}}
	assert.True(t, jobValid(valid, 4, now))

	zeroTcount := valid
	zeroTcount.Trailer.Tcount = 0
	assert.False(t, jobValid(zeroTcount, 4, now))

	sameBnum := valid
	assert.False(t, jobValid(sameBnum, 5, now))

	stale := valid
	stale.Trailer.Time0 = uint32(now.Add(-2 * BridgeV3).Unix())
	assert.False(t, jobValid(stale, 4, now))
}

func TestRunJobFindsSolutionAtZeroDifficulty(t *testing.T) {
	var phash [32]byte
	dev := New(0, 64)
	dev.cache = peach.NewCache(phash)
	dev.phash = phash
	dev.State = StateIdle

	o := NewOrchestrator(dev, nil)

	job := Job{
		Trailer: trailer.Trailer{
			Phash:  phash,
			Tcount: 1,
			Bnum:   1,
			Time0:  uint32(time.Now().Unix()),
		},
		Diff: 0, // trivially satisfied by any digest
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sol, state := o.RunJob(ctx, job)
	assert.NotNil(t, sol)
	assert.Equal(t, StateWork, state)
	assert.True(t, peach.MeetsDifficulty(sol.Hash, 0))
}

func TestRunJobStaysIdleOnStaleJob(t *testing.T) {
	var phash [32]byte
	dev := New(1, 64)
	dev.cache = peach.NewCache(phash)
	dev.phash = phash
	dev.State = StateIdle

	o := NewOrchestrator(dev, nil)

	job := Job{
		Trailer: trailer.Trailer{
			Phash:  phash,
			Tcount: 0, // invalid: no transactions
			Bnum:   1,
			Time0:  uint32(time.Now().Unix()),
		},
	}

	sol, state := o.RunJob(context.Background(), job)
	assert.Nil(t, sol)
	assert.Equal(t, StateIdle, state)
}

func TestRunJobDetectsPhashChange(t *testing.T) {
	var oldPhash, newPhash [32]byte
	newPhash[0] = 0x01

	dev := New(2, 64)
	dev.cache = peach.NewCache(oldPhash)
	dev.phash = oldPhash
	dev.State = StateWork

	o := NewOrchestrator(dev, nil)

	job := Job{
		Trailer: trailer.Trailer{
			Phash:  newPhash,
			Tcount: 1,
			Bnum:   1,
			Time0:  uint32(time.Now().Unix()),
		},
	}

	sol, state := o.RunJob(context.Background(), job)
	assert.Nil(t, sol)
	assert.Equal(t, StateInit, state)
}
