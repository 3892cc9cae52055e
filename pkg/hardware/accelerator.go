// Package hardware enumerates the local device(s) available to the
// miner and derives the solve-kernel work dimensions (§4.5) and a
// rough worker-count/hash-rate estimate for each.
package hardware

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/peachpow/gominer/pkg/peach"
	"github.com/peachpow/gominer/pkg/trailer"
	"golang.org/x/sys/cpu"
)

// attemptJumps is the number of jump() hops one solve Attempt walks
// (§4.4's eight-jump chain), for the purposes of estimating per-attempt
// cost; bytesPerAttempt adds the leading and trailing SHA-256 passes
// separately.
const attemptJumps = 8

// nightHashThroughputMBs is a conservative assumed single-lane
// NightHash throughput in megabytes/sec, used only to turn "bytes
// hashed per attempt" into an attempts/sec estimate; it is not
// calibrated against any specific CPU and is never replaced by a
// measured rate; the status API's /stats reports the fleet's measured
// HashesPerSecond separately.
const nightHashThroughputMBs = 60.0

// bytesPerAttempt approximates the payload one solve Attempt pushes
// through NightHash: a short leading SHA-256 over the header+nonce,
// attemptJumps jump-seed hashes each one jump seed (nonce, index and
// tile) long, and a
// trailing SHA-256 over one tile plus the running digest.
func bytesPerAttempt() float64 {
	headerHash := float64(trailer.HashInputSize)
	jumpSeed := float64(peach.JumpSeedSize)
	finalHash := float64(32 + peach.TileSize)
	return headerHash + attemptJumps*jumpSeed + finalHash
}

// HardwareType represents the type of mining hardware.
type HardwareType int

const (
	// CPU represents standard CPU mining (the only path this build
	// actually drives end to end; GPU/ASIC/FPGA are enumerated for
	// completeness but have no solve-kernel launcher behind them here).
	CPU HardwareType = iota
	GPU
	ASIC
	FPGA
)

func (h HardwareType) String() string {
	switch h {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	case ASIC:
		return "ASIC"
	case FPGA:
		return "FPGA"
	default:
		return "Unknown"
	}
}

// HardwareInfo describes one enumerated device.
type HardwareInfo struct {
	Type             HardwareType
	Name             string
	Cores            int
	Memory           uint64 // in bytes; 0 when unknown
	ComputeUnits     int
	VectorWidth      int // SIMD lanes available per core, from CPU feature detection
	MaxHashRate      float64
	PowerConsumption float64
	Supported        bool
}

// WorkDimensions is the §4.5 solve-kernel launch shape for one device.
type WorkDimensions struct {
	LocalSize  int // min(device_max_work_group_size, 256)
	Grid       int // compute_units * 256
	GlobalSize int // grid * local_size
}

// Accelerator manages hardware acceleration for mining on one device.
type Accelerator struct {
	mu           sync.RWMutex
	hardwareInfo HardwareInfo
	workerCount  int
	enabled      bool
	optimization string
}

// NewAccelerator creates an accelerator for the local host, detecting
// its hardware up front.
func NewAccelerator() *Accelerator {
	return &Accelerator{
		hardwareInfo: DetectHardware(),
		workerCount:  runtime.NumCPU(),
		enabled:      true,
		optimization: "balanced",
	}
}

// DetectHardware probes the local CPU. There is no device-enumeration
// API for real GPUs in this build (that boilerplate is out of scope,
// per §1); instead the detected "device" is the host CPU, with vector
// width inferred from AVX2/AVX512 support so the work-dimension and
// worker-count math has something real to scale against.
func DetectHardware() HardwareInfo {
	vectorWidth := 1
	switch {
	case cpu.X86.HasAVX512F:
		vectorWidth = 16 // 512 bits / 32-bit lane
	case cpu.X86.HasAVX2:
		vectorWidth = 8 // 256 bits / 32-bit lane
	case cpu.X86.HasSSE41:
		vectorWidth = 4
	}

	info := HardwareInfo{
		Type:         CPU,
		Name:         runtime.GOARCH,
		Cores:        runtime.NumCPU(),
		ComputeUnits: runtime.NumCPU(),
		VectorWidth:  vectorWidth,
		Supported:    true,
	}

	attemptsPerLane := (nightHashThroughputMBs * 1e6) / bytesPerAttempt()
	info.MaxHashRate = attemptsPerLane * float64(info.Cores*vectorWidth)
	info.PowerConsumption = float64(info.Cores) * 50.0

	return info
}

// WorkDimensions computes the §4.5 launch shape for a device with the
// given compute-unit count and device-reported max work-group size.
func WorkDimensions(computeUnits, deviceMaxWorkGroupSize int) WorkDimensions {
	local := deviceMaxWorkGroupSize
	if local > 256 || local <= 0 {
		local = 256
	}
	grid := computeUnits * 256
	return WorkDimensions{
		LocalSize:  local,
		Grid:       grid,
		GlobalSize: grid * local,
	}
}

// ClampBuildSize rounds the remaining tile count up to a multiple of
// localSize, for the cache-build launch's global size.
func ClampBuildSize(remainingTiles, localSize int) int {
	if localSize <= 0 {
		return remainingTiles
	}
	if remainingTiles%localSize == 0 {
		return remainingTiles
	}
	return (remainingTiles/localSize + 1) * localSize
}

// GetHardwareInfo returns the detected hardware description.
func (a *Accelerator) GetHardwareInfo() HardwareInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hardwareInfo
}

// SetWorkerCount sets the number of parallel solve work-items, capped
// at twice the detected core count.
func (a *Accelerator) SetWorkerCount(count int) error {
	if count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	maxWorkers := a.hardwareInfo.Cores * 2
	if count > maxWorkers {
		count = maxWorkers
	}

	a.workerCount = count
	return nil
}

// GetWorkerCount returns the current number of workers.
func (a *Accelerator) GetWorkerCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.workerCount
}

// Enable enables hardware acceleration.
func (a *Accelerator) Enable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = true
}

// Disable disables hardware acceleration.
func (a *Accelerator) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = false
}

// IsEnabled reports whether acceleration is currently enabled.
func (a *Accelerator) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetOptimization sets the optimization mode: one of "power_save",
// "balanced", "performance", "extreme".
func (a *Accelerator) SetOptimization(mode string) error {
	validModes := map[string]bool{
		"power_save":  true,
		"balanced":    true,
		"performance": true,
		"extreme":     true,
	}

	if !validModes[mode] {
		return fmt.Errorf("invalid optimization mode: %s", mode)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.optimization = mode

	switch mode {
	case "power_save":
		a.workerCount = a.hardwareInfo.Cores / 2
		if a.workerCount < 1 {
			a.workerCount = 1
		}
	case "balanced":
		a.workerCount = a.hardwareInfo.Cores
	case "performance":
		a.workerCount = a.hardwareInfo.Cores * 2
	case "extreme":
		a.workerCount = a.hardwareInfo.Cores * 4
	}

	return nil
}

// GetOptimization returns the current optimization mode.
func (a *Accelerator) GetOptimization() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.optimization
}

// EstimateHashRate estimates attempts/sec for the current configuration.
// baseRate is MaxHashRate: a Peach-specific figure built from the actual
// per-attempt NightHash cost (the leading/trailing SHA-256 plus
// attemptJumps jump-seed hashes, see bytesPerAttempt) times the
// device's vector-width-scaled lane count, not a flat per-core
// constant. workerRatio then scales that peak by how many solve
// work-items are actually running relative to the device's work
// dimensions (one work-item per core at ratio 1.0).
func (a *Accelerator) EstimateHashRate() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.enabled {
		return 0
	}

	baseRate := a.hardwareInfo.MaxHashRate
	workerRatio := float64(a.workerCount) / float64(a.hardwareInfo.Cores)

	var efficiency float64
	switch {
	case workerRatio <= 1.0:
		efficiency = workerRatio
	case workerRatio <= 2.0:
		efficiency = 1.0 + (workerRatio-1.0)*0.7
	default:
		efficiency = 1.7 + (workerRatio-2.0)*0.3
	}

	return baseRate * efficiency
}

// EstimatePowerConsumption estimates power consumption in watts.
func (a *Accelerator) EstimatePowerConsumption() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.enabled {
		return 0
	}

	basePower := a.hardwareInfo.PowerConsumption
	workerRatio := float64(a.workerCount) / float64(a.hardwareInfo.Cores)
	powerMultiplier := workerRatio

	switch a.optimization {
	case "power_save":
		powerMultiplier *= 0.8
	case "balanced":
		powerMultiplier *= 0.9
	case "performance":
		powerMultiplier *= 1.0
	case "extreme":
		powerMultiplier *= 1.15
	}

	return basePower * powerMultiplier
}

// GetEfficiency returns the estimated efficiency in H/s per watt.
func (a *Accelerator) GetEfficiency() float64 {
	hashRate := a.EstimateHashRate()
	power := a.EstimatePowerConsumption()

	if power == 0 {
		return 0
	}
	return hashRate / power
}

// WorkDimensions returns this accelerator's current §4.5 launch shape,
// using its compute-unit count and a max work-group size capped at 256.
func (a *Accelerator) WorkDimensions() WorkDimensions {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return WorkDimensions(a.hardwareInfo.ComputeUnits, 256)
}

// GetStats returns a snapshot of the accelerator's configuration and
// estimates, suitable for the local status API.
func (a *Accelerator) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]interface{}{
		"hardware_type":      a.hardwareInfo.Type.String(),
		"hardware_name":      a.hardwareInfo.Name,
		"cores":              a.hardwareInfo.Cores,
		"vector_width":       a.hardwareInfo.VectorWidth,
		"worker_count":       a.workerCount,
		"enabled":            a.enabled,
		"optimization":       a.optimization,
		"estimated_hashrate": a.EstimateHashRate(),
		"estimated_power_w":  a.EstimatePowerConsumption(),
		"efficiency_h_per_w": a.GetEfficiency(),
	}
}
