package fqsim

import (
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/theapemachine/errnie"
)

/*
ResourceGovernor guards the host against registers it cannot hold. It keeps
a reading of the host's memory, refreshed at most once per checkInterval,
and admits a new buffer only when it fits in maxMemoryFraction of what is
currently available.
*/
type ResourceGovernor struct {
	mu sync.RWMutex

	maxMemoryFraction float64       // Share of available memory one buffer may claim (0.0-1.0]
	checkInterval     time.Duration // Minimum time between two host readings
	lastCheck         time.Time

	available     uint64
	currentMemory float64 // Used share of total memory (0.0-1.0)
	observed      bool

	read func() (*mem.VirtualMemoryStat, error)
}

/*
NewResourceGovernor admits buffers up to maxMemoryFraction of available
memory, re-reading the host at most once per checkInterval. A zero
interval reads the host on every Admit.
*/
func NewResourceGovernor(maxMemoryFraction float64, checkInterval time.Duration) *ResourceGovernor {
	return &ResourceGovernor{
		maxMemoryFraction: maxMemoryFraction,
		checkInterval:     checkInterval,
		read:              mem.VirtualMemory,
	}
}

// Observe takes a fresh reading of the host's memory.
func (rg *ResourceGovernor) Observe() error {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	return rg.updateResourceUsage()
}

// Limit reports whether the host already uses more memory than the governor allows.
func (rg *ResourceGovernor) Limit() bool {
	rg.mu.RLock()
	defer rg.mu.RUnlock()

	return rg.observed && rg.currentMemory >= rg.maxMemoryFraction
}

/*
Admit refuses a buffer of need bytes with ErrResourceExhausted when it
exceeds the governor's share of available memory. Without a reading the
buffer is admitted and the allocator has the final word.
*/
func (rg *ResourceGovernor) Admit(need uint64) error {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	if !rg.observed || time.Since(rg.lastCheck) >= rg.checkInterval {
		if err := rg.updateResourceUsage(); err != nil {
			errnie.Debug("no memory reading, admitting %d bytes: %v", need, err)
			return nil
		}
	}

	budget := uint64(float64(rg.available) * rg.maxMemoryFraction)
	if need > budget {
		return fmt.Errorf("%w: need %d bytes, %d of %d available may be used", ErrResourceExhausted, need, budget, rg.available)
	}

	if rg.currentMemory >= rg.maxMemoryFraction {
		errnie.Warn("host memory at %.0f%%, admitting %d bytes", rg.currentMemory*100, need)
	}
	return nil
}

// Usage returns the last reading: the used share of memory and the bytes available.
func (rg *ResourceGovernor) Usage() (used float64, available uint64) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.currentMemory, rg.available
}

func (rg *ResourceGovernor) updateResourceUsage() error {
	vm, err := rg.read()
	if err != nil {
		return err
	}

	rg.available = vm.Available
	rg.currentMemory = vm.UsedPercent / 100
	rg.lastCheck = time.Now()
	rg.observed = true
	return nil
}
