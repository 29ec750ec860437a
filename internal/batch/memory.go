package batch

import (
	"bytes"
	"os"
	"runtime"
	"strconv"

	"github.com/pbnjay/memory"
)

// MemoryProber supplies the host memory figure used as the ceiling when the
// caller does not provide one explicitly.
type MemoryProber interface {
	// TotalMemoryBytes returns the host's total physical memory, or zero
	// when it cannot be determined.
	TotalMemoryBytes() uint64
}

// HostProber queries the real host.
type HostProber struct{}

// TotalMemoryBytes returns total physical memory, falling back to parsing
// /proc/meminfo when the platform probe yields nothing.
func (HostProber) TotalMemoryBytes() uint64 {
	if total := memory.TotalMemory(); total > 0 {
		return total
	}

	return readMemInfoTotal()
}

// FixedProber reports a constant figure. Used by tests and by explicit
// config overrides.
type FixedProber uint64

// TotalMemoryBytes returns the fixed figure.
func (p FixedProber) TotalMemoryBytes() uint64 {
	return uint64(p)
}

const (
	procMemInfoPath = "/proc/meminfo"
	memTotalPrefix  = "MemTotal:"

	// minMemInfoFields is the minimum field count of a meminfo line
	// (e.g. "MemTotal: 16384 kB" has 3 fields).
	minMemInfoFields = 2

	memTotalUnitKiB = "kB"
	kibibyte        = 1024
)

func readMemInfoTotal() uint64 {
	if runtime.GOOS != "linux" {
		return 0
	}

	memInfo, err := os.ReadFile(procMemInfoPath)
	if err != nil {
		return 0
	}

	return parseMemTotalBytes(memInfo)
}

func parseMemTotalBytes(memInfo []byte) uint64 {
	for line := range bytes.SplitSeq(memInfo, []byte{'\n'}) {
		if !bytes.HasPrefix(line, []byte(memTotalPrefix)) {
			continue
		}

		fields := bytes.Fields(line)
		if len(fields) < minMemInfoFields {
			return 0
		}

		memTotal, err := strconv.ParseUint(string(fields[1]), 10, 64)
		if err != nil {
			return 0
		}

		if len(fields) > minMemInfoFields && string(fields[2]) == memTotalUnitKiB {
			return memTotal * kibibyte
		}

		return memTotal
	}

	return 0
}
