// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/trainwatch/internal/status"
)

// deviceStatusWriter keeps one status block in sync with the latest snapshot.
type deviceStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     []uint16
	nameRegs []uint16
}

// NewStatusWriter builds a status writer over an already connected client.
func NewStatusWriter(plan StatusPlan, cli endpointClient) (StatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if uint32(plan.BaseSlot)*status.SlotsPerBlock+status.SlotsPerBlock > 0x10000 {
		return nil, fmt.Errorf("status writer: base slot %d out of range", plan.BaseSlot)
	}

	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first write
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}, nil
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	regs := sw.blockRegs(s)
	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(areaHoldingRegisters, sw.plan.UnitID, baseAddr, regs); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write per run of changed registers
	// ------------------------------------------------------------
	var errs []string

	for _, r := range changedRuns(sw.last, regs) {
		if err := sw.cli.WriteRegisters(
			areaHoldingRegisters,
			sw.plan.UnitID,
			baseAddr+uint16(r.start),
			regs[r.start:r.end],
		); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d-%d write failed: %v", r.start, r.end-1, err))
			continue
		}
		copy(sw.last[r.start:r.end], regs[r.start:r.end])
	}

	if len(errs) > 0 {
		// Partial failure: memory contents are unknown.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	return sw.plan.BaseSlot * status.SlotsPerBlock
}

// blockRegs is the full block: encoded status plus the device name.
func (sw *deviceStatusWriter) blockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)
	return regs
}

type run struct {
	start, end int // [start, end)
}

// changedRuns groups differing registers into contiguous runs.
func changedRuns(prev, next []uint16) []run {
	var out []run
	i := 0
	for i < len(next) {
		if i < len(prev) && prev[i] == next[i] {
			i++
			continue
		}
		start := i
		for i < len(next) && (i >= len(prev) || prev[i] != next[i]) {
			i++
		}
		out = append(out, run{start: start, end: i})
	}
	return out
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < status.DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
