// internal/status/encode.go
package status

import (
	"errors"

	"github.com/tamzrod/trainwatch/internal/version"
)

// Snapshot is exactly what a status memory writer is allowed to deliver.
// Status is the last known-good aggregate.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16
	FailedCycles  uint16
	Status        Status
}

// Encode converts a Snapshot into a full status block.
// Device name slots are left zero; the writer owns them.
// Services beyond MaxServices are not encoded.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerBlock)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotTrain] = clamp(s.Status.Train)
	regs[SlotPatchCount] = clamp(len(s.Status.Patches))
	regs[SlotDiffCount] = clamp(len(s.Status.Diffs))
	regs[SlotFailedCycles] = s.FailedCycles

	if !s.Status.Time.IsZero() {
		sec := s.Status.Time.Unix()
		if sec > 0 {
			regs[SlotTimeHigh] = uint16(uint32(sec) >> 16)
			regs[SlotTimeLow] = uint16(uint32(sec))
		}
	}

	for i, n := range s.Status.Numbers() {
		if i >= MaxServices {
			break
		}
		regs[SlotServicesStart+2*i] = clamp(n.Train)
		regs[SlotServicesStart+2*i+1] = clamp(n.Patch)
	}

	return regs
}

// ErrorCode maps a cycle failure onto a status block error code.
func ErrorCode(err error) uint16 {
	if err == nil {
		return ErrorCodeNone
	}

	if errors.Is(err, version.ErrMalformedVersion) {
		return ErrorCodeMalformedVersion
	}
	var nm *version.NoMatchError
	if errors.As(err, &nm) {
		return ErrorCodeRepoMismatch
	}

	return ErrorCodeFetch
}

func clamp(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > 0xFFFF {
		return 0xFFFF
	}
	return uint16(n)
}
