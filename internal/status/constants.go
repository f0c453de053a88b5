// internal/status/constants.go
package status

// Status memory block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of registers in one status block.
const SlotsPerBlock = 32

// ---- SLOT INDICES ----

// SlotHealthCode holds the watcher health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the code of the last failed cycle.
const SlotLastErrorCode = 1

// SlotTrain holds the aggregate train.
const SlotTrain = 2

// SlotPatchCount holds the number of services on a patch of the current train.
const SlotPatchCount = 3

// SlotDiffCount holds the number of diffs in the last notification.
const SlotDiffCount = 4

// SlotTimeHigh and SlotTimeLow hold the status time in Unix seconds, big-endian words.
const SlotTimeHigh = 5
const SlotTimeLow = 6

// SlotFailedCycles holds the number of consecutive failed cycles.
const SlotFailedCycles = 7

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 8

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- SERVICE TABLE ----

// SlotServicesStart is the first slot of the per-service (train, patch) table.
const SlotServicesStart = SlotDeviceNameEnd + 1

// MaxServices is the number of (train, patch) pairs that fit in the block.
const MaxServices = (SlotsPerBlock - SlotServicesStart) / 2

// ---- HEALTH CODES ----

// HealthUnknown represents the state before the first cycle completes.
const HealthUnknown uint16 = 0

// HealthOK represents a successful last cycle.
const HealthOK uint16 = 1

// HealthError represents a failed last cycle.
const HealthError uint16 = 2

// ---- ERROR CODES ----

const (
	ErrorCodeNone             uint16 = 0
	ErrorCodeFetch            uint16 = 1
	ErrorCodeMalformedVersion uint16 = 2
	ErrorCodeRepoMismatch     uint16 = 3
)
