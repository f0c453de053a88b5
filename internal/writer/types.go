// internal/writer/types.go
package writer

import "github.com/tamzrod/trainwatch/internal/status"

// Holding registers. Status memory lives nowhere else.
const areaHoldingRegisters byte = 3

// endpointClient is the exact contract the status writer uses.
// Both the modbus and the ingest transports satisfy it.
type endpointClient interface {
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

// StatusPlan is the fully-built status memory destination.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// StatusWriter is the delivery-only contract for status memory.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}
