// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/trainwatch/internal/config"
	wingest "github.com/tamzrod/trainwatch/internal/writer/ingest"
	wmodbus "github.com/tamzrod/trainwatch/internal/writer/modbus"
)

// BuildPlan converts the status memory config into a StatusPlan.
// Assumes config has already passed validation and normalization.
func BuildPlan(c cfg.StatusMemoryConfig) (StatusPlan, error) {
	if !c.Enabled() {
		return StatusPlan{}, errors.New("writer: status_memory.endpoint required")
	}
	return StatusPlan{
		Endpoint:   c.Endpoint,
		UnitID:     c.UnitID,
		BaseSlot:   c.BaseSlot,
		DeviceName: c.DeviceName,
	}, nil
}

// buildEndpointClient creates the transport client for the configured endpoint.
func buildEndpointClient(c cfg.StatusMemoryConfig) (endpointClient, func() error, error) {
	timeout := time.Duration(c.TimeoutMs) * time.Millisecond

	switch c.Transport {
	case cfg.TransportModbus:
		mc, err := wmodbus.NewEndpointClient(wmodbus.Config{Endpoint: c.Endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		return mc, mc.Close, nil

	case cfg.TransportIngest:
		ic, err := wingest.NewEndpointClient(wingest.Config{Endpoint: c.Endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		return ic, ic.Close, nil

	default:
		return nil, nil, fmt.Errorf("writer: unknown transport %q", c.Transport)
	}
}

// Build wires plan, client and status writer for the configured status memory.
func Build(c cfg.StatusMemoryConfig) (StatusWriter, func() error, error) {
	plan, err := BuildPlan(c)
	if err != nil {
		return nil, nil, err
	}

	cli, closeFn, err := buildEndpointClient(c)
	if err != nil {
		return nil, nil, err
	}

	sw, err := NewStatusWriter(plan, cli)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	return sw, closeFn, nil
}
