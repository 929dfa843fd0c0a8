package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// ScadaReading holds one SCADA record for a single turbine, as decoded from
// the plant's historian stream.
type ScadaReading struct {
	ID                  uuid.UUID
	Time                time.Time
	TurbineID           uuid.UUID
	PowerKW             float64
	WindSpeedMS         float64
	WindDirectionDeg    float64
	NacelleDirectionDeg float64
	VaneAngleDeg        float64
	PitchAngleDeg       float64
	AmbientTempC        float64
}

// MeterReading holds one revenue meter record for the plant.
type MeterReading struct {
	ID        uuid.UUID
	Time      time.Time
	MeterID   uuid.UUID
	EnergyKWh float64
}
