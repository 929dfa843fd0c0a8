package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/cepro/plantperf/metrics"
	"github.com/cepro/plantperf/telemetry"
)

// Ingester consumes historian messages from Kafka, decodes them and feeds the
// readings into the data platform channels.
type Ingester struct {
	reader  *kafka.Reader
	scadaCh chan<- telemetry.ScadaReading
	meterCh chan<- telemetry.MeterReading
	logger  *slog.Logger
}

// message is the JSON envelope published by the historian bridge. Exactly one
// of the payload fields is set, according to `Type`.
type message struct {
	Type  string        `json:"type"` // "scada" or "meter"
	Scada *scadaPayload `json:"scada,omitempty"`
	Meter *meterPayload `json:"meter,omitempty"`
}

type scadaPayload struct {
	Time                time.Time `json:"time"`
	TurbineID           uuid.UUID `json:"turbine_id"`
	PowerKW             float64   `json:"power_kw"`
	WindSpeedMS         float64   `json:"wind_speed_ms"`
	WindDirectionDeg    float64   `json:"wind_direction_deg"`
	NacelleDirectionDeg float64   `json:"nacelle_direction_deg"`
	VaneAngleDeg        float64   `json:"vane_angle_deg"`
	PitchAngleDeg       float64   `json:"pitch_angle_deg"`
	AmbientTempC        float64   `json:"ambient_temp_c"`
}

type meterPayload struct {
	Time      time.Time `json:"time"`
	MeterID   uuid.UUID `json:"meter_id"`
	EnergyKWh float64   `json:"energy_kwh"`
}

func New(brokers []string, topic, groupID string, scadaCh chan<- telemetry.ScadaReading, meterCh chan<- telemetry.MeterReading) *Ingester {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Ingester{
		reader:  reader,
		scadaCh: scadaCh,
		meterCh: meterCh,
		logger:  slog.Default().With("topic", topic),
	}
}

// Run loops forever reading messages from the topic until the context is
// cancelled.
func (i *Ingester) Run(ctx context.Context) error {
	i.logger.Info("Ingester running")
	defer i.reader.Close()

	for {
		msg, err := i.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		if err := i.handleMessage(ctx, msg.Value); err != nil {
			metrics.IngestErrors.Inc()
			i.logger.Error("Failed to handle message", "error", err, "offset", msg.Offset)
		}
	}
}

func (i *Ingester) handleMessage(ctx context.Context, value []byte) error {
	var msg message
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	switch msg.Type {
	case "scada":
		if msg.Scada == nil {
			return errors.New("scada message has no payload")
		}
		reading := telemetry.ScadaReading{
			ID:                  uuid.New(),
			Time:                msg.Scada.Time,
			TurbineID:           msg.Scada.TurbineID,
			PowerKW:             msg.Scada.PowerKW,
			WindSpeedMS:         msg.Scada.WindSpeedMS,
			WindDirectionDeg:    msg.Scada.WindDirectionDeg,
			NacelleDirectionDeg: msg.Scada.NacelleDirectionDeg,
			VaneAngleDeg:        msg.Scada.VaneAngleDeg,
			PitchAngleDeg:       msg.Scada.PitchAngleDeg,
			AmbientTempC:        msg.Scada.AmbientTempC,
		}
		select {
		case i.scadaCh <- reading:
			metrics.ScadaReadingsIngested.Inc()
		case <-ctx.Done():
			return ctx.Err()
		}

	case "meter":
		if msg.Meter == nil {
			return errors.New("meter message has no payload")
		}
		reading := telemetry.MeterReading{
			ID:        uuid.New(),
			Time:      msg.Meter.Time,
			MeterID:   msg.Meter.MeterID,
			EnergyKWh: msg.Meter.EnergyKWh,
		}
		select {
		case i.meterCh <- reading:
			metrics.MeterReadingsIngested.Inc()
		case <-ctx.Done():
			return ctx.Err()
		}

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	return nil
}
