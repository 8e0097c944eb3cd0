// Package service implements call record business logic: turning finished
// dialogue state into records, derived read views, and aggregate stats.
package service

import (
	"context"
	"fmt"
	"time"

	"callintake_backend/internal/calls/repository"
	"callintake_backend/internal/calls/transport"
	"callintake_backend/internal/dialogue"
	"callintake_backend/internal/emergency"
	"callintake_backend/internal/events"
	"callintake_backend/platform/logger"
	"callintake_backend/platform/phone"

	"github.com/google/uuid"
)

// criticalConfidenceThreshold marks a call as a critical emergency even when
// its severity never reached critical.
const criticalConfidenceThreshold = 0.8

// Service coordinates record persistence and event publication.
type Service struct {
	store repository.Store
	bus   events.Bus
	log   *logger.Logger
}

// New creates a calls service.
func New(store repository.Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// Finalize converts a finished call into a record and persists it. The phone
// number is stored E.164-normalized; the engine keeps the raw digits.
func (s *Service) Finalize(ctx context.Context, state dialogue.CallState, summary emergency.Summary, startedAt, endedAt time.Time) (transport.CallRecord, error) {
	leadInfo := state.LeadInfo
	if leadInfo.Phone != "" {
		leadInfo.Phone = phone.NormalizeE164(leadInfo.Phone)
	}

	record := transport.CallRecord{
		ID:                  newRecordID(),
		Timestamp:           startedAt,
		DurationSeconds:     int(endedAt.Sub(startedAt).Seconds()),
		Emergency:           state.EmergencyDetected,
		EmergencyDetected:   state.EmergencyDetected,
		EmergencyConfidence: state.Context.Confidence,
		EmergencySeverity:   deriveSeverity(state, summary),
		Escalated:           state.Escalated,
		LeadInfo:            leadInfo,
		ConversationHistory: append([]dialogue.Turn(nil), state.ConversationHistory...),
		Outcome:             deriveOutcome(state),
	}

	if err := s.Save(ctx, record); err != nil {
		return transport.CallRecord{}, err
	}
	return record, nil
}

// Save persists the record and publishes the call events. The store is tried
// exactly once; fallback across backends is the chain store's job.
func (s *Service) Save(ctx context.Context, record transport.CallRecord) error {
	if err := s.store.Save(ctx, record); err != nil {
		return fmt.Errorf("save call %s: %w", record.ID, err)
	}

	s.log.CallEvent("call recorded", record.ID.String(), string(record.Outcome))
	if record.Escalated {
		s.log.EmergencyDetected(record.ID.String(), record.EmergencyConfidence, string(record.EmergencySeverity), true)
		s.bus.Publish(ctx, events.CallEscalated{BaseEvent: events.NewBaseEvent(), Record: record})
	}
	s.bus.Publish(ctx, events.CallCompleted{BaseEvent: events.NewBaseEvent(), Record: record})

	return nil
}

// List returns all records, newest first.
func (s *Service) List(ctx context.Context) ([]transport.CallRecord, error) {
	return s.store.List(ctx)
}

// ListEmergencies returns calls flagged as emergencies, either explicitly or
// by the detector.
func (s *Service) ListEmergencies(ctx context.Context) ([]transport.CallRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var emergencies []transport.CallRecord
	for _, record := range records {
		if record.Emergency || record.EmergencyDetected {
			emergencies = append(emergencies, record)
		}
	}
	return emergencies, nil
}

// ListCritical returns calls with critical severity or very high detector
// confidence.
func (s *Service) ListCritical(ctx context.Context) ([]transport.CallRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var critical []transport.CallRecord
	for _, record := range records {
		if isCritical(record) {
			critical = append(critical, record)
		}
	}
	return critical, nil
}

// Stats aggregates the stored calls.
func (s *Service) Stats(ctx context.Context) (transport.StatsResponse, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return transport.StatsResponse{}, err
	}

	stats := transport.StatsResponse{Total: len(records)}
	var durationSum float64
	var confidenceSum float64

	for _, record := range records {
		durationSum += float64(record.DurationSeconds)
		if record.Emergency || record.EmergencyDetected {
			stats.Emergencies++
			confidenceSum += record.EmergencyConfidence
		}
		if isCritical(record) {
			stats.CriticalEmergencies++
		}
		if record.Escalated {
			stats.Escalated++
		}
		if record.Outcome == transport.OutcomeScheduled {
			stats.Scheduled++
		}
	}

	if stats.Total > 0 {
		stats.AvgDuration = durationSum / float64(stats.Total)
	}
	if stats.Emergencies > 0 {
		stats.AvgEmergencyConfidence = confidenceSum / float64(stats.Emergencies)
	}

	return stats, nil
}

// Clear removes all stored records.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func isCritical(record transport.CallRecord) bool {
	return record.EmergencySeverity == emergency.SeverityCritical ||
		record.EmergencyConfidence > criticalConfidenceThreshold
}

// deriveOutcome classifies how the call ended. A booked appointment wins
// over an escalation that later got scheduled; everything else needs a
// follow-up.
func deriveOutcome(state dialogue.CallState) transport.Outcome {
	switch {
	case state.LeadInfo.AppointmentDate != "":
		return transport.OutcomeScheduled
	case state.Escalated:
		return transport.OutcomeEscalated
	default:
		return transport.OutcomeFollowUp
	}
}

// deriveSeverity summarizes the whole call. Escalated calls and calls with
// critical detections in the window are critical; any other detection is
// high.
func deriveSeverity(state dialogue.CallState, summary emergency.Summary) emergency.Severity {
	switch {
	case state.Escalated || summary.CriticalCount > 0:
		return emergency.SeverityCritical
	case state.EmergencyDetected:
		return emergency.SeverityHigh
	default:
		return emergency.SeverityLow
	}
}

func newRecordID() uuid.UUID {
	return uuid.New()
}
