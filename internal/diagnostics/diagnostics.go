// Package diagnostics implements the encoder's optional telemetry sink
// (spec §5/§7): structured event records delivered synchronously to a
// registered callback, plus running counters of tiles encoded/skipped,
// packets generated, and anomalies by kind.
//
// This mirrors the teacher's own diagnostic style rather than reaching for
// a third-party logging library: nitro-core-dx's internal/corelx package
// hand-rolls a Category/Severity/Stage diagnostic record with an Error()
// method and a HasErrors helper, and internal/debug hand-rolls a
// counter+callback logger. The teacher itself never imports a logging
// library anywhere in its own source, so neither does this.
package diagnostics

import "fmt"

// Severity is the record's importance, per spec §6 "Diagnostics output".
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Kind enumerates the anomaly/telemetry kinds named in spec §5/§7.
type Kind string

const (
	KindDropped            Kind = "dropped"
	KindMalformed          Kind = "malformed"
	KindIncomplete         Kind = "incomplete"
	KindValidationFailed   Kind = "validation_failed"
	KindSerializationError Kind = "serialization_error"

	// KindInfo marks a non-anomalous informational record emitted through
	// Sink.Info; it is not tallied as an anomaly. TileSkipped and
	// PacketGenerated only bump counters and emit no event.
	KindInfo Kind = "info"
)

// Event is a single structured diagnostic record.
type Event struct {
	Kind     Kind
	Severity Severity
	Message  string
	Context  map[string]any
}

func (e Event) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s/%s] %s", e.Severity, e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s/%s] %s %v", e.Severity, e.Kind, e.Message, e.Context)
}

// FatalError is a structured, fatal encode-abort error carrying the
// offending slot index and anomaly kind (spec §7 "Structural corruption" /
// "Arithmetic overflow").
type FatalError struct {
	Kind  Kind
	Slot  int
	Cause string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("cdg: fatal %s at slot %d: %s", e.Kind, e.Slot, e.Cause)
}

// Counters tallies telemetry over the life of an encode.
type Counters struct {
	TilesEncoded int
	TilesSkipped int // skipped because they matched VRAM
	Packets      int
	Anomalies    map[Kind]int
}

// Sink is the optional telemetry collector. A nil *Sink is safe to call
// methods on — every method is a no-op when the sink itself is nil, so
// components can hold a *Sink unconditionally without a presence check at
// every call site.
type Sink struct {
	Counters Counters
	onEvent  func(Event)
}

// New returns a sink with an optional callback. callback may be nil.
func New(callback func(Event)) *Sink {
	return &Sink{
		Counters: Counters{Anomalies: make(map[Kind]int)},
		onEvent:  callback,
	}
}

func (s *Sink) emit(e Event) {
	if s == nil {
		return
	}
	if s.Counters.Anomalies == nil {
		s.Counters.Anomalies = make(map[Kind]int)
	}
	if e.Kind != KindInfo {
		s.Counters.Anomalies[e.Kind]++
	}
	if s.onEvent != nil {
		s.onEvent(e)
	}
}

// Malformed records a "malformed" anomaly (e.g. a compositor block write of
// the wrong length).
func (s *Sink) Malformed(message string, context map[string]any) {
	s.emit(Event{Kind: KindMalformed, Severity: SeverityWarning, Message: message, Context: context})
}

// Dropped records a "dropped" anomaly (e.g. a packet that could not find a
// free slot within the target duration).
func (s *Sink) Dropped(message string, context map[string]any) {
	s.emit(Event{Kind: KindDropped, Severity: SeverityWarning, Message: message, Context: context})
}

// ValidationFailed records a "validation_failed" anomaly (e.g. a clip
// rejected at registration).
func (s *Sink) ValidationFailed(message string, context map[string]any) {
	s.emit(Event{Kind: KindValidationFailed, Severity: SeverityWarning, Message: message, Context: context})
}

// Incomplete records an "incomplete" anomaly (e.g. a truncated serialize
// buffer).
func (s *Sink) Incomplete(message string, context map[string]any) {
	s.emit(Event{Kind: KindIncomplete, Severity: SeverityWarning, Message: message, Context: context})
}

// SerializationError records a "serialization_error" anomaly.
func (s *Sink) SerializationError(message string, context map[string]any) {
	s.emit(Event{Kind: KindSerializationError, Severity: SeverityCritical, Message: message, Context: context})
}

// TileEncoded increments the tiles-encoded counter.
func (s *Sink) TileEncoded() {
	if s == nil {
		return
	}
	s.Counters.TilesEncoded++
}

// TileSkipped increments the tiles-skipped-by-VRAM-match counter.
func (s *Sink) TileSkipped() {
	if s == nil {
		return
	}
	s.Counters.TilesSkipped++
}

// PacketGenerated increments the packets-generated counter.
func (s *Sink) PacketGenerated() {
	if s == nil {
		return
	}
	s.Counters.Packets++
}

// Info records a non-anomalous informational event.
func (s *Sink) Info(message string, context map[string]any) {
	s.emit(Event{Kind: KindInfo, Severity: SeverityInfo, Message: message, Context: context})
}
