package domain

// EscalationLevel identifies a management tier for stale-ticket alerts.
type EscalationLevel string

const (
	EscalationL1 EscalationLevel = "L1"
	EscalationL2 EscalationLevel = "L2"
	EscalationL3 EscalationLevel = "L3"
)

// EscalationContact is a static, externally editable alert recipient.
// Read-only to the engine; seeded with placeholders on first access.
type EscalationContact struct {
	Level  EscalationLevel
	Name   string
	Mobile string
}
