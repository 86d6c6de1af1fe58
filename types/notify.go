package types

import "github.com/fatih/structs"

// StepNotification is delivered to every OnStep subscriber after a Step
// completes: which event drove it, which rules fired, and any warnings
// collected along the way.
type StepNotification struct {
	Time       float64
	Event      *ScheduledEvent
	FiredRules []string
	Warnings   []EvaluationWarning
}

// Dump renders the notification as a plain map, for logging/inspection
// without hand-written field copying.
func (n StepNotification) Dump() map[string]any {
	return structs.Map(n)
}

// DebugNotification is delivered to every OnDebug subscriber on each rule
// dispatch attempt, matched or not.
type DebugNotification struct {
	SpanID    string
	Rule      string
	Entity    EntityID
	Matched   bool
	Fired     bool
	Error     string
}

// Dump renders the notification as a plain map.
func (n DebugNotification) Dump() map[string]any {
	return structs.Map(n)
}
