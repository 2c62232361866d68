package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for batch run identifiers.
	FieldRunID = "run_id"
	// FieldJobID is the standardized structured logging key for conversion job identifiers.
	FieldJobID = "job_id"
	// FieldStep is the standardized structured logging key for pipeline step names.
	FieldStep = "step"
	// FieldClip is the standardized structured logging key for clip names.
	FieldClip = "clip"
	// FieldSource is the standardized structured logging key for motion-source paths.
	FieldSource = "source"
	// FieldEventType categorizes log events for downstream filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step when an operation fails.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
)
