package core

import "fmt"

// SpecError is returned for structural and cross-reference problems found
// while loading or validating a Specification. It carries enough structured
// context (Entity/Name/Field) for a caller to point a user at the offending
// path, per the preflight diagnostics requirement.
type SpecError struct {
	// Kind distinguishes SpecInvalid (malformed/unknown shape) from
	// SpecInconsistent (well-formed but referentially broken).
	Kind    ErrorKind
	Entity  string
	Name    string
	Field   string
	Message string
}

// ErrorKind enumerates the preflight-time error taxonomy.
type ErrorKind string

const (
	KindSpecInvalid        ErrorKind = "SpecInvalid"
	KindSpecInconsistent   ErrorKind = "SpecInconsistent"
	KindCyclicPlan         ErrorKind = "CyclicPlan"
	KindGenerationFailure  ErrorKind = "GenerationFailure"
	KindUniquenessViolated ErrorKind = "UniquenessViolated"
	KindValidatorWarning   ErrorKind = "ValidatorWarning"
)

func (e *SpecError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s %q field %q: %s", e.Kind, e.Entity, e.Name, e.Field, e.Message)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s %q: %s", e.Kind, e.Entity, e.Name, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Entity, e.Message)
}

func invalidf(entity, name, field, format string, args ...any) *SpecError {
	return &SpecError{Kind: KindSpecInvalid, Entity: entity, Name: name, Field: field, Message: fmt.Sprintf(format, args...)}
}

func inconsistentf(entity, name, field, format string, args ...any) *SpecError {
	return &SpecError{Kind: KindSpecInconsistent, Entity: entity, Name: name, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds a SpecError of the given kind for use by packages outside
// core (plan, exec, validate) that need to report errors in the same
// taxonomy (CyclicPlan, GenerationFailure, UniquenessViolated, ValidatorWarning).
func Errorf(kind ErrorKind, entity, name, field, format string, args ...any) *SpecError {
	return &SpecError{Kind: kind, Entity: entity, Name: name, Field: field, Message: fmt.Sprintf(format, args...)}
}
