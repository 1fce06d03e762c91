// Package segments evaluates saved visitor segment filters against event
// sets. A segment is a boolean expression tree over event attributes; the
// filtered subset feeds the regular aggregators unchanged, so segments
// need no aggregation code of their own.
package segments

import (
	"fmt"
)

// Field names an event attribute a leaf predicate can compare.
type Field string

const (
	FieldBrowser   Field = "browser"
	FieldOS        Field = "os"
	FieldDevice    Field = "device"
	FieldCountry   Field = "country"
	FieldCity      Field = "city"
	FieldPath      Field = "path"
	FieldReferrer  Field = "referrer"
	FieldEventType Field = "eventType"
)

// Operator is a leaf predicate comparison.
type Operator string

const (
	OperatorEquals     Operator = "equals"
	OperatorNotEquals  Operator = "not_equals"
	OperatorContains   Operator = "contains"
	OperatorStartsWith Operator = "starts_with"
)

// NodeKind tags the filter tree variants.
type NodeKind string

const (
	NodeKindLeaf NodeKind = "leaf"
	NodeKindAnd  NodeKind = "and"
	NodeKindOr   NodeKind = "or"
)

// UnknownFieldError marks a filter referencing a field that does not exist.
type UnknownFieldError struct {
	Field Field
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("segment filter references unknown field: %s", e.Field)
}

// SegmentNotFoundError marks a lookup for a missing segment.
type SegmentNotFoundError struct {
	ID uint
}

func (e *SegmentNotFoundError) Error() string {
	return fmt.Sprintf("segment not found: %d", e.ID)
}
