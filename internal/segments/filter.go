package segments

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"visitlens/internal/events"
)

// FilterNode is the tagged union of the filter tree: a leaf predicate
// (field, operator, value) or an And/Or combinator over children. Grouping
// is explicit in the tree, so there is no operator precedence to resolve.
type FilterNode struct {
	Kind     NodeKind     `json:"kind"`
	Field    Field        `json:"field,omitempty"`
	Operator Operator     `json:"operator,omitempty"`
	Operand  string       `json:"value,omitempty"`
	Children []FilterNode `json:"children,omitempty"`
}

// Leaf builds a leaf predicate node.
func Leaf(field Field, operator Operator, value string) FilterNode {
	return FilterNode{Kind: NodeKindLeaf, Field: field, Operator: operator, Operand: value}
}

// And combines nodes so all must match.
func And(children ...FilterNode) FilterNode {
	return FilterNode{Kind: NodeKindAnd, Children: children}
}

// Or combines nodes so any may match.
func Or(children ...FilterNode) FilterNode {
	return FilterNode{Kind: NodeKindOr, Children: children}
}

// Validate checks the whole tree for unknown fields, operators and node
// kinds. It runs at the service boundary so evaluation never fails
// mid-computation.
func (n *FilterNode) Validate() error {
	switch n.Kind {
	case NodeKindLeaf:
		switch n.Field {
		case FieldBrowser, FieldOS, FieldDevice, FieldCountry, FieldCity,
			FieldPath, FieldReferrer, FieldEventType:
		default:
			return &UnknownFieldError{Field: n.Field}
		}
		switch n.Operator {
		case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorStartsWith:
		default:
			return fmt.Errorf("segment filter uses unknown operator: %s", n.Operator)
		}
		return nil
	case NodeKindAnd, NodeKindOr:
		if len(n.Children) == 0 {
			return errors.New("segment combinator has no children")
		}
		for i := range n.Children {
			if err := n.Children[i].Validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("segment filter has unknown node kind: %s", n.Kind)
	}
}

// Evaluate applies the tree to one event by structural recursion.
// Combinators short-circuit.
func (n *FilterNode) Evaluate(e *events.Event) bool {
	switch n.Kind {
	case NodeKindLeaf:
		return n.evaluateLeaf(e)
	case NodeKindAnd:
		for i := range n.Children {
			if !n.Children[i].Evaluate(e) {
				return false
			}
		}
		return true
	case NodeKindOr:
		for i := range n.Children {
			if n.Children[i].Evaluate(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// evaluateLeaf compares the named field's string value. A nil field never
// satisfies equals/contains/starts_with but does satisfy not_equals
// against any value.
func (n *FilterNode) evaluateLeaf(e *events.Event) bool {
	value, present := eventField(e, n.Field)
	if !present {
		return n.Operator == OperatorNotEquals
	}

	switch n.Operator {
	case OperatorEquals:
		return value == n.Operand
	case OperatorNotEquals:
		return value != n.Operand
	case OperatorContains:
		return strings.Contains(value, n.Operand)
	case OperatorStartsWith:
		return strings.HasPrefix(value, n.Operand)
	default:
		return false
	}
}

func eventField(e *events.Event, field Field) (string, bool) {
	switch field {
	case FieldBrowser:
		return derefField(e.Browser)
	case FieldOS:
		return derefField(e.OS)
	case FieldDevice:
		return derefField(e.Device)
	case FieldCountry:
		return derefField(e.Country)
	case FieldCity:
		return derefField(e.City)
	case FieldPath:
		return e.Path, true
	case FieldReferrer:
		return derefField(e.Referrer)
	case FieldEventType:
		return eventTypeName(e.EventType), true
	default:
		return "", false
	}
}

func derefField(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func eventTypeName(t events.EventType) string {
	switch t {
	case events.EventTypePageView:
		return "pageview"
	case events.EventTypeHeartbeat:
		return "heartbeat"
	case events.EventTypeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// FilterEvents returns the subset of rows matching the tree, preserving
// chronological order.
func FilterEvents(rows []events.Event, root *FilterNode) []events.Event {
	var matched []events.Event
	for i := range rows {
		if root.Evaluate(&rows[i]) {
			matched = append(matched, rows[i])
		}
	}
	return matched
}

// Scan implements sql.Scanner so a filter tree loads from its JSON column.
func (n *FilterNode) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan filter tree from %T", value)
	}
	return json.Unmarshal(raw, n)
}

// Value implements driver.Valuer so a filter tree persists as JSON.
func (n FilterNode) Value() (driver.Value, error) {
	return json.Marshal(n)
}
