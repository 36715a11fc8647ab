package model

// ConstraintKind enumerates the closed set of scheduling constraint
// variants. The resolver dispatches exhaustively on this tag.
type ConstraintKind int

const (
	// ConstraintNone means the event is scheduled in arrival order.
	ConstraintNone ConstraintKind = iota
	// ConstraintRelative anchors the event to another event's new
	// start or end.
	ConstraintRelative
	// ConstraintFixed pins the event to a (week, working-day ordinal)
	// slot within the target range.
	ConstraintFixed
)

// AnchorEdge selects which edge of the referenced event a relative
// constraint anchors to.
type AnchorEdge string

const (
	AnchorStart AnchorEdge = "start"
	AnchorEnd   AnchorEdge = "end"
)

// Constraint is an event's decoded scheduling constraint.
type Constraint struct {
	Kind ConstraintKind

	// Relative: After is a fragment of the referenced event's summary,
	// Edge picks its new start or new end, OffsetDays shifts the anchor.
	After      string
	Edge       AnchorEdge
	OffsetDays int

	// Fixed: Week is the 1-indexed week number within the target range,
	// Day the 1-based working-day ordinal inside that week. Negative Day
	// counts from the end of the week (-1 = last working day).
	Week int
	Day  int

	// Optional events are placed but do not consume their time slots.
	Optional bool
}
