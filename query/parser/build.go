package parser

// MergePositions returns the smallest span covering a and b. Line and
// Column follow whichever span starts first.
func MergePositions(a, b Position) Position {
	merged := a
	if b.Start < a.Start {
		merged = b
	}
	merged.End = a.End
	if b.End > merged.End {
		merged.End = b.End
	}
	return merged
}

func NewKey(tok *Token) *KeyNode {
	return &KeyNode{Value: tok.Value, Position: tok.Position}
}

func NewComparator(tok *Token) *ComparatorNode {
	return &ComparatorNode{Value: tok.Value, Position: tok.Position}
}

func NewValue(tok *Token) *ValueNode {
	return &ValueNode{
		Value:    tok.Value,
		Quoted:   tok.Kind == TokenQuotedString,
		Position: tok.Position,
	}
}

func NewOperator(tok *Token) *OperatorNode {
	return &OperatorNode{Value: tok.Value, Position: tok.Position}
}

// NewCondition builds a condition spanning from the key to the last part
// present. cmp and value may be nil.
func NewCondition(key *KeyNode, cmp *ComparatorNode, value *ValueNode) *ConditionExpression {
	pos := key.Position
	if cmp != nil {
		pos = MergePositions(pos, cmp.Position)
	}
	if value != nil {
		pos = MergePositions(pos, value.Position)
	}
	return &ConditionExpression{
		Key:        key,
		Comparator: cmp,
		Value:      value,
		Position:   pos,
	}
}

// NewBoolean joins two operands. When either side is missing the other one
// is returned as is, so recovery can keep whatever parsed.
func NewBoolean(op *OperatorNode, left, right Expression) Expression {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return &BooleanExpression{
		Operator: op,
		Left:     left,
		Right:    right,
		Position: MergePositions(left.Pos(), right.Pos()),
	}
}

// NewGroup spans from the opening parenthesis to the closing one, or to the
// end of the inner expression when the group was never closed.
func NewGroup(open *Token, inner Expression, close *Token) *GroupExpression {
	pos := open.Position
	if inner != nil {
		pos = MergePositions(pos, inner.Pos())
	}
	if close != nil {
		pos = MergePositions(pos, close.Position)
	}
	return &GroupExpression{Expression: inner, Position: pos}
}

func NewQuery(expr Expression) *QueryExpression {
	q := &QueryExpression{Expression: expr}
	if expr != nil {
		q.Position = expr.Pos()
	}
	return q
}
