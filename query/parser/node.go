package parser

type NodeKind int

const (
	KindQuery NodeKind = iota
	KindBoolean
	KindCondition
	KindGroup
	KindKey
	KindComparator
	KindValue
	KindOperator
)

var nodeKindNames = map[NodeKind]string{
	KindQuery:      "QueryExpression",
	KindBoolean:    "BooleanExpression",
	KindCondition:  "ConditionExpression",
	KindGroup:      "GroupExpression",
	KindKey:        "Key",
	KindComparator: "Comparator",
	KindValue:      "Value",
	KindOperator:   "Operator",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is implemented by every AST node.
type Node interface {
	Kind() NodeKind
	Pos() Position
}

// Expression is a node that can stand where a boolean operand is expected:
// a condition, a group or another boolean expression.
type Expression interface {
	Node
	expressionNode()
}

type QueryExpression struct {
	Expression Expression
	Position   Position
}

type BooleanExpression struct {
	Operator *OperatorNode
	Left     Expression
	Right    Expression
	Position Position
}

// ConditionExpression is a single key/comparator/value clause. The spacing
// counts keep the original layout so the query can be printed back as
// typed. Comparator and Value are nil in partial conditions built while
// recovering from errors.
type ConditionExpression struct {
	Key                   *KeyNode
	Comparator            *ComparatorNode
	Value                 *ValueNode
	SpacesAfterKey        int
	SpacesAfterComparator int
	SpacesAfterValue      int
	Position              Position
}

type GroupExpression struct {
	Expression Expression
	Position   Position
}

type KeyNode struct {
	Value    string
	Position Position
}

type ComparatorNode struct {
	Value    string
	Position Position
}

type ValueNode struct {
	Value    string
	Quoted   bool
	Position Position
}

type OperatorNode struct {
	Value    string
	Position Position
}

func (n *QueryExpression) Kind() NodeKind     { return KindQuery }
func (n *BooleanExpression) Kind() NodeKind   { return KindBoolean }
func (n *ConditionExpression) Kind() NodeKind { return KindCondition }
func (n *GroupExpression) Kind() NodeKind     { return KindGroup }
func (n *KeyNode) Kind() NodeKind             { return KindKey }
func (n *ComparatorNode) Kind() NodeKind      { return KindComparator }
func (n *ValueNode) Kind() NodeKind           { return KindValue }
func (n *OperatorNode) Kind() NodeKind        { return KindOperator }

func (n *QueryExpression) Pos() Position     { return n.Position }
func (n *BooleanExpression) Pos() Position   { return n.Position }
func (n *ConditionExpression) Pos() Position { return n.Position }
func (n *GroupExpression) Pos() Position     { return n.Position }
func (n *KeyNode) Pos() Position             { return n.Position }
func (n *ComparatorNode) Pos() Position      { return n.Position }
func (n *ValueNode) Pos() Position           { return n.Position }
func (n *OperatorNode) Pos() Position        { return n.Position }

func (*BooleanExpression) expressionNode()   {}
func (*ConditionExpression) expressionNode() {}
func (*GroupExpression) expressionNode()     {}

// IsComplete reports whether the condition has all three parts.
func (n *ConditionExpression) IsComplete() bool {
	return n.Key != nil && n.Comparator != nil && n.Value != nil
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var children []Node
	switch n := n.(type) {
	case *QueryExpression:
		if n.Expression != nil {
			children = append(children, n.Expression)
		}
	case *BooleanExpression:
		if n.Left != nil {
			children = append(children, n.Left)
		}
		if n.Operator != nil {
			children = append(children, n.Operator)
		}
		if n.Right != nil {
			children = append(children, n.Right)
		}
	case *ConditionExpression:
		if n.Key != nil {
			children = append(children, n.Key)
		}
		if n.Comparator != nil {
			children = append(children, n.Comparator)
		}
		if n.Value != nil {
			children = append(children, n.Value)
		}
	case *GroupExpression:
		if n.Expression != nil {
			children = append(children, n.Expression)
		}
	}
	return children
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Conditions returns every condition in the tree in source order.
func Conditions(n Node) []*ConditionExpression {
	var conds []*ConditionExpression
	Walk(n, func(n Node) bool {
		if c, ok := n.(*ConditionExpression); ok {
			conds = append(conds, c)
			return false
		}
		return true
	})
	return conds
}
