package parser

import "encoding/json"

type jsonNode struct {
	Type                  string        `json:"type"`
	Position              *jsonPosition `json:"position,omitempty"`
	Expression            *jsonNode     `json:"expression,omitempty"`
	Operator              *jsonNode     `json:"operator,omitempty"`
	Left                  *jsonNode     `json:"left,omitempty"`
	Right                 *jsonNode     `json:"right,omitempty"`
	Key                   *jsonNode     `json:"key,omitempty"`
	Comparator            *jsonNode     `json:"comparator,omitempty"`
	Value                 any           `json:"value,omitempty"`
	Quoted                bool          `json:"quoted,omitempty"`
	SpacesAfterKey        *int          `json:"spacesAfterKey,omitempty"`
	SpacesAfterComparator *int          `json:"spacesAfterComparator,omitempty"`
	SpacesAfterValue      *int          `json:"spacesAfterValue,omitempty"`
}

type jsonPosition struct {
	Start  int `json:"start"`
	End    int `json:"end"`
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

type jsonContext struct {
	Types []ContextType `json:"types"`
	Key   string        `json:"key,omitempty"`
}

type jsonToken struct {
	Type     string       `json:"type"`
	Value    string       `json:"value"`
	Position jsonPosition `json:"position"`
	Context  *jsonContext `json:"context,omitempty"`
}

type jsonError struct {
	Message     string       `json:"message"`
	Position    jsonPosition `json:"position"`
	Recoverable bool         `json:"recoverable"`
	Code        string       `json:"code"`
	Reason      string       `json:"reason,omitempty"`
}

type jsonResult struct {
	Success bool         `json:"success"`
	AST     *jsonNode    `json:"ast,omitempty"`
	Errors  []ParseError `json:"errors"`
	Tokens  []Token      `json:"tokens"`
}

func (c ContextType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (p Position) toJSON() jsonPosition {
	return jsonPosition{Start: p.Start, End: p.End, Line: p.Line, Column: p.Column}
}

func (t Token) MarshalJSON() ([]byte, error) {
	jt := jsonToken{
		Type:     t.Kind.String(),
		Value:    t.Value,
		Position: t.Position.toJSON(),
	}
	if t.Context != nil {
		jt.Context = &jsonContext{Types: t.Context.Types, Key: t.Context.Key}
	}
	return json.Marshal(jt)
}

func (e ParseError) MarshalJSON() ([]byte, error) {
	je := jsonError{
		Message:     e.Message,
		Position:    e.Position.toJSON(),
		Recoverable: e.Recoverable,
		Code:        e.Code.String(),
	}
	if e.Reason != ReasonNone {
		je.Reason = e.Reason.String()
	}
	return json.Marshal(je)
}

func (r ParseResult) MarshalJSON() ([]byte, error) {
	jr := jsonResult{
		Success: r.Success,
		Errors:  r.Errors,
		Tokens:  r.Tokens,
	}
	if jr.Errors == nil {
		jr.Errors = []ParseError{}
	}
	if r.AST != nil {
		jr.AST = nodeToJSON(r.AST)
	}
	return json.Marshal(jr)
}

func (n *QueryExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeToJSON(n))
}

func intPtr(n int) *int {
	return &n
}

func nodeToJSON(n Node) *jsonNode {
	if n == nil {
		return nil
	}
	pos := n.Pos().toJSON()
	jn := &jsonNode{
		Type:     n.Kind().String(),
		Position: &pos,
	}

	switch n := n.(type) {
	case *QueryExpression:
		jn.Expression = exprToJSON(n.Expression)
	case *BooleanExpression:
		if n.Operator != nil {
			jn.Operator = nodeToJSON(n.Operator)
		}
		jn.Left = exprToJSON(n.Left)
		jn.Right = exprToJSON(n.Right)
	case *ConditionExpression:
		jn.Key = nodeToJSON(n.Key)
		if n.Comparator != nil {
			jn.Comparator = nodeToJSON(n.Comparator)
		}
		if n.Value != nil {
			jn.Value = nodeToJSON(n.Value)
		}
		jn.SpacesAfterKey = intPtr(n.SpacesAfterKey)
		jn.SpacesAfterComparator = intPtr(n.SpacesAfterComparator)
		jn.SpacesAfterValue = intPtr(n.SpacesAfterValue)
	case *GroupExpression:
		jn.Expression = exprToJSON(n.Expression)
	case *KeyNode:
		jn.Value = n.Value
	case *ComparatorNode:
		jn.Value = n.Value
	case *ValueNode:
		jn.Value = n.Value
		jn.Quoted = n.Quoted
	case *OperatorNode:
		jn.Value = n.Value
	}
	return jn
}

// exprToJSON keeps a nil interface from turning into a typed nil node.
func exprToJSON(e Expression) *jsonNode {
	if e == nil {
		return nil
	}
	return nodeToJSON(e)
}
