package parser

import "testing"

func tok(kind TokenKind, value string, start, end int) *Token {
	return &Token{Kind: kind, Value: value, Position: Position{Start: start, End: end, Line: 1, Column: start + 1}}
}

func TestMergePositions(t *testing.T) {
	a := Position{Start: 4, End: 8, Line: 1, Column: 5}
	b := Position{Start: 0, End: 3, Line: 1, Column: 1}

	got := MergePositions(a, b)
	want := Position{Start: 0, End: 8, Line: 1, Column: 1}
	if got != want {
		t.Errorf("MergePositions = %+v, want %+v", got, want)
	}
	if MergePositions(b, a) != want {
		t.Errorf("MergePositions is not symmetric")
	}
}

func TestNewCondition(t *testing.T) {
	key := NewKey(tok(TokenIdentifier, "status", 0, 6))
	cmp := NewComparator(tok(TokenColon, ":", 6, 7))
	value := NewValue(tok(TokenQuotedString, "super user", 8, 20))

	cond := NewCondition(key, cmp, value)
	if cond.Position.Start != 0 || cond.Position.End != 20 {
		t.Errorf("Position = %s, want 0-20", cond.Position)
	}
	if !cond.Value.Quoted {
		t.Errorf("Quoted = false, want true")
	}
	if !cond.IsComplete() {
		t.Errorf("IsComplete() = false, want true")
	}

	partial := NewCondition(key, cmp, nil)
	if partial.Position.End != 7 {
		t.Errorf("partial End = %d, want 7", partial.Position.End)
	}
	if partial.IsComplete() {
		t.Errorf("IsComplete() = true for partial condition")
	}
}

func TestNewBoolean(t *testing.T) {
	left := NewCondition(NewKey(tok(TokenIdentifier, "a", 0, 1)), NewComparator(tok(TokenColon, ":", 1, 2)), NewValue(tok(TokenIdentifier, "b", 2, 3)))
	right := NewCondition(NewKey(tok(TokenIdentifier, "c", 8, 9)), NewComparator(tok(TokenColon, ":", 9, 10)), NewValue(tok(TokenIdentifier, "d", 10, 11)))
	op := NewOperator(tok(TokenAnd, "AND", 4, 7))

	expr := NewBoolean(op, left, right)
	b, ok := expr.(*BooleanExpression)
	if !ok {
		t.Fatalf("NewBoolean returned %T, want *BooleanExpression", expr)
	}
	if b.Position.Start != 0 || b.Position.End != 11 {
		t.Errorf("Position = %s, want 0-11", b.Position)
	}

	if got := NewBoolean(op, nil, right); got != Expression(right) {
		t.Errorf("NewBoolean(nil, right) = %v, want right", got)
	}
	if got := NewBoolean(op, left, nil); got != Expression(left) {
		t.Errorf("NewBoolean(left, nil) = %v, want left", got)
	}
}

func TestNewGroup(t *testing.T) {
	inner := NewCondition(NewKey(tok(TokenIdentifier, "a", 1, 2)), NewComparator(tok(TokenColon, ":", 2, 3)), NewValue(tok(TokenIdentifier, "b", 3, 4)))
	open := tok(TokenLParen, "(", 0, 1)

	closed := NewGroup(open, inner, tok(TokenRParen, ")", 4, 5))
	if closed.Position.End != 5 {
		t.Errorf("closed End = %d, want 5", closed.Position.End)
	}

	unclosed := NewGroup(open, inner, nil)
	if unclosed.Position.End != 4 {
		t.Errorf("unclosed End = %d, want 4", unclosed.Position.End)
	}
}

func TestWalk(t *testing.T) {
	result := Parse("a:b AND (c:d OR e:f)")
	var visited []NodeKind
	Walk(result.AST, func(n Node) bool {
		visited = append(visited, n.Kind())
		return true
	})

	want := []NodeKind{
		KindQuery, KindBoolean,
		KindCondition, KindKey, KindComparator, KindValue,
		KindOperator,
		KindGroup, KindBoolean,
		KindCondition, KindKey, KindComparator, KindValue,
		KindOperator,
		KindCondition, KindKey, KindComparator, KindValue,
	}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("node %d = %s, want %s", i, visited[i], want[i])
		}
	}

	conds := Conditions(result.AST)
	if len(conds) != 3 {
		t.Fatalf("got %d conditions, want 3", len(conds))
	}
	if conds[2].Key.Value != "e" {
		t.Errorf("last key = %q, want %q", conds[2].Key.Value, "e")
	}
}
