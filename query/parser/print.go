package parser

import "strings"

// String prints the query back with its original layout. Every byte of a
// whitespace run comes back as one space, so each token keeps its byte
// offset and a multi-byte space such as U+00A0 widens to several spaces.
func (n *QueryExpression) String() string {
	p := &printer{offset: n.Position.Start}
	p.expr(n.Expression)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	offset int
}

// at pads with spaces up to byte offset pos.
func (p *printer) at(pos int) {
	for p.offset < pos {
		p.sb.WriteByte(' ')
		p.offset++
	}
}

func (p *printer) write(s string, end int) {
	p.sb.WriteString(s)
	p.offset = end
}

func (p *printer) expr(e Expression) {
	switch e := e.(type) {
	case *BooleanExpression:
		p.expr(e.Left)
		if e.Operator != nil {
			p.at(e.Operator.Position.Start)
			p.write(e.Operator.Value, e.Operator.Position.End)
		}
		p.expr(e.Right)
	case *GroupExpression:
		p.at(e.Position.Start)
		p.write("(", e.Position.Start+1)
		if e.Expression != nil {
			p.expr(e.Expression)
		}
		if groupClosed(e) {
			p.at(e.Position.End - 1)
			p.write(")", e.Position.End)
		}
	case *ConditionExpression:
		p.at(e.Key.Position.Start)
		p.write(e.Key.Value, e.Key.Position.End)
		if e.Comparator == nil {
			return
		}
		p.at(e.Comparator.Position.Start)
		p.write(e.Comparator.Value, e.Comparator.Position.End)
		if e.Value == nil {
			return
		}
		p.at(e.Value.Position.Start)
		p.write(valueText(e.Value), e.Value.Position.End)
	}
}

func groupClosed(g *GroupExpression) bool {
	if g.Expression == nil {
		return g.Position.End > g.Position.Start+1
	}
	return g.Position.End > g.Expression.Pos().End
}

func valueText(v *ValueNode) string {
	if v.Quoted {
		return Quote(v.Value)
	}
	return v.Value
}

// Pretty renders q in canonical form: "key: value" for colon conditions,
// "key >= value" for comparators, single spaces around AND and OR, and
// values quoted whenever they would not lex back as a single identifier.
func Pretty(q *QueryExpression) string {
	if q == nil || q.Expression == nil {
		return ""
	}
	var sb strings.Builder
	pretty(&sb, q.Expression)
	return sb.String()
}

func pretty(sb *strings.Builder, e Expression) {
	switch e := e.(type) {
	case *BooleanExpression:
		pretty(sb, e.Left)
		sb.WriteString(" ")
		sb.WriteString(e.Operator.Value)
		sb.WriteString(" ")
		pretty(sb, e.Right)
	case *GroupExpression:
		sb.WriteString("(")
		if e.Expression != nil {
			pretty(sb, e.Expression)
		}
		sb.WriteString(")")
	case *ConditionExpression:
		sb.WriteString(e.Key.Value)
		if e.Comparator == nil {
			return
		}
		if e.Comparator.Value == ":" {
			sb.WriteString(":")
		} else {
			sb.WriteString(" ")
			sb.WriteString(e.Comparator.Value)
		}
		if e.Value == nil {
			return
		}
		sb.WriteString(" ")
		if NeedsQuoting(e.Value.Value) {
			sb.WriteString(Quote(e.Value.Value))
		} else {
			sb.WriteString(e.Value.Value)
		}
	}
}

// NeedsQuoting reports whether s would not lex back as one identifier
// value.
func NeedsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return true
		}
	}
	return LookupOperator(strings.ToUpper(s)) != TokenIdentifier
}

// Quote wraps s in double quotes, escaping what the lexer unescapes.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
