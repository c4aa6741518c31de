package nipap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Interpretation explains how the backend read one part of a query string.
type Interpretation struct {
	String         string  `json:"string"`
	Interpretation *string `json:"interpretation"`
	Attribute      string  `json:"attribute"`
	Operator       *string `json:"operator"`
	Error          bool    `json:"error"`
	ErrorMessage   *string `json:"error_message"`
	StrictPrefix   *string `json:"strict_prefix"`
	Expanded       *string `json:"expanded"`
}

// QueryPart is a node of the parsed query tree. Val1 and Val2 are nested
// parts for boolean operators and nil for leaves.
type QueryPart struct {
	Interpretation *Interpretation
	Operator       string
	Val1, Val2     *QueryPart
}

type rawPart struct {
	Interpretation *Interpretation `json:"interpretation"`
	Operator       *string         `json:"operator"`
	Val1           json.RawMessage `json:"val1"`
	Val2           json.RawMessage `json:"val2"`
}

// ParseInterpretation decodes the interpretation tree of a search reply.
func ParseInterpretation(raw json.RawMessage) (*QueryPart, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var rp rawPart
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("decode interpretation: %w", err)
	}
	part := &QueryPart{Interpretation: rp.Interpretation}
	if rp.Operator != nil {
		part.Operator = *rp.Operator
	}
	var err error
	if part.Val1, err = ParseInterpretation(rp.Val1); err != nil {
		return nil, err
	}
	if part.Val2, err = ParseInterpretation(rp.Val2); err != nil {
		return nil, err
	}
	return part, nil
}

// Term is one human readable line of an interpretation.
type Term struct {
	Text    string
	Tooltip string
	Depth   int
	Error   bool
}

var operatorText = map[string]string{
	"=":  "equal",
	"!=": "not equal",
	">":  "greater than",
	">=": "greater than or equal",
	"<":  "smaller than",
	"<=": "smaller than or equal",
	"~":  "a regular expression match",
}

// Describe flattens the tree into terms in reading order.
func (q *QueryPart) Describe() []Term {
	var terms []Term
	q.describe(0, &terms)
	return terms
}

func (q *QueryPart) describe(depth int, out *[]Term) {
	if q == nil {
		return
	}
	next := depth
	if q.Interpretation != nil {
		t := q.Interpretation.term()
		t.Depth = depth
		*out = append(*out, t)
		if t.Text == "AND" || t.Text == "OR" {
			next = depth + 1
		}
	}
	q.Val1.describe(next, out)
	q.Val2.describe(next, out)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (in *Interpretation) term() Term {
	kind := str(in.Interpretation)
	op := str(in.Operator)
	msg := str(in.ErrorMessage)
	prefix := in.String + ": " + kind

	var t Term
	switch {
	case in.Error && in.Operator == nil:
		t.Error = true
		t.Text = in.String + ": " + msg
		switch msg {
		case "unclosed quote":
			t.Text += ", please close quote!"
			t.Tooltip = "This is not a proper search term as it contains an uneven amount of quotes."
		case "unclosed parentheses":
			t.Text += ", please close parentheses!"
			t.Tooltip = "This is not a proper search term as it contains an uneven amount of parentheses."
		default:
			t.Text += "."
			t.Tooltip = "Invalid search term."
		}
		return t

	case kind == "or" || kind == "and":
		t.Text = strings.ToUpper(kind)

	case in.Attribute == "tag" && op == "equals_any":
		tag := strings.TrimPrefix(in.String, "#")
		t.Text = prefix + " must contain " + tag
		t.Tooltip = "The tag(s) or inherited tag(s) must contain " + tag

	case in.Attribute == "prefix" && op == "contained_within_equals":
		switch {
		case in.StrictPrefix != nil && in.Expanded != nil:
			t.Text = prefix + " within " + *in.StrictPrefix
			t.Tooltip = fmt.Sprintf("Prefix must be contained within %s, which is the base prefix of %s (automatically expanded from %s)",
				*in.StrictPrefix, *in.Expanded, in.String)
		case in.StrictPrefix != nil:
			t.Text = prefix + " within " + *in.StrictPrefix
			t.Tooltip = fmt.Sprintf("Prefix must be contained within %s, which is the base prefix of %s.", *in.StrictPrefix, in.String)
		case in.Expanded != nil:
			t.Text = prefix + " within " + *in.Expanded
			t.Tooltip = fmt.Sprintf("Prefix must be contained within %s (automatically expanded from %s).", *in.Expanded, in.String)
		default:
			t.Text = prefix + " within " + in.String
			t.Tooltip = "Prefix must be contained within " + in.String
		}

	case in.Attribute == "prefix" && op == "contains_equals":
		t.Text = in.String + ": Prefix that contains " + in.String
		t.Tooltip = "The prefix must contain or be equal to " + in.String

	case in.Attribute == "prefix" && op == "equals":
		t.Text = prefix + " equal to " + in.String
		t.Tooltip = fmt.Sprintf("The %s must equal %s", kind, in.String)

	case kind == "expression":
		t.Text = fmt.Sprintf("%s, '%s' %s value", prefix, in.Attribute, operatorText[op])
		t.Tooltip = fmt.Sprintf("The attribute '%s' must be %s to provided value.", in.Attribute, operatorText[op])

	default:
		t.Text = fmt.Sprintf("%s matching '%s'", prefix, in.String)
		t.Tooltip = fmt.Sprintf("The description OR node OR order id OR the comment should regexp match '%s'", in.String)
	}

	if in.Error {
		t.Error = true
		switch msg {
		case "invalid value":
			t.Text += ", invalid value!"
			t.Tooltip += fmt.Sprintf("The value provided is not valid for the attribute '%s'.", in.Attribute)
		case "unknown attribute":
			t.Text += fmt.Sprintf(", unknown attribute '%s'!", in.Attribute)
			t.Tooltip += fmt.Sprintf("There is no prefix attribute '%s'", in.Attribute)
		default:
			t.Text += ", " + msg + "!"
		}
	}
	return t
}
