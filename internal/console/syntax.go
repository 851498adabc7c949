package console

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Operation names shared by both syntaxes.
const (
	OpCreate  = "create"
	OpShow    = "show"
	OpAll     = "all"
	OpCount   = "count"
	OpUpdate  = "update"
	OpDestroy = "destroy"
)

// Invocation is an operation name plus keyword-form argument text, the
// common output of both front ends.
type Invocation struct {
	Op   string
	Args string
}

// methodCallPattern matches "<Type>.<op>(<args>)".
var methodCallPattern = regexp.MustCompile(`^(\w+)\.(\w+)\((.*)\)$`)

// ParseKeyword splits "<op> <args...>" into an invocation. The operation
// is not checked against the vocabulary here.
func ParseKeyword(line string) Invocation {
	line = strings.TrimSpace(line)
	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return Invocation{Op: line}
	}
	return Invocation{Op: line[:end], Args: strings.TrimSpace(line[end:])}
}

// ParseMethodCall rewrites "<Type>.<op>(<args>)" into keyword-form
// argument text. matched is false when line does not have the method-call
// shape. An unknown operation yields ErrUnrecognizedOperation.
func ParseMethodCall(line string) (inv Invocation, matched bool, err error) {
	m := methodCallPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Invocation{}, false, nil
	}
	typeName, op, inner := m[1], m[2], strings.TrimSpace(m[3])

	switch op {
	case OpAll, OpCount, OpCreate:
		return Invocation{Op: op, Args: typeName}, true, nil
	case OpShow, OpDestroy:
		return Invocation{Op: op, Args: joinArgs(typeName, unquote(inner))}, true, nil
	case OpUpdate:
		idPart, rest, _ := strings.Cut(inner, ",")
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "{") {
			rest = strings.ReplaceAll(rest, ",", " ")
		}
		return Invocation{Op: op, Args: joinArgs(typeName, unquote(idPart), rest)}, true, nil
	default:
		return Invocation{}, true, types.ErrUnrecognizedOperation
	}
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func joinArgs(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
