// Package console implements the record console: the argument validator,
// the keyword and method-call front ends, and the interpreter loop.
package console

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/hbnb/internal/models"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// SelectAll is the type selector meaning "every kind".
const SelectAll = "all"

// positionalCutset is trimmed from both ends of positional attribute tokens.
const positionalCutset = "{'\",:}"

// Requirements selects which parts of a command must be present.
// The type name is always required unless TypeOptional is set.
type Requirements struct {
	ID           bool
	AttrName     bool
	AttrValue    bool
	AllowAll     bool // accept "all" as the type selector
	TypeOptional bool // an absent type name selects every kind
}

// Command is a validated, structured command. Kind is empty when the
// selector is "all" or was omitted.
type Command struct {
	TypeName  string
	Kind      models.Kind
	ID        string
	AttrName  string
	AttrValue string
}

// Validate structures raw argument text against req. It returns exactly
// one of the command sentinel errors on failure.
func Validate(args string, req Requirements) (Command, error) {
	tokens := strings.Fields(args)
	var cmd Command

	if len(tokens) == 0 {
		if req.TypeOptional {
			return cmd, nil
		}
		return cmd, types.ErrMissingTypeName
	}

	cmd.TypeName = strings.Trim(tokens[0], `'"`)
	if cmd.TypeName == "" {
		return cmd, types.ErrMissingTypeName
	}
	if cmd.TypeName != SelectAll || !req.AllowAll {
		kind, err := models.Lookup(cmd.TypeName)
		if err != nil {
			return cmd, types.ErrUnknownEntityType
		}
		cmd.Kind = kind
	}

	if len(tokens) > 1 {
		cmd.ID = tokens[1]
	}
	if cmd.ID == "" && req.ID {
		return cmd, types.ErrMissingID
	}

	var attrText string
	if len(tokens) > 2 {
		attrText = strings.Join(tokens[2:], " ")
	}
	if hasBraceSpan(attrText) {
		name, value, err := firstPair(attrText)
		if err != nil {
			return cmd, err
		}
		cmd.AttrName, cmd.AttrValue = name, value
	} else {
		if len(tokens) > 2 {
			cmd.AttrName = strings.Trim(tokens[2], positionalCutset)
		}
		if len(tokens) > 3 {
			cmd.AttrValue = strings.Trim(tokens[3], positionalCutset)
		}
	}

	if cmd.AttrName == "" && req.AttrName {
		return cmd, types.ErrMissingAttributeName
	}
	if cmd.AttrValue == "" && req.AttrValue {
		return cmd, types.ErrMissingAttributeValue
	}
	return cmd, nil
}

// hasBraceSpan reports whether s contains a '{' followed later by a '}'.
func hasBraceSpan(s string) bool {
	open := strings.IndexByte(s, '{')
	return open >= 0 && strings.IndexByte(s[open+1:], '}') >= 0
}

// firstPair parses s as a single JSON object and returns its first member
// as text. String values are unquoted and stripped of commas; any other
// value is returned as its literal exactly as written.
func firstPair(s string) (name, value string, err error) {
	found := false
	decodeErr := models.DecodeObject([]byte(s), func(key string, raw json.RawMessage) error {
		if found {
			return nil
		}
		found = true
		name = strings.Trim(key, ",")
		var v types.Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return err
		}
		if v.Kind() == types.KindString {
			value = strings.Trim(v.String(), ",")
		} else {
			value = strings.TrimSpace(string(raw))
		}
		return nil
	})
	if decodeErr != nil {
		return "", "", fmt.Errorf("%w: %v", types.ErrInvalidPayload, decodeErr)
	}
	if !found {
		return "", "", fmt.Errorf("%w: empty object", types.ErrInvalidPayload)
	}
	return name, value, nil
}
