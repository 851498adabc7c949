package console

import (
	"errors"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Operator diagnostics. These strings are stable output.
const (
	MsgMissingTypeName       = "** class name missing **"
	MsgUnknownEntityType     = "** class doesn't exist **"
	MsgMissingID             = "** instance id missing **"
	MsgNoSuchInstance        = "** no instance found **"
	MsgMissingAttributeName  = "** attribute name missing **"
	MsgMissingAttributeValue = "** value missing **"
	MsgInvalidPayload        = "** invalid json object **"
	MsgUnrecognizedOperation = "** invalid method **"
)

// diagnostics maps each command error to its diagnostic.
var diagnostics = []struct {
	err error
	msg string
}{
	{types.ErrMissingTypeName, MsgMissingTypeName},
	{types.ErrUnknownEntityType, MsgUnknownEntityType},
	{types.ErrMissingID, MsgMissingID},
	{types.ErrNoSuchInstance, MsgNoSuchInstance},
	{types.ErrMissingAttributeName, MsgMissingAttributeName},
	{types.ErrMissingAttributeValue, MsgMissingAttributeValue},
	{types.ErrInvalidPayload, MsgInvalidPayload},
	{types.ErrUnrecognizedOperation, MsgUnrecognizedOperation},
}

// Diagnostic returns the operator message for err, or "" if err is not a
// command error.
func Diagnostic(err error) string {
	for _, d := range diagnostics {
		if errors.Is(err, d.err) {
			return d.msg
		}
	}
	return ""
}

// unknownSyntax formats the report for a line matching neither syntax.
func unknownSyntax(line string) string {
	return "*** Unknown syntax: " + line
}
