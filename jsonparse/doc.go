// Package jsonparse implements a small zero-copy JSON lexer and
// recursive-descent parser for numeric documents.
//
// The grammar is a deliberate subset of JSON:
//
//	value  -> object | array | number
//	object -> '{' (member (',' member)*)? '}'
//	member -> string ':' value
//	array  -> '[' (value (',' value)*)? ']'
//
// Strings appear only as object keys. true, false, null and string values
// are rejected, and integers are not distinguished from floats. Escape
// sequences are not decoded: a backslash is an ordinary byte, so \" ends a
// string.
//
// # Zero copy
//
// Token.Text and object keys are substrings of the input and share its
// memory, so a Value tree keeps its input string alive. ParseBytes copies
// the bytes into a string once so later writes to the slice cannot change
// parsed keys.
//
// # Errors
//
// Every failure is returned as a *SyntaxError whose Kind says which case
// fired and whose Offset points at the offending byte:
//
//	v, err := jsonparse.ParseString(`{"a": 1,}`)
//	if jsonparse.KindOf(err) == jsonparse.ErrUnexpectedToken { ... }
//
// A byte outside the lexical alphabet stops tokenizing with
// ErrUnexpectedChar rather than silently truncating the token sequence.
package jsonparse
