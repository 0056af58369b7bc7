package diag

import (
	"fmt"
)

// Code identifies a diagnostic category.
type Code uint16

const (
	// UnknownCode is the fallback for uncategorized diagnostics.
	UnknownCode Code = 0

	// Lexical errors.
	LexUnknownChar         Code = 1001
	LexUnterminatedString  Code = 1002
	LexUnterminatedChar    Code = 1003
	LexBadNumber           Code = 1004
	LexUnterminatedComment Code = 1005

	// Syntax errors.
	SynUnexpectedToken   Code = 2001
	SynExpectIdentifier  Code = 2002
	SynExpectType        Code = 2003
	SynUnclosedDelimiter Code = 2004
	SynBadLoopHeader     Code = 2005

	// Generic resolution errors (hard).
	MonoArgCountMismatch Code = 4001
	MonoInferenceFailed  Code = 4002
	MonoUnifyMismatch    Code = 4003

	// Code generation diagnostics (soft unless noted).
	GenUndefinedVariable Code = 5001
	GenUndefinedFunction Code = 5002
	GenUndefinedMethod   Code = 5003
	GenUndefinedField    Code = 5004
	GenLoopContext       Code = 5005
	GenInvalidContext    Code = 5006
)

func (c Code) String() string {
	switch {
	case c == UnknownCode:
		return "PAW0000"
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("LEX%04d", uint16(c)-1000)
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("SYN%04d", uint16(c)-2000)
	case c >= 4000 && c < 5000:
		return fmt.Sprintf("MONO%04d", uint16(c)-4000)
	case c >= 5000 && c < 6000:
		return fmt.Sprintf("GEN%04d", uint16(c)-5000)
	default:
		return fmt.Sprintf("PAW%04d", uint16(c))
	}
}
