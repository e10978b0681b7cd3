package ast

// FunctionKind enumerates the built-in, argument-optional functions
// reachable from a template placeholder (spec.md §3, §4.9).
type FunctionKind int

const (
	FuncNewDate FunctionKind = iota
	FuncNewUuid
	FuncGetEnv
)

// ReservedNames are expression/function identifiers that cannot be used as
// ordinary variable names (spec.md §3).
var ReservedNames = map[string]bool{
	"newDate": true,
	"newUuid": true,
	"getEnv":  true,
}

// Expression is either a bare variable reference or a built-in function
// call.
type Expression struct {
	// Variable is non-empty for a Variable(name) expression.
	Variable string

	// Function is set (IsFunction true) for a Function expression.
	IsFunction bool
	Function   FunctionKind
	// Arg is the getEnv(name) argument; unused for NewDate/NewUuid.
	Arg string

	Sp Span
}

func (e Expression) Span() Span { return e.Sp }

// VariableExpr builds a Variable(name) expression.
func VariableExpr(name string, sp Span) Expression {
	return Expression{Variable: name, Sp: sp}
}

// FunctionExpr builds a Function expression.
func FunctionExpr(kind FunctionKind, arg string, sp Span) Expression {
	return Expression{IsFunction: true, Function: kind, Arg: arg, Sp: sp}
}
