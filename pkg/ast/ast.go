// Package ast defines the Lox AST node types.
//
// Expressions and statements are closed sets: the unexported marker methods
// keep implementations inside this package, and every consumer switches over
// the concrete types. Nodes are never mutated after the parser builds them.
package ast

import "github.com/thomasrohde/glox/pkg/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	Line() int
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

type Literal struct {
	Value   token.Literal
	LineNum int
}

func (n *Literal) Kind() string { return "Literal" }
func (n *Literal) Line() int    { return n.LineNum }
func (n *Literal) exprNode()    {}

type Grouping struct {
	Inner Expr
}

func (n *Grouping) Kind() string { return "Grouping" }
func (n *Grouping) Line() int    { return n.Inner.Line() }
func (n *Grouping) exprNode()    {}

type Unary struct {
	Op    token.Token
	Right Expr
}

func (n *Unary) Kind() string { return "Unary" }
func (n *Unary) Line() int    { return n.Op.Line }
func (n *Unary) exprNode()    {}

// Binary covers arithmetic, comparison, equality, and the comma operator.
type Binary struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (n *Binary) Kind() string { return "Binary" }
func (n *Binary) Line() int    { return n.Op.Line }
func (n *Binary) exprNode()    {}

// Logical is a short-circuiting "and" / "or".
type Logical struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (n *Logical) Kind() string { return "Logical" }
func (n *Logical) Line() int    { return n.Op.Line }
func (n *Logical) exprNode()    {}

type Ternary struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (n *Ternary) Kind() string { return "Ternary" }
func (n *Ternary) Line() int    { return n.Cond.Line() }
func (n *Ternary) exprNode()    {}

type Assign struct {
	Name  token.Token
	Value Expr
}

func (n *Assign) Kind() string { return "Assign" }
func (n *Assign) Line() int    { return n.Name.Line }
func (n *Assign) exprNode()    {}

type Variable struct {
	Name token.Token
}

func (n *Variable) Kind() string { return "Variable" }
func (n *Variable) Line() int    { return n.Name.Line }
func (n *Variable) exprNode()    {}

type Call struct {
	Callee Expr
	Paren  token.Token // closing paren, used for error lines
	Args   []Expr
}

func (n *Call) Kind() string { return "Call" }
func (n *Call) Line() int    { return n.Paren.Line }
func (n *Call) exprNode()    {}

// Get is a property read: object.name
type Get struct {
	Object Expr
	Name   token.Token
}

func (n *Get) Kind() string { return "Get" }
func (n *Get) Line() int    { return n.Name.Line }
func (n *Get) exprNode()    {}

// Set is a property write: object.name = value
type Set struct {
	Object Expr
	Name   token.Token
	Value  Expr
}

func (n *Set) Kind() string { return "Set" }
func (n *Set) Line() int    { return n.Name.Line }
func (n *Set) exprNode()    {}

type This struct {
	Keyword token.Token
}

func (n *This) Kind() string { return "This" }
func (n *This) Line() int    { return n.Keyword.Line }
func (n *This) exprNode()    {}

type Super struct {
	Keyword token.Token
	Method  token.Token
}

func (n *Super) Kind() string { return "Super" }
func (n *Super) Line() int    { return n.Keyword.Line }
func (n *Super) exprNode()    {}

// Function is an anonymous function literal. It is also the payload of
// named function declarations and class methods.
type Function struct {
	Keyword token.Token // "fun" or the method name
	Params  []token.Token
	Body    []Stmt
}

func (n *Function) Kind() string { return "Function" }
func (n *Function) Line() int    { return n.Keyword.Line }
func (n *Function) exprNode()    {}

// --- Statements ---

type ExpressionStmt struct {
	Expr Expr
}

func (n *ExpressionStmt) Kind() string { return "ExpressionStmt" }
func (n *ExpressionStmt) Line() int    { return n.Expr.Line() }
func (n *ExpressionStmt) stmtNode()    {}

type PrintStmt struct {
	Keyword token.Token
	Expr    Expr
}

func (n *PrintStmt) Kind() string { return "PrintStmt" }
func (n *PrintStmt) Line() int    { return n.Keyword.Line }
func (n *PrintStmt) stmtNode()    {}

type VarStmt struct {
	Name        token.Token
	Initializer Expr // nil when absent
}

func (n *VarStmt) Kind() string { return "VarStmt" }
func (n *VarStmt) Line() int    { return n.Name.Line }
func (n *VarStmt) stmtNode()    {}

type BlockStmt struct {
	Statements []Stmt
	LineNum    int
}

func (n *BlockStmt) Kind() string { return "BlockStmt" }
func (n *BlockStmt) Line() int    { return n.LineNum }
func (n *BlockStmt) stmtNode()    {}

type IfStmt struct {
	Keyword token.Token
	Cond    Expr
	Then    Stmt
	Else    Stmt // nil when absent
}

func (n *IfStmt) Kind() string { return "IfStmt" }
func (n *IfStmt) Line() int    { return n.Keyword.Line }
func (n *IfStmt) stmtNode()    {}

type WhileStmt struct {
	Keyword token.Token
	Cond    Expr
	Body    Stmt
}

func (n *WhileStmt) Kind() string { return "WhileStmt" }
func (n *WhileStmt) Line() int    { return n.Keyword.Line }
func (n *WhileStmt) stmtNode()    {}

type FunctionStmt struct {
	Name token.Token
	Func *Function
}

func (n *FunctionStmt) Kind() string { return "FunctionStmt" }
func (n *FunctionStmt) Line() int    { return n.Name.Line }
func (n *FunctionStmt) stmtNode()    {}

type ReturnStmt struct {
	Keyword token.Token
	Value   Expr // nil when absent
}

func (n *ReturnStmt) Kind() string { return "ReturnStmt" }
func (n *ReturnStmt) Line() int    { return n.Keyword.Line }
func (n *ReturnStmt) stmtNode()    {}

type ClassStmt struct {
	Name       token.Token
	Superclass *Variable // nil when absent
	Methods    []*FunctionStmt
}

func (n *ClassStmt) Kind() string { return "ClassStmt" }
func (n *ClassStmt) Line() int    { return n.Name.Line }
func (n *ClassStmt) stmtNode()    {}
