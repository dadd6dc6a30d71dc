package script

import "github.com/barnforge/scriptcore/types"

// Node is the base interface every AST node implements.
type Node interface {
	Position() Position
}

// Expr is an expression-producing node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

type LiteralExpr struct {
	Pos   Position
	Value types.Value
}

func (e *LiteralExpr) Position() Position { return e.Pos }
func (e *LiteralExpr) exprNode()          {}

type ListExpr struct {
	Pos      Position
	Elements []Expr
}

func (e *ListExpr) Position() Position { return e.Pos }
func (e *ListExpr) exprNode()          {}

type IdentifierExpr struct {
	Pos  Position
	Name string
}

func (e *IdentifierExpr) Position() Position { return e.Pos }
func (e *IdentifierExpr) exprNode()          {}

type UnaryExpr struct {
	Pos      Position
	Operator TokenType
	Operand  Expr
}

func (e *UnaryExpr) Position() Position { return e.Pos }
func (e *UnaryExpr) exprNode()          {}

type BinaryExpr struct {
	Pos      Position
	Left     Expr
	Operator TokenType
	Right    Expr
}

func (e *BinaryExpr) Position() Position { return e.Pos }
func (e *BinaryExpr) exprNode()          {}

type TernaryExpr struct {
	Pos       Position
	Condition Expr
	ThenExpr  Expr
	ElseExpr  Expr
}

func (e *TernaryExpr) Position() Position { return e.Pos }
func (e *TernaryExpr) exprNode()          {}

type ParenExpr struct {
	Pos  Position
	Expr Expr
}

func (e *ParenExpr) Position() Position { return e.Pos }
func (e *ParenExpr) exprNode()          {}

// PropertyExpr represents expr.property, which eval.go resolves through
// the Host's GetProperty; the runtime host accepts only object
// references as the target and reports any other kind as a type error.
type PropertyExpr struct {
	Pos      Position
	Expr     Expr
	Property string
}

func (e *PropertyExpr) Position() Position { return e.Pos }
func (e *PropertyExpr) exprNode()          {}

// CallExpr represents any call-by-name expression: a plain builtin or
// user function call, or one of the canonical host calls the
// preprocessor rewrite produces (GetObjectByDbRef, GetObjectById,
// CallFunctionOnObject, CallVerb, ...). The runtime dispatches on Name.
type CallExpr struct {
	Pos  Position
	Name string
	Args []Expr
}

func (e *CallExpr) Position() Position { return e.Pos }
func (e *CallExpr) exprNode()          {}

// MethodCallExpr represents receiver.Method(args): a call applied to a
// property access rather than a bare identifier. This is the parsed
// form of the preprocessor's `GetObjectByDbRef(N).fn(args)` and
// `GetObjectById("id").fn(args)` rewrites (§4.1 rules 1-2), which
// preserve the call form on top of a dbref/id lookup instead of
// collapsing it to a plain CallExpr. The evaluator routes it through
// the same CallFunctionOnObject host call the rule-3 rewrite already
// targets.
type MethodCallExpr struct {
	Pos      Position
	Receiver Expr
	Method   string
	Args     []Expr
}

func (e *MethodCallExpr) Position() Position { return e.Pos }
func (e *MethodCallExpr) exprNode()          {}

type AssignExpr struct {
	Pos    Position
	Target Expr
	Value  Expr
}

func (e *AssignExpr) Position() Position { return e.Pos }
func (e *AssignExpr) exprNode()          {}

// Statements.

type ExprStmt struct {
	Pos  Position
	Expr Expr
}

func (s *ExprStmt) Position() Position { return s.Pos }
func (s *ExprStmt) stmtNode()          {}

type BlockStmt struct {
	Pos   Position
	Stmts []Stmt
}

func (s *BlockStmt) Position() Position { return s.Pos }
func (s *BlockStmt) stmtNode()          {}

type IfStmt struct {
	Pos       Position
	Condition Expr
	Then      *BlockStmt
	Else      Stmt // *BlockStmt or *IfStmt (else-if chain), nil if absent
}

func (s *IfStmt) Position() Position { return s.Pos }
func (s *IfStmt) stmtNode()          {}

type WhileStmt struct {
	Pos       Position
	Condition Expr
	Body      *BlockStmt
}

func (s *WhileStmt) Position() Position { return s.Pos }
func (s *WhileStmt) stmtNode()          {}

type ReturnStmt struct {
	Pos   Position
	Value Expr // nil for a bare `return;`
}

func (s *ReturnStmt) Position() Position { return s.Pos }
func (s *ReturnStmt) stmtNode()          {}

// Program is the root of a compiled unit's AST: a flat list of
// statements forming the verb or function body, plus the prologue
// statements the precompiler injected ahead of the user source (§4.2).
type Program struct {
	Stmts []Stmt
}
