package script

import "testing"

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	p := NewParser(src)
	prog, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

func TestParseExprStmt(t *testing.T) {
	prog := mustParse(t, `1 + 2 * 3;`)
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	stmt, ok := prog.Stmts[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Stmts[0])
	}
	bin, ok := stmt.Expr.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr at top level (precedence), got %T", stmt.Expr)
	}
	if bin.Operator != TokenPlus {
		t.Errorf("expected top-level + due to precedence, got %v", bin.Operator)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `if (x > 0) { return 1; } else { return 0; }`)
	ifStmt, ok := prog.Stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Stmts[0])
	}
	if ifStmt.Else == nil {
		t.Fatal("expected else branch")
	}
}

func TestParseElseIfChain(t *testing.T) {
	prog := mustParse(t, `if (x == 1) { return 1; } else if (x == 2) { return 2; } else { return 0; }`)
	ifStmt := prog.Stmts[0].(*IfStmt)
	elseIf, ok := ifStmt.Else.(*IfStmt)
	if !ok {
		t.Fatalf("expected nested IfStmt for else-if, got %T", ifStmt.Else)
	}
	if elseIf.Else == nil {
		t.Fatal("expected final else branch")
	}
}

func TestParseMethodCallRewriteShape(t *testing.T) {
	prog := mustParse(t, `CallFunctionOnObject(This, "Attack", GetObjectByDbRef(5).target);`)
	stmt := prog.Stmts[0].(*ExprStmt)
	call, ok := stmt.Expr.(*CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmt.Expr)
	}
	if call.Name != "CallFunctionOnObject" || len(call.Args) != 3 {
		t.Fatalf("unexpected call shape: %+v", call)
	}
	if _, ok := call.Args[2].(*PropertyExpr); !ok {
		t.Fatalf("expected PropertyExpr as third argument, got %T", call.Args[2])
	}
}

func TestParseListLiteralAndAssignment(t *testing.T) {
	prog := mustParse(t, `x = {1, 2, 3};`)
	stmt := prog.Stmts[0].(*ExprStmt)
	assign, ok := stmt.Expr.(*AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", stmt.Expr)
	}
	list, ok := assign.Value.(*ListExpr)
	if !ok {
		t.Fatalf("expected ListExpr on rhs, got %T", assign.Value)
	}
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(list.Elements))
	}
}

func TestParseTernary(t *testing.T) {
	prog := mustParse(t, `x = a > b ? a : b;`)
	stmt := prog.Stmts[0].(*ExprStmt)
	assign := stmt.Expr.(*AssignExpr)
	if _, ok := assign.Value.(*TernaryExpr); !ok {
		t.Fatalf("expected TernaryExpr, got %T", assign.Value)
	}
}

func TestParseInvalidAssignmentTargetReported(t *testing.T) {
	p := NewParser(`1 = 2;`)
	_, errs := p.ParseProgram()
	if len(errs) == 0 {
		t.Fatal("expected a parse error for an invalid assignment target")
	}
}
