package ast

// Walk calls visit on n and then, if visit returns true, recursively on
// every child statement/expression in source order. It is used (through
// Statements) by the Annotation Extractor to enumerate statements in
// textual order when associating an annotation block with "the nearest
// following statement" (§4.1).
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch t := n.(type) {
	case *Chunk:
		Walk(t.Body, visit)
	case *Block:
		for _, s := range t.Statements {
			Walk(s, visit)
		}
	case *LocalStmt:
		for _, e := range t.Exprs {
			Walk(e, visit)
		}
	case *AssignStmt:
		for _, e := range t.Targets {
			Walk(e, visit)
		}
		for _, e := range t.Exprs {
			Walk(e, visit)
		}
	case *CallStmt:
		Walk(t.Call, visit)
	case *DoStmt:
		Walk(t.Body, visit)
	case *IfStmt:
		for _, c := range t.Clauses {
			Walk(c.Condition, visit)
			Walk(c.Body, visit)
		}
		if t.Else != nil {
			Walk(t.Else, visit)
		}
	case *WhileStmt:
		Walk(t.Condition, visit)
		Walk(t.Body, visit)
	case *RepeatStmt:
		Walk(t.Body, visit)
		Walk(t.Condition, visit)
	case *NumericForStmt:
		Walk(t.Start, visit)
		Walk(t.Stop, visit)
		if t.Step != nil {
			Walk(t.Step, visit)
		}
		Walk(t.Body, visit)
	case *GenericForStmt:
		for _, e := range t.Exprs {
			Walk(e, visit)
		}
		Walk(t.Body, visit)
	case *FunctionDeclStmt:
		Walk(t.Name, visit)
		Walk(t.Fn, visit)
	case *LocalFunctionDeclStmt:
		Walk(t.Fn, visit)
	case *ReturnStmt:
		for _, e := range t.Exprs {
			Walk(e, visit)
		}
	case *FunctionExpr:
		Walk(t.Body, visit)
	case *BinaryExpr:
		Walk(t.Left, visit)
		Walk(t.Right, visit)
	case *UnaryExpr:
		Walk(t.Operand, visit)
	case *IndexExpr:
		Walk(t.Target, visit)
		Walk(t.Key, visit)
	case *FieldExpr:
		Walk(t.Target, visit)
	case *CallExpr:
		Walk(t.Callee, visit)
		for _, a := range t.Args {
			Walk(a, visit)
		}
	case *MethodCallExpr:
		Walk(t.Receiver, visit)
		for _, a := range t.Args {
			Walk(a, visit)
		}
	case *TableConstructorExpr:
		for _, f := range t.Fields {
			if f.Key != nil {
				Walk(f.Key, visit)
			}
			Walk(f.Value, visit)
		}
	case *ParenExpr:
		Walk(t.Inner, visit)
	case *CastExpr:
		Walk(t.Inner, visit)
	}
}

// Statements returns every Statement node under root, nested ones
// included, in source order — the list the Annotation Extractor walks.
func Statements(root Node) []Statement {
	var out []Statement
	Walk(root, func(n Node) bool {
		if s, ok := n.(Statement); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}
