package annot

import (
	"fmt"
	"strings"

	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// parseDirective dispatches on the directive name — the first
// whitespace-delimited word of body — to a small per-directive parser,
// per spec §4.1 "Directive grammar" ("Each directive name selects a
// small parser for its tail").
func (ex Extractor) parseDirective(body string, span token.Span) (*Record, error) {
	name, tail := splitWord(body)
	switch name {
	case "type":
		return ex.parseTypeDirective(tail)
	case "param":
		return ex.parseParamDirective(tail)
	case "return":
		return ex.parseReturnDirective(tail)
	case "class":
		return ex.parseClassDirective(tail)
	case "field":
		return ex.parseFieldDirective(tail)
	case "alias":
		return ex.parseAliasDirective(tail)
	case "enum":
		return &Record{Kind: KindEnum, Name: strings.TrimSpace(tail)}, nil
	case "generic":
		return ex.parseGenericDirective(tail)
	case "overload":
		return ex.parseOverloadDirective(tail)
	case "cast":
		return ex.parseCastDirective(tail)
	case "operator":
		return ex.parseOperatorDirective(tail)
	case "vararg":
		res := ex.Lowerer.Lower(tail, 0)
		if err := firstError(res.Errors); err != nil {
			return nil, err
		}
		return &Record{Kind: KindVararg, Type: res.Type}, nil
	case "nodiscard":
		return &Record{Kind: KindNodiscard}, nil
	case "deprecated":
		return &Record{Kind: KindDeprecated, DeprecatedMsg: strings.TrimSpace(tail)}, nil
	case "private":
		return &Record{Kind: KindVisibility, Visibility: VisPrivate}, nil
	case "protected":
		return &Record{Kind: KindVisibility, Visibility: VisProtected}, nil
	case "package":
		return &Record{Kind: KindVisibility, Visibility: VisPackage}, nil
	case "diagnostic":
		return ex.parseDiagnosticDirective(tail)
	case "as":
		res := ex.Lowerer.LowerInline(tail)
		if err := firstError(res.Errors); err != nil {
			return nil, err
		}
		return &Record{Kind: KindAs, Type: res.Type}, nil
	default:
		return nil, fmt.Errorf("unrecognised directive %q", name)
	}
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

func firstError(errs []Error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", errs[0].Message)
}

// parseTypeDirective parses `@type T`, a single type expression; a
// comma-separated list is rejected as unexpected trailing input.
func (ex Extractor) parseTypeDirective(tail string) (*Record, error) {
	typeText, _ := splitTypeAndDesc(tail)
	res := ex.Lowerer.Lower(typeText, 0)
	if err := firstError(res.Errors); err != nil {
		return nil, err
	}
	return &Record{Kind: KindType, Type: res.Type}, nil
}

// parseParamDirective parses `@param name[?] T [desc]`.
func (ex Extractor) parseParamDirective(tail string) (*Record, error) {
	nameTok, rest := splitWord(tail)
	if nameTok == "" {
		return nil, fmt.Errorf("@param missing name")
	}
	optional := strings.HasSuffix(nameTok, "?")
	name := strings.TrimSuffix(nameTok, "?")
	typeText, desc := splitTypeAndDesc(rest)
	res := ex.Lowerer.Lower(typeText, 0)
	if err := firstError(res.Errors); err != nil {
		return nil, err
	}
	return &Record{Kind: KindParam, Name: name, Optional: optional, Type: res.Type, Desc: desc}, nil
}

// parseReturnDirective parses `@return T [name] [desc]`.
func (ex Extractor) parseReturnDirective(tail string) (*Record, error) {
	typeText, rest := splitTypeAndDesc(tail)
	res := ex.Lowerer.Lower(typeText, 0)
	if err := firstError(res.Errors); err != nil {
		return nil, err
	}
	name, desc := splitWord(rest)
	return &Record{Kind: KindReturn, Type: res.Type, Name: name, Desc: desc}, nil
}

// parseClassDirective parses `@class [(exact)] Name [: Parent]`.
func (ex Extractor) parseClassDirective(tail string) (*Record, error) {
	tail = strings.TrimSpace(tail)
	exact := false
	if strings.HasPrefix(tail, "(exact)") {
		exact = true
		tail = strings.TrimSpace(tail[len("(exact)"):])
	}
	namePart, parentPart, hasParent := strings.Cut(tail, ":")
	name := strings.TrimSpace(namePart)
	if name == "" {
		return nil, fmt.Errorf("@class missing name")
	}
	parent := ""
	if hasParent {
		parent = strings.TrimSpace(parentPart)
	}
	return &Record{Kind: KindClass, Name: name, Exact: exact, Parent: parent}, nil
}

// parseFieldDirective parses `@field [scope] name[?] T [desc]`.
func (ex Extractor) parseFieldDirective(tail string) (*Record, error) {
	vis := VisPublic
	first, rest := splitWord(tail)
	switch first {
	case "private":
		vis = VisPrivate
		tail = rest
	case "protected":
		vis = VisProtected
		tail = rest
	case "package":
		vis = VisPackage
		tail = rest
	}
	nameTok, rest2 := splitWord(tail)
	if nameTok == "" {
		return nil, fmt.Errorf("@field missing name")
	}
	optional := strings.HasSuffix(nameTok, "?")
	name := strings.TrimSuffix(nameTok, "?")
	typeText, desc := splitTypeAndDesc(rest2)
	res := ex.Lowerer.Lower(typeText, 0)
	if err := firstError(res.Errors); err != nil {
		return nil, err
	}
	return &Record{Kind: KindField, Name: name, Optional: optional, Type: res.Type, Desc: desc, Visibility: vis}, nil
}

// parseAliasDirective parses `@alias Name T`. A bare `@alias Name` with
// no inline type lowers to Unknown; `---| 'member'` continuation lines
// are not parsed, here or in the registry.
func (ex Extractor) parseAliasDirective(tail string) (*Record, error) {
	name, rest := splitWord(tail)
	if name == "" {
		return nil, fmt.Errorf("@alias missing name")
	}
	if strings.TrimSpace(rest) == "" {
		return &Record{Kind: KindAlias, Name: name, Type: types.Unknown}, nil
	}
	res := ex.Lowerer.Lower(rest, 0)
	if err := firstError(res.Errors); err != nil {
		return nil, err
	}
	return &Record{Kind: KindAlias, Name: name, Type: res.Type}, nil
}

// parseGenericDirective parses `@generic T[, U...]`.
func (ex Extractor) parseGenericDirective(tail string) (*Record, error) {
	var vars []string
	for _, part := range strings.Split(tail, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, _, _ := strings.Cut(part, ":")
		vars = append(vars, strings.TrimSpace(name))
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("@generic requires at least one type variable")
	}
	return &Record{Kind: KindGeneric, GenericVars: vars}, nil
}

// parseOverloadDirective parses `@overload fun(...): ...`.
func (ex Extractor) parseOverloadDirective(tail string) (*Record, error) {
	res := ex.Lowerer.Lower(tail, 0)
	if err := firstError(res.Errors); err != nil {
		return nil, err
	}
	fn, ok := res.Type.(types.Function)
	if !ok {
		return nil, fmt.Errorf("@overload requires a function signature")
	}
	return &Record{Kind: KindOverload, OverloadSig: fn}, nil
}

// parseCastDirective parses `@cast name (T|+T|-T|-?)`.
func (ex Extractor) parseCastDirective(tail string) (*Record, error) {
	name, rest := splitWord(tail)
	if name == "" {
		return nil, fmt.Errorf("@cast missing name")
	}
	rest = strings.TrimSpace(rest)
	op := ""
	switch {
	case rest == "-?":
		op = "-?"
		rest = ""
	case strings.HasPrefix(rest, "+"):
		op = "+"
		rest = rest[1:]
	case strings.HasPrefix(rest, "-"):
		op = "-"
		rest = rest[1:]
	}
	var t types.Type = types.Unknown
	if rest != "" {
		res := ex.Lowerer.Lower(rest, 0)
		if err := firstError(res.Errors); err != nil {
			return nil, err
		}
		t = res.Type
	}
	return &Record{Kind: KindCast, Name: name, CastOp: op, Type: t}, nil
}

// parseOperatorDirective parses `@operator op: fun(self, rhs: T): U`.
func (ex Extractor) parseOperatorDirective(tail string) (*Record, error) {
	opName, rest, ok := strings.Cut(tail, ":")
	if !ok {
		return nil, fmt.Errorf("@operator missing ':'")
	}
	res := ex.Lowerer.Lower(strings.TrimSpace(rest), 0)
	if err := firstError(res.Errors); err != nil {
		return nil, err
	}
	fn, ok := res.Type.(types.Function)
	if !ok {
		return nil, fmt.Errorf("@operator requires a function signature")
	}
	return &Record{Kind: KindOperator, Name: strings.TrimSpace(opName), OperatorFunc: fn}, nil
}

// parseDiagnosticDirective parses `@diagnostic (disable|enable|push|pop)[=id[,id...]]`.
func (ex Extractor) parseDiagnosticDirective(tail string) (*Record, error) {
	tail = strings.TrimSpace(tail)
	action, codesPart, _ := strings.Cut(tail, "=")
	action = strings.TrimSpace(action)
	var codes []string
	if codesPart != "" {
		for _, c := range strings.Split(codesPart, ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				codes = append(codes, c)
			}
		}
	}
	rec := &Record{Kind: KindDiagnostic, DiagCodes: codes}
	switch action {
	case "disable":
		rec.DiagAction = DiagDisable
	case "enable":
		rec.DiagAction = DiagEnable
	case "push":
		rec.DiagAction = DiagPush
	case "pop":
		rec.DiagAction = DiagPop
	default:
		return nil, fmt.Errorf("unrecognised @diagnostic action %q", action)
	}
	return rec, nil
}

// splitTypeAndDesc splits "T rest-of-line description" into the type
// expression and the trailing free-text description. The type
// expression ends at the first top-level space that is not inside
// brackets/braces/parens/angle-brackets/backticks.
func splitTypeAndDesc(s string) (typeText, desc string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{', '(', '<':
			depth++
		case ']', '}', ')', '>':
			if depth > 0 {
				depth--
			}
		case ' ':
			if depth == 0 {
				return s[:i], strings.TrimLeft(s[i+1:], " ")
			}
		}
	}
	return s, ""
}
