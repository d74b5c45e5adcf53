package diagnostics

import (
	"testing"

	"github.com/takeshiD/typua/internal/token"
)

func span(line int) token.Span {
	return token.Span{Start: token.Position{Line: line}, End: token.Position{Line: line, Column: 1}}
}

func TestKeyDedupesBySpanAndCode(t *testing.T) {
	a := New(AssignTypeMismatch, span(1), "f.lua", "first message")
	b := New(AssignTypeMismatch, span(1), "f.lua", "second message, different text")
	if a.Key() != b.Key() {
		t.Errorf("two diagnostics at the same line/col/code should share a dedup key: %s vs %s", a.Key(), b.Key())
	}
}

func TestKeyDistinguishesByCode(t *testing.T) {
	a := New(AssignTypeMismatch, span(1), "f.lua", "m")
	b := New(ParamTypeMismatch, span(1), "f.lua", "m")
	if a.Key() == b.Key() {
		t.Error("diagnostics with different codes at the same span must have distinct keys")
	}
}

func TestFromParseErrorUsesParseForwardedCode(t *testing.T) {
	d := FromParseError(span(1), "f.lua", "unexpected token")
	if d.Code != ParseForwarded {
		t.Errorf("Code = %s, want %s", d.Code, ParseForwarded)
	}
}

func TestSuppressionDisableEnable(t *testing.T) {
	s := NewSuppression()
	if s.Suppressed(AssignTypeMismatch) {
		t.Fatal("nothing should be suppressed initially")
	}
	s.Disable(AssignTypeMismatch)
	if !s.Suppressed(AssignTypeMismatch) {
		t.Error("AssignTypeMismatch should be suppressed after Disable")
	}
	s.Enable(AssignTypeMismatch)
	if s.Suppressed(AssignTypeMismatch) {
		t.Error("AssignTypeMismatch should no longer be suppressed after Enable")
	}
}

// TestSuppressionPushPopIsolatesScope checks that a code disabled inside
// a pushed frame stops being suppressed after Pop, while a code disabled
// before the Push stays suppressed.
func TestSuppressionPushPopIsolatesScope(t *testing.T) {
	s := NewSuppression()
	s.Disable(AssignTypeMismatch)
	s.Push()
	s.Disable(ParamTypeMismatch)
	if !s.Suppressed(AssignTypeMismatch) || !s.Suppressed(ParamTypeMismatch) {
		t.Fatal("both codes should be suppressed inside the pushed frame")
	}
	s.Pop()
	if !s.Suppressed(AssignTypeMismatch) {
		t.Error("AssignTypeMismatch suppression should survive the pop (declared before push)")
	}
	if s.Suppressed(ParamTypeMismatch) {
		t.Error("ParamTypeMismatch suppression should not survive the pop (declared inside the pushed frame)")
	}
}

func TestFilterPreservesNonSuppressedCodes(t *testing.T) {
	diags := []*DiagnosticError{
		New(AssignTypeMismatch, span(1), "f.lua", "a"),
		New(ParamTypeMismatch, span(2), "f.lua", "b"),
		New(UnknownName, span(3), "f.lua", "c"),
	}
	out := Filter(diags, map[Code]bool{ParamTypeMismatch: true})
	if len(out) != 2 {
		t.Fatalf("Filter should drop exactly the suppressed code, got %d diagnostics: %v", len(out), out)
	}
	for _, d := range out {
		if d.Code == ParamTypeMismatch {
			t.Error("ParamTypeMismatch should have been filtered out")
		}
	}
}
