package diagnostics

// Suppression tracks `---@diagnostic disable=<code>` / `enable=<code>`
// / `push` / `pop` state as the checker walks a file in source order
// (spec §7 "Suppression"). Suppression never alters inference, only
// whether a raised diagnostic is kept in the final report.
type Suppression struct {
	stack []map[Code]bool // each frame: code -> disabled
}

// NewSuppression returns an empty suppression stack with one base frame.
func NewSuppression() *Suppression {
	return &Suppression{stack: []map[Code]bool{{}}}
}

func (s *Suppression) top() map[Code]bool {
	return s.stack[len(s.stack)-1]
}

// Disable marks code as suppressed in the current frame.
func (s *Suppression) Disable(code Code) {
	s.top()[code] = true
}

// Enable clears any suppression of code in the current frame.
func (s *Suppression) Enable(code Code) {
	s.top()[code] = false
}

// Push duplicates the current frame onto the stack (a nested scope
// that can be popped back to the enclosing state).
func (s *Suppression) Push() {
	frame := make(map[Code]bool, len(s.top()))
	for k, v := range s.top() {
		frame[k] = v
	}
	s.stack = append(s.stack, frame)
}

// Pop discards the innermost frame, reverting to the enclosing state.
// Popping the base frame is a no-op.
func (s *Suppression) Pop() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Suppressed reports whether code is currently disabled.
func (s *Suppression) Suppressed(code Code) bool {
	return s.top()[code]
}

// Filter removes every diagnostic whose code is suppressed at its own
// emission point. Since emission and suppression state changes happen
// interleaved during a single walk, callers should instead call
// Suppressed at emission time; Filter exists for diagnostics produced
// out of walk order (e.g. registry-pass diagnostics checked against a
// file-wide disable list) — preserving all non-suppressed codes (spec
// §8 "Adding a suppressed diagnostic code removes exactly that
// diagnostic code's emissions, preserving all others").
func Filter(diags []*DiagnosticError, disabled map[Code]bool) []*DiagnosticError {
	out := make([]*DiagnosticError, 0, len(diags))
	for _, d := range diags {
		if disabled[d.Code] {
			continue
		}
		out = append(out, d)
	}
	return out
}
