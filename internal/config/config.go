// Package config holds the runtime configuration surface of spec §6
// and two small process-wide mode flags, following the teacher's
// internal/config (a handful of constants and `IsTestMode`/`IsLSPMode`
// switches, never written from inside the core itself).
package config

// IsTestMode marks a test process. No package in this module reads it;
// internal/pretty always names type variables sequentially.
var IsTestMode = false

// IsLSPMode marks a language-server process; cmd/luacheck sets it to
// false on startup. No package in this module reads it.
var IsLSPMode = false

// Syntax selects the Lua dialect in effect, which controls bitwise
// operator availability and whether the Integer primitive exists at
// all (spec §6, §9 "Open questions").
type Syntax string

const (
	Lua51  Syntax = "Lua5.1"
	Lua52  Syntax = "Lua5.2"
	Lua53  Syntax = "Lua5.3"
	Lua54  Syntax = "Lua5.4"
	LuaJIT Syntax = "LuaJIT"
)

// HasIntegers reports whether s distinguishes Integer from Number.
// Lua 5.1/5.2/LuaJIT have no separate integer subtype (spec §9 decides
// this by lowering `integer` straight to `number` under these dialects).
func (s Syntax) HasIntegers() bool {
	switch s {
	case Lua53, Lua54:
		return true
	default:
		return false
	}
}

// HasBitwiseOperators reports whether `&`, `|`, `~`, `<<`, `>>` exist.
func (s Syntax) HasBitwiseOperators() bool {
	switch s {
	case Lua53, Lua54, LuaJIT:
		return true
	default:
		return false
	}
}

// Options is the recognised runtime configuration of spec §6.
type Options struct {
	Syntax              Syntax `yaml:"syntax"`
	CastNumberToInteger bool   `yaml:"castNumberToInteger"`
	WeakUnionCheck       bool   `yaml:"weakUnionCheck"`
	WeakNilCheck         bool   `yaml:"weakNilCheck"`
	InferParamType       bool   `yaml:"inferParamType"`
	CheckTableShape      bool   `yaml:"checkTableShape"`
	InferTableSize       int    `yaml:"inferTableSize"`

	// CheckBudget bounds per-file unification wall-clock work (spec §5,
	// default 200ms); a zero value means "use DefaultCheckBudgetMillis".
	CheckBudget int64 `yaml:"checkBudgetMillis"`
}

// DefaultCheckBudgetMillis is the default per-file wall-clock budget
// named in spec §5.
const DefaultCheckBudgetMillis = 200

// Default returns the configuration the checker uses when no workspace
// option file is present.
func Default() Options {
	return Options{
		Syntax:          Lua54,
		InferParamType:  true,
		CheckTableShape: true,
		InferTableSize:  200,
		CheckBudget:     DefaultCheckBudgetMillis,
	}
}
