package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/hitcore/packages/builtin"
)

var (
	variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	envRefPattern   = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)
)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver handles variable resolution with thread-safe access to variables and captures.
// It supports environment variables, built-in functions, captures taken from
// earlier responses and user-defined variables.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

// Functions exposes the registry behind {{name(args)}} calls so callers can
// add their own.
func (r *Resolver) Functions() *builtin.Registry {
	return r.funcs
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

// SetStringVariables is SetVariables for values loaded from .env files and config.
func (r *Resolver) SetStringVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetCapture stores a value under both "source.name" and the bare name.
func (r *Resolver) SetCapture(source, captureName string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures[source+"."+captureName] = value
	r.captures[captureName] = value
}

func (r *Resolver) GetCapture(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.captures[name]
	return v, ok
}

// Resolve replaces {{name}}, {{$ENV}}, {{fn(args)}}, ${NAME} and
// ${NAME:-default} references. Anything it cannot resolve is left in place.
func (r *Resolver) Resolve(input string) string {
	out := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if builtin.IsCall(expr) {
			val, err := r.funcs.Call(expr)
			if err != nil {
				r.warn("unresolved function call: %s: %v", expr, err)
				return match
			}
			return val
		}

		if val, ok := r.lookupExpr(expr); ok {
			return val
		}
		if strings.HasPrefix(expr, "$") {
			r.warn("unresolved environment variable: %s", expr)
		} else {
			r.warn("unresolved variable: %s", expr)
		}
		return match
	})

	return expandRefs(out, func(name string) (string, bool) {
		if val, ok := r.lookupName(name); ok {
			return val, true
		}
		if val, ok := os.LookupEnv(name); ok {
			return val, true
		}
		return "", false
	})
}

func (r *Resolver) lookupExpr(expr string) (string, bool) {
	if strings.HasPrefix(expr, "$") {
		if val := os.Getenv(expr[1:]); val != "" {
			return val, true
		}
		return "", false
	}
	return r.lookupName(expr)
}

func (r *Resolver) lookupName(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if val, ok := r.captures[name]; ok {
		return fmt.Sprintf("%v", val), true
	}
	if val, ok := r.variables[name]; ok {
		return fmt.Sprintf("%v", val), true
	}
	return "", false
}

// expandRefs substitutes ${NAME} and ${NAME:-default}. References with no
// value and no default are kept verbatim.
func expandRefs(s string, lookup func(string) (string, bool)) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envRefPattern.FindStringSubmatch(match)
		if val, ok := lookup(groups[1]); ok && val != "" {
			return val
		}
		if strings.Contains(match, ":-") {
			return groups[2]
		}
		return match
	})
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// HasUnresolvedVariables reports whether any {{...}} reference in input
// has no value.
func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.GetUnresolvedVariables(input)) > 0
}

// GetUnresolvedVariables lists the {{...}} references in input that have no
// value, in order of appearance. It returns nil when everything resolves.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	var missing []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if builtin.IsCall(expr) {
			if _, err := r.funcs.Call(expr); err != nil {
				missing = append(missing, expr)
			}
			continue
		}
		if _, ok := r.lookupExpr(expr); !ok {
			missing = append(missing, expr)
		}
	}
	return missing
}

func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.lookupName(name)
	return ok
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[name]; ok {
		return v, true
	}
	if v, ok := r.variables[name]; ok {
		return v, true
	}
	return nil, false
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.captures {
		clone.captures[k] = v
	}
	clone.funcs = r.funcs
	clone.warnFunc = r.warnFunc
	return clone
}
