package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/sanitycheck/engine/internal/apperror"
	"github.com/sanitycheck/engine/internal/sanitycheck"
)

const (
	checkScriptSuffix   = ".check.js"
	contextScriptSuffix = ".context.js"
)

func isScriptFile(path string) bool {
	return strings.HasSuffix(path, checkScriptSuffix) || strings.HasSuffix(path, contextScriptSuffix)
}

// loadScriptFile evaluates a Node-flavored CommonJS-ish script file
// and reads its module.exports object for registration metadata. Each
// file gets its own goja.Runtime, kept alive for the lifetime of the
// Check/Context it produces so closures over local script state (a
// counter, a cached handle) keep working across Setup/Check/Teardown
// calls, matching the way a Python module-level check keeps its own
// instance state.
func loadScriptFile(path string) ([]Registration, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Repof("reading script %s: %v", path, err)
	}

	vm := goja.New()
	module := vm.NewObject()
	exports := vm.NewObject()
	_ = module.Set("exports", exports)
	_ = vm.Set("module", module)
	_ = vm.Set("exports", exports)

	if _, err := vm.RunScript(filepath.Base(path), string(src)); err != nil {
		return nil, apperror.Repof("evaluating script %s: %v", path, err)
	}

	exportsVal := module.Get("exports")
	if exportsVal == nil || goja.IsUndefined(exportsVal) || goja.IsNull(exportsVal) {
		return nil, apperror.Repof("script %s did not set module.exports", path)
	}
	obj := exportsVal.ToObject(vm)

	reg, err := registrationFromScriptObject(vm, obj, strings.HasSuffix(path, contextScriptSuffix))
	if err != nil {
		return nil, apperror.Repof("script %s: %v", path, err)
	}
	return []Registration{reg}, nil
}

func registrationFromScriptObject(vm *goja.Runtime, obj *goja.Object, isContext bool) (Registration, error) {
	reg := Registration{Name: stringField(obj, "name"), Description: stringField(obj, "description")}
	reg.Priority = intField(obj, "priority")
	reg.DependencyNames = stringSliceField(obj, "dependsOn")
	reg.SharedContext = stringField(obj, "sharedContext")

	checkFn := callableField(vm, obj, "check")
	setupFn := callableField(vm, obj, "setup")
	fixFn := callableField(vm, obj, "fix")
	teardownFn := callableField(vm, obj, "teardown")

	if isContext {
		reg.Kind = KindContext
		if setupFn == nil {
			return Registration{}, fmt.Errorf("context %q has no setup function", reg.Name)
		}
		base := &scriptContext{vm: vm, name: reg.Name, setupFn: setupFn, teardownFn: teardownFn}
		reg.ContextImpl = func() (sanitycheck.ContextImpl, error) { return buildScriptContext(base), nil }
		return reg, nil
	}

	reg.Kind = KindCheck
	if checkFn == nil {
		return Registration{}, fmt.Errorf("check %q has no check function", reg.Name)
	}
	base := &scriptCheck{vm: vm, name: reg.Name, checkFn: checkFn, setupFn: setupFn, fixFn: fixFn, teardownFn: teardownFn}
	reg.CheckImpl = func() (sanitycheck.CheckImpl, error) { return buildScriptCheck(base), nil }
	return reg, nil
}

// --- field readers ---

func stringField(obj *goja.Object, key string) string {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

func intField(obj *goja.Object, key string) int {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	return int(v.ToInteger())
}

func stringSliceField(obj *goja.Object, key string) []string {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	arrObj := v.ToObject(nil)
	if arrObj == nil {
		return nil
	}
	length := int(arrObj.Get("length").ToInteger())
	out := make([]string, 0, length)
	for i := 0; i < length; i++ {
		out = append(out, arrObj.Get(fmt.Sprintf("%d", i)).String())
	}
	return out
}

func callableField(vm *goja.Runtime, obj *goja.Object, key string) goja.Callable {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil
	}
	return fn
}

// --- check adapter ---

type scriptCheck struct {
	vm                                       *goja.Runtime
	name                                     string
	checkFn, setupFn, fixFn, teardownFn      goja.Callable
}

func (s *scriptCheck) call(fn goja.Callable) error {
	_, err := fn(goja.Undefined())
	if err != nil {
		return fmt.Errorf("script check %q: %w", s.name, err)
	}
	return nil
}

func (s *scriptCheck) Check(ctx context.Context) error { return s.call(s.checkFn) }

// hookSetup, hookFix and hookTeardown are small standalone mixins (not
// wrapping scriptCheck) so that embedding any combination of them
// alongside *scriptCheck promotes each method from a distinct depth-1
// path — embedding *scriptCheck itself inside each mixin would make
// Check() ambiguous whenever more than one mixin is combined.
type hookSetup struct{ fn goja.Callable }

func (h hookSetup) Setup(ctx context.Context) error { return callScript(h.fn) }

type hookFix struct{ fn goja.Callable }

func (h hookFix) Fix(ctx context.Context) error { return callScript(h.fn) }

type hookTeardown struct{ fn goja.Callable }

func (h hookTeardown) Teardown(ctx context.Context) error { return callScript(h.fn) }

func callScript(fn goja.Callable) error {
	_, err := fn(goja.Undefined())
	return err
}

// buildScriptCheck selects, from the eight combinations of optional
// hooks a script may define, the concrete adapter type that exposes
// exactly those hook interfaces — Go has no way to add methods to a
// value conditionally, so the combinations are enumerated instead.
func buildScriptCheck(b *scriptCheck) sanitycheck.CheckImpl {
	hasSetup, hasFix, hasTeardown := b.setupFn != nil, b.fixFn != nil, b.teardownFn != nil
	switch {
	case hasSetup && hasFix && hasTeardown:
		return struct {
			*scriptCheck
			hookSetup
			hookFix
			hookTeardown
		}{b, hookSetup{b.setupFn}, hookFix{b.fixFn}, hookTeardown{b.teardownFn}}
	case hasSetup && hasFix:
		return struct {
			*scriptCheck
			hookSetup
			hookFix
		}{b, hookSetup{b.setupFn}, hookFix{b.fixFn}}
	case hasSetup && hasTeardown:
		return struct {
			*scriptCheck
			hookSetup
			hookTeardown
		}{b, hookSetup{b.setupFn}, hookTeardown{b.teardownFn}}
	case hasFix && hasTeardown:
		return struct {
			*scriptCheck
			hookFix
			hookTeardown
		}{b, hookFix{b.fixFn}, hookTeardown{b.teardownFn}}
	case hasSetup:
		return struct {
			*scriptCheck
			hookSetup
		}{b, hookSetup{b.setupFn}}
	case hasFix:
		return struct {
			*scriptCheck
			hookFix
		}{b, hookFix{b.fixFn}}
	case hasTeardown:
		return struct {
			*scriptCheck
			hookTeardown
		}{b, hookTeardown{b.teardownFn}}
	default:
		return b
	}
}

// --- context adapter ---

type scriptContext struct {
	vm                   *goja.Runtime
	name                 string
	setupFn, teardownFn  goja.Callable
}

func (s *scriptContext) call(fn goja.Callable) error {
	_, err := fn(goja.Undefined())
	if err != nil {
		return fmt.Errorf("script context %q: %w", s.name, err)
	}
	return nil
}

func (s *scriptContext) Setup(ctx context.Context) error { return s.call(s.setupFn) }

type scriptContextTeardown struct{ *scriptContext }

func (s scriptContextTeardown) Teardown(ctx context.Context) error { return s.call(s.teardownFn) }

func buildScriptContext(b *scriptContext) sanitycheck.ContextImpl {
	if b.teardownFn != nil {
		return scriptContextTeardown{b}
	}
	return b
}
