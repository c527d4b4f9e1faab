package sign

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dop251/goja"
)

// ErrSignFailed marks a failure inside the vendor signing routine.
var ErrSignFailed = errors.New("sign script call failed")

// entryPoint is the function the vendor script must define.
const entryPoint = "get_sign"

// ScriptSigner runs the vendor signing script in an embedded ECMAScript
// engine. The script is evaluated once at construction; each Sign call
// invokes its get_sign entry point with the hex digest.
type ScriptSigner struct {
	mu   sync.Mutex // goja runtimes are not goroutine-safe
	vm   *goja.Runtime
	call goja.Callable
}

// NewScriptSigner loads and evaluates the signing script at path.
func NewScriptSigner(path string) (*ScriptSigner, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sign script: %w", err)
	}

	vm := goja.New()
	if _, err := vm.RunString(string(src)); err != nil {
		return nil, fmt.Errorf("evaluate sign script: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return nil, fmt.Errorf("sign script does not define %s", entryPoint)
	}

	return &ScriptSigner{vm: vm, call: fn}, nil
}

// Sign invokes the script's entry point. Script exceptions are returned as
// errors wrapping ErrSignFailed; they never propagate as panics.
func (s *ScriptSigner) Sign(hexDigest string) (sig string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			sig = ""
			err = fmt.Errorf("%w: %v", ErrSignFailed, r)
		}
	}()

	v, err := s.call(goja.Undefined(), s.vm.ToValue(hexDigest))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignFailed, err)
	}
	return v.String(), nil
}
