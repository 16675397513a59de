package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bindings declares a library and the functions callable by name:
//
//	lib: libm.so.6
//	functions:
//	  - name: cos
//	    sig: f64(f64)
//	  - name: power
//	    symbol: pow
//	    sig: f64(f64,f64)
type Bindings struct {
	Lib       string    `yaml:"lib"`
	Functions []Binding `yaml:"functions"`
}

// Binding declares one callable function. Symbol defaults to Name.
type Binding struct {
	Name string `yaml:"name"`
	Sym  string `yaml:"symbol"`
	Sig  string `yaml:"sig"`
	Doc  string `yaml:"doc"`
}

// Symbol returns the native symbol to resolve.
func (b *Binding) Symbol() string {
	if b.Sym != "" {
		return b.Sym
	}
	return b.Name
}

// LoadBindings reads and validates a bindings file. Every declared
// signature is parsed once so malformed files fail at load time.
func LoadBindings(path string) (*Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Bindings
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if b.Lib == "" {
		return nil, fmt.Errorf("%s: missing 'lib'", path)
	}
	seen := make(map[string]bool, len(b.Functions))
	for i := range b.Functions {
		fn := &b.Functions[i]
		if fn.Name == "" {
			return nil, fmt.Errorf("%s: function %d: missing 'name'", path, i)
		}
		if seen[fn.Name] {
			return nil, fmt.Errorf("%s: duplicate function name: %s", path, fn.Name)
		}
		seen[fn.Name] = true
		sig, err := ParseSignature(fn.Sig)
		if err != nil {
			return nil, fmt.Errorf("%s: function %s: %w", path, fn.Name, err)
		}
		sig.Destroy()
	}
	return &b, nil
}

// Function looks up a declared function by name.
func (b *Bindings) Function(name string) (*Binding, bool) {
	for i := range b.Functions {
		if b.Functions[i].Name == name {
			return &b.Functions[i], true
		}
	}
	return nil, false
}
