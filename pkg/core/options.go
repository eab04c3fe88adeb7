// pkg/core/options.go
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Option names
const (
	OptionShared    = "shared"
	OptionFPIC      = "fPIC"
	OptionWithPNG   = "with_png"
	OptionWithZlib  = "with_zlib"
	OptionWithBzip2 = "with_bzip2"
)

// Options is the option set of a recipe. FPIC is nil on platforms where
// position independent code is meaningless (Windows), so the option is
// absent rather than false.
type Options struct {
	Shared    bool
	FPIC      *bool
	WithPNG   bool
	WithZlib  bool
	WithBzip2 bool
}

// DefaultOptions returns the default option set for the given platform
func DefaultOptions(settings Settings) Options {
	opts := Options{
		Shared:    false,
		WithPNG:   true,
		WithZlib:  true,
		WithBzip2: true,
	}
	if settings.OS != OSWindows {
		fpic := true
		opts.FPIC = &fpic
	}
	return opts
}

// Names returns the names of the options defined in this set, in declaration order
func (o Options) Names() []string {
	names := []string{OptionShared}
	if o.FPIC != nil {
		names = append(names, OptionFPIC)
	}
	return append(names, OptionWithPNG, OptionWithZlib, OptionWithBzip2)
}

// Bool returns the value of a defined option
func (o Options) Bool(name string) (bool, error) {
	switch name {
	case OptionShared:
		return o.Shared, nil
	case OptionFPIC:
		if o.FPIC == nil {
			return false, fmt.Errorf("%w: %s", ErrOptionNotDefined, name)
		}
		return *o.FPIC, nil
	case OptionWithPNG:
		return o.WithPNG, nil
	case OptionWithZlib:
		return o.WithZlib, nil
	case OptionWithBzip2:
		return o.WithBzip2, nil
	}
	return false, fmt.Errorf("%w: %s", ErrOptionNotDefined, name)
}

// Set assigns an option from its string form ("True", "false", "1", ...)
func (o *Options) Set(name, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("option %s: invalid value %q", name, value)
	}

	switch name {
	case OptionShared:
		o.Shared = v
	case OptionFPIC:
		if o.FPIC == nil {
			return fmt.Errorf("%w: %s", ErrOptionNotDefined, name)
		}
		*o.FPIC = v
	case OptionWithPNG:
		o.WithPNG = v
	case OptionWithZlib:
		o.WithZlib = v
	case OptionWithBzip2:
		o.WithBzip2 = v
	default:
		return fmt.Errorf("%w: %s", ErrOptionNotDefined, name)
	}
	return nil
}

// Apply sets every option of the map, failing on the first undefined one
func (o *Options) Apply(values map[string]string) error {
	for _, name := range sortedKeys(values) {
		if err := o.Set(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so FPIC is not shared between sets
func (o Options) Clone() Options {
	if o.FPIC != nil {
		v := *o.FPIC
		o.FPIC = &v
	}
	return o
}

// Map returns the defined options rendered as "True"/"False"
func (o Options) Map() map[string]string {
	out := make(map[string]string, 5)
	for _, name := range o.Names() {
		v, _ := o.Bool(name)
		out[name] = formatBool(v)
	}
	return out
}

// Canonical returns a stable, sorted key=value rendering used for package ids
func (o Options) Canonical() string {
	m := o.Map()
	var b strings.Builder
	for i, name := range sortedKeys(m) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(m[name])
	}
	return b.String()
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
