package hijri

import (
	"fmt"
	"sync"
)

var (
	defaultOnce sync.Once
	defaultConv *Converter
	defaultErr  error
)

// Default returns the process-wide converter over the bundled table. The
// first call builds it; later calls, concurrent or not, get the same
// converter or the same error.
func Default() (*Converter, error) {
	defaultOnce.Do(func() {
		t, err := DefaultTable()
		if err != nil {
			defaultErr = fmt.Errorf("load default table: %w", err)
			return
		}
		defaultConv, defaultErr = New(t)
	})
	return defaultConv, defaultErr
}

// MustDefault is like Default but panics if the bundled table is invalid.
func MustDefault() *Converter {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}
