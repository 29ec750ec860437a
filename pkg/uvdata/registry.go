package uvdata

import (
	"errors"
	"sync"
)

// Registry errors.
var (
	// ErrNoMetafitsReader is returned when no metadata decoder is registered.
	ErrNoMetafitsReader = errors.New("uvdata: no metafits reader registered")

	// ErrNoRawReader is returned when no raw-data decoder is registered.
	ErrNoRawReader = errors.New("uvdata: no raw-data reader registered")
)

var (
	registryMu     sync.RWMutex
	metafitsReader MetafitsReader
	rawReader      RawReader
)

// RegisterMetafitsReader installs the default metadata decoder. Decoder
// packages call this from init, database/sql driver style. A later call
// replaces an earlier one.
func RegisterMetafitsReader(r MetafitsReader) {
	registryMu.Lock()
	defer registryMu.Unlock()

	metafitsReader = r
}

// RegisterRawReader installs the default raw-data decoder.
func RegisterRawReader(r RawReader) {
	registryMu.Lock()
	defer registryMu.Unlock()

	rawReader = r
}

// DefaultMetafitsReader returns the registered metadata decoder.
func DefaultMetafitsReader() (MetafitsReader, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if metafitsReader == nil {
		return nil, ErrNoMetafitsReader
	}

	return metafitsReader, nil
}

// DefaultRawReader returns the registered raw-data decoder.
func DefaultRawReader() (RawReader, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if rawReader == nil {
		return nil, ErrNoRawReader
	}

	return rawReader, nil
}
