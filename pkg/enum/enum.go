package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	enumManager = map[string]any{}
	enumLock    sync.RWMutex
)

type enum[T comparable] struct {
	toEnum map[string]T
}

// New registers value so it can be parsed back from its string form with ToEnum.
func New[T comparable](value T) T {
	enumLock.Lock()
	defer enumLock.Unlock()

	name := typeKey[T]()
	if _, ok := enumManager[name]; !ok {
		enumManager[name] = enum[T]{toEnum: make(map[string]T)}
	}

	enumManager[name].(enum[T]).toEnum[fmt.Sprint(value)] = value
	return value
}

func ToEnum[T comparable](s string) (T, error) {
	enumLock.RLock()
	defer enumLock.RUnlock()

	var defaultT T
	e, ok := enumManager[typeKey[T]()]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.(enum[T]).toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

func typeKey[T any]() string {
	var t T
	return reflect.TypeOf(&t).Elem().String()
}
