// Package profiler tracks instrumentation handles for the callbacks of one host thread.
//
// Three containers are provided: a Registry for identifier-correlated kernels, a
// RegionStack for nested regions and a SectionTable for repeatable named sections.
// None of them is safe for concurrent use; Context bundles one of each behind a mutex.
package profiler

import (
	"strconv"
	"strings"
)

// Handle is one measurement instance bound to a target name.
type Handle interface {
	Start()
	Stop()
}

// Factory constructs handles bound to a target name.
type Factory interface {
	NewHandle(name string) Handle
}

// FactoryFunc adapts a plain function to the Factory interface.
type FactoryFunc func(name string) Handle

// NewHandle calls f(name).
func (f FactoryFunc) NewHandle(name string) Handle {
	return f(name)
}

const (
	namespace = "kokkos"
	separator = "/"
)

// KernelName returns the target name of a kernel launched on device devID.
func KernelName(devID uint32, name string) string {
	return joinName("dev"+strconv.FormatUint(uint64(devID), 10), name)
}

// SectionName returns the target name of the section secID.
func SectionName(secID uint32, name string) string {
	return joinName("section"+strconv.FormatUint(uint64(secID), 10), name)
}

func joinName(scope, name string) string {
	var b strings.Builder
	b.Grow(len(namespace) + len(scope) + len(name) + 2)
	b.WriteString(namespace)
	b.WriteString(separator)
	b.WriteString(scope)
	b.WriteString(separator)
	b.WriteString(name)
	return b.String()
}
