// Command kptimemory is a Kokkos profiling tool library. Build it with
// -buildmode=c-shared and load it through KOKKOS_PROFILE_LIBRARY (or
// KOKKOS_TOOLS_LIBS).
package main

/*
#include <stddef.h>
#include <stdint.h>

struct KokkosPDeviceInfo {
	size_t deviceID;
};
*/
import "C"

import (
	"unsafe"

	"github.com/danpilch/kptimemory/pkg/kokkosp"
)

var connector = kokkosp.New(kokkosp.Options{})

//export kokkosp_init_library
func kokkosp_init_library(loadSeq C.int, interfaceVer C.uint64_t, devInfoCount C.uint32_t,
	deviceInfo *C.struct_KokkosPDeviceInfo) {
	var devices []kokkosp.DeviceInfo
	if deviceInfo != nil && devInfoCount > 0 {
		infos := unsafe.Slice(deviceInfo, int(devInfoCount))
		devices = make([]kokkosp.DeviceInfo, len(infos))
		for i, info := range infos {
			devices[i] = kokkosp.DeviceInfo{DeviceID: uint64(info.deviceID)}
		}
	}
	connector.InitLibrary(int(loadSeq), uint64(interfaceVer), uint32(devInfoCount), devices)
}

//export kokkosp_finalize_library
func kokkosp_finalize_library() {
	connector.FinalizeLibrary()
}

//export kokkosp_begin_parallel_for
func kokkosp_begin_parallel_for(name *C.char, devID C.uint32_t, kernID *C.uint64_t) {
	connector.BeginParallelFor(C.GoString(name), uint32(devID), (*uint64)(unsafe.Pointer(kernID)))
}

//export kokkosp_end_parallel_for
func kokkosp_end_parallel_for(kernID C.uint64_t) {
	connector.EndParallelFor(uint64(kernID))
}

//export kokkosp_begin_parallel_reduce
func kokkosp_begin_parallel_reduce(name *C.char, devID C.uint32_t, kernID *C.uint64_t) {
	connector.BeginParallelReduce(C.GoString(name), uint32(devID), (*uint64)(unsafe.Pointer(kernID)))
}

//export kokkosp_end_parallel_reduce
func kokkosp_end_parallel_reduce(kernID C.uint64_t) {
	connector.EndParallelReduce(uint64(kernID))
}

//export kokkosp_begin_parallel_scan
func kokkosp_begin_parallel_scan(name *C.char, devID C.uint32_t, kernID *C.uint64_t) {
	connector.BeginParallelScan(C.GoString(name), uint32(devID), (*uint64)(unsafe.Pointer(kernID)))
}

//export kokkosp_end_parallel_scan
func kokkosp_end_parallel_scan(kernID C.uint64_t) {
	connector.EndParallelScan(uint64(kernID))
}

//export kokkosp_push_profile_region
func kokkosp_push_profile_region(name *C.char) {
	connector.PushProfileRegion(C.GoString(name))
}

//export kokkosp_pop_profile_region
func kokkosp_pop_profile_region() {
	connector.PopProfileRegion()
}

//export kokkosp_create_profile_section
func kokkosp_create_profile_section(name *C.char, secID *C.uint32_t) {
	connector.CreateProfileSection(C.GoString(name), (*uint32)(unsafe.Pointer(secID)))
}

//export kokkosp_destroy_profile_section
func kokkosp_destroy_profile_section(secID C.uint32_t) {
	connector.DestroyProfileSection(uint32(secID))
}

//export kokkosp_start_profile_section
func kokkosp_start_profile_section(secID C.uint32_t) {
	connector.StartProfileSection(uint32(secID))
}

//export kokkosp_stop_profile_section
func kokkosp_stop_profile_section(secID C.uint32_t) {
	connector.StopProfileSection(uint32(secID))
}

func main() {}
