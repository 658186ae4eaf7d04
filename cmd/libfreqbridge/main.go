// Command libfreqbridge is the C-callable build of the frequency
// collector. Build it with:
//
//	go build -buildmode=c-shared -o libfreqbridge.so ./cmd/libfreqbridge
//
// The exported functions are declared for host callers in
// include/freqbridge.h. Every string buffer handed to the caller is
// allocated on the C heap and must be released through freqbridge_free
// exactly once.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/CristiGvl/freqbridge/bridge"
)

// Status strings are allocated once at startup and reused so that
// freqbridge_status_string never allocates per call. Callers must treat
// them as static and never pass them to freqbridge_free.
var statusStrings = map[bridge.Status]*C.char{
	bridge.StatusOK:          C.CString(bridge.StatusText(bridge.StatusOK)),
	bridge.StatusUnavailable: C.CString(bridge.StatusText(bridge.StatusUnavailable)),
	bridge.StatusPermission:  C.CString(bridge.StatusText(bridge.StatusPermission)),
	bridge.StatusInternal:    C.CString(bridge.StatusText(bridge.StatusInternal)),
}

var unknownStatusString = C.CString("unknown status")

// freqbridge_collect_json samples per-core CPU frequency sampleCount
// times, intervalMS milliseconds apart, and returns the series as JSON.
//
// On status 0 (*outJSON) receives an owned JSON buffer and *outActualMS
// the mean observed inter-sample spacing; *outError stays NULL. On any
// other status (*outError) receives an owned error string and *outJSON
// stays NULL. The call blocks for roughly sampleCount*intervalMS.
//
//export freqbridge_collect_json
func freqbridge_collect_json(intervalMS, sampleCount C.int, outJSON **C.char, outActualMS *C.double, outError **C.char) (status C.int) {
	if outJSON != nil {
		*outJSON = nil
	}
	if outError != nil {
		*outError = nil
	}
	if outActualMS != nil {
		*outActualMS = 0
	}

	// Nothing may escape as a panic across the C boundary.
	defer func() {
		if r := recover(); r != nil {
			if outError != nil && *outError == nil {
				*outError = C.CString(fmt.Sprintf("collector panic: %v", r))
			}
			status = C.int(bridge.StatusInternal)
		}
	}()

	res := bridge.New().Collect(context.Background(), int(intervalMS), int(sampleCount))

	if res.Status == bridge.StatusOK {
		if outJSON != nil {
			*outJSON = C.CString(res.JSON)
		}
		if outActualMS != nil {
			*outActualMS = C.double(res.ActualIntervalMS)
		}
	} else if outError != nil {
		*outError = C.CString(res.ErrMessage)
	}

	return C.int(res.Status)
}

// freqbridge_free releases a buffer previously returned through
// freqbridge_collect_json. Passing NULL is a no-op. Passing the same
// pointer twice, or a pointer this library did not return, is undefined
// behavior.
//
//export freqbridge_free
func freqbridge_free(ptr *C.char) {
	if ptr == nil {
		return
	}
	C.free(unsafe.Pointer(ptr))
}

// freqbridge_status_string maps a status code to a static description.
// The returned pointer is not owned by the caller and must not be freed.
//
//export freqbridge_status_string
func freqbridge_status_string(status C.int) *C.char {
	if s, ok := statusStrings[bridge.Status(status)]; ok {
		return s
	}
	return unknownStatusString
}

func main() {}
