// Package platform reports whether the host OS has a usable CPU
// frequency facility.
package platform

import (
	"fmt"
	"runtime"
)

// SupportedOS represents operating systems with a frequency source.
type SupportedOS string

const (
	Linux   SupportedOS = "linux"
	Windows SupportedOS = "windows"
)

// GetOS returns the current operating system
func GetOS() SupportedOS {
	return SupportedOS(runtime.GOOS)
}

// IsSupported returns true if the current OS has a frequency source.
func IsSupported() bool {
	os := GetOS()
	return os == Linux || os == Windows
}

// ValidateSupport returns an error if the current OS has no frequency source.
func ValidateSupport() error {
	if !IsSupported() {
		return fmt.Errorf("no cpu frequency source on %s. Supported: linux, windows", runtime.GOOS)
	}
	return nil
}
