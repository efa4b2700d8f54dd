package capi

import "github.com/gogpu/gifbolt"

// VersionMajor returns the library's major version.
func VersionMajor() int32 { return int32(gifbolt.VersionMajor) }

// VersionMinor returns the library's minor version.
func VersionMinor() int32 { return int32(gifbolt.VersionMinor) }

// VersionPatch returns the library's patch version.
func VersionPatch() int32 { return int32(gifbolt.VersionPatch) }

// VersionString returns the version as "major.minor.patch".
func VersionString() string { return gifbolt.VersionString() }

// VersionInt packs the version as major*10000 + minor*100 + patch for
// cheap numeric comparison.
func VersionInt() int32 {
	return VersionMajor()*10000 + VersionMinor()*100 + VersionPatch()
}

// VersionCheck returns 1 when the library version is at least
// major.minor.patch.
func VersionCheck(major, minor, patch int32) int32 {
	if VersionInt() >= major*10000+minor*100+patch {
		return 1
	}
	return 0
}
