package version

import "runtime/debug"

// fallback is the version advertised when the binary carries no usable module
// metadata (local builds, go run). Override with
//
//	-ldflags "-X github.com/vinodismyname/mcpdash/pkg/version.fallback=v1.2.3"
var fallback = "0.0.0-dev"

// Version reports the server version used in the MCP initialize handshake.
// Tagged module builds win; everything else falls back.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return fallback
}

// Set overrides the fallback for callers that inject the version at startup.
func Set(v string) {
	if v != "" {
		fallback = v
	}
}
