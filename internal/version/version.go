package version

import (
	"runtime"
	"time"
)

// Overridden at build time with -ldflags "-X github.com/MrSnakeDoc/storefront/internal/version.Version=..."
var (
	Version   = "dev"                           // ex: v0.3.0
	Commit    = "none"                          // ex: 9f2c1ab
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-11-02T09:14:00Z
	GoVersion = runtime.Version()
)

// UserAgent is sent on every outbound provider call.
func UserAgent() string {
	return "storefront/" + Version + " (" + GoVersion + ")"
}
