package util

// Version and Commit are stamped at build time:
//
//	go build -ldflags "-X github.com/mxcd/apod-web/internal/util.Version=v1.0.0 -X github.com/mxcd/apod-web/internal/util.Commit=abc1234"
var (
	Version = "development"
	Commit  = "unknown"
)

// VersionString is shown in the page footer.
func VersionString() string {
	if Commit == "unknown" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
