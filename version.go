package custody

import "fmt"

// Release of this module. Suffix is set for builds that are not tagged
// releases, for example "-dev".
const (
	Maj    = 0
	Min    = 1
	Fix    = 0
	Suffix = "-dev"
)

// GitCommit is set at build time, with
//   -ldflags "-X github.com/iov-one/custody.GitCommit=$(git rev-parse --short HEAD)"
var GitCommit = ""

// Version returns the release and, when known, the commit the binary was
// built from.
func Version() string {
	v := fmt.Sprintf("v%d.%d.%d%s", Maj, Min, Fix, Suffix)
	if GitCommit != "" {
		v += " " + GitCommit
	}
	return v
}
