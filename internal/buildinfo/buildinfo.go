// Package buildinfo carries build metadata injected at link time:
//
//	go build -ldflags "-X sessioncal/internal/buildinfo.Version=1.2.0 \
//	  -X sessioncal/internal/buildinfo.Revision=$(git rev-parse HEAD)"
package buildinfo

import (
	"fmt"
	"runtime"
)

// Populated at build time.
var (
	Version   = "dev"
	Revision  string
	Branch    string
	BuildUser string
	BuildDate string
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	Branch    string `json:"branch,omitempty"`
	BuildUser string `json:"build_user,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the metadata of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Revision:  Revision,
		Branch:    Branch,
		BuildUser: BuildUser,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String renders version, branch and revision for log lines.
func (i Info) String() string {
	return fmt.Sprintf("(version=%s, branch=%s, revision=%s)", i.Version, i.Branch, i.Revision)
}
