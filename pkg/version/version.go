package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/tankops/bath-planner/pkg/version.gitVersion=...".
var (
	gitVersion = "v0.0.0-unknown"
	gitCommit  = ""
	buildDate  = "1970-01-01T00:00:00Z"
)

type Info struct {
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit"`
	BuildDate  string `json:"buildDate"`
	GoVersion  string `json:"goVersion"`
	Platform   string `json:"platform"`
}

func (info Info) String() string {
	return info.GitVersion
}

func Get() Info {
	return Info{
		GitVersion: gitVersion,
		GitCommit:  gitCommit,
		BuildDate:  buildDate,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
