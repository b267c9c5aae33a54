// Package version 构建信息，通过 -ldflags "-X" 注入
package version

import "fmt"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info 构建信息，/health 与 -version 共用
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Get 返回当前构建信息
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}

// String 例如 "release-tracker v1.2.0 (abc1234) built at 2024-01-01T00:00:00Z"
func (i Info) String() string {
	return fmt.Sprintf("release-tracker %s (%s) built at %s", i.Version, i.GitCommit, i.BuildTime)
}
