package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.BuildMethod)
	assert.Contains(t, info.Platform, "/")
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
}

func TestGetVersionString(t *testing.T) {
	assert.Equal(t, "HostInbox "+Version, GetVersionString())

	defer func(c string) { GitCommit = c }(GitCommit)
	GitCommit = "0123456789abcdef"
	assert.Equal(t, "HostInbox "+Version+" (01234567)", GetVersionString())
}

func TestGetDetailedVersionString(t *testing.T) {
	detailed := GetDetailedVersionString()

	for _, field := range []string{"HostInbox", "Git commit:", "Build method:", "Go version:", "Platform:"} {
		assert.Contains(t, detailed, field)
	}
}

func TestBuildMethodDetection(t *testing.T) {
	assert.Contains(t, []string{"make", "go-install", "unknown"}, getBuildMethod())
}

func TestIsRelease(t *testing.T) {
	assert.NotEqual(t, IsRelease(), IsDevelopment())

	defer func(v, c string) { Version, GitCommit = v, c }(Version, GitCommit)
	Version, GitCommit = "1.2.0", "abc"
	assert.True(t, IsRelease())
	Version = "1.3.0-dev"
	assert.False(t, IsRelease())
}
