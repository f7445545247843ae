package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Version)
}

func TestFull(t *testing.T) {
	info := Info{
		Version:   "v1.2.0",
		Commit:    "0123456789abcdef",
		BuildDate: "2026-01-02",
		GoVersion: "go1.25.5",
		Platform:  "linux/amd64",
		Modified:  true,
	}
	assert.Equal(t, "jessica v1.2.0 (0123456789ab-dirty) built 2026-01-02 go1.25.5 linux/amd64", info.Full())
	assert.Equal(t, "v1.2.0", info.String())
}
