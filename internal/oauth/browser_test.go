package oauth

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenBrowser(t *testing.T) {
	var launched *exec.Cmd
	originalLauncher := browserLauncher
	browserLauncher = func(cmd *exec.Cmd) error {
		launched = cmd
		return nil
	}
	defer func() { browserLauncher = originalLauncher }()

	url := "https://www.fitbit.com/oauth2/authorize?client_id=x&state=y"
	err := OpenBrowser(url)

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "darwin", "windows":
		assert.NoError(t, err)
		if assert.NotNil(t, launched) {
			assert.Equal(t, url, launched.Args[len(launched.Args)-1])
		}
	default:
		assert.ErrorContains(t, err, "unsupported platform")
	}
}

func TestOpenBrowser_LaunchFailure(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "darwin", "windows":
	default:
		t.Skipf("unsupported platform %s", runtime.GOOS)
	}

	originalLauncher := browserLauncher
	browserLauncher = func(*exec.Cmd) error { return errors.New("xdg-open not found") }
	defer func() { browserLauncher = originalLauncher }()

	err := OpenBrowser("https://example.com")
	assert.ErrorContains(t, err, "failed to open browser")
}
