package browser

import (
	"runtime"
	"testing"
)

func TestOpenSupported(t *testing.T) {
	switch runtime.GOOS {
	case "darwin", "linux", "windows":
		if _, _, err := command(runtime.GOOS, "https://example.com"); err != nil {
			t.Errorf("command(%s) failed: %v", runtime.GOOS, err)
		}
	default:
		t.Skipf("Unsupported platform: %s", runtime.GOOS)
	}
}

func TestCommand(t *testing.T) {
	const url = "https://www.youtube.com/watch?v=abc"
	tests := []struct {
		goos string
		name string
		last string
	}{
		{"darwin", "open", url},
		{"linux", "xdg-open", url},
		{"windows", "rundll32", url},
	}
	for _, tt := range tests {
		name, args, err := command(tt.goos, url)
		if err != nil {
			t.Fatalf("%s: %v", tt.goos, err)
		}
		if name != tt.name || args[len(args)-1] != tt.last {
			t.Errorf("%s: got %s %v", tt.goos, name, args)
		}
	}

	if _, _, err := command("plan9", url); err == nil {
		t.Error("expected an error for plan9")
	}
}
