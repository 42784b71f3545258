package version

import "testing"

func TestString(t *testing.T) {
	oldVersion, oldSHA, oldTime := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = oldVersion, oldSHA, oldTime })

	Version, GitSHA, BuildTime = "v1.2.3", "0123456789abcdef", "2026-01-02T03:04:05Z"
	if got, want := String(), "v1.2.3 (0123456, built 2026-01-02T03:04:05Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	GitSHA = "abc"
	if got, want := String(), "v1.2.3 (abc, built 2026-01-02T03:04:05Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
