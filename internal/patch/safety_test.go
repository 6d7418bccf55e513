package patch

import "testing"

func TestIsSafeRepoRelPOSIX(t *testing.T) {
	cases := []struct {
		path string
		safe bool
	}{
		{"main.go", true},
		{"pkg/sub/file.go", true},
		{"../escape.go", false},
		{"a/../b.go", false},
		{"/abs/path.go", false},
		{`win\path.go`, false},
		{"C:\\windows\\file.go", false},
		{".git", false},
		{".git/config", false},
		{"pkg/.git/config", false},
		{"pkg/foo.git", true},
		{"a//b.go", false},
		{"./a.go", false},
		{"a/./b.go", false},
		{"a/b/", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsSafeRepoRelPOSIX(c.path); got != c.safe {
			t.Errorf("IsSafeRepoRelPOSIX(%q) = %v, want %v", c.path, got, c.safe)
		}
	}
}

func TestNormalizeMode(t *testing.T) {
	ok := []struct{ in, want string }{
		{"644", "644"},
		{"0644", "644"},
		{"755", "755"},
		{"0755", "755"},
	}
	for _, c := range ok {
		got, err := NormalizeMode(c.in)
		if err != nil {
			t.Fatalf("NormalizeMode(%q) unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("NormalizeMode(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	bad := []string{"777", "abc", "12", "00777", ""}
	for _, in := range bad {
		if _, err := NormalizeMode(in); err == nil {
			t.Errorf("NormalizeMode(%q) expected error, got nil", in)
		}
	}
}
