package naming

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"foo", "foo(2)"},
		{"foo(2)", "foo(3)"},
		{"foo(9)", "foo(10)"},
		{"foo(99)", "foo(100)"},
		{"foo(a)", "foo(a)(2)"},
		{"(2)", "(3)"},
		{"", "(2)"},
		{")", ")(2)"},
		{"x)", "x)(2)"},
		{"x1)", "x1)(2)"},
		{"12)", "12)(2)"},
		{"foo()", "foo()(2)"},
		{"foo(0)", "foo(1)"},
		{"foo(007)", "foo(8)"},
		{"a(1)b(4)", "a(1)b(5)"},
		{"foo (2)", "foo (3)"},
		{"foo(18446744073709551615)", "foo(18446744073709551616)"},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.current))
		})
	}
}

func TestNext_UnsequencedAppends(t *testing.T) {
	for _, s := range []string{"report", "report.pdf", "x(y)", "end)", "we(ird", "日本語"} {
		assert.Equal(t, s+"(2)", Next(s), s)
	}
}

func TestNext_Sequence(t *testing.T) {
	name := "base"
	seen := map[string]bool{}
	for i := 2; i <= 25; i++ {
		name = Next(name)
		assert.Equal(t, fmt.Sprintf("base(%d)", i), name)
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		wantPure string
		wantExt  string
	}{
		{"a.txt", "a", ".txt"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".bashrc", "", ".bashrc"},
		{"trailing.", "trailing", "."},
		{"data.txt(2)", "data", ".txt(2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pure, ext := Split(tt.name)
			assert.Equal(t, tt.wantPure, pure)
			assert.Equal(t, tt.wantExt, ext)
			assert.Equal(t, tt.name, pure+ext)
		})
	}
}

func TestNextFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "a(2).txt"},
		{"a(2).txt", "a(3).txt"},
		{"a(9).txt", "a(10).txt"},
		{"README", "README(2)"},
		{"archive.tar.gz", "archive.tar(2).gz"},
		{".bashrc", "(2).bashrc"},
		{"data.txt(2)", "data.txt(3)"},
		{"data.txt(x)", "data(2).txt(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextFileName(tt.name))
		})
	}
}

func TestNextFileName_PreservesExtension(t *testing.T) {
	name := "data.txt(2)"
	for i := 3; i <= 12; i++ {
		name = NextFileName(name)
		assert.Equal(t, fmt.Sprintf("data.txt(%d)", i), name)
		assert.True(t, strings.HasPrefix(name, "data.txt"))
	}

	name = "photo.jpeg"
	for i := 2; i <= 12; i++ {
		name = NextFileName(name)
		assert.Equal(t, fmt.Sprintf("photo(%d).jpeg", i), name)
	}
}
