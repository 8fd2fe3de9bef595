package score

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "abc", 1.0},
		{"abc", "", 0.0},
		{"abc", "xyz", 0.0},
		{"abcd", "bcde", 0.75},
		{"install", "install_x64.exe", 14.0 / 22.0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); !almostEqual(got, tt.want) {
			t.Errorf("Ratio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
		if got, back := Ratio(tt.a, tt.b), Ratio(tt.b, tt.a); !almostEqual(got, back) {
			t.Errorf("Ratio not symmetric for %q/%q: %f vs %f", tt.a, tt.b, got, back)
		}
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"report.txt":      "report",
		"archive.tar.gz":  "archive.tar",
		".bashrc":         ".bashrc",
		"..x.y":           "..x",
		"noext":           "noext",
		"install_x64.exe": "install_x64",
	}
	for in, want := range tests {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNameBonuses(t *testing.T) {
	s := New(DefaultWeights())

	// identical names collect ratio 1.0 + file + ext + prefix + exact
	if got, want := s.Name("Report.TXT", "report.txt", true), 1.0+0.3+0.2+0.1+0.5; !almostEqual(got, want) {
		t.Errorf("exact file score = %f, want %f", got, want)
	}
	// directories do not receive the file bonus
	if got, want := s.Name("docs", "docs", false), 1.0+0.1+0.5; !almostEqual(got, want) {
		t.Errorf("exact dir score = %f, want %f", got, want)
	}
	// prefix without exact match
	base := Ratio("rep", "report")
	if got, want := s.Name("rep", "report", true), base+0.3+0.1; !almostEqual(got, want) {
		t.Errorf("prefix score = %f, want %f", got, want)
	}
	// extension agreement is case-insensitive
	base = Ratio("a.txt", "b.txt")
	if got, want := s.Name("a.TXT", "b.txt", true), base+0.3+0.2; !almostEqual(got, want) {
		t.Errorf("extension score = %f, want %f", got, want)
	}
}

func TestExactMatchOutranksSameSimilarity(t *testing.T) {
	s := New(DefaultWeights())
	exact := s.Name("notes.md", "NOTES.md", true)
	// "notes.md" vs "notez.md" has a lower ratio; even granting it the same base
	// similarity the exact bonus keeps the exact candidate ahead.
	inexact := s.Name("notes.md", "notez.md", true) - Ratio("notes.md", "notez.md") + 1.0
	if exact <= inexact {
		t.Fatalf("exact %f should exceed inexact %f", exact, inexact)
	}
}

func TestPathArchitecture(t *testing.T) {
	s := New(DefaultWeights())

	x64 := s.Path("setup64", "bin/setup_x64.exe", "")
	x86 := s.Path("setup64", "bin/setup_x86.exe", "")
	if x64 <= x86 {
		t.Errorf("64-bit query: x64=%f should beat x86=%f", x64, x86)
	}

	x64 = s.Path("setup32", "bin/setup_x64.exe", "")
	x86 = s.Path("setup32", "bin/setup_x86.exe", "")
	if x86 <= x64 {
		t.Errorf("32-bit query: x86=%f should beat x64=%f", x86, x64)
	}

	// no family in the query: 64-bit paths win by default
	win64 := s.Path("setup", "tools/win64/setup.exe", "")
	win32 := s.Path("setup", "tools/win32/setup.exe", "")
	if win64 <= win32 {
		t.Errorf("default bias: win64=%f should beat win32=%f", win64, win32)
	}
}

func TestPathDirPreference(t *testing.T) {
	s := New(DefaultWeights())
	in := s.Path("tool", "release/tool.bin", "release")
	out := s.Path("tool", "debug/tool.bin", "release")
	if got, want := in-out, 1.5+0.5; math.Abs(got-want) > 0.05 {
		t.Errorf("preference spread = %f, want about %f", got, want)
	}
	if none := s.Path("tool", "debug/tool.bin", ""); none <= out {
		t.Errorf("no preference (%f) should not be penalised like %f", none, out)
	}
}

func TestPathStemExact(t *testing.T) {
	s := New(DefaultWeights())
	hit := s.Path("readme", "docs/README.md", "")
	miss := s.Path("readme", "docs/READ.md", "")
	if hit-miss < 1.0-0.3 {
		t.Errorf("stem match should add about 1.0: hit=%f miss=%f", hit, miss)
	}
}
