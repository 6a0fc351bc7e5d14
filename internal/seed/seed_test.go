package seed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseText(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# site seeds",
		"https://example.com/",
		"",
		"  https://example.com/docs  ",
		"https://example.com/",
		"# trailing comment",
	}, "\n")

	seeds, err := ParseText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}
	want := []string{"https://example.com/", "https://example.com/docs"}
	if len(seeds) != len(want) {
		t.Fatalf("seeds = %v, want %v", seeds, want)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("seeds[%d] = %q, want %q", i, seeds[i], want[i])
		}
	}
}

func TestParseTextEmpty(t *testing.T) {
	t.Parallel()

	_, err := ParseText(strings.NewReader("# only comments\n\n"))
	if !errors.Is(err, ErrNoSeeds) {
		t.Errorf("err = %v, want ErrNoSeeds", err)
	}
}

func TestParseCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name: "url header column",
			input: strings.Join([]string{
				"name,url,notes",
				"home,https://example.com/,entry",
				"docs,https://example.com/docs,",
			}, "\n"),
			want: []string{"https://example.com/", "https://example.com/docs"},
		},
		{
			name: "header containing url",
			input: strings.Join([]string{
				"page_url,title",
				"https://example.com/a,A",
			}, "\n"),
			want: []string{"https://example.com/a"},
		},
		{
			name: "headerless first column",
			input: strings.Join([]string{
				"https://example.com/x,extra",
				"https://example.com/y,extra",
			}, "\n"),
			want: []string{"https://example.com/x", "https://example.com/y"},
		},
		{
			name: "unrecognized header skipped",
			input: strings.Join([]string{
				"website,owner",
				"https://example.com/z,me",
			}, "\n"),
			want: []string{"https://example.com/z"},
		},
		{
			name: "duplicates dropped",
			input: strings.Join([]string{
				"url",
				"https://example.com/a",
				"https://example.com/a",
			}, "\n"),
			want: []string{"https://example.com/a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seeds, err := ParseCSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseCSV returned error: %v", err)
			}
			if len(seeds) != len(tt.want) {
				t.Fatalf("seeds = %v, want %v", seeds, tt.want)
			}
			for i := range tt.want {
				if seeds[i] != tt.want[i] {
					t.Errorf("seeds[%d] = %q, want %q", i, seeds[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseCSVEmpty(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader(""))
	if !errors.Is(err, ErrNoSeeds) {
		t.Errorf("err = %v, want ErrNoSeeds", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	txt := filepath.Join(dir, "seeds.txt")
	if err := os.WriteFile(txt, []byte("https://example.com/\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	seeds, err := LoadFile(txt)
	if err != nil {
		t.Fatalf("LoadFile(txt) returned error: %v", err)
	}
	if len(seeds) != 1 || seeds[0] != "https://example.com/" {
		t.Errorf("seeds = %v", seeds)
	}

	csvPath := filepath.Join(dir, "seeds.csv")
	if err := os.WriteFile(csvPath, []byte("url\nhttps://example.com/a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	seeds, err = LoadFile(csvPath)
	if err != nil {
		t.Fatalf("LoadFile(csv) returned error: %v", err)
	}
	if len(seeds) != 1 || seeds[0] != "https://example.com/a" {
		t.Errorf("seeds = %v", seeds)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("LoadFile should fail for a missing file")
	}
}
