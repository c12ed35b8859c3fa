package chapters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaultStrip = []string{"-", "#"}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		strip []string
		want  []string
	}{
		{
			name:  "numbered list with preamble",
			raw:   "Here are some ideas:\n1. The Beginning\n2. The Middle-Point\n3. The End",
			strip: defaultStrip,
			want:  []string{"The Beginning", "The MiddlePoint", "The End"},
		},
		{
			name:  "blank lines are skipped before the preamble is dropped",
			raw:   "\n\nSure!\n\n1. One\n\n2. Two\n",
			strip: defaultStrip,
			want:  []string{"One", "Two"},
		},
		{
			name:  "windows line endings",
			raw:   "Ideas:\r\n1. Alpha\r\n2. Beta\r\n",
			strip: defaultStrip,
			want:  []string{"Alpha", "Beta"},
		},
		{
			name:  "markdown headings and bullets",
			raw:   "# Chapters\n- Dawn\n- Dusk",
			strip: defaultStrip,
			want:  []string{"Dawn", "Dusk"},
		},
		{
			name:  "no preamble loses the first chapter",
			raw:   "1. First\n2. Second\n3. Third",
			strip: defaultStrip,
			want:  []string{"Second", "Third"},
		},
		{
			name:  "text after the first dot only",
			raw:   "Intro\n1. Mr. Smith Goes Home",
			strip: defaultStrip,
			want:  []string{"Mr. Smith Goes Home"},
		},
		{
			name:  "later dots are kept",
			raw:   "Here are some ideas:\n1. Mr. Smith Goes Home\n2. St. Louis Blues",
			strip: defaultStrip,
			want:  []string{"Mr. Smith Goes Home", "St. Louis Blues"},
		},
		{
			name:  "digits anywhere are removed",
			raw:   "Intro\nChapter 12: Year 2049",
			strip: defaultStrip,
			want:  []string{"Chapter : Year"},
		},
		{
			name:  "lines that become empty are dropped",
			raw:   "Intro\n1.\n---\n42\n2. Kept",
			strip: defaultStrip,
			want:  []string{"Kept"},
		},
		{
			name:  "multi character strip entries apply in order",
			raw:   "Intro\n1. **Bold** Title",
			strip: []string{"**"},
			want:  []string{"Bold Title"},
		},
		{
			name:  "empty strip set",
			raw:   "Intro\n1. A-B",
			strip: nil,
			want:  []string{"A-B"},
		},
		{
			name:  "non ascii digits",
			raw:   "Intro\n١. الفصل ٣",
			strip: defaultStrip,
			want:  []string{"الفصل"},
		},
		{
			name:  "empty input",
			raw:   "",
			strip: defaultStrip,
			want:  []string{},
		},
		{
			name:  "only a preamble",
			raw:   "Here you go:",
			strip: defaultStrip,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.raw, tt.strip)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A well formed answer with a preamble and N numbered lines yields N titles in order.
func TestExtract_WellFormedCount(t *testing.T) {
	titles := []string{"Storm", "Harbor", "Keeper", "Light", "Dawn"}

	var b strings.Builder
	b.WriteString("Here are the chapters:\n")
	for i, title := range titles {
		b.WriteString(string(rune('1'+i)) + ". " + title + "\n")
	}

	assert.Equal(t, titles, Extract(b.String(), defaultStrip))
}

// Removing digits after the strip set never brings strip characters back.
func TestClean_StripThenDigits(t *testing.T) {
	inputs := []string{
		"1. -#-Title-#-",
		"-1-2-3-",
		"#9#",
		"2. A-1-B",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got := Clean(in, defaultStrip)
			for _, s := range defaultStrip {
				assert.NotContains(t, got, s)
			}
			assert.False(t, strings.ContainsAny(got, "0123456789"))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "The MiddlePoint", Clean("2. The Middle-Point", defaultStrip))
	assert.Equal(t, "No Number", Clean("  No Number  ", defaultStrip))
	assert.Equal(t, "", Clean("3.", defaultStrip))
}
