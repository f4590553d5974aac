package webclean

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"strips tags",
			`<p>The <b>analysis</b> shows deflection.</p>`,
			"The analysis shows deflection.",
		},
		{
			"decodes entities",
			"Russia&#8217;s &quot;partners&quot; &amp; allies",
			`Russia's "partners" & allies`,
		},
		{
			"collapses spaces and tabs",
			"too   many\t\tspaces",
			"too many spaces",
		},
		{
			"drops empty lines",
			"first paragraph\n\n\n\nsecond paragraph",
			"first paragraph\nsecond paragraph",
		},
		{
			"empty input",
			"   \n\t  ",
			"",
		},
		{
			"plain text untouched",
			"already clean",
			"already clean",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
