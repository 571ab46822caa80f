package credential

import (
	"reflect"
	"testing"

	"github.com/use-agent/sessionprobe/models"
)

var required = []string{"NetflixId", "SecureNetflixId"}

func TestParseStrategies(t *testing.T) {
	tests := []struct {
		name string
		text string
		hint string
		want models.CookieSet
	}{
		{
			name: "identifier scan ignores surrounding noise",
			text: "noise NetflixId=abc123; SecureNetflixId=def456 noise",
			want: models.CookieSet{"NetflixId": "abc123", "SecureNetflixId": "def456"},
		},
		{
			name: "json array",
			text: `[{"name":"NetflixId","value":"v1"},{"name":"other","value":"v2"}]`,
			want: models.CookieSet{"NetflixId": "v1", "other": "v2"},
		},
		{
			name: "json array via hint without leading bracket detection",
			text: ` [{"name":"a","value":"1"}]`,
			hint: "json",
			want: models.CookieSet{"a": "1"},
		},
		{
			name: "json entries without a name are skipped",
			text: `[{"name":"a","value":"1"},{"value":"orphan"}]`,
			want: models.CookieSet{"a": "1"},
		},
		{
			name: "pipe delimited",
			text: "NetflixId=v1|SecureNetflixId=v2|extra=v3",
			want: models.CookieSet{"NetflixId": "v1", "SecureNetflixId": "v2", "extra": "v3"},
		},
		{
			name: "netscape tab delimited",
			text: ".example.com\tTRUE\t/\tTRUE\t0\tSessionId\tabc123",
			want: models.CookieSet{"SessionId": "abc123"},
		},
		{
			name: "netscape whitespace fallback",
			text: ".example.com TRUE / TRUE 0 SessionId abc123",
			want: models.CookieSet{"SessionId": "abc123"},
		},
		{
			name: "netscape httponly marker stripped",
			text: "# a comment\n#HttpOnly_.example.com\tTRUE\t/\tTRUE\t0\tSessionId\tabc123",
			want: models.CookieSet{"SessionId": "abc123"},
		},
		{
			name: "semicolon pairs last resort",
			text: "SessionId=abc; Other=def",
			want: models.CookieSet{"SessionId": "abc", "Other": "def"},
		},
		{
			name: "empty input yields empty map",
			text: "",
			want: models.CookieSet{},
		},
		{
			name: "whitespace only yields empty map",
			text: "   \n\t  ",
			want: models.CookieSet{},
		},
	}

	p := NewParser(required)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text, tt.hint)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseMalformedJSONFallsThrough(t *testing.T) {
	// Broken JSON must not abort parsing; the semicolon strategy still
	// recovers the embedded pair.
	p := NewParser(required)
	got := p.Parse(`[{"name": broken; SessionId=abc`, "json")
	if got["SessionId"] != "abc" {
		t.Errorf("expected semicolon fallback to recover SessionId, got %v", got)
	}
}

func TestParseNeverRaises(t *testing.T) {
	p := NewParser(required)
	inputs := []string{
		"|||", ";;;", "====", "[", "[]", "{\"name\":\"x\"}",
		"#HttpOnly_", "\t\t\t\t\t\t\t",
	}
	for _, in := range inputs {
		set := p.Parse(in, "")
		if set == nil {
			t.Errorf("Parse(%q) returned nil, want empty map", in)
		}
	}
}

func TestStrategyPriority(t *testing.T) {
	// Input that satisfies both the identifier scan and the semicolon
	// strategy: the scan wins and returns only the two identifiers.
	p := NewParser(required)
	got := p.Parse("NetflixId=a; SecureNetflixId=b; tracker=c", "")
	want := models.CookieSet{"NetflixId": "a", "SecureNetflixId": "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want identifier scan result %v", got, want)
	}
}

func TestJSONArrayRoundTrip(t *testing.T) {
	p := NewParser(required)
	original := p.Parse("NetflixId=v1|SecureNetflixId=v2|extra=v3", "")

	encoded, err := original.JSONArray()
	if err != nil {
		t.Fatalf("JSONArray: %v", err)
	}
	reparsed := p.Parse(string(encoded), "json")
	if !reflect.DeepEqual(reparsed, original) {
		t.Errorf("round trip = %v, want %v", reparsed, original)
	}
}
