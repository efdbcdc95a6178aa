package linker

import (
	"reflect"
	"testing"
)

func TestLinkWholeWord(t *testing.T) {
	l := New()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "dollar prefix",
			text: "$DOGE to the moon",
			want: []string{"DOGE"},
		},
		{
			name: "term variant",
			text: "loading up on pepecoin today",
			want: []string{"PEPE"},
		},
		{
			name: "no partial match",
			text: "dogecoins dogelike pepes",
			want: nil,
		},
		{
			name: "case insensitive",
			text: "WOJAK season",
			want: []string{"WOJAK"},
		},
		{
			name: "multiple symbols sorted",
			text: "trading pepe for bonk and floki",
			want: []string{"BONK", "FLOKI", "PEPE"},
		},
		{
			name: "meme matches both literal and generic",
			text: "best memecoin this cycle: doge",
			want: []string{"DOGE", "MEME"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Link(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Link(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLinkAcrossMultipleTexts(t *testing.T) {
	l := New()

	got := l.Link("nothing here", "but shib is moving")
	if !reflect.DeepEqual(got, []string{"DOGE"}) {
		t.Fatalf("got %v, want [DOGE]", got)
	}
}

func TestMatchesEmptyText(t *testing.T) {
	l := New()
	if l.Matches("DOGE", "", "") {
		t.Fatal("empty texts must not match")
	}
}

func TestTermsIncludeSymbol(t *testing.T) {
	l := New()

	terms := l.Terms("DOGE")
	found := false
	for _, term := range terms {
		if term == "doge" {
			found = true
		}
	}
	if !found {
		t.Fatalf("terms %v missing the symbol itself", terms)
	}
}

func TestTermsUnknownSymbol(t *testing.T) {
	l := New()

	got := l.Terms("SHIBX")
	if !reflect.DeepEqual(got, []string{"shibx"}) {
		t.Fatalf("got %v, want [shibx]", got)
	}
}

func TestSymbolsSorted(t *testing.T) {
	l := New()

	symbols := l.Symbols()
	for i := 1; i < len(symbols); i++ {
		if symbols[i-1] >= symbols[i] {
			t.Fatalf("symbols not sorted: %v", symbols)
		}
	}
}

func TestNewWithTermsCustomSet(t *testing.T) {
	l := NewWithTerms(map[string][]string{
		"TURBO": {"turbotoad"},
	})

	if got := l.Link("turbotoad is back"); !reflect.DeepEqual(got, []string{"TURBO"}) {
		t.Fatalf("got %v, want [TURBO]", got)
	}
	if got := l.Link("turbo mode"); !reflect.DeepEqual(got, []string{"TURBO"}) {
		t.Fatalf("symbol itself should match, got %v", got)
	}
}
