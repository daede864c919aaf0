package render_test

import (
	"testing"

	"proxymill/internal/render"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantKind render.LineKind
		wantName string
	}{
		{
			name:     "adventure failure",
			line:     "ERROR [Proximity] 3/20 412ms Bonecrusher Giant // Stomp FAILED",
			wantKind: render.LineFailure,
			wantName: "Bonecrusher Giant // Stomp",
		},
		{
			name:     "marker is case insensitive",
			line:     "WARN [Proximity] 1/2 10ms Fire // Ice failed",
			wantKind: render.LineFailure,
			wantName: "Fire // Ice",
		},
		{
			name:     "extra whitespace collapses",
			line:     "  ERROR   [Proximity]\t4/20  9ms   Brazen  Borrower   FAILED  ",
			wantKind: render.LineFailure,
			wantName: "Brazen Borrower",
		},
		{
			name:     "too few tokens",
			line:     "render FAILED badly",
			wantKind: render.LineUnattributable,
		},
		{
			name:     "five tokens leave no name",
			line:     "ERROR [Proximity] 3/20 412ms FAILED",
			wantKind: render.LineUnattributable,
		},
		{
			name:     "plain progress line",
			line:     "INFO [Proximity] 3/20 412ms Bonecrusher Giant // Stomp OK",
			wantKind: render.LinePlain,
		},
		{
			name:     "empty line",
			line:     "",
			wantKind: render.LinePlain,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, name := render.ClassifyLine(tt.line)
			if kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", kind, tt.wantKind)
			}
			if name != tt.wantName {
				t.Fatalf("name = %q, want %q", name, tt.wantName)
			}
		})
	}
}
