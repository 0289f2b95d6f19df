package source

import (
	"testing"
)

func TestSpanLenEmpty(t *testing.T) {
	tests := []struct {
		name  string
		span  Span
		len   uint32
		empty bool
		str   string
	}{
		{name: "regular", span: Span{File: 1, Start: 4, End: 9}, len: 5, str: "1:4-9"},
		{name: "zero-length", span: Span{File: 2, Start: 7, End: 7}, empty: true, str: "2:7-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Len(); got != tt.len {
				t.Errorf("Len() = %d, want %d", got, tt.len)
			}
			if got := tt.span.Empty(); got != tt.empty {
				t.Errorf("Empty() = %v, want %v", got, tt.empty)
			}
			if got := tt.span.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}
