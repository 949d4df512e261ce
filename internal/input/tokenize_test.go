package input

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"red blue green yellow", []string{"red", "blue", "green", "yellow"}},
		{"red, blue  green,yellow", []string{"red", "blue", "green", "yellow"}},
		{"  RED,,BLUE\tgreen\n", []string{"RED", "BLUE", "green"}},
		{"", []string{}},
		{" , ,", []string{}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
