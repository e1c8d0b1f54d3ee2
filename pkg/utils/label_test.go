package utils

import (
	"reflect"
	"testing"
)

func TestMergeLabel(t *testing.T) {
	a := Label{Value: "content", Source: "recall"}
	b := Label{Value: "interaction", Source: "recall"}
	got := MergeLabel(a, b)
	if got.Value != "content|interaction" || got.Source != "recall,recall" {
		t.Fatalf("MergeLabel = %+v", got)
	}
	if got := MergeLabel(Label{}, b); got != b {
		t.Fatalf("merge into empty = %+v, want %+v", got, b)
	}
}

func TestLabelValues(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"content", []string{"content"}},
		{"content|interaction|content", []string{"content", "interaction"}},
		{"a||b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := Label{Value: tt.in}.Values()
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Values(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
