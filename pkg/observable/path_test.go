package observable

import (
	"reflect"
	"testing"
)

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		self    string
		changed string
		want    PathRelation
	}{
		{"a.b.c", "a.b.c.d", PathChild},
		{"a.b.c", "a", PathAncestor},
		{"a.b.c", "x", PathUnrelated},
		{"a.b.c", "a.b.c", PathAncestor},
		{"a.b.c", "", PathAncestor},
		{"a.b", "a.bc", PathUnrelated},
		{"a.bc", "a.b", PathUnrelated},
		{"", "a", PathChild},
	}

	for _, tt := range tests {
		t.Run(tt.self+"/"+tt.changed, func(t *testing.T) {
			if got := ClassifyPath(tt.self, tt.changed); got != tt.want {
				t.Errorf("ClassifyPath(%q, %q) = %s, want %s", tt.self, tt.changed, got, tt.want)
			}
		})
	}
}

func TestPathGet(t *testing.T) {
	type item struct {
		Title string
		tag   string
	}
	v := map[string]any{
		"list": []any{"x", map[string]any{"k": 1}},
		"item": &item{Title: "t", tag: "hidden"},
	}

	tests := []struct {
		path string
		want any
	}{
		{"", v},
		{"list.0", "x"},
		{"list.1.k", 1},
		{"list.9", nil},
		{"item.Title", "t"},
		{"item.tag", nil},
		{"missing.deep", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := PathGet(v, tt.path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PathGet(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathSetCreatesMaps(t *testing.T) {
	got, changed, err := PathSet(nil, "a.b", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}
	want := map[string]any{"a": map[string]any{"b": 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPathSetSliceIndex(t *testing.T) {
	root := map[string]any{"xs": []int{1, 2, 3}}
	if _, _, err := PathSet(root, "xs.1", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := PathGet(root, "xs.1"); got != 20 {
		t.Errorf("expected 20, got %v", got)
	}
	if _, _, err := PathSet(root, "xs.7", 1); err == nil {
		t.Error("expected an out of range error")
	}
}

func TestPathJoin(t *testing.T) {
	if got := PathJoin("a", "", "b.c"); got != "a.b.c" {
		t.Errorf("unexpected join %q", got)
	}
	if got := PathJoin("", ""); got != "" {
		t.Errorf("unexpected join %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"hi", "hi"},
		{42, "42"},
		{true, "true"},
		{[]int{1, 2}, "[1,2]"},
		{map[string]int{"a": 1}, `{"a":1}`},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
