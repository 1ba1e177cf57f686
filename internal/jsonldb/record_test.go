package jsonldb

import (
	"encoding/json"
	"testing"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		rec      string
		maxRunes int
		want     string
	}{
		{"object under cap", `{"a":1,"b":"x"}`, 120, `{"a": 1, "b": "x"}`},
		{"object over cap", `{"z":1,"y":[1,2],"x":{"k":true},"w":4}`, 120, `{"z": 1, "y": [1,2], "x": {"k":true}}`},
		{"empty object", `{}`, 120, `{}`},
		{"array", `[1,2,3]`, 120, `[1,2,3]`},
		{"string", `"hello"`, 120, `"hello"`},
		{"truncated", `"abcdefghijklmnopqrstuvwxyz"`, 10, `"abcdefghi…`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(json.RawMessage(tt.rec), 3, tt.maxRunes); got != tt.want {
				t.Errorf("Preview(%s) = %q, want %q", tt.rec, got, tt.want)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	keys, values, ok := Keys(json.RawMessage(`{"b":1,"a":{"n":[1]},"c":null}`), 2)
	if !ok {
		t.Fatal("Keys() ok = false")
	}
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("keys = %v", keys)
	}
	if string(values[1]) != `{"n":[1]}` {
		t.Errorf("values[1] = %s", values[1])
	}
	if _, _, ok := Keys(json.RawMessage(`[1]`), 3); ok {
		t.Error("Keys() on array ok = true")
	}
}

func TestPretty(t *testing.T) {
	got := Pretty(json.RawMessage(`{"a":1,"b":[true]}`))
	want := "{\n    \"a\": 1,\n    \"b\": [\n        true\n    ]\n}"
	if got != want {
		t.Errorf("Pretty() = %q, want %q", got, want)
	}
	if got := Pretty(json.RawMessage(`3`)); got != "3" {
		t.Errorf("Pretty(3) = %q", got)
	}
}

func TestCompact(t *testing.T) {
	got, err := Compact([]byte(" { \"a\" : [ 1 , 2 ] } "))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":[1,2]}` {
		t.Errorf("Compact() = %s", got)
	}
	for _, bad := range []string{"", "{", `{"a":1}x`, "1 2", "nul"} {
		if _, err := Compact([]byte(bad)); err == nil {
			t.Errorf("Compact(%q) succeeded", bad)
		}
	}
}
