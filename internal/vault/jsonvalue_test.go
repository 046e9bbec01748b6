package vault

import "testing"

func TestFromAnyRoundTrip(t *testing.T) {
	in := map[string]interface{}{
		"name":  "widget",
		"count": 3,
		"tags":  []interface{}{"a", "b"},
		"meta":  map[string]interface{}{"active": true, "score": 1.5},
		"note":  nil,
	}

	v, err := FromMap(in)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var v2 Value
	if err := v2.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	if !v.Equal(v2) {
		t.Fatalf("round trip mismatch: %v != %v", v.ToMap(), v2.ToMap())
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	in := map[string]interface{}{
		"tags": []interface{}{"a", "b"},
	}
	v, err := FromMap(in)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	clone := v.Clone()

	// Mutate the original's backing slice in place and confirm the clone
	// is unaffected; Clone must have allocated a fresh slice.
	v.obj["tags"].arr[0] = Value{kind: kindString, s: "mutated"}

	cloned := clone.ToMap()["tags"].([]interface{})
	if cloned[0] != "a" {
		t.Fatalf("clone aliased original: got %v", cloned[0])
	}
}

func TestFromMapNilProducesEmptyObject(t *testing.T) {
	v, err := FromMap(nil)
	if err != nil {
		t.Fatalf("FromMap(nil): %v", err)
	}
	if len(v.ToMap()) != 0 {
		t.Fatalf("expected empty object, got %v", v.ToMap())
	}
}

func TestFromAnyRejectsUnsupportedType(t *testing.T) {
	type weird struct{}
	if _, err := FromAny(weird{}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
