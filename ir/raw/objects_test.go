package raw

import "testing"

func TestDictKeepsInsertionOrder(t *testing.T) {
	d := Dict()
	d.Set(NameLiteral("Type"), NameLiteral("Page"))
	d.Set(NameLiteral("Parent"), Ref(2, 0))
	d.Set(NameLiteral("MediaBox"), NewArray(NumberInt(0), NumberInt(0)))
	d.Set(NameLiteral("Type"), NameLiteral("Page"))

	keys := d.Keys()
	want := []string{"Type", "Parent", "MediaBox"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range keys {
		if k.Value() != want[i] {
			t.Fatalf("key %d: expected %s, got %s", i, want[i], k.Value())
		}
	}
	if d.Len() != 3 {
		t.Fatalf("overwrite should not add a key, len=%d", d.Len())
	}
}

func TestNewStreamRecordsLength(t *testing.T) {
	s := NewStream(nil, []byte("q\n1 0 0 1 0 0 cm\nQ\n"))
	lenObj, ok := s.Dict.Get(NameLiteral("Length"))
	if !ok {
		t.Fatalf("missing /Length")
	}
	n, ok := lenObj.(NumberObj)
	if !ok || !n.IsInteger() {
		t.Fatalf("expected integer /Length, got %#v", lenObj)
	}
	if n.Int() != s.Length() {
		t.Fatalf("length mismatch: dict=%d data=%d", n.Int(), s.Length())
	}
}

func TestDocumentNumbersObjectsSequentially(t *testing.T) {
	var doc Document
	a := doc.Add(Dict())
	b := doc.Add(Dict())
	c := doc.Add(NewStream(nil, nil))
	if a.Num != 1 || b.Num != 2 || c.Num != 3 {
		t.Fatalf("unexpected numbering: %v %v %v", a, b, c)
	}
	if doc.Size() != 4 {
		t.Fatalf("expected /Size 4, got %d", doc.Size())
	}
	if got := b.String(); got != "2 0 R" {
		t.Fatalf("unexpected ref string %q", got)
	}
}

func TestNumberAccessors(t *testing.T) {
	f := NumberFixed(595.28, 2)
	if f.IsInteger() {
		t.Fatalf("fixed number reported as integer")
	}
	if f.Float() != 595.28 || f.Int() != 595 {
		t.Fatalf("unexpected accessors: %v %v", f.Float(), f.Int())
	}
	i := NumberInt(6)
	if i.Float() != 6 {
		t.Fatalf("int as float: %v", i.Float())
	}
}
