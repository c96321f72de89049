package emaildir

import (
	"reflect"
	"testing"
)

func TestDirectory_CaseInsensitiveConsolidation(t *testing.T) {
	d := New()
	d.Add("John@Example.com", "a.txt")
	d.Add("john@example.com", "b.txt")
	d.Add("other@lab.org", "a.txt")

	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}

	entries := d.Entries()
	want := []Entry{
		{Email: "john@example.com", Sources: []string{"a.txt", "b.txt"}},
		{Email: "other@lab.org", Sources: []string{"a.txt"}},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Entries = %v, want %v", entries, want)
	}
}

func TestDirectory_DuplicateSourceCollapsed(t *testing.T) {
	d := New()
	d.Add("x@y.org", "a.txt")
	d.Add("x@y.org", "a.txt")

	entries := d.Entries()
	if len(entries) != 1 || len(entries[0].Sources) != 1 {
		t.Errorf("Entries = %v", entries)
	}
}

func TestDirectory_Format(t *testing.T) {
	d := New()
	d.Add("b@lab.org", "p2.txt")
	d.Add("a@lab.org", "p2.txt")
	d.Add("a@lab.org", "p1.txt")

	want := "a@lab.org\tp1.txt,p2.txt\nb@lab.org\tp2.txt\n"
	if got := d.Format(); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestDirectory_IgnoresEmpty(t *testing.T) {
	d := New()
	d.Add("  ", "a.txt")
	if d.Len() != 0 {
		t.Errorf("Len = %d, want 0", d.Len())
	}
}
