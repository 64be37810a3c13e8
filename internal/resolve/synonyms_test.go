package resolve

import "testing"

func TestDefaultSynonymsLoad(t *testing.T) {
	syns := DefaultSynonyms()
	if syns.Len() == 0 {
		t.Fatal("embedded synonym table is empty")
	}

	expansion, ok := syns.Lookup("sms")
	if !ok || expansion != "safety management system" {
		t.Errorf("Lookup(sms) = %q, %v", expansion, ok)
	}
}

func TestLookupNormalizesKey(t *testing.T) {
	syns := DefaultSynonyms()

	if _, ok := syns.Lookup("SMS"); !ok {
		t.Error("uppercase key should resolve")
	}
	if _, ok := syns.Lookup("  gem  "); !ok {
		t.Error("padded key should resolve")
	}
	if _, ok := syns.Lookup("no such key"); ok {
		t.Error("unknown key should miss")
	}
}

func TestLoadSynonymsFirstKeyWins(t *testing.T) {
	syns, err := LoadSynonyms([]byte(`[
		{"key": "x", "expansion": "first expansion"},
		{"key": "x", "expansion": "second expansion"}
	]`))
	if err != nil {
		t.Fatalf("LoadSynonyms failed: %v", err)
	}

	expansion, _ := syns.Lookup("x")
	if expansion != "first expansion" {
		t.Errorf("Lookup(x) = %q, want first entry", expansion)
	}
}

func TestLoadSynonymsMalformed(t *testing.T) {
	if _, err := LoadSynonyms([]byte("not json")); err == nil {
		t.Error("LoadSynonyms should fail on malformed input")
	}
}
