package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTranscript_AppendKeepsFirstSeenOrder(t *testing.T) {
	tr := NewTranscript()
	tr.Append("HAMLET", "To be")
	tr.Append("CLAUDIUS", "Indeed")
	tr.Append("HAMLET", "or not to be")

	if diff := cmp.Diff([]string{"HAMLET", "CLAUDIUS"}, tr.Speakers()); diff != "" {
		t.Errorf("Speakers() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"To be", "or not to be"}, tr.Lines("HAMLET")); diff != "" {
		t.Errorf("Lines(HAMLET) mismatch (-want +got):\n%s", diff)
	}
	if got := tr.LineCount(); got != 3 {
		t.Errorf("LineCount() = %d, want 3", got)
	}
}

func TestTranscript_Delete(t *testing.T) {
	tr := NewTranscript()
	tr.Append("ACT I", "SCENE I. Elsinore.")
	tr.Append("HAMLET", "To be")
	tr.Delete("ACT I")
	tr.Delete("NOBODY")

	if diff := cmp.Diff([]string{"HAMLET"}, tr.Speakers()); diff != "" {
		t.Errorf("Speakers() mismatch (-want +got):\n%s", diff)
	}
	if tr.Has("ACT I") {
		t.Error("expected ACT I to be removed")
	}
}

func TestTranscript_MarshalJSON_OrderAndLiterals(t *testing.T) {
	tr := NewTranscript()
	tr.Append("ZEUS", "Thunder & <lightning>")
	tr.Append("ÆNEAS", "Ære perennius")

	got, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// json.Marshal re-escapes HTML characters; key order must survive either way.
	want := `{"ZEUS":["Thunder \u0026 \u003clightning\u003e"],"ÆNEAS":["Ære perennius"]}`
	if string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	raw, err := tr.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	wantRaw := `{"ZEUS":["Thunder & <lightning>"],"ÆNEAS":["Ære perennius"]}`
	if string(raw) != wantRaw {
		t.Errorf("MarshalJSON = %s, want %s", raw, wantRaw)
	}
}

func TestTranscript_MarshalJSON_Empty(t *testing.T) {
	got, err := NewTranscript().MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("MarshalJSON = %s, want {}", got)
	}

	var nilTranscript *Transcript
	got, err = nilTranscript.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON on nil failed: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("nil MarshalJSON = %s, want {}", got)
	}
}

func TestTranscript_UnmarshalJSON_PreservesOrder(t *testing.T) {
	data := []byte(`{"OPHELIA": ["Good my lord"], "HAMLET": ["Nymph", "in thy orisons"], "POLONIUS": []}`)

	tr := NewTranscript()
	if err := json.Unmarshal(data, tr); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if diff := cmp.Diff([]string{"OPHELIA", "HAMLET", "POLONIUS"}, tr.Speakers()); diff != "" {
		t.Errorf("Speakers() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Nymph", "in thy orisons"}, tr.Lines("HAMLET")); diff != "" {
		t.Errorf("Lines(HAMLET) mismatch (-want +got):\n%s", diff)
	}
	if lines := tr.Lines("POLONIUS"); lines == nil || len(lines) != 0 {
		t.Errorf("Lines(POLONIUS) = %#v, want empty non-nil slice", lines)
	}
}

func TestTranscript_UnmarshalJSON_RejectsNonObject(t *testing.T) {
	tr := NewTranscript()
	if err := json.Unmarshal([]byte(`["HAMLET"]`), tr); err == nil {
		t.Fatal("expected error for JSON array input")
	}
}
