package entity

import (
	"encoding/json"
	"testing"
)

func TestMessageTextWireFormat(t *testing.T) {
	m := TextMessage(RoleUser, "hello")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"role":"user","content":"hello"}`; got != want {
		t.Errorf("marshal = %s, want %s", got, want)
	}

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Content.Text != "hello" || !back.IsText() {
		t.Errorf("round trip lost text content: %+v", back)
	}
}

func TestMessagePartsWireFormat(t *testing.T) {
	wire := `{"role":"user","content":[{"type":"image_url","image_url":{"url":"data:image/png;base64,xyz"}}]}`

	var m Message
	if err := json.Unmarshal([]byte(wire), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.IsText() {
		t.Error("parts message reported as text")
	}
	if len(m.Content.Parts) != 1 || m.Content.Parts[0].Type != "image_url" {
		t.Fatalf("parts = %+v", m.Content.Parts)
	}
	if m.Content.Parts[0].ImageURL.URL != "data:image/png;base64,xyz" {
		t.Errorf("image url = %q", m.Content.Parts[0].ImageURL.URL)
	}

	// re-marshals back to the array form
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != wire {
		t.Errorf("marshal = %s, want %s", data, wire)
	}
}

func TestMessageRejectsInvalidContent(t *testing.T) {
	var m Message
	if err := json.Unmarshal([]byte(`{"role":"user","content":42}`), &m); err == nil {
		t.Error("numeric content unmarshalled without error")
	}
}
