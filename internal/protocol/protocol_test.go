package protocol

import (
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(CmdRun, &RunRequest{SheetID: "abc123"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Command != CmdRun {
		t.Fatalf("command = %q, want %q", env.Command, CmdRun)
	}

	req, err := DecodePayload[RunRequest](payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if req.SheetID != "abc123" {
		t.Errorf("sheet_id = %q, want abc123", req.SheetID)
	}
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdShutdown, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Command != CmdShutdown {
		t.Fatalf("command = %q, want %q", env.Command, CmdShutdown)
	}
	if len(payload) != 0 {
		t.Errorf("payload = %q, want empty", payload)
	}
}

func TestDecodeRejectsMissingCommand(t *testing.T) {
	if _, _, err := Decode([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected error for envelope without command")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestDecodePayloadEmptyYieldsZeroValue(t *testing.T) {
	req, err := DecodePayload[RunRequest](nil)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if req.Portfolio != "" || req.SheetID != "" || req.Output != "" {
		t.Errorf("expected zero value, got %+v", req)
	}
}
