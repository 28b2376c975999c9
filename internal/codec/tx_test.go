package codec

import (
	"encoding/json"
	"testing"
)

func TestDecodeTxEnvelope_OK(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"type":  TypeBlackjackStart,
		"value": map[string]any{"player": "alice", "value": "100"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := DecodeTxEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeTxEnvelope: %v", err)
	}
	if env.Type != TypeBlackjackStart {
		t.Fatalf("unexpected type: %q", env.Type)
	}

	var msg BlackjackStartTx
	if err := json.Unmarshal(env.Value, &msg); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if msg.Player != "alice" {
		t.Fatalf("unexpected player: %q", msg.Player)
	}
	if msg.Value.IsNil() || msg.Value.Int64() != 100 {
		t.Fatalf("unexpected value: %v", msg.Value)
	}
}

func TestDecodeTxEnvelope_SignedFields(t *testing.T) {
	b, err := json.Marshal(TxEnvelope{
		Type:   TypeBlackjackHit,
		Value:  json.RawMessage(`{"player":"alice","sessionId":3}`),
		Nonce:  "7",
		Signer: "alice",
		Sig:    []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := DecodeTxEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeTxEnvelope: %v", err)
	}
	if env.Nonce != "7" || env.Signer != "alice" || len(env.Sig) != 3 {
		t.Fatalf("unexpected auth fields: %+v", env)
	}
	var msg BlackjackHitTx
	if err := json.Unmarshal(env.Value, &msg); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if msg.SessionID != 3 {
		t.Fatalf("unexpected sessionId: %d", msg.SessionID)
	}
}

func TestHouseWithdrawTx_RejectsNonIntegerAmount(t *testing.T) {
	var msg HouseWithdrawTx
	if err := json.Unmarshal([]byte(`{"owner":"o","amount":"1.5"}`), &msg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeTxEnvelope_MissingType(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"value": map[string]any{"x": 1},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = DecodeTxEnvelope(b)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeTxEnvelope_InvalidJSON(t *testing.T) {
	_, err := DecodeTxEnvelope([]byte("{not json"))
	if err == nil {
		t.Fatalf("expected error")
	}
}
