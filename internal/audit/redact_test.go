package audit

import (
	"strings"
	"testing"
)

func TestRedact_SensitiveKeys(t *testing.T) {
	args := map[string]any{
		"password":     "secret123",
		"api_token":    "tok_abc",
		"client_secret": "shh",
		"publicKey":    "pk_123",
		"title":        "x",
	}
	out := Redact(args)
	for _, key := range []string{"password", "api_token", "client_secret", "publicKey"} {
		if out[key] != RedactionMarker {
			t.Fatalf("%s should be redacted, got %v", key, out[key])
		}
	}
	if out["title"] != "x" {
		t.Fatalf("title should survive redaction, got %v", out["title"])
	}
}

func TestRedact_Nested(t *testing.T) {
	args := map[string]any{
		"data": map[string]any{
			"password": "deep-secret",
			"name":     "ok",
		},
		"items": []any{
			map[string]any{"token": "t1"},
		},
	}
	out := Redact(args)
	data := out["data"].(map[string]any)
	if data["password"] != RedactionMarker {
		t.Fatalf("nested password should be redacted, got %v", data["password"])
	}
	if data["name"] != "ok" {
		t.Fatalf("nested name should survive, got %v", data["name"])
	}
	item := out["items"].([]any)[0].(map[string]any)
	if item["token"] != RedactionMarker {
		t.Fatalf("token inside array should be redacted, got %v", item["token"])
	}
}

func TestRedact_DoesNotMutateInput(t *testing.T) {
	args := map[string]any{"password": "secret123"}
	Redact(args)
	if args["password"] != "secret123" {
		t.Fatal("redaction must copy, not mutate the caller's map")
	}
}

func TestMarshalRedacted_NoSecretSurvives(t *testing.T) {
	payload := MarshalRedacted(map[string]any{
		"password": "secret123",
		"title":    "x",
	})
	if strings.Contains(payload, "secret123") {
		t.Fatalf("serialized audit payload leaks the secret: %s", payload)
	}
	if !strings.Contains(payload, "title") {
		t.Fatalf("non-sensitive fields should survive: %s", payload)
	}
}
