package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitter(t *testing.T) {
	event := Event{
		RunID:  "run-001",
		Step:   3,
		NodeID: "architect",
		Msg:    "node completed",
	}

	t.Run("text mode", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewLogEmitter(&buf, false)
		e.Emit(event)

		got := buf.String()
		if !strings.Contains(got, "[node completed]") ||
			!strings.Contains(got, "runID=run-001") ||
			!strings.Contains(got, "step=3") ||
			!strings.Contains(got, "nodeID=architect") {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("json mode", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewLogEmitter(&buf, true)
		e.Emit(event)

		var decoded map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if decoded["runID"] != "run-001" || decoded["msg"] != "node completed" {
			t.Errorf("decoded = %v", decoded)
		}
	})

	t.Run("meta is included", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewLogEmitter(&buf, false)

		withMeta := event
		withMeta.Meta = map[string]interface{}{"score": 8.0}
		e.Emit(withMeta)

		if !strings.Contains(buf.String(), `"score":8`) {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestNullEmitter(t *testing.T) {
	// Must be safe to call with anything.
	e := NewNullEmitter()
	e.Emit(Event{})
	e.Emit(Event{RunID: "r", Msg: "m", Meta: map[string]interface{}{"k": "v"}})
}
