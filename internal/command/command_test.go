package command

import "testing"

func TestPriorityOrderAndNames(t *testing.T) {
	if !(PrioritySystem < PriorityPlayer && PriorityPlayer < PriorityAutomation) {
		t.Fatalf("priority drain order broken: %d %d %d", PrioritySystem, PriorityPlayer, PriorityAutomation)
	}
	cases := map[Priority]string{
		PrioritySystem:     "SYSTEM",
		PriorityPlayer:     "PLAYER",
		PriorityAutomation: "AUTOMATION",
	}
	for pri, want := range cases {
		if got := pri.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", uint8(pri), got, want)
		}
		parsed, err := ParsePriority(want)
		if err != nil {
			t.Fatalf("ParsePriority(%q): %v", want, err)
		}
		if parsed != pri {
			t.Fatalf("ParsePriority(%q) = %v, want %v", want, parsed, pri)
		}
	}
	if _, err := ParsePriority("URGENT"); err == nil {
		t.Fatalf("ParsePriority accepted unknown name")
	}
	if Priority(7).Valid() {
		t.Fatalf("Priority(7) should be invalid")
	}
}

func TestNewRejectsMalformedInput(t *testing.T) {
	if _, err := New("prod/toggle", Priority(9), nil, 0, 0); err == nil {
		t.Fatalf("New accepted malformed priority")
	}
	if _, err := New("", PrioritySystem, nil, 0, 0); err == nil {
		t.Fatalf("New accepted empty command type")
	}
	cmd, err := New("prod/toggle", PriorityPlayer, map[string]any{"id": "mine_1"}, 42, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cmd.Type != "prod/toggle" || cmd.Priority != PriorityPlayer || cmd.Timestamp != 42 || cmd.Step != 7 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestErrorString(t *testing.T) {
	e := &Error{Code: CodeExecutionFailed, Message: "boom"}
	if e.Error() != "COMMAND_EXECUTION_FAILED: boom" {
		t.Fatalf("unexpected error string %q", e.Error())
	}
	bare := &Error{Code: CodeUnknownType}
	if bare.Error() != "UNKNOWN_COMMAND_TYPE" {
		t.Fatalf("unexpected bare error string %q", bare.Error())
	}
}
