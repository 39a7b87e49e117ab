package main

import (
	"testing"
)

func TestValidateCmdFlags(t *testing.T) {
	cmd := newValidateCmd()
	f := cmd.Flags()

	order, _ := f.GetBool("order")
	if order {
		t.Error("default order should be false")
	}
	if f.Lookup("order") == nil {
		t.Error("missing flag: order")
	}
}

func TestEvaluateCmdFlags(t *testing.T) {
	cmd := newEvaluateCmd()
	f := cmd.Flags()

	for _, flag := range []string{"output", "parallelism"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}

	parallelism, _ := f.GetInt("parallelism")
	if parallelism != 0 {
		t.Errorf("default parallelism = %d, want 0 (config-driven)", parallelism)
	}
}

func TestRankCmdFlags(t *testing.T) {
	cmd := newRankCmd()
	f := cmd.Flags()

	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}

	for _, flag := range []string{"scenario", "output", "parallelism"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestCompareCmdFlags(t *testing.T) {
	cmd := newCompareCmd()
	f := cmd.Flags()

	for _, flag := range []string{"option", "output", "parallelism"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestExplainCmdFlags(t *testing.T) {
	cmd := newExplainCmd()
	f := cmd.Flags()

	direction, _ := f.GetString("direction")
	if direction != "upstream" {
		t.Errorf("default direction = %q, want upstream", direction)
	}

	for _, flag := range []string{"node", "direction"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a", "b", "c"}, "a"},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"", "", "c"}, "c"},
		{[]string{"", "", ""}, ""},
	}

	for _, tt := range tests {
		got := firstNonEmpty(tt.args...)
		if got != tt.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
