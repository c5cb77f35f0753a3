package electric

import "testing"

func TestDefaultConfigEnablesColumnProjection(t *testing.T) {
	c := DefaultConfig()

	if !c.columnProjectionOnReadEnabled() {
		t.Error("expected column projection on read to default to enabled")
	}
	if c.decisionLogEnabled() {
		t.Error("expected decision log to default to disabled")
	}
	if c.MaxScopeDepth != 10 {
		t.Errorf("expected default max scope depth 10, got %d", c.MaxScopeDepth)
	}
}

func TestConfigExplicitFalseDisablesColumnProjection(t *testing.T) {
	f := false
	c := Config{EnableColumnProjectionOnRead: &f}

	if c.columnProjectionOnReadEnabled() {
		t.Error("expected an explicit false to disable column projection")
	}
}

func TestConfigExplicitTrueEnablesDecisionLog(t *testing.T) {
	tr := true
	c := Config{EnableDecisionLog: &tr}

	if !c.decisionLogEnabled() {
		t.Error("expected an explicit true to enable the decision log")
	}
}
