package entities

import "testing"

func TestJudgeKeyRoundTrip(t *testing.T) {
	for _, judge := range []JudgeIdentity{
		HumanJudge(42),
		AIJudge(7, "gpt-4o"),
		AIJudge(7, "vendor:model:v2"),
	} {
		parsed, ok := ParseJudgeKey(judge.Key())
		if !ok || parsed != judge {
			t.Fatalf("round trip of %q failed: %+v ok=%v", judge.Key(), parsed, ok)
		}
	}
	if AIJudge(7, "a").Key() == AIJudge(7, "b").Key() {
		t.Fatalf("same agent with different models must differ")
	}
}

func TestJudgeValidation(t *testing.T) {
	invalid := []JudgeIdentity{
		{},
		HumanJudge(0),
		AIJudge(0, "m"),
		AIJudge(3, ""),
		AIJudge(3, "two words"),
		{Kind: JudgeKindHuman, UserID: 1, Model: "x"},
		{Kind: "robot", UserID: 1},
	}
	for _, judge := range invalid {
		if judge.Valid() {
			t.Fatalf("expected %+v to be invalid", judge)
		}
	}
	for _, key := range []string{"", "user:", "user:abc", "agent:5", "agent:x:m", "team:1"} {
		if _, ok := ParseJudgeKey(key); ok {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
