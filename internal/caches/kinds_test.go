package caches

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestKindsFor_Deterministic(t *testing.T) {
	first := KindsFor(CategoryContent)
	for i := 0; i < 10; i++ {
		again := KindsFor(CategoryContent)
		if len(again) != len(first) {
			t.Fatalf("call %d returned %v, want %v", i, again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("call %d returned %v, want %v", i, again, first)
			}
		}
	}
	if first[0] != KindPrimaryIndex || first[1] != KindRenderedStatic {
		t.Fatalf("content-change should invalidate primary-index and rendered-static, got %v", first)
	}
}

func TestKindsFor_Table(t *testing.T) {
	cases := []struct {
		category Category
		want     []Kind
	}{
		{CategoryStructural, []Kind{KindPrimaryIndex, KindRenderedStatic, KindCompiledView}},
		{CategoryContent, []Kind{KindPrimaryIndex, KindRenderedStatic}},
		{CategoryTemplate, []Kind{KindRenderedStatic, KindCompiledView}},
		{CategoryAsset, []Kind{KindDerivedImage, KindRenderedStatic}},
		{Category("unspecified"), []Kind{KindPrimaryIndex}},
	}
	for _, tc := range cases {
		got := KindsFor(tc.category)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.category, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.category, got, tc.want)
			}
		}
	}
}

func TestSummarize_PartialFailure(t *testing.T) {
	kinds := []Kind{KindPrimaryIndex, KindRenderedStatic}
	outcomes := map[Kind]Outcome{
		KindPrimaryIndex:   {Succeeded: true},
		KindRenderedStatic: {Succeeded: false, Reason: "static cache backend unreachable"},
	}
	cleared, types := Summarize(kinds, outcomes)
	if !cleared {
		t.Fatal("primary kind succeeded, operation should count as cleared")
	}
	if len(types) != 1 || types[0] != string(KindPrimaryIndex) {
		t.Fatalf("unexpected cleared types: %v", types)
	}
}

func TestSummarize_PrimaryFailed(t *testing.T) {
	kinds := []Kind{KindPrimaryIndex, KindRenderedStatic}
	outcomes := map[Kind]Outcome{
		KindPrimaryIndex:   {Succeeded: false, Reason: "locked"},
		KindRenderedStatic: {Succeeded: true},
	}
	cleared, types := Summarize(kinds, outcomes)
	if cleared {
		t.Fatal("primary kind failed, operation should not count as cleared")
	}
	if len(types) != 1 || types[0] != string(KindRenderedStatic) {
		t.Fatalf("unexpected cleared types: %v", types)
	}
}

func TestLogInvalidator_AllSucceed(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	inv := NewLogInvalidator(logger)
	outcomes := inv.Invalidate(context.Background(), KindsFor(CategoryStructural))
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for k, out := range outcomes {
		if !out.Succeeded {
			t.Fatalf("kind %s should succeed", k)
		}
	}
}
