package search

import (
	"reflect"
	"strings"
	"testing"
)

const sampleContent = "Project Overview. This covers goals. Objective: ship v1."

func TestAnswerDocumentName(t *testing.T) {
	got := Answer("plan.txt", sampleContent, "what is the document name?")
	want := []string{"Document Name: plan.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Answer() = %v, want %v", got, want)
	}
}

func TestAnswerDocumentOverview(t *testing.T) {
	got := Answer("plan.txt", sampleContent, "document overview")
	want := []string{"Found in plan.txt: Project Overview"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Answer() = %v, want %v", got, want)
	}
}

func TestAnswerDocumentObjective(t *testing.T) {
	got := Answer("plan.txt", sampleContent, "give me the document objective")
	if len(got) != 1 {
		t.Fatalf("expected one result, got %v", got)
	}
	if !strings.Contains(got[0], "This covers goals") {
		t.Fatalf("result %q should contain the goals sentence", got[0])
	}
	if !strings.Contains(got[0], "Objective: ship v1.") {
		t.Fatalf("result %q should contain the objective sentence", got[0])
	}
}

func TestAnswerFallbackWordMatch(t *testing.T) {
	got := Answer("plan.txt", sampleContent, "ship")
	if len(got) != 1 {
		t.Fatalf("expected one result, got %v", got)
	}
	if !strings.Contains(got[0], "Objective: ship v1.") {
		t.Fatalf("result %q should contain the ship sentence", got[0])
	}
}

func TestAnswerFallbackFirstWordWins(t *testing.T) {
	// "covers" matches before "ship" is ever checked.
	got := Answer("plan.txt", sampleContent, "covers ship")
	want := []string{"Found in plan.txt: This covers goals"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Answer() = %v, want %v", got, want)
	}
}

func TestAnswerNameRuleBeatsOverviewRule(t *testing.T) {
	got := Answer("plan.txt", sampleContent, "document name and document overview")
	want := []string{"Document Name: plan.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Answer() = %v, want %v", got, want)
	}
}

func TestAnswerOverviewWithoutMatchingSentences(t *testing.T) {
	got := Answer("plan.txt", "Nothing relevant here. At all.", "document overview")
	want := []string{"Found in plan.txt: "}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Answer() = %v, want %v", got, want)
	}
}

func TestAnswerNoMatch(t *testing.T) {
	if got := Answer("plan.txt", sampleContent, "zeppelin"); got != nil {
		t.Fatalf("expected nil result, got %v", got)
	}
}

func TestAnswerEmptyQuery(t *testing.T) {
	if got := Answer("plan.txt", sampleContent, "   "); got != nil {
		t.Fatalf("expected nil result for blank query, got %v", got)
	}
}

func TestAnswerDeterministic(t *testing.T) {
	first := Answer("plan.txt", sampleContent, "document objective")
	for i := 0; i < 5; i++ {
		if got := Answer("plan.txt", sampleContent, "document objective"); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, want %v", i, got, first)
		}
	}
}
