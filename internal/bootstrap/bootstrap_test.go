package bootstrap

import (
	"context"
	"errors"
	"testing"

	platformerrors "vibibay-client-go/internal/platform/errors"
)

func TestInitGraphDependenciesOrdered(t *testing.T) {
	steps := InitGraph()
	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if !seen[dep] {
				t.Errorf("step %s depends on %s which is not defined earlier", step.ID, dep)
			}
		}
		if seen[step.ID] {
			t.Errorf("duplicate step id %s", step.ID)
		}
		seen[step.ID] = true
	}
}

func TestExecuteInitStepsRejectsUnmetDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "b",
			Title:     "needs a",
			DependsOn: []string{"a"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}

	err := executeInitSteps(context.Background(), steps, &appState{})
	if err == nil {
		t.Fatal("expected dependency error")
	}
	if !platformerrors.IsKind(err, platformerrors.KindBootstrap) {
		t.Fatalf("expected bootstrap kind, got %v", err)
	}
}

func TestExecuteInitStepsWrapsUntypedErrors(t *testing.T) {
	boom := errors.New("boom")
	steps := []initStep{
		{
			ID:    "failing",
			Title: "always fails",
			Kind:  platformerrors.KindStorage,
			Execute: func(context.Context, *appState) error {
				return boom
			},
		},
	}

	err := executeInitSteps(context.Background(), steps, &appState{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !platformerrors.IsKind(err, platformerrors.KindStorage) {
		t.Fatalf("expected step kind applied, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
}

func TestExecuteInitStepsRunsInOrder(t *testing.T) {
	var order []string
	step := func(id string) initStep {
		return initStep{
			ID:    id,
			Title: id,
			Execute: func(context.Context, *appState) error {
				order = append(order, id)
				return nil
			},
		}
	}

	first := step("first")
	second := step("second")
	second.DependsOn = []string{"first"}

	err := executeInitSteps(context.Background(), []initStep{first, second}, &appState{})
	if err != nil {
		t.Fatalf("executeInitSteps error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected execution order: %v", order)
	}
}
