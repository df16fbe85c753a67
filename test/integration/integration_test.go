//go:build integration

// Package integration runs the Gherkin features in ./features against an in-process API
// server backed by SQLite, miniredis and a recording email provider.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"

	"github.com/money-tracker/backend/test/integration/steps"
)

// TestFeatures runs each feature file as its own subtest. GODOG_TAGS filters scenarios and
// GODOG_FORMAT overrides the pretty formatter.
func TestFeatures(t *testing.T) {
	features, err := filepath.Glob(filepath.Join("features", "*.feature"))
	if err != nil {
		t.Fatalf("failed to list features: %v", err)
	}
	if len(features) == 0 {
		t.Fatal("no feature files found")
	}

	t.Cleanup(steps.Shutdown)

	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "pretty"
	}

	for _, feature := range features {
		name := strings.TrimSuffix(filepath.Base(feature), ".feature")
		t.Run(name, func(t *testing.T) {
			opts := godog.Options{
				Format:   format,
				Paths:    []string{feature},
				Output:   colors.Colored(os.Stdout),
				Tags:     os.Getenv("GODOG_TAGS"),
				Strict:   true,
				TestingT: t,
				// Scenarios share one database and one clock.
				Concurrency: 1,
			}

			suite := godog.TestSuite{
				Name:                 "money-tracker-" + name,
				ScenarioInitializer:  steps.InitializeScenario,
				TestSuiteInitializer: steps.InitializeTestSuite,
				Options:              &opts,
			}
			if status := suite.Run(); status != 0 {
				t.Fatalf("feature %s failed with status %d", name, status)
			}
		})
	}
}
