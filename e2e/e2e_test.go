//go:build e2e

package e2e

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
)

var opts = godog.Options{
	Output:   colors.Colored(os.Stdout),
	Format:   "pretty",
	Paths:    []string{"features"},
	Strict:   true,
	Tags:     os.Getenv("GODOG_TAGS"),
	NoColors: os.Getenv("CI") != "",
}

func init() {
	godog.BindCommandLineFlags("godog.", &opts)
}

// TestFeatures runs the feature files against a live server at BASE_URL
// backed by the OpenSanctions and face engine mocks.
func TestFeatures(t *testing.T) {
	flag.Parse()
	opts.TestingT = t

	status := godog.TestSuite{
		Name:                "kycgate",
		ScenarioInitializer: InitializeScenario,
		Options:             &opts,
	}.Run()
	if status != 0 {
		t.Fatalf("feature suite exited with status %d", status)
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	tc := NewTestContext()

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.Reset()
		return ctx, nil
	})

	sc.After(func(ctx context.Context, scn *godog.Scenario, err error) (context.Context, error) {
		if err != nil && tc.LastResponseBody != nil {
			_, _ = opts.Output.Write([]byte("last response for " + scn.Name + ": " + string(tc.LastResponseBody) + "\n"))
		}
		return ctx, nil
	})

	RegisterSteps(sc, tc)
}
