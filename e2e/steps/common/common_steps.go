package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario state the shared steps drive.
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	ResponseContains(field string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps binds the steps every feature file may use.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	st := &sharedSteps{tc: tc}

	ctx.Step(`^the KYC service is running$`, st.serviceLive)
	ctx.Step(`^I GET "([^"]*)"$`, st.get)
	ctx.Step(`^the response status should be (\d+)$`, st.statusIs)
	ctx.Step(`^the response should contain "([^"]*)"$`, st.hasField)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, func(field, want string) error {
		return st.field(field, "equal "+want, func(got string) bool { return got == want })
	})
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, func(field, part string) error {
		return st.field(field, fmt.Sprintf("contain %q", part), func(got string) bool { return strings.Contains(got, part) })
	})
}

type sharedSteps struct {
	tc TestContext
}

func (st *sharedSteps) serviceLive(context.Context) error {
	if err := st.tc.GET("/health/live", nil); err != nil {
		return fmt.Errorf("liveness probe: %w", err)
	}
	if code := st.tc.GetLastResponseStatus(); code != http.StatusOK {
		return fmt.Errorf("liveness probe returned %d", code)
	}
	return nil
}

func (st *sharedSteps) get(_ context.Context, path string) error {
	return st.tc.GET(path, nil)
}

func (st *sharedSteps) statusIs(_ context.Context, want int) error {
	if got := st.tc.GetLastResponseStatus(); got != want {
		return st.mismatch("status %d, want %d", got, want)
	}
	return nil
}

func (st *sharedSteps) hasField(_ context.Context, field string) error {
	if !st.tc.ResponseContains(field) {
		return st.mismatch("field %q missing", field)
	}
	return nil
}

func (st *sharedSteps) field(name, expectation string, ok func(string) bool) error {
	v, err := st.tc.GetResponseField(name)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); !ok(got) {
		return st.mismatch("field %q is %q, expected to %s", name, got, expectation)
	}
	return nil
}

func (st *sharedSteps) mismatch(format string, args ...any) error {
	return fmt.Errorf(format+"\nbody: %s", append(args, st.tc.GetLastResponseBody())...)
}
