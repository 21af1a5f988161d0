package common

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	SignIn(tenantID, username, role string) error
	SignOut()
	GET(path string, headers map[string]string) error
	GetLastStatus() int
	GetLastBody() []byte
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers identity, request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I am signed in to tenant "([^"]*)" as "([^"]*)" with role "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I am not signed in$`, steps.signOut)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.fieldShouldBeBool)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.bodyShouldContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) signIn(ctx context.Context, tenantID, username, role string) error {
	return s.tc.SignIn(tenantID, username, role)
}

func (s *commonSteps) signOut(ctx context.Context) error {
	s.tc.SignOut()
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.GetLastStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.GetLastBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeBool(ctx context.Context, field, want string) error {
	return s.fieldShouldBe(ctx, field, want)
}

func (s *commonSteps) bodyShouldContain(ctx context.Context, text string) error {
	if !bytes.Contains(s.tc.GetLastBody(), []byte(text)) {
		return fmt.Errorf("expected response to contain %q, got %s", text, s.tc.GetLastBody())
	}
	return nil
}
