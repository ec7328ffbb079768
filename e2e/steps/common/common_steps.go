package common

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	LastStatus() int
	ResponseField(field string) (any, error)
}

// RegisterSteps registers generic response assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the status code should be (\d+)$`, steps.statusCodeShouldBe)
	ctx.Step(`^the error should be "([^"]*)"$`, steps.errorShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBeString)
	ctx.Step(`^the response field "([^"]*)" should be (-?\d+)$`, steps.fieldShouldBeNumber)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) statusCodeShouldBe(expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *commonSteps) errorShouldBe(expected string) error {
	got, err := s.tc.ResponseField("error_description")
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected error %q, got %q", expected, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeString(field, expected string) error {
	got, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != expected {
		return fmt.Errorf("expected field %q to be %q, got %v", field, expected, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeNumber(field string, expected int) error {
	got, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	// JSON numbers decode as float64.
	number, ok := got.(float64)
	if !ok {
		return fmt.Errorf("field %q is not a number: %v", field, got)
	}
	if int(number) != expected {
		return fmt.Errorf("expected field %q to be %d, got %v", field, expected, number)
	}
	return nil
}
