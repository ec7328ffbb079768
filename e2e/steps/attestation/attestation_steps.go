package attestation

import (
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Authenticate(name string) error
	ActAs(name string) error
	POST(path string, body any) error
	PUT(path string, body any) error
	LastStatus() int
	ResponseField(field string) (any, error)
	Address(name string) string
	SuperAdmin() string
}

// RegisterSteps registers identity and credential step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &attestationSteps{tc: tc}

	// Identity steps
	ctx.Step(`^"([^"]*)" is authenticated$`, steps.isAuthenticated)
	ctx.Step(`^"([^"]*)" creates the DID "([^"]*)"$`, steps.createsDID)
	ctx.Step(`^"([^"]*)" has a DID$`, steps.hasDID)
	ctx.Step(`^the super admin has a DID$`, steps.superAdminHasDID)
	ctx.Step(`^"([^"]*)" sets profile name "([^"]*)" and email "([^"]*)"$`, steps.setsProfile)

	// Credential steps
	ctx.Step(`^the super admin assigns role "([^"]*)" with salary (\d+) to "([^"]*)"$`, steps.superAdminAssigns)
	ctx.Step(`^"([^"]*)" assigns role "([^"]*)" with salary (\d+) to "([^"]*)"$`, steps.assigns)
	ctx.Step(`^the super admin issues a credential for "([^"]*)" with role "([^"]*)" and salary (\d+)$`, steps.superAdminIssues)
	ctx.Step(`^"([^"]*)" verifies that "([^"]*)" holds role "([^"]*)" issued by the super admin$`, steps.verifiesRole)
	ctx.Step(`^"([^"]*)" verifies that "([^"]*)" earns (\d+) issued by the super admin$`, steps.verifiesSalary)
	ctx.Step(`^the verification should succeed$`, steps.verificationShouldSucceed)
	ctx.Step(`^the verification should fail$`, steps.verificationShouldFail)
}

type attestationSteps struct {
	tc TestContext
}

func (s *attestationSteps) isAuthenticated(name string) error {
	return s.tc.Authenticate(name)
}

func (s *attestationSteps) createsDID(name, identifier string) error {
	if err := s.tc.ActAs(name); err != nil {
		return err
	}
	return s.tc.POST("/identity/dids", map[string]string{"identifier": identifier})
}

func (s *attestationSteps) hasDID(name string) error {
	if err := s.tc.Authenticate(name); err != nil {
		return err
	}
	if err := s.createsDID(name, "did:hunt:"+name); err != nil {
		return err
	}
	if s.tc.LastStatus() != http.StatusCreated {
		return fmt.Errorf("creating DID for %q returned status %d", name, s.tc.LastStatus())
	}
	return nil
}

func (s *attestationSteps) superAdminHasDID() error {
	return s.hasDID("admin")
}

func (s *attestationSteps) setsProfile(name, profileName, email string) error {
	if err := s.tc.ActAs(name); err != nil {
		return err
	}
	return s.tc.PUT("/identity/metadata", map[string]string{
		"name":  profileName,
		"email": email,
	})
}

func (s *attestationSteps) superAdminAssigns(role string, salary int, user string) error {
	return s.assigns("admin", role, salary, user)
}

func (s *attestationSteps) assigns(caller, role string, salary int, user string) error {
	if err := s.tc.ActAs(caller); err != nil {
		return err
	}
	return s.tc.POST("/credentials/assign", map[string]any{
		"user":   s.tc.Address(user),
		"role":   role,
		"salary": salary,
	})
}

func (s *attestationSteps) superAdminIssues(user, role string, salary int) error {
	if err := s.tc.ActAs("admin"); err != nil {
		return err
	}
	return s.tc.POST("/credentials/issue", map[string]any{
		"user":   s.tc.Address(user),
		"role":   role,
		"salary": salary,
	})
}

func (s *attestationSteps) verifiesRole(caller, subject, role string) error {
	if err := s.tc.ActAs(caller); err != nil {
		return err
	}
	return s.tc.POST("/credentials/verify-role", map[string]any{
		"subject": s.tc.Address(subject),
		"role":    role,
		"issuer":  s.tc.SuperAdmin(),
	})
}

func (s *attestationSteps) verifiesSalary(caller, subject string, salary int) error {
	if err := s.tc.ActAs(caller); err != nil {
		return err
	}
	return s.tc.POST("/credentials/verify-salary", map[string]any{
		"subject": s.tc.Address(subject),
		"salary":  salary,
		"issuer":  s.tc.SuperAdmin(),
	})
}

func (s *attestationSteps) verificationOutcome(expected bool) error {
	if s.tc.LastStatus() != http.StatusOK {
		return fmt.Errorf("verification returned status %d", s.tc.LastStatus())
	}
	verified, err := s.tc.ResponseField("verified")
	if err != nil {
		return err
	}
	if verified != expected {
		return fmt.Errorf("expected verified=%v, got %v", expected, verified)
	}
	return nil
}

func (s *attestationSteps) verificationShouldSucceed() error {
	return s.verificationOutcome(true)
}

func (s *attestationSteps) verificationShouldFail() error {
	return s.verificationOutcome(false)
}
