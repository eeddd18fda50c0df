package onboarding

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetValidToken() string
	GetInvalidToken() string
	GetToken() string
	SetToken(token string)
}

// RegisterSteps registers onboarding step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &onboardingSteps{tc: tc}

	// Session steps
	ctx.Step(`^a valid registration link$`, steps.validLink)
	ctx.Step(`^an unknown registration link$`, steps.unknownLink)
	ctx.Step(`^I open the registration session$`, steps.openSession)
	ctx.Step(`^the remaining seconds should be positive$`, steps.remainingPositive)

	// Location steps
	ctx.Step(`^I load locations for country "([^"]*)"$`, steps.loadLocations)
	ctx.Step(`^I load locations without a country$`, steps.loadLocationsWithoutCountry)
	ctx.Step(`^the states dropdown should not be empty$`, steps.statesNotEmpty)

	// Submission steps
	ctx.Step(`^I submit an individual customer named "([^"]*)" with identity number "([^"]*)"$`, steps.submitIndividual)
	ctx.Step(`^I submit a corporate customer named "([^"]*)" without a tax number$`, steps.submitCorporateWithoutTax)
}

type onboardingSteps struct {
	tc TestContext
}

func (s *onboardingSteps) validLink(ctx context.Context) error {
	if s.tc.GetValidToken() == "" {
		return godog.ErrPending
	}
	s.tc.SetToken(s.tc.GetValidToken())
	return nil
}

func (s *onboardingSteps) unknownLink(ctx context.Context) error {
	s.tc.SetToken(s.tc.GetInvalidToken())
	return nil
}

func (s *onboardingSteps) base() string {
	return "/onboarding/" + url.PathEscape(s.tc.GetToken())
}

func (s *onboardingSteps) openSession(ctx context.Context) error {
	return s.tc.GET(s.base()+"/session", nil)
}

func (s *onboardingSteps) remainingPositive(ctx context.Context) error {
	v, err := s.tc.GetResponseField("remainingSeconds")
	if err != nil {
		return err
	}
	n, ok := v.(float64)
	if !ok || n <= 0 {
		return fmt.Errorf("expected positive remainingSeconds, got %v", v)
	}
	return nil
}

func (s *onboardingSteps) loadLocations(ctx context.Context, country string) error {
	return s.tc.GET(s.base()+"/locations?countryCode="+url.QueryEscape(country), nil)
}

func (s *onboardingSteps) loadLocationsWithoutCountry(ctx context.Context) error {
	return s.tc.GET(s.base()+"/locations", nil)
}

func (s *onboardingSteps) statesNotEmpty(ctx context.Context) error {
	v, err := s.tc.GetResponseField("states")
	if err != nil {
		return err
	}
	states, ok := v.([]interface{})
	if !ok || len(states) == 0 {
		return fmt.Errorf("expected states, got %v", v)
	}
	return nil
}

func (s *onboardingSteps) submitIndividual(ctx context.Context, name, identityNumber string) error {
	body := map[string]interface{}{
		"customerName":   name,
		"isIndividual":   true,
		"identityNumber": identityNumber,
		"communications": []map[string]interface{}{
			{"type": "EMAIL", "value": "e2e@example.com"},
		},
	}
	return s.tc.POST(s.base()+"/submit", body)
}

func (s *onboardingSteps) submitCorporateWithoutTax(ctx context.Context, name string) error {
	body := map[string]interface{}{
		"customerName": name,
		"isIndividual": false,
	}
	return s.tc.POST(s.base()+"/submit", body)
}
