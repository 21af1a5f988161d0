package timeclock

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	POSTWithHeaders(path string, body interface{}, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetSystemKey() string
	GetSavedEntryID() string
	SetSavedEntryID(id string)
}

// RegisterSteps registers clock, listing, access and sweep steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &timeclockSteps{tc: tc}

	ctx.Step(`^I clock in employee "([^"]*)" at store "([^"]*)"$`, steps.clockIn)
	ctx.Step(`^I save the entry id$`, steps.saveEntryID)
	ctx.Step(`^I clock out the saved entry$`, steps.clockOutSaved)
	ctx.Step(`^I list today's entries for store "([^"]*)"$`, steps.listToday)

	ctx.Step(`^I check the "(login|clock)" window of store "([^"]*)"$`, steps.checkWindow)

	ctx.Step(`^I trigger the tenant auto clock-out$`, steps.sweepTenant)
	ctx.Step(`^the scheduler triggers the all-tenants auto clock-out$`, steps.sweepAllTenants)
	ctx.Step(`^the scheduler triggers the all-tenants auto clock-out with key "([^"]*)"$`, steps.sweepAllTenantsWithKey)
}

type timeclockSteps struct {
	tc TestContext
}

func (s *timeclockSteps) clockIn(ctx context.Context, employeeID, storeID string) error {
	return s.tc.POST("/timeclock/clock-in", map[string]interface{}{
		"employee_id": employeeID,
		"store_id":    storeID,
	})
}

func (s *timeclockSteps) saveEntryID(ctx context.Context) error {
	v, err := s.tc.GetResponseField("entry_id")
	if err != nil {
		return err
	}
	entryID, ok := v.(string)
	if !ok || entryID == "" {
		return fmt.Errorf("entry_id is not a string: %v", v)
	}
	s.tc.SetSavedEntryID(entryID)
	return nil
}

func (s *timeclockSteps) clockOutSaved(ctx context.Context) error {
	return s.tc.POST("/timeclock/clock-out", map[string]interface{}{
		"entry_id": s.tc.GetSavedEntryID(),
	})
}

func (s *timeclockSteps) listToday(ctx context.Context, storeID string) error {
	return s.tc.GET("/timeclock/today?store_id="+url.QueryEscape(storeID), nil)
}

func (s *timeclockSteps) checkWindow(ctx context.Context, window, storeID string) error {
	path := "/stores/" + url.PathEscape(storeID) + "/access/"
	if window == "login" {
		return s.tc.POST(path+"login", map[string]interface{}{})
	}
	return s.tc.GET(path+"clock", nil)
}

func (s *timeclockSteps) sweepTenant(ctx context.Context) error {
	return s.tc.POST("/timeclock/auto-clockout", map[string]interface{}{})
}

func (s *timeclockSteps) sweepAllTenants(ctx context.Context) error {
	return s.sweepAllTenantsWithKey(ctx, s.tc.GetSystemKey())
}

func (s *timeclockSteps) sweepAllTenantsWithKey(ctx context.Context, key string) error {
	return s.tc.POSTWithHeaders("/timeclock/auto-clockout/all-tenants", map[string]interface{}{}, map[string]string{
		"X-System-Key": key,
	})
}
