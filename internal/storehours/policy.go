// Package storehours decides whether a login or clock action is permitted at
// a store at a given instant, and when forgotten sessions are auto-closed.
//
// Windows, relative to the store's own zone:
//
//	login         [open - 30m, close + 45m]
//	clock action  [open - 30m, close + 30m]
//	auto clockout  close + 30m
//
// A store whose closing time is earlier than its opening time is overnight:
// its close falls on the following calendar day. Membership is inclusive at
// both ends. Stores without parseable hours are always allowed.
package storehours

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	DefaultLoginEarly   = 30 * time.Minute
	DefaultLoginLate    = 45 * time.Minute
	DefaultClockEarly   = 30 * time.Minute
	DefaultClockLate    = 30 * time.Minute
	DefaultAutoClockout = 30 * time.Minute
)

// overnightCutoff classifies closing times when the opening time is unknown:
// a store closing before 06:00 is assumed to close after midnight.
var overnightCutoff = ClockTime{Hour: 6}

// Buffers widen a store's open interval into an access window.
type Buffers struct {
	Early time.Duration
	Late  time.Duration
}

// Policy evaluates store-hours windows. It holds no per-request state and is
// safe for concurrent use.
type Policy struct {
	defaultZone     *time.Location
	defaultZoneName string
	login           Buffers
	clock           Buffers
	autoDelay       time.Duration

	zones sync.Map // name -> *time.Location
}

// Option configures a Policy.
type Option func(*Policy)

// WithLoginBuffers overrides the login window buffers.
func WithLoginBuffers(early, late time.Duration) Option {
	return func(p *Policy) {
		p.login = Buffers{Early: early, Late: late}
	}
}

// WithClockBuffers overrides the clock action window buffers.
func WithClockBuffers(early, late time.Duration) Option {
	return func(p *Policy) {
		p.clock = Buffers{Early: early, Late: late}
	}
}

// WithAutoClockoutDelay overrides the delay after closing at which open
// sessions are auto-closed.
func WithAutoClockoutDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.autoDelay = d
	}
}

// New builds a Policy whose fallback zone is defaultZone. The fallback is
// used for stores with a missing or unknown zone; it is never silently UTC.
func New(defaultZone string, opts ...Option) (*Policy, error) {
	name := strings.TrimSpace(defaultZone)
	if name == "" {
		return nil, fmt.Errorf("default timezone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load default timezone %q: %w", name, err)
	}
	p := &Policy{
		defaultZone:     loc,
		defaultZoneName: name,
		login:           Buffers{Early: DefaultLoginEarly, Late: DefaultLoginLate},
		clock:           Buffers{Early: DefaultClockEarly, Late: DefaultClockLate},
		autoDelay:       DefaultAutoClockout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Location resolves a store zone name, falling back to the default zone
// when the name is empty or unknown.
func (p *Policy) Location(name string) (*time.Location, string) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return p.defaultZone, p.defaultZoneName
	}
	if cached, ok := p.zones.Load(name); ok {
		return cached.(*time.Location), name
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return p.defaultZone, p.defaultZoneName
	}
	p.zones.Store(name, loc)
	return loc, name
}

// CanLogin evaluates the login window.
func (p *Policy) CanLogin(h Hours, at time.Time) Decision {
	return p.Evaluate(h, at, WindowLogin)
}

// CanClockAction evaluates the clock-in/out window.
func (p *Policy) CanClockAction(h Hours, at time.Time) Decision {
	return p.Evaluate(h, at, WindowClock)
}

// Evaluate decides whether at falls inside the store's window of the given kind.
func (p *Policy) Evaluate(h Hours, at time.Time, kind WindowKind) Decision {
	opening, closing, ok := h.Parse()
	if !ok {
		return allowed(nil)
	}
	buf := p.buffers(kind)
	loc, zoneName := p.Location(h.Timezone)
	now := at.In(loc)
	today := DateOf(now)

	openAt := today.At(opening, loc)
	closeAt := today.At(closing, loc)

	if closing.Before(opening) {
		closeAt = today.AddDays(1).At(closing, loc)

		// Before today's open, the instant may still belong to yesterday's shift.
		if now.Before(openAt) {
			prevStart := today.AddDays(-1).At(opening, loc).Add(-buf.Early)
			prevEnd := today.At(closing, loc).Add(buf.Late)
			if within(now, prevStart, prevEnd) {
				return allowed(p.metadata(h, zoneName, prevStart, prevEnd, now))
			}
		}
	}

	start := openAt.Add(-buf.Early)
	end := closeAt.Add(buf.Late)
	md := p.metadata(h, zoneName, start, end, now)
	if within(now, start, end) {
		return allowed(md)
	}
	return denied(denialReason(kind, start, end, now, zoneName, h), errorCode(kind), md)
}

// BusinessDate returns the store business day an instant belongs to.
// For overnight stores, instants before the early buffer of today's opening
// belong to the previous day's shift.
func (p *Policy) BusinessDate(h Hours, at time.Time) Date {
	loc, _ := p.Location(h.Timezone)
	now := at.In(loc)
	today := DateOf(now)
	opening, closing, ok := h.Parse()
	if !ok || !closing.Before(opening) {
		return today
	}
	if now.Before(today.At(opening, loc).Add(-p.clock.Early)) {
		return today.AddDays(-1)
	}
	return today
}

// AutoClockoutAt returns the instant open sessions of business day d are
// force-closed: closing time (on the next day for overnight stores) plus the
// auto clock-out delay. ok is false when the closing time is missing or
// malformed.
func (p *Policy) AutoClockoutAt(h Hours, d Date) (time.Time, bool) {
	closing, ok := ParseClockTime(h.Closing)
	if !ok {
		return time.Time{}, false
	}
	loc, _ := p.Location(h.Timezone)

	overnight := closing.Before(overnightCutoff)
	if opening, ok := ParseClockTime(h.Opening); ok {
		overnight = closing.Before(opening)
	}
	closeDay := d
	if overnight {
		closeDay = d.AddDays(1)
	}
	return closeDay.At(closing, loc).Add(p.autoDelay), true
}

// AutoClockoutDelay is the time after closing at which open sessions close.
func (p *Policy) AutoClockoutDelay() time.Duration {
	return p.autoDelay
}

// AutoClockoutFor is AutoClockoutAt for the business day containing at.
func (p *Policy) AutoClockoutFor(h Hours, at time.Time) (time.Time, Date, bool) {
	d := p.BusinessDate(h, at)
	deadline, ok := p.AutoClockoutAt(h, d)
	return deadline, d, ok
}

// OpeningAt returns the opening instant of business day d.
func (p *Policy) OpeningAt(h Hours, d Date) (time.Time, bool) {
	opening, ok := ParseClockTime(h.Opening)
	if !ok {
		return time.Time{}, false
	}
	loc, _ := p.Location(h.Timezone)
	return d.At(opening, loc), true
}

func (p *Policy) buffers(kind WindowKind) Buffers {
	if kind == WindowLogin {
		return p.login
	}
	return p.clock
}

func (p *Policy) metadata(h Hours, zone string, start, end, now time.Time) *Metadata {
	return &Metadata{
		WindowStart: start,
		WindowEnd:   end,
		CurrentTime: now,
		Timezone:    zone,
		OpeningTime: strings.TrimSpace(h.Opening),
		ClosingTime: strings.TrimSpace(h.Closing),
	}
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func errorCode(kind WindowKind) string {
	if kind == WindowLogin {
		return ErrorCodeStoreClosedLogin
	}
	return ErrorCodeOutsideClockWindow
}

const clockLayout = "15:04"

func denialReason(kind WindowKind, start, end, now time.Time, zone string, h Hours) string {
	hours := fmt.Sprintf("Store hours: %s - %s.", strings.TrimSpace(h.Opening), strings.TrimSpace(h.Closing))
	current := fmt.Sprintf("Current time: %s (%s).", now.Format(clockLayout), zone)
	if kind == WindowLogin {
		return fmt.Sprintf("Store is closed. Login is allowed from %s to %s (%s). %s %s",
			start.Format(clockLayout), end.Format(clockLayout), zone, current, hours)
	}
	return fmt.Sprintf("Clock in/out is allowed only between %s and %s (%s). %s %s",
		start.Format(clockLayout), end.Format(clockLayout), zone, current, hours)
}
