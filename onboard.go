// Package onboard is the headless onboarding flow engine for the Wayfare
// mobile app. It owns the wizard session: which step the user is on, what has
// been collected, whether the user may advance, and the account-creation /
// code-verification sequence interleaved with the step sequence.
package onboard

const (
	// Name is the service name reported in logs and health output
	Name = "onboard"

	// Version is the service version reported in logs and health output
	Version = "0.3.0"
)
