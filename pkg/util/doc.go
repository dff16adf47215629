// Package util provides common utility functions and data structures
//
// This package includes the generic set implementation used throughout
// the onboarding engine
package util
