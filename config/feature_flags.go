package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/feedbackdesk/feedback-backend/types"
)

// Feature presets mirror the historical revisions of the feedback form.
const (
	PresetBasic    = "basic"
	PresetStandard = "standard"
	PresetFull     = "full"
)

// Environment variables that override a single capability of the preset.
const (
	envFeatureTitle                 = "FEATURE_TITLE"
	envFeatureNewsletter            = "FEATURE_NEWSLETTER"
	envFeatureTermsAcceptance       = "FEATURE_TERMS_ACCEPTANCE"
	envFeaturePerIndividualFeedback = "FEATURE_PER_INDIVIDUAL_FEEDBACK"
)

// PresetCapabilities returns the capability set for a named preset.
func PresetCapabilities(preset string) (types.Capabilities, error) {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case PresetBasic:
		return types.Capabilities{}, nil
	case PresetStandard:
		return types.Capabilities{Title: true, TermsAcceptance: true}, nil
	case "", PresetFull:
		return types.AllCapabilities(), nil
	default:
		return types.Capabilities{}, fmt.Errorf("unknown feature preset %q (want basic, standard or full)", preset)
	}
}

// ResolveCapabilities applies FEATURE_* environment overrides on top of a preset.
func ResolveCapabilities(preset string) (types.Capabilities, error) {
	caps, err := PresetCapabilities(preset)
	if err != nil {
		return caps, err
	}
	caps.Title = getBoolEnv(envFeatureTitle, caps.Title)
	caps.Newsletter = getBoolEnv(envFeatureNewsletter, caps.Newsletter)
	caps.TermsAcceptance = getBoolEnv(envFeatureTermsAcceptance, caps.TermsAcceptance)
	caps.PerIndividualFeedback = getBoolEnv(envFeaturePerIndividualFeedback, caps.PerIndividualFeedback)
	return caps, nil
}

// getBoolEnv retrieves a boolean environment variable with a default value
func getBoolEnv(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}

	// Convert to lowercase for case-insensitive comparison
	val = strings.ToLower(strings.TrimSpace(val))

	// Check for truthy values
	if val == "true" || val == "yes" || val == "1" || val == "on" {
		return true
	}

	// Try parsing as int
	if intVal, err := strconv.Atoi(val); err == nil {
		return intVal != 0
	}

	return false
}
