// Package domain defines premium features, access levels and the table that
// maps one to the other for a given premium status.
package domain

import (
	"fmt"
	"strconv"
)

// Feature names a premium-gated capability. The set is closed.
type Feature string

const (
	FeatureUnlimitedCourses    Feature = "unlimited_courses"
	FeatureCoachingSessions    Feature = "coaching_sessions"
	FeatureDownloadableContent Feature = "downloadable_content"
	FeatureAdFree              Feature = "ad_free"
	FeatureCertificates        Feature = "certificates"
	FeaturePrioritySupport     Feature = "priority_support"
	FeatureExclusiveContent    Feature = "exclusive_content"
	FeatureEarlyAccess         Feature = "early_access"
)

// Features lists every feature in display order.
func Features() []Feature {
	return []Feature{
		FeatureUnlimitedCourses,
		FeatureCoachingSessions,
		FeatureDownloadableContent,
		FeatureAdFree,
		FeatureCertificates,
		FeaturePrioritySupport,
		FeatureExclusiveContent,
		FeatureEarlyAccess,
	}
}

// ParseFeature validates a feature name.
func ParseFeature(s string) (Feature, error) {
	for _, f := range Features() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
}

// AccessLevel is ordered: none < limited < full.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessLimited
	AccessFull
)

func (l AccessLevel) String() string {
	switch l {
	case AccessNone:
		return "none"
	case AccessLimited:
		return "limited"
	case AccessFull:
		return "full"
	default:
		return "AccessLevel(" + strconv.Itoa(int(l)) + ")"
	}
}

// ParseAccessLevel converts a level name.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch s {
	case "none":
		return AccessNone, nil
	case "limited":
		return AccessLimited, nil
	case "full", "":
		return AccessFull, nil
	default:
		return AccessNone, fmt.Errorf("%w: %q", ErrUnknownAccessLevel, s)
	}
}

// Satisfies reports whether l meets required.
func (l AccessLevel) Satisfies(required AccessLevel) bool {
	return l >= required
}

// MarshalText encodes the level by name.
func (l AccessLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
