// =============================================================================
// ISO8583 Trace Validator - Regional Profiles
// =============================================================================
//
// Switch specifications observed in the field disagree on DE 100 (receiving
// institution identification code): the Ghana national spec declares it
// numeric LLVAR with 1-11 digits, while the international variant allows up
// to 15 alphanumeric characters. The profile is a configuration choice, not a
// hardcoded rule; each loaded table is tied to exactly one profile.
//
// =============================================================================

package spec

import "fmt"

// Profile selects the regional rule variant applied where specifications
// conflict (currently only DE 100).
type Profile int

const (
	// ProfileGhana enforces the Ghana national rules: DE 100 is strictly
	// numeric, length 1-11.
	ProfileGhana Profile = iota

	// ProfileInternational enforces the international rules: DE 100 is
	// alphanumeric, length at most 15.
	ProfileInternational
)

// ParseProfile parses a profile name from configuration.
func ParseProfile(name string) (Profile, error) {
	switch name {
	case "", "ghana":
		return ProfileGhana, nil
	case "international", "intl":
		return ProfileInternational, nil
	default:
		return 0, fmt.Errorf("unknown profile %q (valid: ghana, international)", name)
	}
}

// String returns the configuration name of the profile.
func (p Profile) String() string {
	switch p {
	case ProfileInternational:
		return "international"
	default:
		return "ghana"
	}
}
