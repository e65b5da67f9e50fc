package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kboateng/tracecheck/internal/spec"
	"github.com/kboateng/tracecheck/internal/trace"
)

// parseMessage builds a message through the real parser so validator tests
// exercise the same field shapes production sees.
func parseMessage(t *testing.T, lines ...string) *trace.Message {
	t.Helper()
	msgs, err := trace.Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	return msgs[0]
}

func newValidator(profile spec.Profile) *Validator {
	return New(spec.Builtin(), profile)
}

// =============================================================================
// SCHEME DETECTION
// =============================================================================

func TestDetectScheme(t *testing.T) {
	t.Run("DE 126 present means Mastercard, regardless of value", func(t *testing.T) {
		for _, value := range []string{"X", "", "0000"} {
			msg := parseMessage(t, "M.T.I [0210]", "FLD (126) (LLVAR) ["+value+"]")
			assert.Equal(t, Mastercard, DetectScheme(msg), "value %q", value)
		}
	})

	t.Run("DE 126 absent means Visa", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")
		assert.Equal(t, Visa, DetectScheme(msg))
	})
}

func TestIsNetworkManagement(t *testing.T) {
	for _, mti := range []string{"0800", "0810", "0820"} {
		assert.True(t, IsNetworkManagement(mti), mti)
	}
	for _, mti := range []string{"0200", "0210", "0100", "0430"} {
		assert.False(t, IsNetworkManagement(mti), mti)
	}
}

// =============================================================================
// MANDATORY-FIELD RESOLUTION
// =============================================================================

func TestMandatoryFields_DE126(t *testing.T) {
	v := newValidator(spec.ProfileGhana)

	t.Run("included only for response/advice MTIs", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (126) (LLVAR) [DATA]")
		assert.Contains(t, v.MandatoryFields("0210", Mastercard, msg), "126")
		assert.Contains(t, v.MandatoryFields("0110", Mastercard, msg), "126")
		assert.Contains(t, v.MandatoryFields("0430", Mastercard, msg), "126")
	})

	t.Run("excluded for other MTIs despite wildcard usage", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0200]", "FLD (126) (LLVAR) [DATA]")
		assert.NotContains(t, v.MandatoryFields("0200", Mastercard, msg), "126")
	})
}

func TestMandatoryFields_DE38(t *testing.T) {
	v := newValidator(spec.ProfileGhana)

	t.Run("Visa approved response includes DE 38", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")
		assert.Contains(t, v.MandatoryFields("0210", Visa, msg), "38")
	})

	t.Run("Visa declined response excludes DE 38 entirely", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [05]")
		assert.NotContains(t, v.MandatoryFields("0210", Visa, msg), "38")
	})

	t.Run("Visa with no response code excludes DE 38", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]")
		assert.NotContains(t, v.MandatoryFields("0210", Visa, msg), "38")
	})

	t.Run("Mastercard follows usage unconditionally", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [05]", "FLD (126) (LLVAR) [D]")
		assert.Contains(t, v.MandatoryFields("0210", Mastercard, msg), "38")
	})
}

func TestMandatoryFields_OrderAndRecomputation(t *testing.T) {
	v := newValidator(spec.ProfileGhana)

	t.Run("spec-table order preserved", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0200]")
		fields := v.MandatoryFields("0200", Visa, msg)
		require.NotEmpty(t, fields)
		assert.Equal(t, "2", fields[0], "PAN comes first in the table")
	})

	t.Run("re-evaluated per message, not cached", func(t *testing.T) {
		approved := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")
		declined := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [05]")
		assert.Contains(t, v.MandatoryFields("0210", Visa, approved), "38")
		assert.NotContains(t, v.MandatoryFields("0210", Visa, declined), "38")
	})
}

// =============================================================================
// FIELD VALIDATION
// =============================================================================

func TestValidateField_Dispatch(t *testing.T) {
	v := newValidator(spec.ProfileGhana)
	msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")

	t.Run("no rule means display-only", func(t *testing.T) {
		assert.Empty(t, v.ValidateField("999", "anything at all", "0210", Visa, msg))
	})

	t.Run("mandatory and empty fails first", func(t *testing.T) {
		issue := v.ValidateField("42", "", "0210", Visa, msg)
		assert.Equal(t, "Missing mandatory field 42", issue)
	})
}

func TestValidateField_ResponseCode(t *testing.T) {
	v := newValidator(spec.ProfileGhana)
	msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")

	t.Run("known codes pass", func(t *testing.T) {
		for _, code := range []string{"00", "01", "02"} {
			assert.Empty(t, v.ValidateField("39", code, "0210", Visa, msg), code)
		}
	})

	t.Run("unknown code fails", func(t *testing.T) {
		issue := v.ValidateField("39", "05", "0210", Visa, msg)
		assert.Equal(t, "Invalid response code: 05", issue)
	})

	t.Run("wrong length fails before the enum check", func(t *testing.T) {
		issue := v.ValidateField("39", "000", "0210", Visa, msg)
		assert.Contains(t, issue, "Invalid length")
	})
}

func TestValidateField_Strategies(t *testing.T) {
	v := newValidator(spec.ProfileGhana)
	msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")

	t.Run("DE 42 card acceptor: non-empty after trim only", func(t *testing.T) {
		assert.Empty(t, v.ValidateField("42", "SHOP 12*", "0210", Visa, msg),
			"no format constraint applies")
		assert.NotEmpty(t, v.ValidateField("42", "   ", "0210", Visa, msg))
	})

	t.Run("DE 12 local time: trailing six digits", func(t *testing.T) {
		assert.Empty(t, v.ValidateField("12", "102201", "0210", Visa, msg))
		assert.Empty(t, v.ValidateField("12", "10:22:01", "0210", Visa, msg))
		assert.Empty(t, v.ValidateField("12", "0831102201", "0210", Visa, msg),
			"date prefix discarded, trailing hhmmss kept")
		assert.NotEmpty(t, v.ValidateField("12", "1022", "0210", Visa, msg))
	})

	t.Run("DE 13 local date: trailing four digits", func(t *testing.T) {
		assert.Empty(t, v.ValidateField("13", "0831", "0210", Visa, msg))
		assert.Empty(t, v.ValidateField("13", "08/31", "0210", Visa, msg))
		assert.NotEmpty(t, v.ValidateField("13", "31", "0210", Visa, msg))
	})

	t.Run("DE 22 POS entry mode: leading 3-4 digits", func(t *testing.T) {
		assert.Empty(t, v.ValidateField("22", "051", "0210", Visa, msg))
		assert.Empty(t, v.ValidateField("22", "0510", "0210", Visa, msg))
		assert.Empty(t, v.ValidateField("22", "05105", "0210", Visa, msg),
			"trailing filler beyond four characters ignored")
		assert.NotEmpty(t, v.ValidateField("22", "05", "0210", Visa, msg))
		assert.NotEmpty(t, v.ValidateField("22", "05A", "0210", Visa, msg))
	})

	t.Run("DE 25 POS condition code: two digits, single digit padded", func(t *testing.T) {
		assert.Empty(t, v.ValidateField("25", "00", "0210", Visa, msg))
		assert.Empty(t, v.ValidateField("25", "5", "0210", Visa, msg),
			"single digit left-padded with zero")
		assert.Empty(t, v.ValidateField("25", "0051", "0210", Visa, msg),
			"only the leading two characters are considered")
		assert.NotEmpty(t, v.ValidateField("25", "A1", "0210", Visa, msg))
	})

	t.Run("DE 100 Ghana profile: numeric 1-11", func(t *testing.T) {
		assert.Empty(t, v.ValidateField("100", "423001", "0210", Visa, msg))
		assert.NotEmpty(t, v.ValidateField("100", "GH423001", "0210", Visa, msg))
		assert.NotEmpty(t, v.ValidateField("100", "123456789012", "0210", Visa, msg))
	})

	t.Run("DE 100 international profile: alphanumeric up to 15", func(t *testing.T) {
		intl := newValidator(spec.ProfileInternational)
		assert.Empty(t, intl.ValidateField("100", "GH423001", "0210", Visa, msg))
		assert.NotEmpty(t, intl.ValidateField("100", "GH-423001", "0210", Visa, msg))
		assert.NotEmpty(t, intl.ValidateField("100", "ABCDEFGH12345678", "0210", Visa, msg))
	})
}

func TestValidateField_DE38(t *testing.T) {
	v := newValidator(spec.ProfileGhana)

	t.Run("Visa approved response enforces 6 alphanumeric", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")
		assert.Empty(t, v.ValidateField("38", "A1B2C3", "0210", Visa, msg))
		assert.NotEmpty(t, v.ValidateField("38", "A1B2", "0210", Visa, msg))
		assert.NotEmpty(t, v.ValidateField("38", "A1B2C!", "0210", Visa, msg))
	})

	t.Run("Visa declined response never fails", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [05]")
		assert.Empty(t, v.ValidateField("38", "??", "0210", Visa, msg))
	})

	t.Run("Visa non-approval MTI never fails", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0430]", "FLD (039) (2) [00]")
		assert.Empty(t, v.ValidateField("38", "X", "0430", Visa, msg))
	})

	t.Run("Mastercard always enforces 6 alphanumeric", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [05]", "FLD (126) (LLVAR) [D]")
		assert.NotEmpty(t, v.ValidateField("38", "A1B2", "0210", Mastercard, msg))
		assert.Empty(t, v.ValidateField("38", "A1B2C3", "0210", Mastercard, msg))
	})
}

// =============================================================================
// MESSAGE VALIDATION
// =============================================================================

func TestValidateMessage_MissingMandatory(t *testing.T) {
	v := newValidator(spec.ProfileGhana)

	t.Run("Visa approved response flags missing DE 38", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")
		verdicts := v.ValidateMessage(msg)

		found := false
		for _, verdict := range verdicts {
			if verdict.Field == "38" {
				found = true
				assert.False(t, verdict.Present)
				assert.Equal(t, "Missing mandatory field 38", verdict.Issue)
			}
		}
		assert.True(t, found, "DE 38 must be resolved mandatory")
	})

	t.Run("Visa declined response has no DE 38 verdict at all", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [05]")
		for _, verdict := range v.ValidateMessage(msg) {
			assert.NotEqual(t, "38", verdict.Field)
		}
	})
}

func TestValidateMessage_NestedAlwaysPasses(t *testing.T) {
	v := newValidator(spec.ProfileGhana)
	msg := parseMessage(t,
		"M.T.I [0200]",
		"FLD (055) (120)",
		"> (9F26) : [A1B2C3D4]",
		"> (9F36) : [0042]",
	)

	var de55 *Verdict
	verdicts := v.ValidateMessage(msg)
	for i := range verdicts {
		if verdicts[i].Field == "55" {
			de55 = &verdicts[i]
			break
		}
	}
	require.NotNil(t, de55, "DE 55 is mandatory for 0200")
	assert.True(t, de55.Nested)
	assert.Equal(t, 2, de55.NestedCount)
	assert.True(t, de55.Passed())
}

func TestValidateMessage_ResponseCodeScenarios(t *testing.T) {
	v := newValidator(spec.ProfileGhana)

	t.Run("00 in a 0210 passes", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [00]")
		for _, verdict := range v.ValidateMessage(msg) {
			if verdict.Field == "39" {
				assert.True(t, verdict.Passed())
				return
			}
		}
		t.Fatal("DE 39 verdict not found")
	})

	t.Run("05 fails with an invalid response code issue", func(t *testing.T) {
		msg := parseMessage(t, "M.T.I [0210]", "FLD (039) (2) [05]")
		for _, verdict := range v.ValidateMessage(msg) {
			if verdict.Field == "39" {
				assert.Equal(t, "Invalid response code: 05", verdict.Issue)
				return
			}
		}
		t.Fatal("DE 39 verdict not found")
	})
}
