package validation

import (
	"strings"
	"testing"

	"jobfit/analyzer/internal/models"
)

func TestCheckInputEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		res := CheckInput(input)
		if res.OK {
			t.Errorf("CheckInput(%q): expected rejection", input)
		}
		if res.Code != models.CodeEmptyJobDescription {
			t.Errorf("CheckInput(%q): code = %s, want %s", input, res.Code, models.CodeEmptyJobDescription)
		}
		if res.Message != EmptyInputMessage {
			t.Errorf("CheckInput(%q): message = %q", input, res.Message)
		}
	}
}

func TestCheckInputLengthBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		ok       bool
		warning  bool
		rejected models.ErrorCode
	}{
		{name: "just under soft minimum", length: SoftMinLength - 1, ok: true, warning: true},
		{name: "at soft minimum", length: SoftMinLength, ok: true},
		{name: "at hard maximum", length: HardMaxLength, ok: true},
		{name: "over hard maximum", length: HardMaxLength + 1, rejected: models.CodeInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckInput(strings.Repeat("a", tc.length))
			if res.OK != tc.ok {
				t.Fatalf("OK = %v, want %v", res.OK, tc.ok)
			}
			if tc.ok {
				if (res.Warning != "") != tc.warning {
					t.Errorf("warning = %q, want warning: %v", res.Warning, tc.warning)
				}
				return
			}
			if res.Code != tc.rejected {
				t.Errorf("code = %s, want %s", res.Code, tc.rejected)
			}
		})
	}
}

func TestCheckInputMeasuresTrimmedRunes(t *testing.T) {
	// Multi-byte runes count once; surrounding whitespace does not count.
	input := "   " + strings.Repeat("é", HardMaxLength) + "   "
	if res := CheckInput(input); !res.OK {
		t.Errorf("expected %d runes to pass after trimming, got code %s", HardMaxLength, res.Code)
	}
}
