package correspondence

import (
	"errors"
	"testing"
)

func TestFormatFolioPadsToFourDigits(t *testing.T) {
	folio, err := FormatFolio("DPE-OCI", 1)
	if err != nil {
		t.Fatalf("FormatFolio() error = %v", err)
	}
	if folio != "DPE-OCI-0001" {
		t.Fatalf("FormatFolio() = %q, want DPE-OCI-0001", folio)
	}
}

func TestFormatFolioWidensBeyondPadWidth(t *testing.T) {
	folio, err := FormatFolio("DPE-OCI", 10000)
	if err != nil {
		t.Fatalf("FormatFolio() error = %v", err)
	}
	if folio != "DPE-OCI-10000" {
		t.Fatalf("FormatFolio() = %q, want DPE-OCI-10000", folio)
	}
}

func TestFormatFolioExhaustion(t *testing.T) {
	if _, err := FormatFolio("DPE-OCI", MaxFolioSequence); err != nil {
		t.Fatalf("sequence at cap must still format, got %v", err)
	}

	_, err := FormatFolio("DPE-OCI", MaxFolioSequence+1)
	if !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("FormatFolio() error = %v, want ErrSequenceExhausted", err)
	}
}

func TestValidateScope(t *testing.T) {
	for _, scope := range []string{"DPE-OCI", "DA-RH", "DPE-OCI-01"} {
		if err := ValidateScope(scope); err != nil {
			t.Errorf("ValidateScope(%q) = %v, want nil", scope, err)
		}
	}
	for _, scope := range []string{"", "DPE", "dpe-oci", "D-OCI", "DPE-OCI-AA-BB", "DPE_OCI"} {
		if err := ValidateScope(scope); err == nil {
			t.Errorf("ValidateScope(%q) = nil, want error", scope)
		}
	}
}
