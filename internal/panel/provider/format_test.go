package provider

import "testing"

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "name variant and type", in: "pp_stripe-blik_dkk", want: "Stripe Blik (DKK)"},
		{name: "name only", in: "fp_manual", want: "Manual"},
		{name: "courier", in: "fc_postex_postex", want: "Postex (POSTEX)"},
		{name: "single segment", in: "single", want: "Single"},
		{name: "empty", in: "", want: "Unknown Provider"},
		{name: "blank", in: "   ", want: "Unknown Provider"},
		{name: "empty name segment", in: "pp__x", want: "pp__x"},
		{name: "trailing underscore", in: "pp_system_", want: "System"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Format(tc.in); got != tc.want {
				t.Errorf("Format(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatPtrNil(t *testing.T) {
	t.Parallel()

	if got := FormatPtr(nil); got != Unknown {
		t.Fatalf("expected %q, got %q", Unknown, got)
	}
	id := "pp_stripe-blik_dkk"
	if got := FormatPtr(&id); got != "Stripe Blik (DKK)" {
		t.Fatalf("unexpected label %q", got)
	}
}
