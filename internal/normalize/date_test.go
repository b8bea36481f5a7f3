package normalize

import "testing"

func TestCleanDate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		absent bool
	}{
		{name: "iso fast path unchanged", in: "2023-07-04", want: "2023-07-04"},
		{name: "iso shape invalid calendar", in: "2023-02-30", absent: true},
		{name: "slash year first", in: "2023/01/15", want: "2023-01-15"},
		{name: "dot year first", in: "2023.01.15", want: "2023-01-15"},
		{name: "day first forced by value", in: "15/01/2023", want: "2023-01-15"},
		{name: "day first with dashes", in: "15-01-2023", want: "2023-01-15"},
		{name: "day first with dots", in: "15.01.2023", want: "2023-01-15"},
		{name: "ambiguous resolves via layout table", in: "03/04/2023", want: "2023-04-03"},
		{name: "month first forced by value", in: "01/15/2023", want: "2023-01-15"},
		{name: "unpadded tokens", in: "5/1/2023", want: "2023-01-05"},
		{name: "unpadded year first", in: "2023-7-4", want: "2023-07-04"},
		{name: "unpadded month first forced by value", in: "1/15/2023", want: "2023-01-15"},
		{name: "abbreviated month name", in: "Jan 15, 2023", want: "2023-01-15"},
		{name: "full month name", in: "January 15, 2023", want: "2023-01-15"},
		{name: "day before month name", in: "15 Jan 2023", want: "2023-01-15"},
		{name: "whitespace trimmed", in: "  2023-07-04  ", want: "2023-07-04"},
		{name: "empty", in: "", absent: true},
		{name: "blank", in: "   ", absent: true},
		{name: "garbage", in: "not a date", absent: true},
		{name: "two tokens only", in: "2023-07", absent: true},
		{name: "invalid day-first date", in: "32/01/2023", absent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanDate(tt.in)
			if tt.absent {
				if got != nil {
					t.Fatalf("CleanDate(%q) = %q, want absent", tt.in, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("CleanDate(%q) = absent, want %q", tt.in, tt.want)
			}
			if *got != tt.want {
				t.Fatalf("CleanDate(%q) = %q, want %q", tt.in, *got, tt.want)
			}
		})
	}
}

func TestInferDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want dayHint
	}{
		{"15 01 2023", hintDayFirst},
		{"01 15 2023", hintMonthFirst},
		{"03 04 2023", hintAmbiguous},
		{"2023 01 15", hintAmbiguous}, // year-first strings carry no hint
		{"", hintAmbiguous},
		{"nonsense", hintAmbiguous},
	}
	for _, tt := range tests {
		if got := inferDayFirst(tt.in); got != tt.want {
			t.Errorf("inferDayFirst(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
