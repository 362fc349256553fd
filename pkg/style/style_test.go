package style

import "testing"

func TestLengthString(t *testing.T) {
	tests := []struct {
		l    Length
		want string
	}{
		{Unset, ""},
		{Auto, "auto"},
		{Px(0), "0px"},
		{Px(12.5), "12.5px"},
		{Px(-500), "-500px"},
	}
	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseLength(t *testing.T) {
	for _, s := range []string{"", "auto", "0px", "12.5px", "-500px"} {
		l, err := ParseLength(s)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", s, err)
		}
		if l.String() != s {
			t.Errorf("ParseLength(%q).String() = %q", s, l.String())
		}
	}
	if _, err := ParseLength("wide"); err == nil {
		t.Error("ParseLength should reject non-numeric lengths")
	}
}

func TestStyleCSS(t *testing.T) {
	tests := []struct {
		name string
		s    Style
		want string
	}{
		{"zero", Style{}, ""},
		{"absolute", Absolute(0), "position: absolute; top: 0px"},
		{"fixed", Fixed(10, 20, 300), "position: fixed; top: 10px; left: 20px; right: auto; width: 300px"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.CSS(); got != tt.want {
				t.Errorf("CSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeDefault, ModeAbsolute, ModeFixed} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("sticky"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}

func TestStyleIsZero(t *testing.T) {
	if !(Style{}).IsZero() {
		t.Error("zero Style should report IsZero")
	}
	if Absolute(0).IsZero() {
		t.Error("Absolute(0) should not be zero")
	}
}
