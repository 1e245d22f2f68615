package ember

import "testing"

func TestParseSizeUnits(t *testing.T) {
	cases := map[string]int64{
		"100":  100,
		"1K":   1 << 10,
		"10k":  10 << 10,
		"5M":   5 << 20,
		"1g":   1 << 30,
		"1G":   1 << 30,
		" 64K": 64 << 10,
	}
	for input, want := range cases {
		got, err := ParseSize(input)
		if err != nil {
			t.Errorf("ParseSize(%q) unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseSize(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestParseSizeInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "-5", "5X", "-1K"} {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q): expected error", input)
		}
	}
}

func TestMustParseSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid size")
		}
	}()
	MustParseSize("not-a-size")
}

func TestMustParseSizeOK(t *testing.T) {
	if MustParseSize("2M") != 2<<20 {
		t.Fatal("unexpected value")
	}
}
