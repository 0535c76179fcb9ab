package zone

import "testing"

func TestHRMax(t *testing.T) {
	cases := []struct{ age, want int }{
		{25, 195},
		{30, 192},
		{40, 185}, // round(211 - 0.64*40) = round(185.4)
		{50, 179},
	}
	for _, c := range cases {
		if got := HRMax(c.age); got != c.want {
			t.Errorf("HRMax(%d) = %d, want %d", c.age, got, c.want)
		}
	}
}

func TestForBPM(t *testing.T) {
	cases := []struct {
		bpm, hrMax int
		want       Code
	}{
		{50, 190, White}, // ~26%
		{100, 190, Grey},
		{120, 190, Blue},
		{140, 190, Green},
		{160, 190, Yellow},
		{180, 190, Red},
		{20, 190, White},
	}
	for _, c := range cases {
		if got := ForBPM(c.bpm, c.hrMax); got.Code != c.want {
			t.Errorf("ForBPM(%d, %d) = %s, want %s", c.bpm, c.hrMax, got.Code, c.want)
		}
	}
}

func TestForBPMBoundaryLowerBandWins(t *testing.T) {
	// Exactly 50% sits on white's max and grey's min; first match wins.
	if got := ForBPM(95, 190); got.Code != White {
		t.Errorf("50%% boundary = %s, want white", got.Code)
	}
}

func TestForBPMDefaults(t *testing.T) {
	if got := ForBPM(150, 0); got.Code != White {
		t.Errorf("hrMax=0 = %s, want white", got.Code)
	}
	if got := ForBPM(-10, 190); got.Code != White {
		t.Errorf("negative bpm = %s, want white", got.Code)
	}
	if got := ForBPM(400, 190); got.Code != White {
		t.Errorf("over 100%% = %s, want white", got.Code)
	}
}

func TestRange(t *testing.T) {
	cases := []struct {
		code Code
		want [2]int
	}{
		{White, [2]int{0, 95}},
		{Blue, [2]int{114, 131}},
		{Red, [2]int{171, 190}},
	}
	for _, c := range cases {
		z, ok := ByCode(c.code)
		if !ok {
			t.Fatalf("ByCode(%s) not found", c.code)
		}
		if got := Range(190, z); got != c.want {
			t.Errorf("Range(190, %s) = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestCanonicalOrder(t *testing.T) {
	want := []Code{White, Grey, Blue, Green, Yellow, Red}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("got %d zones, want %d", len(all), len(want))
	}
	for i, z := range all {
		if z.Code != want[i] {
			t.Errorf("zone %d = %s, want %s", i, z.Code, want[i])
		}
	}
	// Bands never overlap except at the shared inclusive boundary, and climb
	// monotonically from 0 to 100.
	if all[0].MinPercent != 0 || all[len(all)-1].MaxPercent != 100 {
		t.Errorf("bands do not span 0..100")
	}
	for i := 1; i < len(all); i++ {
		if all[i].MinPercent < all[i-1].MaxPercent {
			t.Errorf("band %s starts before %s ends", all[i].Code, all[i-1].Code)
		}
	}
}

func TestFromToken(t *testing.T) {
	cases := []struct {
		tok  string
		want Code
	}{
		{"⚪", White},
		{"⚫️", Grey},
		{"🔵", Blue},
		{"🟢", Green},
		{"🟡", Yellow},
		{"🔴", Red},
		{"White", White},
		{"GRAY", Grey},
		{"grey", Grey},
		{"blue", Blue},
	}
	for _, c := range cases {
		z, ok := FromToken(c.tok)
		if !ok {
			t.Fatalf("FromToken(%q) not recognized", c.tok)
		}
		if z.Code != c.want {
			t.Errorf("FromToken(%q) = %s, want %s", c.tok, z.Code, c.want)
		}
	}
	if _, ok := FromToken("purple"); ok {
		t.Error("FromToken(purple) should not resolve")
	}
}

func TestPercentRanges(t *testing.T) {
	r := PercentRanges()
	if got := r[Blue]; got != [2]int{60, 69} {
		t.Errorf("blue range = %v, want [60 69]", got)
	}
	if len(r) != 6 {
		t.Errorf("got %d ranges, want 6", len(r))
	}
}
