package codec

import "testing"

func TestParseVector3(t *testing.T) {
	cases := []struct {
		in   string
		want Vec3
		ok   bool
	}{
		{"1,0,2", Vec3{1, 0, 2}, true},
		{" 1.5 -2 3e1 ", Vec3{1.5, -2, 30}, true},
		{"(1, 0, 2)", Vec3{1, 0, 2}, true},
		{"[4;5;6]", Vec3{4, 5, 6}, true},
		{"1,0", Vec3{}, false},
		{"1,0,2,3", Vec3{}, false},
		{"1,x,2", Vec3{}, false},
		{"NaN,0,0", Vec3{}, false},
		{"", Vec3{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseVector3(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParseVector3(%q) ok=%v, want %v", tc.in, ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("ParseVector3(%q)=%+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseVector3Tokens(t *testing.T) {
	if v, ok := ParseVector3Tokens([]string{"1", "2", "3", "ignored"}); !ok || v != (Vec3{1, 2, 3}) {
		t.Fatalf("extra tokens should be ignored: %+v ok=%v", v, ok)
	}
	if _, ok := ParseVector3Tokens([]string{"1", "2"}); ok {
		t.Fatalf("short token list should fail")
	}
	if _, ok := ParseVector3Tokens([]string{"1", "two", "3"}); ok {
		t.Fatalf("non-numeric token should fail")
	}
}

func TestParseColorNoClamp(t *testing.T) {
	c, ok := ParseColor("1.5,-0.2,0.5,1")
	if !ok {
		t.Fatalf("expected color to parse")
	}
	if c != (Color{R: 1.5, G: -0.2, B: 0.5, A: 1}) {
		t.Fatalf("color was altered: %+v", c)
	}
	if _, ok := ParseColor("1,0,0"); ok {
		t.Fatalf("three components should fail")
	}
	if _, ok := ParseColorTokens([]string{"1", "0", "0", "x"}); ok {
		t.Fatalf("non-numeric alpha should fail")
	}
}

func TestParseFloats(t *testing.T) {
	if _, ok := ParseFloats([]string{"1"}, 2); ok {
		t.Fatalf("fewer tokens than n should fail")
	}
	f, ok := ParseFloats([]string{"1", "2", "junk"}, 2)
	if !ok || len(f) != 2 || f[0] != 1 || f[1] != 2 {
		t.Fatalf("ParseFloats mismatch: %v ok=%v", f, ok)
	}
	if f, ok := ParseFloats(nil, 0); !ok || len(f) != 0 {
		t.Fatalf("zero arity should succeed with empty slice")
	}
}

func TestParseInt(t *testing.T) {
	for in, want := range map[string]int{"0": 0, " 2 ": 2, "-1": -1, "3.0": 3} {
		got, ok := ParseInt(in)
		if !ok || got != want {
			t.Fatalf("ParseInt(%q)=%d ok=%v, want %d", in, got, ok, want)
		}
	}
	for _, in := range []string{"1.5", "abc", "", "1e40"} {
		if _, ok := ParseInt(in); ok {
			t.Fatalf("ParseInt(%q) should fail", in)
		}
	}
}

func TestFormatVector3AndFrame(t *testing.T) {
	v := Vec3{1, 0, 2.5}
	if got := FormatVector3(v, ","); got != "1,0,2.5" {
		t.Fatalf("FormatVector3=%q", got)
	}
	if got := FormatVector3(v, " "); got != "1 0 2.5" {
		t.Fatalf("FormatVector3 with space=%q", got)
	}
	f := Frame{SwapYZ: true}
	tv := f.ToTransport(v)
	if tv != (Vec3{1, 2.5, 0}) {
		t.Fatalf("ToTransport=%+v", tv)
	}
	if back := f.FromTransport(tv); back != v {
		t.Fatalf("FromTransport=%+v", back)
	}
	if (Frame{}).ToTransport(v) != v {
		t.Fatalf("identity frame changed the vector")
	}
	if got := PackTokens([]string{" 1", "0 ", "2"}); got != "1,0,2" {
		t.Fatalf("PackTokens=%q", got)
	}
}
