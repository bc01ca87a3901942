package cpf

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "no digits", input: "abc.-/ ", want: ""},
		{name: "one digit", input: "1", want: "1"},
		{name: "three digits", input: "111", want: "111"},
		{name: "four digits", input: "1234", want: "123.4"},
		{name: "six digits", input: "123456", want: "123.456"},
		{name: "seven digits", input: "1234567", want: "123.456.7"},
		{name: "nine digits", input: "123456789", want: "123.456.789"},
		{name: "ten digits", input: "1234567890", want: "123.456.789-0"},
		{name: "complete", input: "11144477735", want: "111.444.777-35"},
		{name: "already formatted", input: "111.444.777-35", want: "111.444.777-35"},
		{name: "noise between digits", input: " 111 / 444 a 777 b 35 ", want: "111.444.777-35"},
		{name: "excess digits dropped", input: "111444777359999", want: "111.444.777-35"},
		{name: "unicode noise", input: "１２３ção456", want: "456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "known valid", input: "11144477735", want: true},
		{name: "known valid formatted", input: "111.444.777-35", want: true},
		{name: "another valid", input: "529.982.247-25", want: true},
		{name: "first check digit reduced from ten", input: "123.456.789-09", want: true},
		{name: "wrong check digits", input: "12345678900", want: false},
		{name: "wrong first check digit", input: "11144477745", want: false},
		{name: "wrong second check digit", input: "11144477736", want: false},
		{name: "all ones", input: "11111111111", want: false},
		{name: "all zeros", input: "000.000.000-00", want: false},
		{name: "all nines", input: "99999999999", want: false},
		{name: "too short", input: "123", want: false},
		{name: "ten digits", input: "1114447773", want: false},
		{name: "twelve digits", input: "111444777350", want: false},
		{name: "empty", input: "", want: false},
		{name: "letters only", input: "abcdefghijk", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input), "IsValid(%q)", tt.input)
		})
	}
}

func TestIsValid_RejectsEveryRepeatedSequence(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		s := strings.Repeat(string(d), Length)
		assert.False(t, IsValid(s), "IsValid(%q)", s)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "11144477735", Normalize("111.444.777-35"))
	assert.Equal(t, "", Normalize("111.444.777-36"))
	assert.Equal(t, "", Normalize(""))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***.444.777-**", Mask("111.444.777-35"))
	assert.Equal(t, "", Mask("1114447773"))
}

func TestCheckDigits(t *testing.T) {
	check, ok := CheckDigits("111444777")
	require.True(t, ok)
	assert.Equal(t, "35", check)

	check, ok = CheckDigits("123456789")
	require.True(t, ok)
	assert.Equal(t, "09", check)

	for _, bad := range []string{"", "12345678", "1234567890", "12345678a"} {
		_, ok := CheckDigits(bad)
		assert.False(t, ok, "CheckDigits(%q)", bad)
	}
}

func TestGenerate(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1024))
	for i := 0; i < 500; i++ {
		c := Generate(r)
		require.Len(t, c, Length)
		require.True(t, IsValid(c), "generated %q is not valid", c)
	}
}

func TestFormat_Properties(t *testing.T) {
	inputs := []string{
		"", "0", "12", "111.444.777-35", "abc", "1-2-3-4-5-6-7-8-9-0-1-2-3",
		"  529 982 247 25  ", "cpf: 123.456.789-09 / rg: 12.345.678-9",
	}
	for _, s := range inputs {
		assertFormatProperties(t, s)
	}
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if Format("11144477735") != "111.444.777-35" || !IsValid("111.444.777-35") {
					t.Error("unexpected result under concurrent use")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func FuzzFormat(f *testing.F) {
	for _, seed := range []string{"", "111.444.777-35", "1234", "ab12cd34ef56gh78ij90kl12", "١٢٣"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		assertFormatProperties(t, s)
		IsValid(s)
	})
}

func assertFormatProperties(t *testing.T, s string) {
	t.Helper()

	out := Format(s)
	for _, r := range out {
		if !(r >= '0' && r <= '9') && r != '.' && r != '-' {
			t.Fatalf("Format(%q) = %q contains %q", s, out, r)
		}
	}

	want := Digits(s)
	if len(want) > Length {
		want = want[:Length]
	}
	if got := Digits(out); got != want {
		t.Fatalf("digits of Format(%q) = %q, want %q", s, got, want)
	}

	if again := Format(Digits(out)); again != out {
		t.Fatalf("Format not idempotent for %q: %q then %q", s, out, again)
	}
}
