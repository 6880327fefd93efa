package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2", "(2"},
		{"21", "(21"},
		{"2199", "(21) 99"},
		{"219941", "(21) 9941"},
		{"2199415256", "(21) 9941-5256"},
		{"21994152560", "(21) 99415-2560"},
		{"219941525601234", "(21) 99415-2560"},
		{"(21) 99415-2560", "(21) 99415-2560"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Phone(tc.in), "input %q", tc.in)
	}
}

func TestPhoneDigitsRoundTrip(t *testing.T) {
	masked := Phone("21994152560")
	assert.Equal(t, "(21) 99415-2560", masked)
	assert.Equal(t, "21994152560", PhoneDigits(masked))
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "R$ 0,00", Currency(0))
	assert.Equal(t, "R$ 0,05", Currency(5))
	assert.Equal(t, "R$ 123,45", Currency(12345))
	assert.Equal(t, "R$ 1.234,56", Currency(123456))
	assert.Equal(t, "R$ 1.234.567,89", Currency(123456789))
	assert.Equal(t, "R$ -123,45", Currency(-12345))
}

func TestCurrencyFromDigits(t *testing.T) {
	assert.Equal(t, "R$ 123,45", CurrencyFromDigits("12345"))
	assert.Equal(t, "R$ 0,00", CurrencyFromDigits(""))
	assert.Equal(t, "R$ 0,07", CurrencyFromDigits("7"))
}

func TestParseCurrencyRoundTrip(t *testing.T) {
	value, err := ParseCurrency("R$ 123,45")
	require.NoError(t, err)
	assert.InDelta(t, 123.45, value, 0.001)

	cents, err := CurrencyCents(Currency(12345))
	require.NoError(t, err)
	assert.Equal(t, int64(12345), cents)
}

func TestParseCurrencyPlainNumbers(t *testing.T) {
	value, err := ParseCurrency("123,45")
	require.NoError(t, err)
	assert.InDelta(t, 123.45, value, 0.001)

	value, err = ParseCurrency("123.45")
	require.NoError(t, err)
	assert.InDelta(t, 123.45, value, 0.001)

	value, err = ParseCurrency("")
	require.NoError(t, err)
	assert.Zero(t, value)
}

func TestParseCurrencyInvalid(t *testing.T) {
	_, err := ParseCurrency("abc")
	require.Error(t, err)
}
