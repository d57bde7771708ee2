// internal/profile/profile_test.go
//
// Profile 與 Date 的單元測試與性質測試。
// 重點：排序不分大小寫、生日為最終決勝、Equal 與 Compare 一致。

package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCompareOrdersByLastFirstDOB(t *testing.T) {
	dob := mustDate(t, "1/1/1990")
	john := New("John", "Doe", dob)

	assert.Negative(t, Compare(New("Zed", "Adams", dob), john), "last name decides first")
	assert.Negative(t, Compare(New("Jane", "Doe", dob), john), "first name breaks last-name ties")
	assert.Positive(t, Compare(New("John", "Doe", mustDate(t, "1/2/1990")), john))
	assert.Zero(t, Compare(john, New("John", "Doe", dob)))
}

func TestCompareIgnoresCase(t *testing.T) {
	dob := mustDate(t, "2/19/2000")
	a := New("john", "DOE", dob)
	b := New("JOHN", "doe", dob)

	assert.Zero(t, Compare(a, b))
	assert.True(t, a.Equal(b))
}

func TestSameNameDifferentBirthdayNotEqual(t *testing.T) {
	a := New("John", "Doe", mustDate(t, "1/1/1990"))
	b := New("John", "Doe", mustDate(t, "1/1/1991"))

	assert.NotZero(t, Compare(a, b))
	assert.False(t, a.Equal(b))
}

func TestString(t *testing.T) {
	p := New("John", "Doe", mustDate(t, "2/19/2000"))
	assert.Equal(t, "John Doe 2/19/2000", p.String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2/29/2024")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: 2, Day: 29}, d)

	for _, bad := range []string{"", "2/29/2023", "13/1/2000", "4/31/2000", "a/b/c", "1/1",
		"+1/+1/+1990", "-1/1/1990", "1/1/+1990", "1/ 1/1990", "1//1990"} {
		_, err := ParseDate(bad)
		assert.Truef(t, errors.Is(err, ErrBadDate), "input %q: got %v", bad, err)
	}
}

func TestDateCompare(t *testing.T) {
	assert.Equal(t, -1, NewDate(1999, 12, 31).Compare(NewDate(2000, 1, 1)))
	assert.Equal(t, 1, NewDate(2000, 3, 1).Compare(NewDate(2000, 2, 29)))
	assert.Equal(t, 0, NewDate(2000, 3, 1).Compare(NewDate(2000, 3, 1)))
}

func genProfile() *rapid.Generator[Profile] {
	return rapid.Custom(func(t *rapid.T) Profile {
		first := rapid.SampledFrom([]string{"john", "John", "JANE", "jane", "Al"}).Draw(t, "first")
		last := rapid.SampledFrom([]string{"doe", "Doe", "Smith", "SMITH"}).Draw(t, "last")
		dob := NewDate(
			rapid.IntRange(1990, 1992).Draw(t, "year"),
			rapid.IntRange(1, 2).Draw(t, "month"),
			rapid.IntRange(1, 2).Draw(t, "day"),
		)
		return New(first, last, dob)
	})
}

func TestCompareIsTotalOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genProfile().Draw(t, "a")
		b := genProfile().Draw(t, "b")
		c := genProfile().Draw(t, "c")

		if sign(Compare(a, b)) != -sign(Compare(b, a)) {
			t.Fatalf("antisymmetry broken: %v vs %v", a, b)
		}
		if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
			t.Fatalf("transitivity broken: %v, %v, %v", a, b, c)
		}
		if a.Equal(b) != (Compare(a, b) == 0) {
			t.Fatalf("Equal disagrees with Compare for %v and %v", a, b)
		}
	})
}
