package airline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectory_Name(t *testing.T) {
	d := NewDirectory(nil)

	assert.Equal(t, "IndiGo", d.Name("6E"))
	assert.Equal(t, "Air India", d.Name("ai"))
	assert.Equal(t, "XX", d.Name("XX"))
	assert.Equal(t, UnknownAirline, d.Name(""))
	assert.Equal(t, UnknownAirline, d.Name("  "))
}

func TestNewDirectory_Overrides(t *testing.T) {
	d := NewDirectory(map[string]string{
		"xx": "Example Air",
		"AI": "Air India Ltd",
		"":   "ignored",
	})

	assert.Equal(t, "Example Air", d.Name("XX"))
	assert.Equal(t, "Air India Ltd", d.Name("AI"))
	assert.Equal(t, defaultNames["6E"], d.Name("6E"))
	assert.Equal(t, UnknownAirline, d.Name(""))
	assert.NotContains(t, d.names, "")
}

func TestNewStaticDirectory(t *testing.T) {
	d := NewStaticDirectory(map[string]string{"zz": "Fixture Air"})

	assert.Equal(t, "Fixture Air", d.Name("ZZ"))
	assert.Equal(t, "AI", d.Name("AI"))
	assert.Equal(t, map[string]string{"ZZ": "Fixture Air"}, d.names)
}
