package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterResolvesKnownKeys(t *testing.T) {
	p := NewPrinter("en")
	assert.Equal(t, "quote validity period has passed", p.T("quote.expired"))
	assert.Equal(t, "access denied", p.T("auth.access.denied"))
}

func TestPrinterFallsBackForUnknownLocale(t *testing.T) {
	p := NewPrinter("not-a-locale")
	assert.Equal(t, "invalid email or password", p.T("auth.invalid.credentials"))
}

func TestPrinterReturnsKeyForUnknownMessage(t *testing.T) {
	p := NewPrinter("en")
	assert.Equal(t, "no.such.key", p.T("no.such.key"))
}
