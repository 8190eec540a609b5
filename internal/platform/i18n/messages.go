// Package i18n resolves user-facing message keys through a translation
// catalog, so API error details can be localized without touching services.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var translations = []struct {
	key string
	en  string
}{
	{"request.not.found", "leasing request not found"},
	{"request.cannot.reject", "only pending requests can be rejected"},
	{"quote.not.found", "quote not found"},
	{"quote.cannot.update", "only draft quotes can be updated"},
	{"quote.not.accepted", "quote must be accepted before a contract can be created"},
	{"quote.expired", "quote validity period has passed"},
	{"contract.not.found", "contract not found"},
	{"contract.already.exists", "a contract already exists for this quote"},
	{"contract.not.active", "contract is not active"},
	{"equipment.not.found", "equipment not found"},
	{"productModel.not.found", "product model not found"},
	{"auth.access.denied", "access denied"},
	{"auth.invalid.credentials", "invalid email or password"},
}

// Printer formats messages for one locale.
type Printer struct {
	p *message.Printer
}

// NewPrinter builds a Printer for the given BCP47 tag, falling back to English.
func NewPrinter(locale string) *Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Printer{p: message.NewPrinter(tag, message.Catalog(buildCatalog()))}
}

// T resolves a message key, returning the key itself when unregistered.
func (pr *Printer) T(key string, args ...any) string {
	return pr.p.Sprintf(key, args...)
}

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tr := range translations {
		_ = b.SetString(language.English, tr.key, tr.en)
	}
	return b
}
