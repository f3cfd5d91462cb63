// Package translate renders user-facing CPUlm messages in the locale of the
// host environment.
package translate

import (
	"io"
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// FALLBACK is the message language when the host reports none.
const FALLBACK = "en-US"

var printer *message.Printer

func init() {
	Use(hostLanguages()...)
}

func hostLanguages() (languages []string) {
	languages, err := locale.GetLocales()
	if err != nil {
		log.Printf("cpulm: locale: %v", err)
	}

	return
}

// Use selects the message language from an ordered list of preferences.
// An empty list selects FALLBACK.
func Use(languages ...string) {
	if len(languages) == 0 {
		languages = []string{FALLBACK}
	}

	printer = message.NewPrinter(message.MatchLanguage(languages...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Fprintf translates an en-US Printf() format and writes it to w.
func Fprintf(w io.Writer, key message.Reference, args ...any) (n int, err error) {
	return printer.Fprintf(w, key, args...)
}
