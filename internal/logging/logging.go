// Package logging provides the single shared logrus logger used by every
// exported constructor in sax, dom, xpath and match, following the
// teacher's own "log \"github.com/sirupsen/logrus\"" convention (see
// main.go and xpath/symbol.go in the teacher's source) rather than a
// bespoke logging abstraction.
package logging

import "github.com/sirupsen/logrus"

var def = logrus.StandardLogger()

// Default returns the package-wide fallback logger used whenever a
// caller does not supply its own via a WithLogger option.
func Default() *logrus.Logger { return def }

// SetDefault replaces the package-wide fallback logger. Intended for
// process start-up; not safe to call concurrently with logging calls.
func SetDefault(l *logrus.Logger) {
	if l != nil {
		def = l
	}
}

// Field is a tiny convenience alias so call sites don't need to import
// logrus directly just to build a field set.
type Field = logrus.Fields
