package match

import (
	"math/rand/v2"
	"time"

	"github.com/arkcall/xmlmatch/param"
	"github.com/sirupsen/logrus"
)

// Context is the single-pass convenience object spec.md §4.5 calls for:
// a cached "now" timestamp (for message-age custom matchers), a
// transient parameter bag for per-pass memoisation, and a debug sink for
// trace output. The XPath leaf does not use Scratch: it caches its parsed
// dom.Document on the Aux slot of the param.Map being matched.
type Context struct {
	Now     time.Time
	Scratch *param.Map
	Log     logrus.FieldLogger

	rnd *rand.Rand
}

// NewContext starts a fresh match pass. now is captured once and reused
// by every node evaluated through this Context, per spec.md §4.5.
func NewContext(now time.Time, log logrus.FieldLogger) *Context {
	if log == nil {
		log = logrus.StandardLogger()
	}
	seed1 := uint64(now.UnixNano())
	seed2 := uint64(now.UnixNano()) ^ 0x9e3779b97f4a7c15
	return &Context{
		Now:     now,
		Scratch: param.New(),
		Log:     log,
		rnd:     rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// uniform draws a uniform integer in [0, max) — used by Random matching's
// "draws one uniform integer in [0, max-1)" (spec.md §4.5). No
// third-party PRNG is imported anywhere in the corpus for this; stdlib
// math/rand/v2 is the grounded choice.
func (c *Context) uniform(max uint32) uint32 {
	if max == 0 {
		return 0
	}
	return uint32(c.rnd.IntN(int(max)))
}
