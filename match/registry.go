package match

import (
	"fmt"
	"sync"

	"github.com/arkcall/xmlmatch/param"
)

// Factory is the custom-matcher extension point of spec.md §4.5/§6:
// "type-name string; build(name) -> Custom constructor; load_from_list/
// load_from_xml; dump methods; match_string/match_list_param
// implementations". Field names here mirror
// original_source/yatematchingitem.h's MatchingItemBase factory contract
// 1:1 (confirmed against engine/MatchingItem.cpp).
type Factory interface {
	TypeTag() string
	Build(id, name string) Matcher
	LoadFromList(flags LoadFlags, params *param.Map, prefix string) (Matcher, error)
	LoadFromXML(flags LoadFlags, payload string) (Matcher, error)
	DumpValue(m Matcher) string
	DumpText(m Matcher) string
	MatchString(ctx *Context, m Matcher, value string) bool
	MatchListParam(ctx *Context, m Matcher, params *param.Map) bool
}

// registry is the process-wide custom-matcher factory map, protected by
// a readers-writer lock per spec.md §5/§9: "expose as a process-wide map
// behind a readers-writer lock... avoid static constructors that depend
// on order of initialisation". Register/Unregister/Lookup are the only
// entry points.
var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{factories: make(map[string]Factory)}

// Register adds factory under its own TypeTag(). Duplicate registration
// is rejected.
func Register(factory Factory) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	tag := factory.TypeTag()
	if _, exists := registry.factories[tag]; exists {
		return fmt.Errorf("match: factory %q already registered", tag)
	}
	registry.factories[tag] = factory
	return nil
}

// Unregister removes the factory for typeTag, if any.
func Unregister(typeTag string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.factories, typeTag)
}

// Lookup returns the factory registered for typeTag, if any.
func Lookup(typeTag string) (Factory, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	f, ok := registry.factories[typeTag]
	return f, ok
}
