package archive

// Hook names a fixed extension point
type Hook string

const (
	HookWhere Hook = "getarchives_where"
	HookJoin  Hook = "getarchives_join"
	HookLink  Hook = "get_archives_link"
	HookTitle Hook = "the_title"
)

// FilterContext carries what a filter may need besides the value itself
type FilterContext struct {
	Request *Request
	PostID  int64
}

// Filter transforms a value at a hook
type Filter func(value string, fc FilterContext) string

// Filters holds the registered callbacks per hook. Callbacks run in
// registration order, each receiving the previous result.
type Filters struct {
	chains map[Hook][]Filter
}

func NewFilters() *Filters {
	return &Filters{chains: make(map[Hook][]Filter)}
}

// Add registers filter at hook and returns f for chaining
func (f *Filters) Add(hook Hook, filter Filter) *Filters {
	if filter == nil {
		return f
	}
	if f.chains == nil {
		f.chains = make(map[Hook][]Filter)
	}
	f.chains[hook] = append(f.chains[hook], filter)
	return f
}

// Run passes value through every filter registered at hook. A nil *Filters
// returns value unchanged.
func (f *Filters) Run(hook Hook, value string, fc FilterContext) string {
	if f == nil {
		return value
	}
	for _, filter := range f.chains[hook] {
		value = filter(value, fc)
	}
	return value
}

// Count returns the number of filters registered at hook
func (f *Filters) Count(hook Hook) int {
	if f == nil {
		return 0
	}
	return len(f.chains[hook])
}
