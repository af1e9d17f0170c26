package urlcodec

// DefaultDelimiter separates key=value pairs unless WithDelimiter says otherwise.
const DefaultDelimiter = "&"

// Option configures parsing and serialization.
type Option func(*options)

type options struct {
	delimiter     string
	listSeparator string
	location      LocationProvider
}

func newOptions(opts []Option) options {
	o := options{delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(&o)
	}
	if o.delimiter == "" {
		o.delimiter = DefaultDelimiter
	}
	return o
}

// WithDelimiter sets the separator between key=value pairs.
//
// Pairs are split on the raw delimiter before anything is percent-decoded,
// so an encoded delimiter ("%2C" for ",") never splits a pair.
func WithDelimiter(d string) Option {
	return func(o *options) {
		o.delimiter = d
	}
}

// WithListSeparator enables comma-style list values: a decoded value that
// contains sep is split into a list, and list values are serialized as one
// pair joined by sep instead of one pair per entry.
//
//	ParseQuery("tags=go%2Cweb", WithListSeparator(","))   // tags → ["go", "web"]
func WithListSeparator(sep string) Option {
	return func(o *options) {
		o.listSeparator = sep
	}
}

// WithLocation sets where ParseQueryParams reads from when given a nil Input.
func WithLocation(p LocationProvider) Option {
	return func(o *options) {
		o.location = p
	}
}
