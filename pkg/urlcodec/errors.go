package urlcodec

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/urlkit/internal/errors"
)

// ErrUnsupportedInput is wrapped by every usage error the codec returns.
var ErrUnsupportedInput = stderrors.New("urlcodec: only strings or query param maps are accepted")

func newInputError(kind, input string) error {
	return errors.New("U001").
		Wrap(ErrUnsupportedInput).
		WithDetail(fmt.Sprintf("Got %s. Only query strings and key/value maps can be parsed or serialized.", kind)).
		WithInput(input, 1).
		WithSuggestion(`Pass a string such as "?a=1#top" or an object such as {"a": "1"}`)
}

func newValueError(raw string) error {
	return errors.New("U002").
		Wrap(ErrUnsupportedInput).
		WithInput(raw, 1)
}
