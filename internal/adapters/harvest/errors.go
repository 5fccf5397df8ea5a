package harvest

import "errors"

// ErrReadPage reports a page that could not be tokenized.
var ErrReadPage = errors.New("read stats page")
