package oracle

import "errors"

var ErrNonPositiveQuote = errors.New("quote is not positive")
