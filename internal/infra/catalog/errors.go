package catalog

import "errors"

var errEmpty = errors.New("catalog is empty")
