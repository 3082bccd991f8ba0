package automation

import "errors"

// ErrLocatorMiss means no form was found even after one navigation attempt
var ErrLocatorMiss = errors.New("no form found on page or after navigation")
