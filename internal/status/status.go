package status

import (
	"fmt"
	"time"
)

// Category the closed set of terminal probe outcomes
type Category string

const (
	Healthy         Category = "Healthy"
	PingFailed      Category = "PingFailed"
	ConnectionError Category = "ConnectionError"
	Timeout         Category = "Timeout"
	ProtocolError   Category = "ProtocolError"
	AuthError       Category = "AuthError"
	UnknownError    Category = "UnknownError"
	Disabled        Category = "Disabled"
)

// Categories every category in report order
var Categories = []Category{
	Healthy,
	PingFailed,
	ConnectionError,
	Timeout,
	ProtocolError,
	AuthError,
	UnknownError,
	Disabled,
}

var codes = map[Category]int{
	Healthy:         0,
	ProtocolError:   1,
	UnknownError:    3,
	Timeout:         4,
	ConnectionError: 5,
	PingFailed:      6,
	AuthError:       7,
	Disabled:        8,
}

// Parse returns the Category named s
func Parse(s string) (Category, error) {
	c := Category(s)

	if !c.Valid() {
		return "", fmt.Errorf("unknown status category: %s", s)
	}

	return c, nil
}

// Valid reports whether c is a member of the enumeration
func (c Category) Valid() bool {
	_, ok := codes[c]
	return ok
}

// Code returns the numeric exit code for c, -1 if c is invalid
func (c Category) Code() int {
	code, ok := codes[c]

	if !ok {
		return -1
	}

	return code
}

func (c Category) String() string {
	return string(c)
}

// Outcome the classified result of one probe attempt
type Outcome struct {
	TargetID  int
	Timestamp time.Time
	Category  Category
	Detail    string
	Elapsed   time.Duration
}
