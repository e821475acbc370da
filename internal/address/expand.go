package address

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/projectdiscovery/mapcidr"
	"github.com/robgonnella/fleetprobe/internal/exception"
)

// Range represents a parsed address range specification. A Range is
// immutable and can be iterated any number of times.
type Range struct {
	spec   string
	octets [4][]int
	// only set for cidr notation
	network *net.IPNet
	size    int
}

// Iterator walks the addresses of a Range in octet-major order
type Iterator struct {
	r    *Range
	idx  [4]int
	ip   net.IP
	pos  int
	done bool
}

// Expand parses a range specification such as "10.1.1-2.1,5" into a Range.
// Missing trailing octets are expanded to [minDefault, maxDefault].
// Specifications containing "/" are treated as cidr notation.
func Expand(spec string, minDefault, maxDefault int) (*Range, error) {
	spec = strings.TrimSpace(spec)

	if spec == "" {
		return nil, fmt.Errorf("%w: empty range", exception.ErrInvalidRange)
	}

	if strings.Contains(spec, "/") {
		return expandCIDR(spec)
	}

	if minDefault < 0 || maxDefault > 255 || minDefault > maxDefault {
		return nil, fmt.Errorf(
			"%w: default octet bounds %d-%d",
			exception.ErrInvalidRange,
			minDefault,
			maxDefault,
		)
	}

	tokens := strings.Split(spec, ".")

	if len(tokens) > 4 {
		return nil, fmt.Errorf("%w: %q has more than 4 octets", exception.ErrInvalidRange, spec)
	}

	r := &Range{spec: spec}

	for i := 0; i < 4; i++ {
		if i >= len(tokens) {
			r.octets[i] = span(minDefault, maxDefault)
			continue
		}

		values, err := parseOctet(tokens[i])

		if err != nil {
			return nil, fmt.Errorf("%w: %q: %s", exception.ErrInvalidRange, spec, err.Error())
		}

		r.octets[i] = values
	}

	return r, nil
}

// ExpandAll expands every specification, failing on the first invalid one
func ExpandAll(specs []string, minDefault, maxDefault int) ([]*Range, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no ranges provided", exception.ErrInvalidRange)
	}

	ranges := []*Range{}

	for _, s := range specs {
		r, err := Expand(s, minDefault, maxDefault)

		if err != nil {
			return nil, err
		}

		ranges = append(ranges, r)
	}

	return ranges, nil
}

// String returns the original specification
func (r *Range) String() string {
	return r.spec
}

// Len returns the number of addresses in the range
func (r *Range) Len() int {
	if r.network != nil {
		return r.size
	}

	total := 1

	for _, o := range r.octets {
		total *= len(o)
	}

	return total
}

// Iter returns a new iterator positioned at the first address
func (r *Range) Iter() *Iterator {
	return &Iterator{r: r}
}

// Next returns the next address and false once the range is exhausted
func (it *Iterator) Next() (string, bool) {
	if it.r.network != nil {
		return it.nextInNetwork()
	}

	if it.done {
		return "", false
	}

	o := it.r.octets

	addr := strconv.Itoa(o[0][it.idx[0]]) + "." +
		strconv.Itoa(o[1][it.idx[1]]) + "." +
		strconv.Itoa(o[2][it.idx[2]]) + "." +
		strconv.Itoa(o[3][it.idx[3]])

	for i := 3; i >= 0; i-- {
		it.idx[i]++

		if it.idx[i] < len(o[i]) {
			return addr, true
		}

		it.idx[i] = 0
	}

	it.done = true

	return addr, true
}

func (it *Iterator) nextInNetwork() (string, bool) {
	if it.pos >= it.r.size {
		return "", false
	}

	if it.ip == nil {
		it.ip = it.r.network.IP
	} else {
		it.ip = mapcidr.GetNextIP(it.ip)
	}

	it.pos++

	return it.ip.String(), true
}

func expandCIDR(spec string) (*Range, error) {
	_, network, err := net.ParseCIDR(spec)

	if err != nil {
		return nil, fmt.Errorf("%w: %q: %s", exception.ErrInvalidRange, spec, err.Error())
	}

	ip := network.IP.To4()

	if ip == nil {
		return nil, fmt.Errorf("%w: %q is not an ipv4 network", exception.ErrInvalidRange, spec)
	}

	network.IP = ip

	return &Range{
		spec:    spec,
		network: network,
		size:    int(mapcidr.AddressCountIpnet(network)),
	}, nil
}

func parseOctet(token string) ([]int, error) {
	switch {
	case token == "":
		return nil, fmt.Errorf("empty octet")
	case strings.Contains(token, ","):
		return parseList(token)
	case strings.Contains(token, "-"):
		return parseSpan(token)
	default:
		v, err := parseValue(token)

		if err != nil {
			return nil, err
		}

		return []int{v}, nil
	}
}

func parseList(token string) ([]int, error) {
	seen := map[int]bool{}
	values := []int{}

	for _, part := range strings.Split(token, ",") {
		v, err := parseValue(part)

		if err != nil {
			return nil, err
		}

		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	sort.Ints(values)

	return values, nil
}

func parseSpan(token string) ([]int, error) {
	parts := strings.Split(token, "-")

	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed range %q", token)
	}

	lo, err := parseValue(parts[0])

	if err != nil {
		return nil, err
	}

	hi, err := parseValue(parts[1])

	if err != nil {
		return nil, err
	}

	if lo >= hi {
		return nil, fmt.Errorf("range min %d must be less than max %d", lo, hi)
	}

	return span(lo, hi), nil
}

func parseValue(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not an integer", s)
		}
	}

	v, err := strconv.Atoi(s)

	if err != nil {
		return 0, err
	}

	if v > 255 {
		return 0, fmt.Errorf("%d exceeds 255", v)
	}

	return v, nil
}

func span(lo, hi int) []int {
	values := make([]int, 0, hi-lo+1)

	for v := lo; v <= hi; v++ {
		values = append(values, v)
	}

	return values
}
