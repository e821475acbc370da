package discovery

import "github.com/robgonnella/fleetprobe/internal/address"

// Targets the lazy product of address ranges and ports. Targets are
// produced address-major: every port of an address before the next address.
type Targets struct {
	ranges []*address.Range
	ports  []int
}

// TargetIterator walks a Targets sequence from the start
type TargetIterator struct {
	t      *Targets
	ri     int
	addrIt *address.Iterator
	addr   string
	pi     int
}

// NewTargets returns a new instance of Targets
func NewTargets(ranges []*address.Range, ports []int) *Targets {
	return &Targets{ranges: ranges, ports: ports}
}

// Len returns the total number of scan targets
func (t *Targets) Len() int {
	total := 0

	for _, r := range t.ranges {
		total += r.Len()
	}

	return total * len(t.ports)
}

// Iter returns a new iterator positioned at the first target
func (t *Targets) Iter() *TargetIterator {
	return &TargetIterator{t: t}
}

// Next returns the next target and false once exhausted
func (it *TargetIterator) Next() (ScanTarget, bool) {
	if len(it.t.ports) == 0 {
		return ScanTarget{}, false
	}

	for it.addrIt == nil || it.pi >= len(it.t.ports) {
		if it.addrIt == nil {
			if it.ri >= len(it.t.ranges) {
				return ScanTarget{}, false
			}

			it.addrIt = it.t.ranges[it.ri].Iter()
		}

		addr, ok := it.addrIt.Next()

		if !ok {
			it.ri++
			it.addrIt = nil
			continue
		}

		it.addr = addr
		it.pi = 0
	}

	target := ScanTarget{Address: it.addr, Port: it.t.ports[it.pi]}
	it.pi++

	return target, true
}
