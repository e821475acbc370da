package address_test

import (
	"net"
	"testing"

	"github.com/robgonnella/fleetprobe/internal/address"
	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/stretchr/testify/assert"
)

func collect(r *address.Range) []string {
	result := []string{}
	it := r.Iter()

	for {
		addr, ok := it.Next()

		if !ok {
			return result
		}

		result = append(result, addr)
	}
}

func TestExpand(t *testing.T) {
	t.Run("expands comma list in last octet", func(st *testing.T) {
		r, err := address.Expand("10.1.1.1,2", 1, 254)

		assert.NoError(st, err)
		assert.Equal(st, []string{"10.1.1.1", "10.1.1.2"}, collect(r))
	})

	t.Run("expands inclusive range", func(st *testing.T) {
		r, err := address.Expand("10.1.1-2.1", 1, 254)

		assert.NoError(st, err)
		assert.Equal(st, []string{"10.1.1.1", "10.1.2.1"}, collect(r))
	})

	t.Run("pads missing octets with default window", func(st *testing.T) {
		r, err := address.Expand("10.1", 1, 3)

		assert.NoError(st, err)
		assert.Equal(st, 9, r.Len())

		addrs := collect(r)

		assert.Equal(st, "10.1.1.1", addrs[0])
		assert.Equal(st, "10.1.1.2", addrs[1])
		assert.Equal(st, "10.1.3.3", addrs[8])
	})

	t.Run("size is product of octet cardinalities without duplicates", func(st *testing.T) {
		r, err := address.Expand("10.0-3.5,5,6.1-10", 1, 254)

		assert.NoError(st, err)
		assert.Equal(st, 4*2*10, r.Len())

		addrs := collect(r)
		seen := map[string]bool{}

		for _, a := range addrs {
			assert.False(st, seen[a], "duplicate address %s", a)
			seen[a] = true
			assert.NotNil(st, net.ParseIP(a).To4(), "invalid address %s", a)
		}

		assert.Equal(st, r.Len(), len(addrs))
	})

	t.Run("is restartable", func(st *testing.T) {
		r, err := address.Expand("192.168.0.1-4", 1, 254)

		assert.NoError(st, err)

		first := collect(r)
		second := collect(r)

		assert.Equal(st, first, second)
		assert.Equal(st, 4, len(first))
	})

	t.Run("expands cidr notation", func(st *testing.T) {
		r, err := address.Expand("10.0.0.0/30", 1, 254)

		assert.NoError(st, err)

		addrs := collect(r)

		assert.Equal(st, []string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3"}, addrs)
		assert.Equal(st, r.Len(), len(addrs))
		assert.Equal(st, addrs, collect(r))
	})

	t.Run("expands unaligned cidr from the network address", func(st *testing.T) {
		r, err := address.Expand("192.168.1.5/31", 1, 254)

		assert.NoError(st, err)
		assert.Equal(st, []string{"192.168.1.4", "192.168.1.5"}, collect(r))
	})

	t.Run("expands large cidr without building the address list", func(st *testing.T) {
		var r *address.Range

		allocs := testing.AllocsPerRun(5, func() {
			r, _ = address.Expand("10.0.0.0/8", 1, 254)
		})

		assert.Less(st, allocs, float64(64))
		assert.Equal(st, 1<<24, r.Len())

		it := r.Iter()

		first, ok := it.Next()
		assert.True(st, ok)
		assert.Equal(st, "10.0.0.0", first)

		for i := 0; i < 255; i++ {
			it.Next()
		}

		next, ok := it.Next()
		assert.True(st, ok)
		assert.Equal(st, "10.0.1.0", next)
	})

	t.Run("rejects invalid specifications", func(st *testing.T) {
		invalid := []string{
			"",
			"10.1.1.256",
			"10.1.5-2.1",
			"10.1.3-3.1",
			"10.1.a.1",
			"10..1.1",
			"10.1.1.1.1",
			"10.1.1-2-3.1",
			"10.1.1,x.1",
			"10.1.+1.1",
			"10.0.0.0/99",
			"fe80::/120",
		}

		for _, spec := range invalid {
			_, err := address.Expand(spec, 1, 254)

			assert.ErrorIs(st, err, exception.ErrInvalidRange, spec)
		}
	})

	t.Run("rejects invalid default window", func(st *testing.T) {
		_, err := address.Expand("10.1", 10, 5)

		assert.ErrorIs(st, err, exception.ErrInvalidRange)

		_, err = address.Expand("10.1", 0, 256)

		assert.ErrorIs(st, err, exception.ErrInvalidRange)
	})

	t.Run("expands all or fails on first invalid", func(st *testing.T) {
		ranges, err := address.ExpandAll([]string{"10.0.0.1", "10.0.0.2,3"}, 1, 254)

		assert.NoError(st, err)
		assert.Equal(st, 2, len(ranges))

		_, err = address.ExpandAll([]string{"10.0.0.1", "bad"}, 1, 254)

		assert.ErrorIs(st, err, exception.ErrInvalidRange)

		_, err = address.ExpandAll([]string{}, 1, 254)

		assert.ErrorIs(st, err, exception.ErrInvalidRange)
	})
}
