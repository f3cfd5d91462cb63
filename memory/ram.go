// Package memory implements the word-addressed RAM of the CPUlm machine.
//
// The RAM is sparse and grows on demand: any address is valid, and touching
// an address beyond the current length extends the RAM rather than faulting.
// Ranges of addresses may carry write listeners, which is how memory-mapped
// registers are built.
package memory

import (
	"log"
	"slices"
)

const (
	PAGE_BITS = 10             // Words per page, as a power of two.
	PAGE_SIZE = 1 << PAGE_BITS // Words per page.
	PAGE_MASK = PAGE_SIZE - 1  // Mask of the word index within a page.
)

// WriteListener is called after a write has been stored.
type WriteListener func(addr uint32, value uint32)

// region is a write-mapped address range.
type region struct {
	start    uint32
	end      uint32
	listener WriteListener
}

type page [PAGE_SIZE]uint32

// Ram is the main memory. The zero value is an empty RAM.
type Ram struct {
	Warn          func(err error) // Uninitialized read diagnostic. Logs if nil.
	Uninitialized int             // Count of uninitialized reads.

	size    uint64
	pages   map[uint32]*page
	regions []region
}

// Len is the number of words spanned by the RAM.
func (ram *Ram) Len() uint64 {
	return ram.size
}

// Load stores words starting at address 0, without invoking listeners.
func (ram *Ram) Load(words []uint32) {
	for n, word := range words {
		ram.store(uint32(n), word)
	}
}

// Reset empties the RAM. Listeners stay mapped.
func (ram *Ram) Reset() {
	ram.size = 0
	clear(ram.pages)
	ram.Uninitialized = 0
}

// MapWrite registers a listener for writes landing in [start, end].
func (ram *Ram) MapWrite(start, end uint32, listener WriteListener) {
	ram.regions = append(ram.regions, region{
		start:    start,
		end:      end,
		listener: listener,
	})
}

// Read returns the word at addr. Reading past the end of the RAM grows it,
// reports ErrUninitializedRead through Warn, and returns 0.
func (ram *Ram) Read(addr uint32) (value uint32) {
	if uint64(addr) >= ram.size {
		ram.size = uint64(addr) + 1
		ram.Uninitialized++
		ram.warn(ErrUninitializedRead(addr))
		return
	}

	pg, ok := ram.pages[addr>>PAGE_BITS]
	if !ok {
		return
	}

	return pg[addr&PAGE_MASK]
}

// Peek returns the word at addr without growing the RAM or warning.
func (ram *Ram) Peek(addr uint32) uint32 {
	pg, ok := ram.pages[addr>>PAGE_BITS]
	if !ok || uint64(addr) >= ram.size {
		return 0
	}
	return pg[addr&PAGE_MASK]
}

// Write stores value at addr, then runs every listener mapped over addr.
func (ram *Ram) Write(addr uint32, value uint32) {
	ram.store(addr, value)

	for _, r := range ram.regions {
		if addr >= r.start && addr <= r.end {
			r.listener(addr, value)
		}
	}
}

// Slice returns a copy of count words starting at addr, as Peek reads
// them. The copy stops at the top of the address space.
func (ram *Ram) Slice(addr uint32, count int) (words []uint32) {
	count = int(min(uint64(max(count, 0)), 1<<32-uint64(addr)))
	words = make([]uint32, count)
	for n := range words {
		words[n] = ram.Peek(addr + uint32(n))
	}
	return
}

// Pages returns the indices of allocated pages in ascending order.
func (ram *Ram) Pages() []uint32 {
	indices := make([]uint32, 0, len(ram.pages))
	for index := range ram.pages {
		indices = append(indices, index)
	}
	slices.Sort(indices)
	return indices
}

func (ram *Ram) store(addr uint32, value uint32) {
	if uint64(addr) >= ram.size {
		ram.size = uint64(addr) + 1
	}

	index := addr >> PAGE_BITS
	pg, ok := ram.pages[index]
	if !ok {
		if value == 0 {
			// Unallocated pages already read back as zero.
			return
		}
		if ram.pages == nil {
			ram.pages = make(map[uint32]*page)
		}
		pg = &page{}
		ram.pages[index] = pg
	}

	pg[addr&PAGE_MASK] = value
}

func (ram *Ram) warn(err error) {
	if ram.Warn != nil {
		ram.Warn(err)
		return
	}
	log.Printf("ram: warning: %v", err)
}
