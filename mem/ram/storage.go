package ram

import "fmt"

// A Storage keeps the content of a memory in one contiguous buffer, so that
// DMI can hand it out directly.
type Storage struct {
	data []byte
}

// NewStorage creates a zero-filled storage of the given capacity.
func NewStorage(capacity uint64) *Storage {
	if capacity == 0 {
		panic("storage capacity must be positive")
	}

	return &Storage{data: make([]byte, capacity)}
}

// Capacity returns the size of the storage in bytes.
func (s *Storage) Capacity() uint64 {
	return uint64(len(s.data))
}

// Bytes returns the buffer that backs the storage.
func (s *Storage) Bytes() []byte {
	return s.data
}

// Contains tells if [addr, addr+length) is inside the storage.
func (s *Storage) Contains(addr, length uint64) bool {
	return addr < s.Capacity() && length <= s.Capacity()-addr
}

// Read copies the bytes at addr into data.
func (s *Storage) Read(addr uint64, data []byte) error {
	if !s.Contains(addr, uint64(len(data))) {
		return fmt.Errorf("reading %d bytes at 0x%x: beyond capacity 0x%x",
			len(data), addr, s.Capacity())
	}

	copy(data, s.data[addr:])

	return nil
}

// Write copies data to addr.
func (s *Storage) Write(addr uint64, data []byte) error {
	if !s.Contains(addr, uint64(len(data))) {
		return fmt.Errorf("writing %d bytes at 0x%x: beyond capacity 0x%x",
			len(data), addr, s.Capacity())
	}

	copy(s.data[addr:], data)

	return nil
}
