// Package agb implements a reader for Game Boy Advance cartridge images
// and their 192-byte header.
package agb

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// HeaderSize is the size of the cartridge header at the start of the
// image.
const HeaderSize = 192

type Rom struct {
	header
	Data []byte // full image, header included
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, err
	}
	return rom, nil
}

// ReadFrom implements the io.ReaderFrom interface.
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := rom.decode(buf); err != nil {
		return 0, fmt.Errorf("failed to decode header: %w", err)
	}
	rom.Data = buf
	return int64(len(buf)), nil
}

type header struct {
	raw [HeaderSize]byte
}

func (hdr *header) decode(p []byte) error {
	if len(p) < HeaderSize {
		return fmt.Errorf("too small, needs %d bytes", HeaderSize)
	}
	copy(hdr.raw[:], p[:HeaderSize])

	if hdr.raw[0xB2] != 0x96 {
		return fmt.Errorf("invalid fixed byte: %#02x", hdr.raw[0xB2])
	}
	return nil
}

// Entry is the instruction executed first, normally a branch to the start
// of the game code.
func (hdr *header) Entry() uint32 {
	return binary.LittleEndian.Uint32(hdr.raw[0:4])
}

// Title is the cartridge title, up to 12 characters.
func (hdr *header) Title() string {
	return strings.TrimRight(string(hdr.raw[0xA0:0xAC]), "\x00")
}

// GameCode is the 4-character product code.
func (hdr *header) GameCode() string {
	return string(hdr.raw[0xAC:0xB0])
}

// MakerCode is the 2-character licensee code.
func (hdr *header) MakerCode() string {
	return string(hdr.raw[0xB0:0xB2])
}

func (hdr *header) Version() uint8 {
	return hdr.raw[0xBC]
}

// Checksum computes the header checksum over bytes 0xA0-0xBC.
func (hdr *header) Checksum() uint8 {
	var sum uint8
	for _, b := range hdr.raw[0xA0:0xBD] {
		sum += b
	}
	return -(sum + 0x19)
}

// ChecksumOK reports whether the stored header checksum matches the
// computed one.
func (hdr *header) ChecksumOK() bool {
	return hdr.raw[0xBD] == hdr.Checksum()
}

// PrintInfos writes a human-readable summary of the rom to w.
func (rom *Rom) PrintInfos(w io.Writer) {
	ck := "ok"
	if !rom.ChecksumOK() {
		ck = fmt.Sprintf("bad (expected %#02x, got %#02x)", rom.Checksum(), rom.raw[0xBD])
	}
	fmt.Fprintf(w, "title:      %s\n", rom.Title())
	fmt.Fprintf(w, "game code:  %s\n", rom.GameCode())
	fmt.Fprintf(w, "maker code: %s\n", rom.MakerCode())
	fmt.Fprintf(w, "version:    %d\n", rom.Version())
	fmt.Fprintf(w, "entry:      %#08x\n", rom.Entry())
	fmt.Fprintf(w, "checksum:   %s\n", ck)
	fmt.Fprintf(w, "size:       %d bytes\n", len(rom.Data))
}
