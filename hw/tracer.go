package hw

import (
	"io"

	"github.com/go-faster/jx"

	"advance/emu/log"
)

// tracer writes one JSON object per executed instruction, one object per
// line, capturing the pre-execution state. The encoder buffer is reused
// across lines.
type tracer struct {
	w   io.Writer
	enc jx.Encoder
}

func newTracer(w io.Writer) *tracer {
	return &tracer{w: w}
}

func (t *tracer) trace(c *CPU, addr, op uint32) {
	e := &t.enc
	e.Reset()

	e.ObjStart()
	e.FieldStart("cyc")
	e.Int64(c.Cycles)
	e.FieldStart("pc")
	e.Str(hexn(addr, 8))
	e.FieldStart("op")
	if c.cpsr.Thumb() {
		e.Str(hexn(op, 4))
	} else {
		e.Str(hexn(op, 8))
	}
	e.FieldStart("cpsr")
	e.Str(c.cpsr.String())
	e.FieldStart("r")
	e.ArrStart()
	for i := 0; i < 15; i++ {
		e.Str(hexn(c.r[i], 8))
	}
	e.ArrEnd()
	e.ObjEnd()

	if _, err := t.w.Write(append(e.Bytes(), '\n')); err != nil {
		log.ModCPU.ErrorZ("trace write failed, tracing disabled").
			Error("err", err).
			End()
		t.w = io.Discard
	}
}

func hexn(v uint32, n int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = digits[v&0xF]
		v >>= 4
	}
	return string(b)
}
