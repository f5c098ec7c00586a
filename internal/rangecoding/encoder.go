package rangecoding

import "math/bits"

// Encoder writes one fixed-size frame.
type Encoder struct {
	buf        []byte // Output buffer, one frame
	storage    uint32 // Frame size in bytes
	offs       uint32 // Range coder write offset
	endOffs    uint32 // Raw bytes written from the end
	endWindow  uint32 // Pending raw bits
	nendBits   int    // Number of pending raw bits
	nbitsTotal int    // Total bits written (for tell functions)
	rng        uint32 // Range size
	val        uint32 // Low end of range
	rem        int    // Buffered byte for carry propagation (-1 = none)
	ext        uint32 // Count of pending 0xFF bytes
	err        int    // Non-zero once the frame overflowed
}

// Init starts a frame spanning all of buf.
func (e *Encoder) Init(buf []byte) {
	e.buf = buf
	e.storage = uint32(len(buf))
	e.offs = 0
	e.endOffs = 0
	e.endWindow = 0
	e.nendBits = 0
	e.nbitsTotal = EC_CODE_BITS + 1
	e.rng = EC_CODE_TOP
	e.val = 0
	e.rem = -1
	e.ext = 0
	e.err = 0
}

// carryOut buffers output bytes until a carry can no longer reach them.
// Runs of 0xFF are counted in ext and resolved by the next non-0xFF byte.
func (e *Encoder) carryOut(c int) {
	if c != EC_SYM_MAX {
		carry := c >> EC_SYM_BITS
		if e.rem >= 0 {
			e.writeByte(byte(e.rem + carry))
		}
		if e.ext > 0 {
			sym := byte((EC_SYM_MAX + carry) & EC_SYM_MAX)
			for ; e.ext > 0; e.ext-- {
				e.writeByte(sym)
			}
		}
		e.rem = c & EC_SYM_MAX
	} else {
		e.ext++
	}
}

func (e *Encoder) normalize() {
	for e.rng <= EC_CODE_BOT {
		e.carryOut(int(e.val >> EC_CODE_SHIFT))
		e.val = (e.val << EC_SYM_BITS) & (EC_CODE_TOP - 1)
		e.rng <<= EC_SYM_BITS
		e.nbitsTotal += EC_SYM_BITS
	}
}

func (e *Encoder) writeByte(b byte) {
	if e.offs+e.endOffs >= e.storage {
		e.err = -1
		return
	}
	e.buf[e.offs] = b
	e.offs++
}

func (e *Encoder) writeEndByte(b byte) {
	if e.offs+e.endOffs >= e.storage {
		e.err = -1
		return
	}
	e.endOffs++
	e.buf[e.storage-e.endOffs] = b
}

// Encode encodes a symbol occupying cumulative frequencies [fl, fh) of ft.
func (e *Encoder) Encode(fl, fh, ft uint32) {
	r := e.rng / ft
	if fl > 0 {
		e.val += e.rng - r*(ft-fl)
		e.rng = r * (fh - fl)
	} else {
		e.rng -= r * (ft - fh)
	}
	e.normalize()
}

// EncodeBit encodes one bit where P(1) = 1/2^logp. logp = 1 is an
// equiprobable bit costing exactly one bit.
func (e *Encoder) EncodeBit(val int, logp uint) {
	r := e.rng
	s := r >> logp
	if val != 0 {
		e.val += r - s
		e.rng = s
	} else {
		e.rng = r - s
	}
	e.normalize()
}

// EncodeUniform encodes val uniformly distributed in [0, ft). Values wider
// than EC_UINT_BITS send their low bits raw.
func (e *Encoder) EncodeUniform(val uint32, ft uint32) {
	if ft <= 1 {
		return
	}
	ftb := uint(ilog(ft - 1))
	if ftb > EC_UINT_BITS {
		ftb -= EC_UINT_BITS
		ft1 := ((ft - 1) >> ftb) + 1
		hi := val >> ftb
		e.Encode(hi, hi+1, ft1)
		e.EncodeRawBits(val&((1<<ftb)-1), ftb)
		return
	}
	e.Encode(val, val+1, ft)
}

// EncodeRawBits writes bits (at most 25) raw at the end of the frame.
func (e *Encoder) EncodeRawBits(val uint32, nbits uint) {
	if nbits == 0 {
		return
	}
	window := e.endWindow
	used := e.nendBits
	if used+int(nbits) > EC_WINDOW_SIZE {
		for used >= EC_SYM_BITS {
			e.writeEndByte(byte(window & EC_SYM_MAX))
			window >>= EC_SYM_BITS
			used -= EC_SYM_BITS
		}
	}
	window |= val << used
	used += int(nbits)
	e.endWindow = window
	e.nendBits = used
	e.nbitsTotal += int(nbits)
}

// Done flushes the coder and returns the complete frame, always the whole
// buffer. Unused bytes between the range-coded and raw parts are zero.
func (e *Encoder) Done() []byte {
	l := EC_CODE_BITS - ilog(e.rng)
	msk := uint32(EC_CODE_TOP-1) >> uint(l)
	end := (e.val + msk) &^ msk
	if (end | msk) >= e.val+e.rng {
		l++
		msk >>= 1
		end = (e.val + msk) &^ msk
	}
	for l > 0 {
		e.carryOut(int(end >> EC_CODE_SHIFT))
		end = (end << EC_SYM_BITS) & (EC_CODE_TOP - 1)
		l -= EC_SYM_BITS
	}
	if e.rem >= 0 || e.ext > 0 {
		e.carryOut(0)
	}

	window := e.endWindow
	used := e.nendBits
	for used >= EC_SYM_BITS {
		e.writeEndByte(byte(window & EC_SYM_MAX))
		window >>= EC_SYM_BITS
		used -= EC_SYM_BITS
	}

	if e.err == 0 {
		clear(e.buf[e.offs : e.storage-e.endOffs])
		if used > 0 {
			if e.endOffs >= e.storage {
				e.err = -1
			} else {
				l = -l
				if e.offs+e.endOffs >= e.storage && l < used {
					window &= (1 << uint(l)) - 1
					e.err = -1
				}
				e.buf[e.storage-e.endOffs-1] |= byte(window)
			}
		}
	}
	return e.buf[:e.storage]
}

// Tell returns the number of bits written so far, rounded up.
func (e *Encoder) Tell() int {
	return e.nbitsTotal - ilog(e.rng)
}

// TellFrac returns the number of bits written in 1/8 bit units.
func (e *Encoder) TellFrac() int {
	return tellFrac(e.nbitsTotal, e.rng)
}

// StorageBits returns the frame size in bits.
func (e *Encoder) StorageBits() int {
	return int(e.storage * 8)
}

// Error returns the overflow flag. Non-zero means the frame did not fit.
func (e *Encoder) Error() int {
	return e.err
}

// EncoderState is a snapshot of an Encoder used to try alternative codings
// and roll back.
type EncoderState struct {
	offs       uint32
	endOffs    uint32
	endWindow  uint32
	nendBits   int
	nbitsTotal int
	rng        uint32
	val        uint32
	rem        int
	ext        uint32
	err        int
	bufFront   []byte
	bufBack    []byte
}

// SaveStateInto captures the encoder into state, reusing its buffers.
func (e *Encoder) SaveStateInto(state *EncoderState) {
	state.offs = e.offs
	state.endOffs = e.endOffs
	state.endWindow = e.endWindow
	state.nendBits = e.nendBits
	state.nbitsTotal = e.nbitsTotal
	state.rng = e.rng
	state.val = e.val
	state.rem = e.rem
	state.ext = e.ext
	state.err = e.err
	state.bufFront = append(state.bufFront[:0], e.buf[:e.offs]...)
	state.bufBack = append(state.bufBack[:0], e.buf[e.storage-e.endOffs:e.storage]...)
}

// RestoreState rolls the encoder back to a snapshot taken on the same frame.
func (e *Encoder) RestoreState(state *EncoderState) {
	e.offs = state.offs
	e.endOffs = state.endOffs
	e.endWindow = state.endWindow
	e.nendBits = state.nendBits
	e.nbitsTotal = state.nbitsTotal
	e.rng = state.rng
	e.val = state.val
	e.rem = state.rem
	e.ext = state.ext
	e.err = state.err
	copy(e.buf[:state.offs], state.bufFront)
	copy(e.buf[e.storage-state.endOffs:e.storage], state.bufBack)
}

func ilog(x uint32) int {
	return bits.Len32(x)
}

var tellCorrection = [8]uint32{35733, 38967, 42495, 46340, 50535, 55109, 60097, 65535}

func tellFrac(nbitsTotal int, rng uint32) int {
	nbits := nbitsTotal << 3
	l := ilog(rng)
	r := rng >> uint(l-16)
	b := int((r >> 12) - 8)
	if r > tellCorrection[b] {
		b++
	}
	return nbits - ((l << 3) + b)
}
