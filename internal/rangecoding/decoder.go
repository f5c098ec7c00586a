package rangecoding

// Decoder reads one fixed-size frame. Reading past either end of the frame
// yields zero bits; callers compare Tell against the frame size to detect
// truncation.
type Decoder struct {
	buf        []byte // Input buffer
	storage    uint32 // Buffer size
	offs       uint32 // Current read offset
	endOffs    uint32 // Raw bytes consumed from the end
	endWindow  uint32 // Window for raw bits at end
	nendBits   int    // Number of valid bits in end window
	nbitsTotal int    // Total bits read (for tell functions)
	rng        uint32 // Range size (must stay > EC_CODE_BOT after normalize)
	val        uint32 // Current value in range
	rem        int    // Buffered partial byte
	ext        uint32 // Range scale between Decode and Update
	err        int    // Error flag
}

// Init starts decoding buf.
func (d *Decoder) Init(buf []byte) {
	d.buf = buf
	d.storage = uint32(len(buf))
	d.offs = 0
	d.endOffs = 0
	d.endWindow = 0
	d.nendBits = 0
	d.err = 0
	d.rng = 1 << EC_CODE_EXTRA
	d.rem = int(d.readByte())
	d.val = d.rng - 1 - uint32(d.rem>>(EC_SYM_BITS-EC_CODE_EXTRA))
	// Normalization below counts the bytes already held in val.
	d.nbitsTotal = EC_CODE_BITS + 1 - ((EC_CODE_BITS-EC_CODE_EXTRA)/EC_SYM_BITS)*EC_SYM_BITS
	d.normalize()
}

func (d *Decoder) readByte() byte {
	if d.offs < d.storage {
		b := d.buf[d.offs]
		d.offs++
		return b
	}
	return 0
}

func (d *Decoder) readEndByte() byte {
	if d.endOffs < d.storage {
		d.endOffs++
		return d.buf[d.storage-d.endOffs]
	}
	return 0
}

func (d *Decoder) normalize() {
	for d.rng <= EC_CODE_BOT {
		d.nbitsTotal += EC_SYM_BITS
		d.rng <<= EC_SYM_BITS
		sym := d.rem
		d.rem = int(d.readByte())
		sym = (sym<<EC_SYM_BITS | d.rem) >> (EC_SYM_BITS - EC_CODE_EXTRA)
		d.val = ((d.val << EC_SYM_BITS) + uint32(EC_SYM_MAX&^sym)) & (EC_CODE_TOP - 1)
	}
}

// Decode returns the cumulative frequency of the next symbol of total ft.
// It must be followed by Update with the decoded symbol's range.
func (d *Decoder) Decode(ft uint32) uint32 {
	d.ext = d.rng / ft
	s := d.val/d.ext + 1
	if s > ft {
		s = ft
	}
	return ft - s
}

// Update consumes the symbol [fl, fh) of ft after Decode.
func (d *Decoder) Update(fl, fh, ft uint32) {
	s := d.ext * (ft - fh)
	d.val -= s
	if fl > 0 {
		d.rng = d.ext * (fh - fl)
	} else {
		d.rng -= s
	}
	d.normalize()
}

// DecodeBit decodes a bit written by EncodeBit with the same logp.
func (d *Decoder) DecodeBit(logp uint) int {
	r := d.rng
	s := r >> logp
	if d.val < s {
		d.rng = s
		d.normalize()
		return 1
	}
	d.val -= s
	d.rng = r - s
	d.normalize()
	return 0
}

// DecodeUniform decodes a value in [0, ft). Out of range values set the
// error flag and are clamped.
func (d *Decoder) DecodeUniform(ft uint32) uint32 {
	if ft <= 1 {
		return 0
	}
	ftb := uint(ilog(ft - 1))
	if ftb > EC_UINT_BITS {
		ftb -= EC_UINT_BITS
		ft1 := ((ft - 1) >> ftb) + 1
		s := d.Decode(ft1)
		d.Update(s, s+1, ft1)
		t := s<<ftb | d.DecodeRawBits(ftb)
		if t < ft {
			return t
		}
		d.err = 1
		return ft - 1
	}
	s := d.Decode(ft)
	d.Update(s, s+1, ft)
	return s
}

// DecodeRawBits reads bits (at most 25) from the end of the frame.
func (d *Decoder) DecodeRawBits(nbits uint) uint32 {
	if nbits == 0 {
		return 0
	}
	window := d.endWindow
	available := d.nendBits
	if uint(available) < nbits {
		for available <= EC_WINDOW_SIZE-EC_SYM_BITS {
			window |= uint32(d.readEndByte()) << uint(available)
			available += EC_SYM_BITS
		}
	}
	ret := window & ((1 << nbits) - 1)
	window >>= nbits
	available -= int(nbits)
	d.endWindow = window
	d.nendBits = available
	d.nbitsTotal += int(nbits)
	return ret
}

// Tell returns the number of bits consumed so far, rounded up.
func (d *Decoder) Tell() int {
	return d.nbitsTotal - ilog(d.rng)
}

// TellFrac returns the number of bits consumed in 1/8 bit units.
func (d *Decoder) TellFrac() int {
	return tellFrac(d.nbitsTotal, d.rng)
}

// StorageBits returns the frame size in bits.
func (d *Decoder) StorageBits() int {
	return int(d.storage * 8)
}

// Error returns the error flag. Non-zero indicates an invalid value.
func (d *Decoder) Error() int {
	return d.err
}
