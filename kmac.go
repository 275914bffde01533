package sivkmac

// Variant selects the KMAC flavor: KMAC128 (cSHAKE128, w=168) or KMAC256
// (cSHAKE256, w=136).
type Variant int

const (
	KMAC128 Variant = iota
	KMAC256
)

const (
	minKeyLen = 4   // local policy, not mandated by SP 800-185; see DESIGN.md
	maxKeyLen = 255
	maxCustomLen = 127

	naturalOutLen128 = 32
	naturalOutLen256 = 64
)

// KMACContext is a KMAC128/KMAC256 (SP 800-185) state machine:
// setters (SetKey, SetCustom, SetOutLen, SetXOF), Init, Update*, Final.
//
//	{Fresh} --Set*--> --Init--> {Absorbing} --Update*--> --Final--> {Done}
//
// KMACContext is not safe for concurrent use; Duplicate is the only
// supported way to fork one into an independently-evolving instance.
type KMACContext struct {
	variant Variant
	w       int // sponge block size in bytes: 168 or 136

	key           []byte // raw key as passed to SetKey; kept after Init, scrubbed by Free
	encodedKey    []byte // bytepad(encode_string(K), w) -- the only encode_string path actually absorbed
	custom        []byte // raw customization string, passed to the cSHAKE engine
	encodedCustom []byte // encode_string(S), kept for data-model fidelity only; NewCShake absorbs the raw custom, not this

	outLen  int
	xof     bool
	started bool // Init has absorbed the prefix + key
	engine  *xofEngine
}

// New128 constructs a fresh KMAC128 context (w=168, natural output 32 bytes).
func New128() *KMACContext {
	return &KMACContext{variant: KMAC128, w: 168, outLen: naturalOutLen128}
}

// New256 constructs a fresh KMAC256 context (w=136, natural output 64 bytes).
func New256() *KMACContext {
	return &KMACContext{variant: KMAC256, w: 136, outLen: naturalOutLen256}
}

// SetKey transforms key into encoded_key = bytepad(encode_string(K), w) and
// stores it. Must be called before Init. Key length must be in [4, 255].
func (c *KMACContext) SetKey(key []byte) error {
	if c.started {
		return NewStateError("kmac", "set_key", "cannot change key after init")
	}
	if err := ValidateRange(len(key), "key", minKeyLen, maxKeyLen); err != nil {
		return err
	}
	encStr, err := encodeString(key)
	if err != nil {
		return err
	}
	encoded, err := bytepad(encStr, c.w)
	if err != nil {
		return err
	}

	k := make([]byte, len(key))
	copy(k, key)
	c.key = k
	c.encodedKey = encoded
	return nil
}

// SetCustom sets the customization string S, absorbed by the cSHAKE engine
// at Init as cSHAKE's function-name/customization prefix. Must be ≤127
// bytes, per spec.md. encodedCustom is computed here and kept only for
// data-model fidelity (spec.md §4.5 names it as context state); the sponge
// itself is primed from the raw custom via newXOFEngine, not from this
// field — see DESIGN.md.
func (c *KMACContext) SetCustom(custom []byte) error {
	if c.started {
		return NewStateError("kmac", "set_custom", "cannot change customization string after init")
	}
	if err := ValidateRange(len(custom), "custom", 0, maxCustomLen); err != nil {
		return err
	}
	encStr, err := encodeString(custom)
	if err != nil {
		return err
	}

	s := make([]byte, len(custom))
	copy(s, custom)
	c.custom = s
	c.encodedCustom = encStr
	return nil
}

// SetOutLen sets the requested digest length in bytes. May be set any time
// before Final.
func (c *KMACContext) SetOutLen(n int) error {
	if err := ValidatePositive(n, "out_len"); err != nil {
		return err
	}
	c.outLen = n
	return nil
}

// SetXOF toggles XOF mode: if true, Final appends right_encode(0) instead
// of right_encode(out_len*8), turning KMAC into an extendable-output
// function. May be set any time before Final.
func (c *KMACContext) SetXOF(xof bool) {
	c.xof = xof
}

// OutLen returns the currently configured output length in bytes
// (get_params("outlen"|"size"|"digestsize") of spec.md §6).
func (c *KMACContext) OutLen() int {
	return c.outLen
}

// Init absorbs the cSHAKE prefix (function-name "KMAC" plus the
// customization string, handled by the external cSHAKE engine) followed by
// encoded_key. Fails if no key has been set.
func (c *KMACContext) Init() error {
	if c.key == nil {
		return NewStateError("kmac", "init", ErrKeyNotSet.Error())
	}
	c.engine = newXOFEngine(c.variant == KMAC256, c.custom)
	if err := c.engine.absorb(c.encodedKey); err != nil {
		return err
	}
	c.started = true
	return nil
}

// Update absorbs message bytes into the sponge. May be called any number
// of times between Init and Final.
func (c *KMACContext) Update(data []byte) error {
	if !c.started {
		return NewStateError("kmac", "update", "init must be called before update")
	}
	return c.engine.absorb(data)
}

// Final absorbs right_encode(xof ? 0 : out_len*8) and squeezes OutLen()
// bytes into buf, returning the number of bytes written. buf must be at
// least OutLen() bytes long.
func (c *KMACContext) Final(buf []byte) (int, error) {
	if !c.started {
		return 0, NewStateError("kmac", "final", "init must be called before final")
	}
	if err := ValidateBuffer(buf, "buf", c.outLen); err != nil {
		return 0, err
	}

	var trailer []byte
	if c.xof {
		trailer = rightEncode(0)
	} else {
		trailer = rightEncode(uint64(c.outLen) * 8)
	}
	if err := c.engine.absorb(trailer); err != nil {
		return 0, err
	}
	if err := c.engine.squeeze(buf[:c.outLen]); err != nil {
		return 0, err
	}
	return c.outLen, nil
}

// Duplicate deep-copies c's absorbed sponge state, encoded key,
// customization string, out_len and xof mode into an independent context.
func (c *KMACContext) Duplicate() *KMACContext {
	dup := &KMACContext{
		variant: c.variant,
		w:       c.w,
		outLen:  c.outLen,
		xof:     c.xof,
		started: c.started,
	}
	dup.key = append([]byte(nil), c.key...)
	dup.encodedKey = append([]byte(nil), c.encodedKey...)
	dup.custom = append([]byte(nil), c.custom...)
	dup.encodedCustom = append([]byte(nil), c.encodedCustom...)
	if c.engine != nil {
		dup.engine = c.engine.duplicate()
	}
	return dup
}

// Free scrubs key material. The context must not be reused after Free.
func (c *KMACContext) Free() {
	scrubBytes(c.key)
	scrubBytes(c.encodedKey)
	c.started = false
	c.engine = nil
}
