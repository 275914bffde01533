package sivkmac

import "crypto/subtle"

// FinalResult is the tri-state verification outcome of a SIV context,
// spec.md §4.4's final_ret: Undecided until a crypto op completes,
// Succeeded once it has, Failed if a decrypt's tag check did not match.
type FinalResult int

const (
	Undecided FinalResult = iota
	Succeeded
	Failed
)

// Context is an AES-SIV-128 (RFC 5297) state machine: Init, any number of
// AAD segments, then exactly one Encrypt or Decrypt, then Cleanup.
//
//	{Fresh} --Init--> {Ready} --AAD*--> {Ready} --Encrypt|Decrypt--> {Finalized}
//
// A Context is not safe for concurrent use; Copy is the only supported way
// to fork one into an independently-evolving instance.
type Context struct {
	s2v      *s2vState
	ctr      *ctrStream
	tag      [16]byte
	finalRet FinalResult
	budget   int // crypto ops remaining; 1 in normal use, -1 for NewUnlimited
}

// New constructs a Context from a double-length key, split at len(key)/2:
// the first half keys CMAC (S2V), the second half keys AES-CTR.
func New(key []byte) (*Context, error) {
	return newContext(key, 1)
}

// NewUnlimited constructs a Context whose crypto-operation budget is never
// consumed. spec.md §9 notes the source's CRYPTO_siv128_speed path sets the
// budget to -1 for benchmarking; this constructor carries that unlimited
// budget as a separate constructor, so New never yields it. It is exported
// and is used outside tests as well: the deterministic filename encryptor
// (filename.go) runs every component through one NewUnlimited Context.
func NewUnlimited(key []byte) (*Context, error) {
	return newContext(key, -1)
}

func newContext(key []byte, budget int) (*Context, error) {
	if err := ValidateEvenKey(key); err != nil {
		return nil, err
	}
	half := len(key) / 2
	k1, k2 := key[:half], key[half:]

	cmacTpl, err := newCMACTemplate(k1)
	if err != nil {
		return nil, NewAllocationError("siv", "failed to key CMAC template", err)
	}
	ctr, err := newCTRStream(k2)
	if err != nil {
		cmacTpl.scrub()
		return nil, NewAllocationError("siv", "failed to key CTR cipher", err)
	}
	s2v, err := newS2VState(cmacTpl)
	if err != nil {
		cmacTpl.scrub()
		return nil, NewAllocationError("siv", "failed to seed S2V state", err)
	}

	return &Context{s2v: s2v, ctr: ctr, finalRet: Undecided, budget: budget}, nil
}

// Init re-initializes ctx in place with a new key, as if freshly
// constructed by New. Any prior AAD/tag state is discarded.
func (ctx *Context) Init(key []byte) error {
	fresh, err := newContext(key, 1)
	if err != nil {
		return err
	}
	ctx.cleanupLocked()
	*ctx = *fresh
	return nil
}

// Copy deep-copies src's absorbed state into dst, independent of src
// thereafter. dst's own prior state, if any, is scrubbed first.
func Copy(dst, src *Context) error {
	if src == nil || dst == nil {
		return ErrNilContext
	}
	cmacDup, err := newCMACTemplate(src.s2v.cmac.key)
	if err != nil {
		return err
	}
	dst.cleanupLocked()
	dst.s2v = &s2vState{cmac: cmacDup, d: src.s2v.d}
	dst.ctr = src.ctr
	dst.tag = src.tag
	dst.finalRet = src.finalRet
	dst.budget = src.budget
	return nil
}

// AAD absorbs one associated-data segment into the running S2V state. Per
// RFC 5297, the nonce is simply the last AAD segment absorbed before the
// crypto operation; SIV does not distinguish it. AAD may not be called
// after Encrypt or Decrypt has consumed the budget.
func (ctx *Context) AAD(segment []byte) error {
	if ctx.budget == 0 {
		return NewStateError("siv", "aad", ErrAADAfterCrypto.Error())
	}
	return ctx.s2v.absorbAAD(segment)
}

// Encrypt consumes the one-shot crypto budget, derives the synthetic IV Q
// via S2V over the absorbed AAD and plaintext, stores Q as the tag, and
// runs AES-CTR under K2 from the bit-cleared counter Q' to produce
// ciphertext. out must have the same length as in; in and out may alias.
func (ctx *Context) Encrypt(in, out []byte) (int, error) {
	if err := ctx.consumeBudget("encrypt"); err != nil {
		return 0, err
	}
	if err := ValidateExactSize(out, "out", len(in)); err != nil {
		return 0, err
	}

	q, err := ctx.s2v.finish(in)
	if err != nil {
		return 0, err
	}
	copy(ctx.tag[:], q)

	ctr := ctrCounterBlock(ctx.tag[:])
	ctx.ctr.apply(ctr, in, out)

	ctx.finalRet = Succeeded
	return len(out), nil
}

// Decrypt consumes the one-shot crypto budget, recovers a candidate
// plaintext under AES-CTR from the previously-supplied tag, re-derives the
// expected tag via S2V over the absorbed AAD and the candidate, and
// compares the two in constant time. On mismatch, out is scrubbed and
// AuthenticationError is returned; on match, out holds the plaintext and
// Finish reports Succeeded.
func (ctx *Context) Decrypt(in, out []byte) (int, error) {
	if err := ctx.consumeBudget("decrypt"); err != nil {
		return 0, err
	}
	if err := ValidateExactSize(out, "out", len(in)); err != nil {
		return 0, err
	}

	ctr := ctrCounterBlock(ctx.tag[:])
	ctx.ctr.apply(ctr, in, out)

	expected, err := ctx.s2v.finish(out)
	if err != nil {
		scrubBytes(out)
		return 0, err
	}

	if subtle.ConstantTimeCompare(expected, ctx.tag[:]) != 1 {
		scrubBytes(out)
		ctx.finalRet = Failed
		return 0, NewAuthenticationError("SIV tag mismatch")
	}

	ctx.finalRet = Succeeded
	return len(out), nil
}

// ctrCounterBlock clears bits 63 and 31 of the synthetic IV (byte 8 and
// byte 12, RFC 5297 §2.5) to derive the AES-CTR starting counter.
func ctrCounterBlock(q []byte) []byte {
	block := make([]byte, 16)
	copy(block, q)
	block[8] &= 0x7f
	block[12] &= 0x7f
	return block
}

func (ctx *Context) consumeBudget(op string) error {
	if ctx.budget == 0 {
		return NewStateError("siv", op, ErrBudgetExhausted.Error())
	}
	if ctx.budget > 0 {
		ctx.budget--
	}
	return nil
}

// SetTag installs a 16-byte tag, as decrypt requires before consuming
// ciphertext produced elsewhere.
func (ctx *Context) SetTag(tag []byte) error {
	if err := ValidateExactSize(tag, "tag", 16); err != nil {
		return err
	}
	copy(ctx.tag[:], tag)
	return nil
}

// GetTag copies the 16-byte computed or supplied tag into buf.
func (ctx *Context) GetTag(buf []byte) error {
	if err := ValidateExactSize(buf, "buf", 16); err != nil {
		return err
	}
	copy(buf, ctx.tag[:])
	return nil
}

// Finish returns the sticky tri-state verification result.
func (ctx *Context) Finish() FinalResult {
	return ctx.finalRet
}

// Cleanup scrubs D and the tag and releases the underlying CMAC/CTR state.
func (ctx *Context) Cleanup() {
	ctx.cleanupLocked()
}

func (ctx *Context) cleanupLocked() {
	if ctx.s2v != nil {
		scrubBytes(ctx.s2v.d[:])
		if ctx.s2v.cmac != nil {
			ctx.s2v.cmac.scrub()
		}
	}
	ctx.ctr = nil
	scrubBytes(ctx.tag[:])
	ctx.finalRet = Undecided
}
