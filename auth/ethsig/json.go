package ethsig

import (
	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"dao_gov/sdk"
)

var (
	_ tinyjson.Marshaler   = (*Envelope)(nil)
	_ tinyjson.Unmarshaler = (*Envelope)(nil)
)

func (e *Envelope) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"signer":`)
	w.String(e.Signer.String())
	w.RawString(`,"op":`)
	w.String(e.Op)
	w.RawString(`,"args":`)
	w.String(e.Args)
	w.RawString(`,"issued_at":`)
	w.Uint64(e.IssuedAt)
	w.RawString(`,"signature":`)
	w.String(hexutil.Encode(e.Signature))
	w.RawByte('}')
}

func (e *Envelope) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "signer":
			e.Signer = sdk.Address(in.String())
		case "op":
			e.Op = in.String()
		case "args":
			e.Args = in.String()
		case "issued_at":
			e.IssuedAt = in.Uint64()
		case "signature":
			sig, err := hexutil.Decode(in.String())
			if err != nil {
				in.AddError(err)
			}
			e.Signature = sig
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

// MarshalEnvelope encodes env as JSON.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return tinyjson.Marshal(&env)
}

// UnmarshalEnvelope decodes a JSON envelope.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := tinyjson.Unmarshal(data, &env)
	return env, err
}
