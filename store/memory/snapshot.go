package memory

import (
	"encoding/hex"
	"sort"

	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"
)

// snapshot is the on-disk form: keys are hex (they are binary), values
// base64.
type snapshot struct {
	Entries map[string][]byte
	TTL     TTL
}

func (s snapshot) marshal() ([]byte, error) {
	return tinyjson.Marshal(s)
}

func (s *snapshot) unmarshal(data []byte) error {
	return tinyjson.Unmarshal(data, s)
}

func (s snapshot) MarshalTinyJSON(w *jwriter.Writer) {
	keys := make([]string, 0, len(s.Entries))
	for k := range s.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.RawString(`{"entries":{`)
	for i, k := range keys {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(hex.EncodeToString([]byte(k)))
		w.RawByte(':')
		w.Base64Bytes(s.Entries[k])
	}
	w.RawString(`},"ttl":{"threshold":`)
	w.Uint32(s.TTL.Threshold)
	w.RawString(`,"extend_to":`)
	w.Uint32(s.TTL.ExtendTo)
	w.RawString(`,"extensions":`)
	w.Uint64(s.TTL.Extensions)
	w.RawString(`}}`)
}

func (s *snapshot) UnmarshalTinyJSON(in *jlexer.Lexer) {
	s.Entries = map[string][]byte{}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		switch key {
		case "entries":
			in.Delim('{')
			for !in.IsDelim('}') {
				hk := in.String()
				in.WantColon()
				k, err := hex.DecodeString(hk)
				if err != nil {
					in.AddError(err)
					return
				}
				s.Entries[string(k)] = in.Bytes()
				in.WantComma()
			}
			in.Delim('}')
		case "ttl":
			in.Delim('{')
			for !in.IsDelim('}') {
				f := in.UnsafeFieldName(false)
				in.WantColon()
				switch f {
				case "threshold":
					s.TTL.Threshold = in.Uint32()
				case "extend_to":
					s.TTL.ExtendTo = in.Uint32()
				case "extensions":
					s.TTL.Extensions = in.Uint64()
				default:
					in.SkipRecursive()
				}
				in.WantComma()
			}
			in.Delim('}')
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()
}
