package cli

import (
	"fmt"
	"strconv"

	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/spf13/cobra"

	"dao_gov/sdk"
)

// object is a json object with fixed key order. It is both the shape of
// small command results and the args string a signed envelope commits to.
type object []field

type field struct {
	key   string
	write func(w *jwriter.Writer)
}

func (o object) str(key, v string) object {
	return append(o, field{key, func(w *jwriter.Writer) { w.String(v) }})
}

func (o object) addr(key string, v sdk.Address) object {
	return o.str(key, v.Canonical().String())
}

func (o object) u64(key string, v uint64) object {
	return append(o, field{key, func(w *jwriter.Writer) { w.Uint64(v) }})
}

func (o object) boolean(key string, v bool) object {
	return append(o, field{key, func(w *jwriter.Writer) { w.Bool(v) }})
}

func (o object) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	for i, f := range o {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(f.key)
		w.RawByte(':')
		f.write(w)
	}
	w.RawByte('}')
}

func (o object) String() string {
	data, err := tinyjson.Marshal(o)
	if err != nil {
		return ""
	}
	return string(data)
}

func printJSON(cmd *cobra.Command, v tinyjson.Marshaler) error {
	data, err := tinyjson.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q", s)
	}
	return id, nil
}

func parsePower(s string) (uint64, error) {
	p, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid voting power %q", s)
	}
	return p, nil
}
