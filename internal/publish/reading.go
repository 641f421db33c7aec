// Package publish encodes clock readings and sends them to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Reading is one sample of a clock.
type Reading struct {
	Chip    string    `json:"chip" cbor:"1,keyasint"`
	Time    time.Time `json:"time" cbor:"2,keyasint"`
	Valid   bool      `json:"valid" cbor:"3,keyasint"`
	Flags   string    `json:"flags" cbor:"4,keyasint"`
	State   string    `json:"state" cbor:"5,keyasint"`
	TempMC  *int32    `json:"temp_mc,omitempty" cbor:"6,keyasint,omitempty"`
	Sampled time.Time `json:"sampled" cbor:"7,keyasint"`
}

// Encoding is a payload format.
type Encoding uint8

const (
	JSON Encoding = iota
	CBOR
)

func (e Encoding) String() string {
	if e == CBOR {
		return "cbor"
	}
	return "json"
}

// ParseEncoding accepts "json" or "cbor".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	}
	return 0, fmt.Errorf("publish: unknown encoding %q", s)
}

// UnmarshalText lets config files and flags name the encoding.
func (e *Encoding) UnmarshalText(b []byte) error {
	v, err := ParseEncoding(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Encode serializes r.
func Encode(r Reading, e Encoding) ([]byte, error) {
	if e == CBOR {
		return encMode.Marshal(r)
	}
	return json.Marshal(r)
}

// Decode parses a payload produced by Encode.
func Decode(data []byte, e Encoding) (Reading, error) {
	var r Reading
	var err error
	if e == CBOR {
		err = decMode.Unmarshal(data, &r)
	} else {
		err = json.Unmarshal(data, &r)
	}
	return r, err
}
