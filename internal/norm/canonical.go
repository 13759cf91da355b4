package norm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for a tree, suitable for
// content-addressed identity computation.
//
// Properties:
//  1. Object keys appear in a fixed order ("type", "value" | "left"/"right")
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//
// Leaves serialize as {"type":"Zone","value":"2"} (Empty omits
// "value"); internal nodes as {"type":"Obligation","left":...,"right":...}.
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, n Node) error {
	writeField := func(key, value string) error {
		s, err := canonicalString(value)
		if err != nil {
			return err
		}
		k, err := canonicalString(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(s)
		return nil
	}

	buf.WriteByte('{')
	if err := writeField("type", n.TypeName()); err != nil {
		return err
	}
	switch x := n.(type) {
	case *NoNorm:
		buf.WriteByte(',')
		if err := writeField("value", x.value); err != nil {
			return err
		}
	case *Zone:
		buf.WriteByte(',')
		if err := writeField("value", x.value); err != nil {
			return err
		}
	case *Colour:
		buf.WriteByte(',')
		if err := writeField("value", x.value); err != nil {
			return err
		}
	case *Empty:
		// type only
	case *Norm, *Obligation, *Prohibition:
		b := n.(Branch)
		buf.WriteString(`,"left":`)
		if err := marshalCanonical(buf, b.Left()); err != nil {
			return err
		}
		buf.WriteString(`,"right":`)
		if err := marshalCanonical(buf, b.Right()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown node type: %T", n)
	}
	buf.WriteByte('}')
	return nil
}

// canonicalString produces a canonical JSON string with NFC
// normalization and no HTML escaping.
func canonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}
