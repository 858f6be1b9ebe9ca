package appspec

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ContentHash computes the content-derived identifier of the model: a
// SHA-256 over the qualified name and canonical JSON body of every
// declaration, in the already-sorted order the assembler produced.
// BuildID, Hash itself, and warnings are excluded so the hash only changes
// when the model does.
func (s *AppSpec) ContentHash() (string, error) {
	h := sha256.New()

	write := func(qualified string, body any) error {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", qualified, err)
		}
		fmt.Fprintf(h, "%s\n", qualified)
		h.Write(raw)
		h.Write([]byte{'\n'})
		return nil
	}

	for _, m := range s.Modules {
		if err := write("module "+m.Path, m); err != nil {
			return "", err
		}
	}
	for _, e := range s.Entities {
		if err := write("entity "+e.Module+"."+e.Name, e); err != nil {
			return "", err
		}
	}
	for _, v := range s.Surfaces {
		if err := write("surface "+v.Module+"."+v.Name, v); err != nil {
			return "", err
		}
	}
	for _, v := range s.Services {
		if err := write("service "+v.Module+"."+v.Name, v); err != nil {
			return "", err
		}
	}
	for _, v := range s.Workflows {
		if err := write("workflow "+v.Module+"."+v.Name, v); err != nil {
			return "", err
		}
	}
	for _, v := range s.Enums {
		if err := write("enum "+v.Module+"."+v.Name, v); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
