package xcm

import (
	"encoding/json"
	"strings"
)

// interior is the path part of a location. Explorer payloads vary between
// runtime versions: "here" may be a bare string or a null-valued key, x1 may
// be a single junction object (v3) or a one-element array (v4/v5), and key
// casing differs between indexers. Decoding is deliberately forgiving; any
// shape it cannot make sense of simply yields an interior that matches
// nothing, which resolves to Invalid upstream.
type interior struct {
	here bool
	segs []junction
}

func (i *interior) UnmarshalJSON(data []byte) error {
	*i = interior{}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		i.here = strings.EqualFold(s, "here")
		return nil
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil
	}
	for key, val := range keyed {
		switch strings.ToLower(key) {
		case "here":
			i.here = true
			return nil
		case "x1", "x2", "x3", "x4":
			i.segs = decodeJunctions(val)
			return nil
		}
	}
	return nil
}

// Here reports whether the interior is the empty path.
func (i interior) Here() bool {
	return i.here
}

// Segments returns the junction path, if any.
func (i interior) Segments() ([]junction, bool) {
	if i.here || len(i.segs) == 0 {
		return nil, false
	}
	return i.segs, true
}

// SingleParachain reports whether the interior is exactly one parachain hop.
func (i interior) SingleParachain() bool {
	_, ok := i.ParachainID()
	return ok
}

// ParachainID returns the parachain id when the interior is a single
// parachain junction.
func (i interior) ParachainID() (uint64, bool) {
	if i.here || len(i.segs) != 1 {
		return 0, false
	}
	return i.segs[0].Parachain()
}

// junction is one path segment. Only the segment kinds the resolver cares
// about are retained; everything else decodes to an empty junction.
type junction struct {
	kind  string
	value uint64
	known bool
}

// decodeJunctions accepts either a single junction object (v3 x1) or an
// array of junctions (v4/v5).
func decodeJunctions(raw json.RawMessage) []junction {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		list = []json.RawMessage{raw}
	}
	segs := make([]junction, 0, len(list))
	for _, item := range list {
		segs = append(segs, decodeJunction(item))
	}
	return segs
}

func decodeJunction(raw json.RawMessage) junction {
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return junction{}
	}
	for key, val := range keyed {
		kind := strings.ToLower(key)
		switch kind {
		case "parachain", "palletinstance", "generalindex":
			n, ok := decodeUint(val)
			if !ok {
				return junction{}
			}
			return junction{kind: kind, value: n, known: true}
		}
	}
	return junction{}
}

// Parachain returns the parachain id for a parachain junction.
func (j junction) Parachain() (uint64, bool) {
	if !j.known || j.kind != "parachain" {
		return 0, false
	}
	return j.value, true
}

// PalletInstance returns the pallet instance for a pallet-instance junction.
func (j junction) PalletInstance() (uint64, bool) {
	if !j.known || j.kind != "palletinstance" {
		return 0, false
	}
	return j.value, true
}

// GeneralIndex returns the general index for a general-index junction.
func (j junction) GeneralIndex() (uint64, bool) {
	if !j.known || j.kind != "generalindex" {
		return 0, false
	}
	return j.value, true
}

// decodeUint accepts JSON numbers, decimal strings, and strings with
// thousands separators.
func decodeUint(raw json.RawMessage) (uint64, bool) {
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	var out uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		out = out*10 + uint64(c-'0')
	}
	return out, true
}
