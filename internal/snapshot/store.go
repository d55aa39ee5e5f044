package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/encoding/unicode"

	"dartlift/internal/dartrt"
	"dartlift/internal/vars"
)

// Store is the in-memory form of extracted snapshot metadata: the class
// table, field layouts, the function list and the object pool. It realizes
// the class-table service the value model and node catalog reference.
//
// A Store is immutable after Build. Pool lookups mint a fresh value per
// query, since every Item exclusively owns its value.
type Store struct {
	classes    map[dartrt.ClassID]*dartrt.Class
	fields     []*dartrt.Field
	functions  []*dartrt.Function
	funcByRec  []*dartrt.Function
	funcByAddr map[uint64]*dartrt.Function
	pool       map[int64]PoolRec
	code       map[uint64][]InsnRec
}

// Build resolves a payload into a Store: owner pointers wired, string
// payloads decoded, functions sorted by address.
func Build(p *Payload) (*Store, error) {
	if p == nil {
		return nil, errors.New("snapshot: nil payload")
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("snapshot: schema %d, want %d", p.Schema, schemaVersion)
	}

	s := &Store{
		classes:    make(map[dartrt.ClassID]*dartrt.Class, len(p.Classes)),
		funcByAddr: make(map[uint64]*dartrt.Function, len(p.Functions)),
		pool:       make(map[int64]PoolRec, len(p.Pool)),
		code:       make(map[uint64][]InsnRec, len(p.Code)),
	}

	for _, rec := range p.Classes {
		id := dartrt.ClassID(rec.ID)
		if _, dup := s.classes[id]; dup {
			return nil, fmt.Errorf("snapshot: duplicate class id %d", rec.ID)
		}
		s.classes[id] = &dartrt.Class{
			ID:             id,
			Name:           rec.Name,
			SuperID:        dartrt.ClassID(rec.SuperID),
			InstanceSize:   rec.InstanceSize,
			TypeArgsOffset: rec.TypeArgsOffset,
		}
	}

	s.fields = make([]*dartrt.Field, 0, len(p.Fields))
	for _, rec := range p.Fields {
		s.fields = append(s.fields, &dartrt.Field{
			Name:     rec.Name,
			Owner:    s.classes[dartrt.ClassID(rec.OwnerID)],
			Offset:   rec.Offset,
			IsStatic: rec.IsStatic,
		})
	}

	s.functions = make([]*dartrt.Function, 0, len(p.Functions))
	for _, rec := range p.Functions {
		fn := &dartrt.Function{
			Name:  rec.Name,
			Owner: s.classes[dartrt.ClassID(rec.OwnerID)],
			Addr:  rec.Addr,
			Size:  rec.Size,
		}
		s.functions = append(s.functions, fn)
		s.funcByAddr[fn.Addr] = fn
	}
	// Pool records reference functions by payload index; keep that order
	// before sorting the public list by address.
	s.funcByRec = append([]*dartrt.Function(nil), s.functions...)
	sort.Slice(s.functions, func(i, j int) bool {
		return s.functions[i].Addr < s.functions[j].Addr
	})

	for _, rec := range p.Pool {
		s.pool[rec.Offset] = rec
	}
	for _, fc := range p.Code {
		s.code[fc.Addr] = fc.Insns
	}
	return s, nil
}

// Class resolves a class id against the class table.
func (s *Store) Class(id dartrt.ClassID) (*dartrt.Class, bool) {
	c, ok := s.classes[id]
	return c, ok
}

// NumClasses returns the class-table size.
func (s *Store) NumClasses() int { return len(s.classes) }

// ClassByName finds a class by its source name. Names are unique in a
// well-formed snapshot; on a corrupt table an arbitrary match wins.
func (s *Store) ClassByName(name string) (*dartrt.Class, bool) {
	for _, c := range s.classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Fields returns the extracted field list.
func (s *Store) Fields() []*dartrt.Field { return s.fields }

// FieldAt finds the instance field of a class at a byte offset.
func (s *Store) FieldAt(owner dartrt.ClassID, offset int64) (*dartrt.Field, bool) {
	for _, f := range s.fields {
		if f.Owner != nil && f.Owner.ID == owner && f.Offset == offset && !f.IsStatic {
			return f, true
		}
	}
	return nil, false
}

// Functions returns all functions sorted by entry address.
func (s *Store) Functions() []*dartrt.Function { return s.functions }

// FunctionAt resolves an entry address to a function.
func (s *Store) FunctionAt(addr uint64) (*dartrt.Function, bool) {
	fn, ok := s.funcByAddr[addr]
	return fn, ok
}

// Code returns the decoded instruction stream of the function entered at
// addr.
func (s *Store) Code(addr uint64) ([]InsnRec, bool) {
	insns, ok := s.code[addr]
	return insns, ok
}

// PoolValue materializes the abstract value of a pool entry. Each call
// returns a fresh value; bindings own their values exclusively.
func (s *Store) PoolValue(offset int64) (vars.Value, bool) {
	rec, ok := s.pool[offset]
	if !ok {
		return nil, false
	}
	switch rec.Kind {
	case PoolNull:
		return vars.NewNull(), true
	case PoolString:
		return vars.NewStr(string(rec.Bytes)), true
	case PoolWideString:
		text, err := decodeUTF16(rec.Bytes)
		if err != nil {
			return nil, false
		}
		return vars.NewStr(text), true
	case PoolInt:
		return vars.NewInteger(rec.Int, vars.TypeID(dartrt.MintCid)), true
	case PoolDouble:
		return vars.NewDouble(rec.Double, vars.TypeID(dartrt.DoubleCid)), true
	case PoolFunction:
		if int(rec.Ref) < 0 || int(rec.Ref) >= len(s.funcByRec) {
			return nil, false
		}
		return vars.NewFunctionRef(s.funcByRec[rec.Ref]), true
	case PoolStub:
		return vars.NewUnlinkedCallSite(&dartrt.Stub{Name: rec.Name, Addr: rec.Addr}), true
	}
	return nil, false
}

// decodeUTF16 expands UTF-16LE code units into a Go string.
func decodeUTF16(b []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Load reads and resolves a metadata file.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("%s: failed to decode metadata: %w", path, err)
	}
	return Build(&p)
}

// Save serializes a payload, replacing the target file atomically.
func Save(path string, p *Payload) error {
	if p.Schema == 0 {
		p.Schema = schemaVersion
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(p); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
