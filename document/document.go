// Package document ties the lexer, parser, xref, filter, xrefstream and
// trailer packages together into the top-level Open/Save entry points: the
// only thing a caller outside this module should need to import for
// ordinary use. Open returns the full trailer chain and its
// cross-reference tables rather than a single flattened object map;
// Save drives the writer package to serialize them back out.
package document

import (
	"bytes"
	"io"

	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/filter"
	"github.com/benoitkugler/pdfcore/lexer"
	"github.com/benoitkugler/pdfcore/logging"
	"github.com/benoitkugler/pdfcore/object"
	"github.com/benoitkugler/pdfcore/parser"
	"github.com/benoitkugler/pdfcore/security"
	"github.com/benoitkugler/pdfcore/trailer"
	"github.com/benoitkugler/pdfcore/writer"
	"github.com/benoitkugler/pdfcore/xref"
	"github.com/benoitkugler/pdfcore/xrefstream"
	"github.com/go-playground/validator/v10"
)

// OpenMode controls how aggressively Open is willing to alter the
// in-memory model of a document it parses.
type OpenMode int

const (
	// ReadOnly refuses any mutation; Save on a document opened this way
	// always fails.
	ReadOnly OpenMode = iota
	// Modify allows in-place edits and incremental-update saves.
	Modify
	// Import allows edits like Modify and always runs the document-wide
	// fix-up pass (see OpenOptions.ForceDocumentWideFixups), binding a
	// dead object for every reference that does not resolve. It does not
	// rebuild a damaged xref table: parse errors are still returned.
	Import
)

// OpenOptions configures Open.
type OpenOptions struct {
	Mode OpenMode `validate:"gte=0,lte=2"`
	// Password is tried first against any /Encrypt dictionary found.
	Password string
	// PasswordProvider is consulted if Password is rejected, or accepted
	// only as a user password while Mode is Modify (which requires the
	// owner password).
	PasswordProvider security.PasswordProvider
	// SecurityHandler implements the cryptographic half of password
	// validation and (de/en)cryption; nil means the document must be
	// unencrypted.
	SecurityHandler security.Handler
	// ForceDocumentWideFixups runs Table.FixXRefs over the document-wide
	// table after parsing, using that same table as the resolver, so every
	// reference that does not resolve gets a dead object. Import mode
	// always runs it.
	ForceDocumentWideFixups bool
}

var optionsValidator = validator.New()

func (o OpenOptions) validate() error {
	if err := optionsValidator.Struct(o); err != nil {
		return errs.Wrap(errs.MalformedInput, "OpenOptions.validate", err)
	}
	return nil
}

// LinearizationHint records the hint-stream pointer found in a
// linearized document's first-page trailer, should a caller want to
// exploit byte-range progressive rendering. This module never acts on
// it directly.
type LinearizationHint struct {
	HintStreamOffset int64
	HintStreamLength int64
}

// Document is a parsed PDF file: its header version, trailer chain,
// cross-reference table(s), and any metadata gathered along the way.
type Document struct {
	HeaderVersion string
	Chain         *trailer.Chain
	Table         *xref.Table

	Root object.Reference
	Info *object.Reference
	ID   object.Array

	AdditionalStreams object.Array

	Linearized *LinearizationHint

	PasswordResult security.PasswordResult

	mode            OpenMode
	rs              io.ReadSeeker
	securityHandler security.Handler
	encryptDict     *object.Dict

	// raw holds the verbatim source bytes, captured only when a digital
	// signature was detected so a caller whose Save is rejected still has
	// something to fall back to.
	raw []byte
}

// OriginalBytes returns the verbatim bytes d was parsed from. It is nil
// unless Open detected a digital signature on the document, in which case
// Save refuses to rewrite the file and this is the only way to recover
// its content.
func (d *Document) OriginalBytes() []byte {
	return d.raw
}

// Open reads an existing PDF from rs, building its full trailer chain and
// object graph in memory.
func Open(rs io.ReadSeeker, opts OpenOptions) (*Document, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	version, err := parser.ReadHeaderVersion(rs)
	if err != nil {
		return nil, err
	}
	logging.Parser.Debugf("document header claims version %s", version)

	startOffset, err := parser.FindStartXRef(rs)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		HeaderVersion: version,
		mode:          opts.Mode,
		rs:            rs,
	}

	chain, table, err := readTrailerChain(rs, startOffset)
	if err != nil {
		return nil, err
	}
	doc.Chain = chain
	doc.Table = table

	newest := chain.Newest
	root, ok := newest.Root()
	if !ok {
		return nil, errs.New(errs.MalformedInput, "document.Open", "trailer is missing /Root")
	}
	doc.Root = root
	doc.ID = newest.Dict.GetArray("ID")

	if infoRef, ok := newest.Dict.GetReference("Info"); ok {
		doc.Info = &infoRef
	}
	doc.AdditionalStreams = newest.Dict.GetArray("AdditionalStreams")

	if lh, ok := detectLinearization(table, root); ok {
		doc.Linearized = lh
		oldest := newest
		for oldest.Prev != nil {
			oldest = oldest.Prev
		}
		oldest.IsLinearizedHint = true
	}

	if encDict, ok := resolveEncryptDict(table, newest.Dict); ok {
		if opts.SecurityHandler == nil {
			return nil, errs.New(errs.PasswordRequired, "document.Open", "document is encrypted but no security handler was supplied")
		}
		result, err := authenticate(table, encDict, doc.ID, opts)
		if err != nil {
			return nil, err
		}
		doc.PasswordResult = result
		if opts.Mode == Modify && result != security.OwnerPassword {
			return nil, errs.New(errs.OwnerPasswordRequired, "document.Open", "modifying a protected document requires the owner password")
		}
		doc.securityHandler = opts.SecurityHandler
		doc.encryptDict = encDict
	}

	hasSignature := detectSignature(table, root)
	if hasSignature {
		if data, err := readAllFrom(rs); err == nil {
			doc.raw = data
		}
	}
	state := trailer.Classify(chain, hasSignature)
	switch state {
	case trailer.StateFlatten:
		doc.Chain = &trailer.Chain{Newest: trailer.Flatten(chain), Count: 1}
	case trailer.StateReadOnly:
		trailer.MarkReadOnly(chain)
	case trailer.StateMergeTopmost:
		doc.Chain = trailer.MergeTopmost(chain)
	case trailer.StateKeepAsIs:
	}

	if opts.ForceDocumentWideFixups || opts.Mode == Import {
		table.FixXRefs(true, table)
	}

	return doc, nil
}

// readTrailerChain walks the Prev-linked sequence of xref sections
// starting at startOffset. Each generation gets its own xref.Table,
// holding only the entries that generation's xref section registers
// (matching one CrossReferenceTable per trailer); those entries are then
// merged into a single document-wide table, newest generation first, so
// an object redefined by an incremental update is resolved from its
// newest binding.
func readTrailerChain(rs io.ReadSeeker, startOffset int64) (*trailer.Chain, *xref.Table, error) {
	documentTable := xref.NewTable()

	lx, err := lexer.New(rs)
	if err != nil {
		return nil, nil, err
	}
	if err := lx.SetPosition(startOffset); err != nil {
		return nil, nil, err
	}
	p, err := parser.New(lx)
	if err != nil {
		return nil, nil, err
	}

	var current *xref.Table
	p.ResolveLength = func(ref object.Reference) (int, error) {
		for _, t := range []*xref.Table{current, documentTable} {
			if t == nil || !t.Contains(ref.ID) {
				continue
			}
			if v, err := t.Resolve(ref); err == nil {
				if n, ok := v.(object.Integer); ok {
					return int(n), nil
				}
			}
		}
		return 0, errs.New(errs.MalformedInput, "document.readTrailerChain", "/Length did not resolve to an integer")
	}

	var newest, oldest *trailer.Trailer
	count := 0
	offset := startOffset
	visited := map[int64]bool{}

	for {
		if visited[offset] {
			break
		}
		visited[offset] = true

		if err := p.Reset(offset); err != nil {
			return nil, nil, err
		}

		genTable := xref.NewTable()
		current = genTable

		t, objectStreams, err := readOneGeneration(p, genTable)
		if err != nil {
			return nil, nil, err
		}
		count++

		if oldest != nil {
			oldest.Prev = t
			t.Next = oldest
		} else {
			newest = t
		}
		oldest = t
		t.ObjectStreams = objectStreams

		for _, id := range objectStreams {
			if err := expandObjectStream(genTable, p, id); err != nil {
				return nil, nil, err
			}
		}

		documentTable.MergeFrom(genTable)

		prev := t.PrevOffset()
		if prev == 0 {
			break
		}
		offset = prev
	}

	return &trailer.Chain{Newest: newest, Count: count}, documentTable, nil
}

// readOneGeneration reads a single xref section (classic or
// cross-reference stream) plus its trailer dictionary at p's current
// position, registers every in-use and compressed entry into table, and
// returns the object numbers of any object streams referenced by
// compressed entries so the caller can expand them once every generation
// up to that point has been registered.
func readOneGeneration(p *parser.Parser, table *xref.Table) (*trailer.Trailer, []object.ObjectID, error) {
	sym, err := p.PeekSymbol()
	if err != nil {
		return nil, nil, err
	}

	var entries []xrefstream.Entry
	var trailerDict *object.Dict
	var xrefInfo *trailer.CrossReferenceStreamInfo

	if sym == lexer.XRef {
		if err := p.SkipToken(); err != nil {
			return nil, nil, err
		}
		entries, trailerDict, err = p.ReadClassicXRefSection()
		if err != nil {
			return nil, nil, err
		}
	} else {
		_, obj, err := p.ParseObjectDefinition(false)
		if err != nil {
			return nil, nil, err
		}
		stream, ok := obj.(*object.Stream)
		if !ok {
			return nil, nil, errs.New(errs.MalformedInput, "document.readOneGeneration", "expected a cross-reference stream object")
		}
		entries, _, _, err = xrefstream.Decode(stream)
		if err != nil {
			return nil, nil, err
		}
		trailerDict = stream.Dict
		var width xrefstream.Width
		if wArr := trailerDict.GetArray("W"); wArr != nil {
			width, _ = xrefstream.ParseWidth(wArr)
		}
		xrefInfo = &trailer.CrossReferenceStreamInfo{Entries: entries, Width: width}
	}

	var objectStreamIDs []object.ObjectID
	seenStream := map[uint32]bool{}

	for _, e := range entries {
		id := object.ObjectID{Number: e.ObjectNumber, Generation: uint16(e.Field3)}
		switch e.Type {
		case xrefstream.TypeFree:
			// nothing to register
		case xrefstream.TypeInUse:
			if err := registerInUseObject(p, table, id, e.Field2); err != nil {
				return nil, nil, err
			}
		case xrefstream.TypeCompressed:
			id = object.ObjectID{Number: e.ObjectNumber}
			streamNumber := uint32(e.Field2)
			containing := object.ObjectID{Number: streamNumber}
			table.AddReference(object.Reference{ID: id, ContainingStreamID: &containing, ContainingStreamIndex: int(e.Field3)})
			if !seenStream[streamNumber] {
				seenStream[streamNumber] = true
				objectStreamIDs = append(objectStreamIDs, containing)
			}
		}
	}

	return &trailer.Trailer{Dict: trailerDict, Table: table, CrossReferenceStream: xrefInfo}, objectStreamIDs, nil
}

// registerInUseObject parses the indirect object living at byteOffset and
// binds it into table under id, then resets the parser to the position
// it reported on entry (the lexer position past its two lookahead tokens).
func registerInUseObject(p *parser.Parser, table *xref.Table, id object.ObjectID, byteOffset int64) error {
	if table.Contains(id) {
		return nil
	}
	saved := p.Position()
	defer p.Reset(saved)

	if err := p.Reset(byteOffset); err != nil {
		return err
	}
	parsedID, value, err := p.ParseObjectDefinition(false)
	if err != nil {
		return err
	}
	if parsedID != id {
		// Trust the offset-addressed object number over the xref
		// table's claim; a corrupt/rebuilt xref section is the usual
		// cause of this mismatch.
		id = parsedID
	}
	table.Bind(id, value)
	return nil
}

// readAllFrom reads rs in full from its current start, then rewinds it so
// later callers still see the document from byte zero.
func readAllFrom(rs io.ReadSeeker) ([]byte, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(errs.IOFailure, "document.readAllFrom", err)
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "document.readAllFrom", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(errs.IOFailure, "document.readAllFrom", err)
	}
	return data, nil
}

func detectLinearization(table *xref.Table, root object.Reference) (*LinearizationHint, bool) {
	value, err := table.Resolve(root)
	if err != nil {
		return nil, false
	}
	dict, ok := value.(*object.Dict)
	if !ok {
		return nil, false
	}
	linDictRef, ok := dict.GetReference("Linearized")
	if !ok {
		return nil, false
	}
	linValue, err := table.Resolve(linDictRef)
	if err != nil {
		return nil, false
	}
	linDict, ok := linValue.(*object.Dict)
	if !ok {
		return nil, false
	}
	offset := linDict.GetInteger("H")
	return &LinearizationHint{HintStreamOffset: int64(offset)}, true
}

func resolveEncryptDict(table *xref.Table, trailerDict *object.Dict) (*object.Dict, bool) {
	v := trailerDict.Get("Encrypt")
	if v == nil {
		return nil, false
	}
	resolved, err := object.Resolve(table, v)
	if err != nil {
		return nil, false
	}
	d, ok := resolved.(*object.Dict)
	return d, ok
}

func authenticate(table *xref.Table, encDict *object.Dict, id object.Array, opts OpenOptions) (security.PasswordResult, error) {
	result, err := opts.SecurityHandler.ValidatePassword(encDict, id, opts.Password)
	if err != nil {
		return security.Invalid, err
	}
	for (result == security.Invalid || (opts.Mode == Modify && result == security.UserPassword)) && opts.PasswordProvider != nil {
		pwd, ok := opts.PasswordProvider(result)
		if !ok {
			break
		}
		result, err = opts.SecurityHandler.ValidatePassword(encDict, id, pwd)
		if err != nil {
			return security.Invalid, err
		}
	}
	if result == security.Invalid {
		return result, errs.New(errs.InvalidPassword, "document.authenticate", "no supplied password validated against /Encrypt")
	}
	return result, nil
}

func detectSignature(table *xref.Table, root object.Reference) bool {
	value, err := table.Resolve(root)
	if err != nil {
		return false
	}
	catalog, ok := value.(*object.Dict)
	if !ok {
		return false
	}
	formRef, ok := catalog.GetReference("AcroForm")
	if !ok {
		return false
	}
	formValue, err := table.Resolve(formRef)
	if err != nil {
		return false
	}
	form, ok := formValue.(*object.Dict)
	if !ok {
		return false
	}
	fields := form.GetArray("Fields")
	for _, f := range fields {
		ref, ok := f.(object.Reference)
		if !ok {
			continue
		}
		fv, err := table.Resolve(ref)
		if err != nil {
			continue
		}
		fd, ok := fv.(*object.Dict)
		if !ok {
			continue
		}
		if ft := fd.GetName("FT"); ft == "Sig" {
			return true
		}
	}
	return false
}

// expandObjectStream decompresses the object stream id, parses each
// member object out of its body, and binds it into table under its own
// object number, with ContainingStreamID set to id so the reference keeps
// track of where it was compressed from.
func expandObjectStream(table *xref.Table, p *parser.Parser, id object.ObjectID) error {
	ref, ok := table.Lookup(id)
	if !ok {
		return nil
	}
	value, err := table.Resolve(ref)
	if err != nil {
		return err
	}
	stream, ok := value.(*object.Stream)
	if !ok {
		return errs.New(errs.MalformedInput, "document.expandObjectStream", "object stream entry did not resolve to a stream")
	}
	if _, err := filter.TryUnfilter(stream); err != nil {
		return err
	}
	headers, payload, err := xrefstream.DecodeObjectStreamHeader(stream)
	if err != nil {
		return err
	}

	for i, h := range headers {
		end := len(payload)
		if i+1 < len(headers) {
			end = headers[i+1].Offset
		}
		if h.Offset < 0 || h.Offset > len(payload) || end > len(payload) || end < h.Offset {
			return errs.New(errs.MalformedInput, "document.expandObjectStream", "object stream member offset out of range")
		}
		body := payload[h.Offset:end]

		memberLexer, err := lexer.New(bytes.NewReader(body))
		if err != nil {
			return err
		}
		memberParser, err := parser.New(memberLexer)
		if err != nil {
			return err
		}
		memberValue, err := memberParser.ParseObject()
		if err != nil {
			return err
		}

		memberID := object.ObjectID{Number: h.ObjectNumber}
		table.Bind(memberID, memberValue)
	}
	return nil
}

// PrepareForSave materializes the write order used by Save,
// exposed separately so a caller can inspect what would be written
// without committing to an I/O round-trip.
func (d *Document) PrepareForSave() []object.Reference {
	return writer.PrepareForSave(d.Table, d.Root)
}

// Save serializes d to dest. ReadOnly documents, and documents classified
// read-only because a digital signature was detected (see
// trailer.MarkReadOnly), always fail: rewriting them would invalidate the
// signature's byte range. Modify and Import documents are rewritten in
// full (this module does not attempt byte-preserving incremental
// appends).
func (d *Document) Save(dest io.Writer, useXRefStream bool) error {
	if d.mode == ReadOnly {
		return errs.New(errs.UnsupportedFeature, "Document.Save", "document was opened ReadOnly")
	}
	if d.Chain != nil && d.Chain.Newest != nil && d.Chain.Newest.IsReadOnly {
		return errs.New(errs.UnsupportedFeature, "Document.Save", "document is read-only: rewriting it would invalidate a detected signature; use OriginalBytes to recover its content")
	}

	trailerDict := object.NewDict()
	trailerDict.Set("Root", d.Root)
	if d.Info != nil {
		trailerDict.Set("Info", *d.Info)
	}
	if len(d.ID) > 0 {
		trailerDict.Set("ID", d.ID)
	}

	order := writer.PrepareForSave(d.Table, d.Root)

	if d.securityHandler != nil && d.encryptDict != nil {
		if err := d.securityHandler.EncryptDocument(d.encryptDict, d.Root); err != nil {
			return errs.Wrap(errs.IntegrityViolation, "Document.Save", err)
		}
	}

	w := writer.New(dest)
	w.WriteHeader(d.HeaderVersion)
	positions, err := w.WriteObjects(d.Table, order)
	if err != nil {
		return err
	}

	trailerDict.Set("Size", object.Integer(d.Table.MaxObjectNumber()+1))

	if useXRefStream {
		streamObjectNumber := d.Table.MaxObjectNumber() + 1
		err = w.WriteCrossReferenceStream(order, positions, trailerDict, streamObjectNumber, xrefstream.Width{1, 4, 2})
	} else {
		err = w.WriteClassicXRef(order, positions, trailerDict)
	}
	return err
}
