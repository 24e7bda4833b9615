package document

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benoitkugler/pdfcore/object"
)

// buildClassicPDF assembles a minimal single-generation PDF with a classic
// xref table, computing every object's byte offset from the buffer's
// actual length as it is written rather than from hand-counted constants.
func buildClassicPDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	type obj struct {
		num    int
		offset int64
		body   string
	}
	var objs []obj
	writeObj := func(num int, body string) {
		objs = append(objs, obj{num: num, offset: int64(buf.Len())})
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<</Type/Catalog/Pages 2 0 R>>")
	writeObj(2, "<</Type/Pages/Kids[3 0 R]/Count 1>>")
	writeObj(3, "<</Type/Page/Parent 2 0 R>>")

	xrefOffset := int64(buf.Len())
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \r\n")
	for _, o := range objs {
		fmt.Fprintf(&buf, "%010d %05d n \r\n", o.offset, 0)
	}
	buf.WriteString("trailer\n")
	fmt.Fprintf(&buf, "<</Size %d/Root 1 0 R>>\n", len(objs)+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

func TestOpenReadsClassicXRefPDF(t *testing.T) {
	data := buildClassicPDF(t)
	doc, err := Open(bytes.NewReader(data), OpenOptions{Mode: ReadOnly})
	assert.NoError(t, err)
	assert.Equal(t, "1.7", doc.HeaderVersion)
	assert.Equal(t, object.ObjectID{Number: 1, Generation: 0}, doc.Root.ID)

	root, err := doc.Table.Resolve(doc.Root)
	assert.NoError(t, err)
	catalog, ok := root.(*object.Dict)
	assert.True(t, ok)
	assert.Equal(t, object.Name("Catalog"), catalog.GetName("Type"))

	pagesRef, ok := catalog.GetReference("Pages")
	assert.True(t, ok)
	pages, err := doc.Table.Resolve(pagesRef)
	assert.NoError(t, err)
	assert.Equal(t, 1, pages.(*object.Dict).GetInteger("Count"))
}

func TestOpenRejectsMissingRoot(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	xrefOffset := int64(buf.Len())
	buf.WriteString("xref\n0 1\n0000000000 65535 f \r\n")
	buf.WriteString("trailer\n<</Size 1>>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := Open(bytes.NewReader(buf.Bytes()), OpenOptions{Mode: ReadOnly})
	assert.Error(t, err)
}

func TestSaveFailsOnReadOnlyDocument(t *testing.T) {
	data := buildClassicPDF(t)
	doc, err := Open(bytes.NewReader(data), OpenOptions{Mode: ReadOnly})
	assert.NoError(t, err)

	var out bytes.Buffer
	err = doc.Save(&out, false)
	assert.Error(t, err)
}

func TestSaveProducesReopenablePDF(t *testing.T) {
	data := buildClassicPDF(t)
	doc, err := Open(bytes.NewReader(data), OpenOptions{Mode: Modify})
	assert.NoError(t, err)

	var out bytes.Buffer
	assert.NoError(t, doc.Save(&out, false))

	reopened, err := Open(bytes.NewReader(out.Bytes()), OpenOptions{Mode: ReadOnly})
	assert.NoError(t, err)
	root, err := reopened.Table.Resolve(reopened.Root)
	assert.NoError(t, err)
	assert.Equal(t, object.Name("Catalog"), root.(*object.Dict).GetName("Type"))
}

func TestOpenValidatesOptions(t *testing.T) {
	data := buildClassicPDF(t)
	_, err := Open(bytes.NewReader(data), OpenOptions{Mode: OpenMode(99)})
	assert.Error(t, err)
}

func TestOpenAcceptsZeroValueReadOnlyMode(t *testing.T) {
	data := buildClassicPDF(t)
	_, err := Open(bytes.NewReader(data), OpenOptions{})
	assert.NoError(t, err)
}

func TestPrepareForSaveMatchesWriterOrder(t *testing.T) {
	data := buildClassicPDF(t)
	doc, err := Open(bytes.NewReader(data), OpenOptions{Mode: Modify})
	assert.NoError(t, err)

	order := doc.PrepareForSave()
	assert.Len(t, order, 3)
	for i, ref := range order {
		assert.Equal(t, uint32(i+1), ref.ID.Number)
	}
}
