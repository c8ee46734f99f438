package btree_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/wilhasse/go-sqlitefile/btree"
	"github.com/wilhasse/go-sqlitefile/format"
	"github.com/wilhasse/go-sqlitefile/internal/testdb"
	"github.com/wilhasse/go-sqlitefile/page"
	"github.com/wilhasse/go-sqlitefile/record"
)

const pageSize = 512

func emptySchemaPage() []byte {
	return testdb.Page(pageSize, format.FileHeaderSize, format.PageLeafTable, 0, nil)
}

func newWalker(t *testing.T, db *testdb.DB) *btree.Walker {
	t.Helper()
	r, err := page.NewReader(db.Bytes())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return btree.NewWalker(r)
}

// collect drains a cursor, returning rowids and the first text column of
// every record.
func collect(t *testing.T, cur *btree.Cursor) ([]int64, []string) {
	t.Helper()
	var rowids []int64
	var texts []string
	for {
		ok, err := cur.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		rowids = append(rowids, cur.Rowid())
		texts = append(texts, cur.Record().Column(0).Text)
	}
	return rowids, texts
}

// twoLevelTableTree builds a root interior page over three leaves holding
// rowids 1..6 and returns the root page number.
func twoLevelTableTree(db *testdb.DB) uint32 {
	leaf := func(rows ...int64) []byte {
		var cells [][]byte
		for _, rid := range rows {
			name := strings.Repeat(string(rune('a'+rid-1)), 3)
			cells = append(cells, testdb.TableLeafCell(rid, testdb.EncodeValues(record.Text(name))))
		}
		return testdb.Page(pageSize, 0, format.PageLeafTable, 0, cells)
	}
	db.AddPage(emptySchemaPage()) // page 1
	root := db.AddPage(nil)       // placeholder, filled below
	p3 := db.AddPage(leaf(1, 2))
	p4 := db.AddPage(leaf(3, 4))
	p5 := db.AddPage(leaf(5, 6))
	db.SetPage(root, testdb.Page(pageSize, 0, format.PageInteriorTable, p5, [][]byte{
		testdb.TableInteriorCell(p3, 2),
		testdb.TableInteriorCell(p4, 4),
	}))
	return root
}

func TestCursorTableTreeInOrder(t *testing.T) {
	db := testdb.New(pageSize)
	root := twoLevelTableTree(db)
	w := newWalker(t, db)

	rowids, texts := collect(t, w.Iterate(root))
	wantIDs := []int64{1, 2, 3, 4, 5, 6}
	wantTexts := []string{"aaa", "bbb", "ccc", "ddd", "eee", "fff"}
	if len(rowids) != len(wantIDs) {
		t.Fatalf("got %d entries, want %d", len(rowids), len(wantIDs))
	}
	for i := range wantIDs {
		if rowids[i] != wantIDs[i] || texts[i] != wantTexts[i] {
			t.Errorf("entry %d = (%d, %q), want (%d, %q)",
				i, rowids[i], texts[i], wantIDs[i], wantTexts[i])
		}
	}
}

func TestCursorRestartable(t *testing.T) {
	db := testdb.New(pageSize)
	root := twoLevelTableTree(db)
	w := newWalker(t, db)

	first, _ := collect(t, w.Iterate(root))
	second, _ := collect(t, w.Iterate(root))
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestCursorEmptyTree(t *testing.T) {
	db := testdb.New(pageSize)
	db.AddPage(emptySchemaPage())
	root := db.AddPage(testdb.Page(pageSize, 0, format.PageLeafTable, 0, nil))
	w := newWalker(t, db)

	cur := w.Iterate(root)
	ok, err := cur.Next()
	if ok || err != nil {
		t.Fatalf("Next on empty tree = (%v, %v), want (false, nil)", ok, err)
	}
	// A second call after exhaustion stays false.
	if ok, err := cur.Next(); ok || err != nil {
		t.Fatalf("Next after exhaustion = (%v, %v)", ok, err)
	}
}

func TestCursorIndexTreeInOrder(t *testing.T) {
	key := func(k string, rowid int64) []byte {
		return testdb.EncodeValues(record.Text(k), record.Integer(rowid))
	}
	db := testdb.New(pageSize)
	db.AddPage(emptySchemaPage())
	root := db.AddPage(nil)
	left := db.AddPage(testdb.Page(pageSize, 0, format.PageLeafIndex, 0, [][]byte{
		testdb.IndexCell(0, key("apple", 1)),
		testdb.IndexCell(0, key("cherry", 4)),
	}))
	right := db.AddPage(testdb.Page(pageSize, 0, format.PageLeafIndex, 0, [][]byte{
		testdb.IndexCell(0, key("plum", 3)),
	}))
	// The interior cell's own key sits between its child subtree and the
	// right sibling in key order.
	db.SetPage(root, testdb.Page(pageSize, 0, format.PageInteriorIndex, right, [][]byte{
		testdb.IndexCell(left, key("mango", 2)),
	}))
	w := newWalker(t, db)

	rowids, texts := collect(t, w.Iterate(root))
	wantTexts := []string{"apple", "cherry", "mango", "plum"}
	wantIDs := []int64{1, 4, 2, 3}
	if len(texts) != len(wantTexts) {
		t.Fatalf("got %d keys %v, want %d", len(texts), texts, len(wantTexts))
	}
	for i := range wantTexts {
		if texts[i] != wantTexts[i] || rowids[i] != wantIDs[i] {
			t.Errorf("entry %d = (%q, %d), want (%q, %d)",
				i, texts[i], rowids[i], wantTexts[i], wantIDs[i])
		}
	}
}

func TestCursorRejectsMixedTree(t *testing.T) {
	db := testdb.New(pageSize)
	db.AddPage(emptySchemaPage())
	root := db.AddPage(nil)
	child := db.AddPage(testdb.Page(pageSize, 0, format.PageLeafIndex, 0, nil))
	db.SetPage(root, testdb.Page(pageSize, 0, format.PageInteriorTable, child, nil))
	w := newWalker(t, db)

	cur := w.Iterate(root)
	_, err := cur.Next()
	if !errors.Is(err, format.ErrCorruptPageType) {
		t.Fatalf("error = %v, want ErrCorruptPageType", err)
	}
	if cur.Err() == nil {
		t.Error("Err() should latch the failure")
	}
	if ok, _ := cur.Next(); ok {
		t.Error("cursor advanced after a failure")
	}
}

func TestCursorDepthGuard(t *testing.T) {
	db := testdb.New(pageSize)
	db.AddPage(emptySchemaPage())
	root := db.AddPage(nil)
	// Right child pointing back at the root makes an unbounded descent.
	db.SetPage(root, testdb.Page(pageSize, 0, format.PageInteriorTable, root, nil))
	w := newWalker(t, db)

	_, err := w.Iterate(root).Next()
	if !errors.Is(err, format.ErrCorruptPageType) {
		t.Fatalf("error = %v, want ErrCorruptPageType", err)
	}
	if !strings.Contains(err.Error(), "deeper than") {
		t.Errorf("error %q does not mention the depth bound", err)
	}
}

func TestPayloadOverflowChain(t *testing.T) {
	// A record whose text payload spills across two overflow pages.
	body := strings.Repeat("overflow palaver ", 60) // 1020 chars
	payload := testdb.EncodeValues(record.Text(body))

	local := testdb.SplitLocal(len(payload), pageSize)
	if local >= len(payload) {
		t.Fatalf("fixture does not spill: local %d of %d", local, len(payload))
	}
	perPage := pageSize - 4
	rest := payload[local:]
	if len(rest) <= perPage {
		t.Fatalf("fixture spills only one page (%d bytes), want two", len(rest))
	}

	db := testdb.New(pageSize)
	db.AddPage(emptySchemaPage())
	leafNo := db.AddPage(nil)
	ov2 := db.AddPage(testdb.OverflowPage(pageSize, 0, rest[perPage:]))
	ov1 := db.AddPage(testdb.OverflowPage(pageSize, ov2, rest[:perPage]))
	db.SetPage(leafNo, testdb.Page(pageSize, 0, format.PageLeafTable, 0, [][]byte{
		testdb.TableLeafCellSpill(7, len(payload), payload[:local], ov1),
	}))
	w := newWalker(t, db)

	cur := w.Iterate(leafNo)
	ok, err := cur.Next()
	if err != nil || !ok {
		t.Fatalf("Next = (%v, %v)", ok, err)
	}
	if cur.Rowid() != 7 {
		t.Errorf("Rowid = %d, want 7", cur.Rowid())
	}
	if got := cur.Record().Column(0).Text; got != body {
		t.Errorf("reassembled %d bytes, want %d; mismatch starts at %d",
			len(got), len(body), commonPrefix(got, body))
	}
}

func TestPayloadRejectsCircularChain(t *testing.T) {
	// Declared size needs nine overflow pages, but the one overflow page
	// in the file points back at itself. The chain must stop once it has
	// followed more links than the file has pages.
	body := strings.Repeat("x", 5000)
	payload := testdb.EncodeValues(record.Text(body))
	local := testdb.SplitLocal(len(payload), pageSize)

	db := testdb.New(pageSize)
	db.AddPage(emptySchemaPage())
	leafNo := db.AddPage(nil)
	ov := db.AddPage(nil)
	db.SetPage(ov, testdb.OverflowPage(pageSize, ov, bytes.Repeat([]byte{'x'}, pageSize-4)))
	db.SetPage(leafNo, testdb.Page(pageSize, 0, format.PageLeafTable, 0, [][]byte{
		testdb.TableLeafCellSpill(1, len(payload), payload[:local], ov),
	}))
	w := newWalker(t, db)

	_, err := w.Iterate(leafNo).Next()
	if !errors.Is(err, format.ErrMalformedRecord) {
		t.Fatalf("error = %v, want ErrMalformedRecord", err)
	}
}

func TestPayloadTruncatedChain(t *testing.T) {
	// Two overflow pages' worth of payload declared, one page provided
	// with a terminating next pointer.
	body := strings.Repeat("y", 1200)
	payload := testdb.EncodeValues(record.Text(body))
	local := testdb.SplitLocal(len(payload), pageSize)
	rest := payload[local:]
	if len(rest) <= pageSize-4 {
		t.Fatalf("fixture fits one overflow page: %d bytes", len(rest))
	}

	db := testdb.New(pageSize)
	db.AddPage(emptySchemaPage())
	leafNo := db.AddPage(nil)
	ov := db.AddPage(testdb.OverflowPage(pageSize, 0, rest[:pageSize-4]))
	db.SetPage(leafNo, testdb.Page(pageSize, 0, format.PageLeafTable, 0, [][]byte{
		testdb.TableLeafCellSpill(1, len(payload), payload[:local], ov),
	}))
	w := newWalker(t, db)

	_, err := w.Iterate(leafNo).Next()
	if !errors.Is(err, format.ErrMalformedRecord) {
		t.Fatalf("error = %v, want ErrMalformedRecord", err)
	}
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
