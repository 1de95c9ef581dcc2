package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestCellTextKeepsFullWidthSpace(t *testing.T) {
	doc, err := ParseReader(strings.NewReader(
		"<table><tr><td class=\"n\">\n  <a>ドスパラ</a>　<b>D4N3200</b> [PC4-25600]\n</td></tr></table>",
	))
	if err != nil {
		t.Fatal(err)
	}
	texts := CellTexts(doc.Find("td.n"))
	require.Equal(t, []string{"ドスパラ　D4N3200 [PC4-25600]"}, texts)

	separator := doc.Find("td.n a").Nodes[0].NextSibling
	require.Equal(t, "　", CellText(separator))
}

func TestGetTextNil(t *testing.T) {
	require.Equal(t, "", GetText(nil))
}

func TestParseDocumentShiftJIS(t *testing.T) {
	page := "<html><body><table><tr><td class=\"swdate1\">2020/06/15</td><td class=\"name\">ドスパラ</td></tr></table></body></html>"
	encoded, err := japanese.ShiftJIS.NewEncoder().String(page)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := ParseDocument([]byte(encoded), "text/html; charset=Shift_JIS")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "ドスパラ", doc.Find("td.name").Text())
	require.Equal(t, "2020/06/15", doc.Find("td.swdate1").Text())
}

func TestParseDocumentUTF8(t *testing.T) {
	doc, err := ParseDocument([]byte("<p>メモリ</p>"), "text/html; charset=utf-8")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "メモリ", doc.Find("p").Text())
}
