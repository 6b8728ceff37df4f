package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSpreadsheetText(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"bolt", 4}))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	text, err := SpreadsheetText(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "# Sheet1\nname\tqty\nbolt\t4", text)
}

func TestSpreadsheetTextInvalid(t *testing.T) {
	_, err := SpreadsheetText([]byte("not a workbook"))
	assert.Error(t, err)
}

func TestLinkTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>\n  Holding   Report </title></head><body></body></html>"))
	}))
	defer srv.Close()

	title, err := LinkTitle(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Holding Report", title)
}

func TestLinkTitleMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>no title</body></html>"))
	}))
	defer srv.Close()

	_, err := LinkTitle(context.Background(), srv.URL)
	assert.Error(t, err)
}
