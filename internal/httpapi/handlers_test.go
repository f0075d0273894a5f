package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hamed0406/linkcheck/internal/batch"
	"github.com/hamed0406/linkcheck/internal/domain"
	"github.com/hamed0406/linkcheck/internal/probe"
	"github.com/hamed0406/linkcheck/internal/sheet"
)

// ---- test helpers ----

// fakeChecker marks every URL containing "ok" as working.
type fakeChecker struct{}

func (fakeChecker) Check(_ context.Context, target string) domain.CheckResult {
	return domain.CheckResult{
		URL:          target,
		Working:      strings.Contains(target, "ok"),
		Status:       "fake",
		ResponseTime: domain.NotApplicable,
		ContentType:  domain.Unknown,
		Server:       domain.Unknown,
		Content:      "",
	}
}

func setupServer(t *testing.T, chk probe.Checker, workers int) *httptest.Server {
	t.Helper()
	runner := batch.NewRunner(zap.NewNop(), chk, workers)
	srv := NewServer(zap.NewNop(), runner, Options{CheckRPM: 0})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func xlsxBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	name := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			ref, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellStr(name, ref, v)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

func postFile(t *testing.T, endpoint, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	resp, err := http.Post(endpoint, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST %s: %v", endpoint, err)
	}
	return resp
}

func decodeResults(t *testing.T, resp *http.Response) []domain.CheckResult {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var out []domain.CheckResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func decodeError(t *testing.T, resp *http.Response, status int) string {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != status {
		t.Fatalf("want %d, got %d", status, resp.StatusCode)
	}
	var e map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e["error"]
}

// ---- tests ----

func TestCheckURLs_TextBlob(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)

	blob := "http://ok.example\n\n   http://dead.example  \r\nhttp://ok.example\n"
	resp, err := http.PostForm(ts.URL+"/check_urls", url.Values{"urls": {blob}})
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	out := decodeResults(t, resp)

	got := make([]string, len(out))
	for i, r := range out {
		got[i] = r.URL
	}
	want := []string{"http://ok.example", "http://dead.example", "http://ok.example"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("urls mismatch (-want +got):\n%s", diff)
	}
	if !out[0].Working || out[1].Working {
		t.Fatalf("unexpected verdicts: %+v", out)
	}
}

func TestCheckURLs_EmptyBlob(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)
	resp, err := http.PostForm(ts.URL+"/check_urls", url.Values{"urls": {"  \n "}})
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if out := decodeResults(t, resp); len(out) != 0 {
		t.Fatalf("want empty array, got %+v", out)
	}
}

func TestCheckURLs_Spreadsheet(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)
	content := xlsxBytes(t, [][]string{
		{"A", "B", "C"},
		{"http://ok-a", "skip", "http://c1"},
		{"http://a2", "skip", ""},
	})
	out := decodeResults(t, postFile(t, ts.URL+"/check_urls", "links.xlsx", content))
	if len(out) != 3 || out[0].URL != "http://ok-a" || out[1].URL != "http://a2" || out[2].URL != "http://c1" {
		t.Fatalf("unexpected results: %+v", out)
	}
}

func TestCheckURLs_WrongExtension(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)
	msg := decodeError(t, postFile(t, ts.URL+"/check_urls", "links.csv", []byte("a,b")), http.StatusBadRequest)
	if msg != "Sadece Excel (.xlsx) dosyaları desteklenir" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCheckURLs_BrokenWorkbook(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)
	msg := decodeError(t, postFile(t, ts.URL+"/check_urls", "links.xlsx", []byte("not a zip")), http.StatusBadRequest)
	if !strings.HasPrefix(msg, "Excel okuma hatası") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCheckURLs_BatchSubstrateFailure(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, -1)
	resp, err := http.PostForm(ts.URL+"/check_urls", url.Values{"urls": {"http://ok"}})
	if err != nil {
		t.Fatal(err)
	}
	decodeError(t, resp, http.StatusInternalServerError)
}

func TestCheckURLs_RealStrategyAgainst500(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx")
		http.Error(w, "boom", 500)
	}))
	defer target.Close()

	for _, kind := range []probe.Kind{probe.KindPermissive, probe.KindStrict} {
		chk, err := probe.New(kind, probe.Options{Timeout: 2 * time.Second})
		if err != nil {
			t.Fatal(err)
		}
		ts := setupServer(t, chk, 5)
		resp, err := http.PostForm(ts.URL+"/check_urls", url.Values{"urls": {target.URL}})
		if err != nil {
			t.Fatal(err)
		}
		out := decodeResults(t, resp)
		if len(out) != 1 || out[0].Working {
			t.Fatalf("%s: 500 must not be working: %+v", kind, out)
		}
	}
}

func TestReadExcel(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)

	resp, err := http.Post(ts.URL+"/read_excel", "application/x-www-form-urlencoded", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if msg := decodeError(t, resp, http.StatusBadRequest); msg != "Dosya yüklenmedi" {
		t.Fatalf("unexpected message %q", msg)
	}

	decodeError(t, postFile(t, ts.URL+"/read_excel", "x.txt", []byte("hi")), http.StatusBadRequest)

	content := xlsxBytes(t, [][]string{{"URL", "Not"}, {"http://a"}})
	resp = postFile(t, ts.URL+"/read_excel", "x.xlsx", content)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var table domain.Table
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		t.Fatal(err)
	}
	want := domain.Table{Columns: []string{"URL", "Not"}, Data: [][]string{{"http://a", ""}}}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestExportExcel(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)
	yes := true
	req := domain.ExportRequest{
		Headers: []string{"URL", "Durum"},
		Rows:    [][]domain.ExportCell{{{Text: "http://ok", Working: &yes}, {Text: "Çalışıyor (200)"}}},
	}
	body, _ := json.Marshal(req)
	resp, err := http.Post(ts.URL+"/export_excel", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != sheet.ContentType {
		t.Fatalf("content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "link_kontrol_sonuclari.xlsx") {
		t.Fatalf("content disposition %q", cd)
	}

	table, err := sheet.ReadTable(resp.Body)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if table.Data[0][0] != "http://ok" || table.Data[0][1] != "Çalışıyor (200)" {
		t.Fatalf("round trip lost text: %+v", table)
	}
}

func TestExportExcel_BadJSON(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)
	resp, err := http.Post(ts.URL+"/export_excel", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatal(err)
	}
	decodeError(t, resp, http.StatusBadRequest)
}

func TestIndexAndHealth(t *testing.T) {
	ts := setupServer(t, fakeChecker{}, 2)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("index: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp2, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != 200 {
		t.Fatalf("healthz: %d", resp2.StatusCode)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines(" a \r\n\nb\n  \n")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("splitLines mismatch (-want +got):\n%s", diff)
	}
}
