package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"docquery/internal/app"
	"docquery/internal/store"
	"docquery/pkg/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	appCore, err := app.New(app.Config{
		Store:      store.NewMemoryStore(),
		Sessions:   store.NewMemorySessionStore(),
		SessionTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{App: appCore})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, token string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func getWithToken(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func registerAndLogin(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/auth/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}

	resp = postJSON(t, baseURL+"/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var loginBody struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginBody); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginBody.Token == "" {
		t.Fatalf("expected session token")
	}
	return loginBody.Token
}

func uploadFiles(t *testing.T, baseURL, token string, files map[string]struct {
	contentType string
	data        []byte
}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/documents", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestFullFlowRegisterUploadQueryDownload(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice", "s3cret")

	// Upload a plain-text document.
	resp := uploadFiles(t, ts.URL, token, map[string]struct {
		contentType string
		data        []byte
	}{
		"plan.txt": {"text/plain", []byte("Project Overview. This covers goals. Objective: ship v1.")},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d, want 200", resp.StatusCode)
	}
	var uploadBody struct {
		Items []app.UploadResult `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadBody); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if len(uploadBody.Items) != 1 || !uploadBody.Items[0].Stored {
		t.Fatalf("upload items = %+v, want one stored file", uploadBody.Items)
	}

	// Query against the uploaded document.
	qresp := postJSON(t, ts.URL+"/api/query", token, map[string]string{"question": "document overview"})
	defer qresp.Body.Close()
	if qresp.StatusCode != http.StatusOK {
		t.Fatalf("query status = %d, want 200", qresp.StatusCode)
	}
	var ans domain.Answer
	if err := json.NewDecoder(qresp.Body).Decode(&ans); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if ans.Response != "Found in plan.txt: Project Overview" {
		t.Fatalf("query response = %q", ans.Response)
	}

	// Download the transcript.
	dresp := getWithToken(t, ts.URL+"/api/history/download", token)
	defer dresp.Body.Close()
	if dresp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dresp.StatusCode)
	}
	if ct := dresp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("download content type = %q, want text/plain", ct)
	}
	if cd := dresp.Header.Get("Content-Disposition"); !strings.Contains(cd, "chat_history.txt") {
		t.Fatalf("content disposition = %q, want chat_history.txt attachment", cd)
	}
	transcript, err := io.ReadAll(dresp.Body)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	text := string(transcript)
	if !strings.HasPrefix(text, "Chat History for alice:\n\n") {
		t.Fatalf("transcript missing header: %q", text)
	}
	if !strings.Contains(text, "Q: document overview\nA: Found in plan.txt: Project Overview\n\n") {
		t.Fatalf("transcript missing entry: %q", text)
	}
}

func TestRegisterDuplicateReturnsConflict(t *testing.T) {
	ts := newTestServer(t)
	_ = registerAndLogin(t, ts.URL, "alice", "s3cret")

	resp := postJSON(t, ts.URL+"/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "different",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}

func TestLoginInvalidCredentialsGenericMessage(t *testing.T) {
	ts := newTestServer(t)
	_ = registerAndLogin(t, ts.URL, "alice", "s3cret")

	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "s3cret"},
	} {
		resp := postJSON(t, ts.URL+"/api/auth/login", "", creds)
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("login status = %d, want 401", resp.StatusCode)
		}
		// Same message for unknown user and wrong password.
		if body.Error != "invalid username or password" {
			t.Fatalf("error = %q, want generic credentials message", body.Error)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{
		"/api/users/me",
		"/api/documents/latest",
		"/api/history",
		"/api/history/download",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestUploadMixedBatchSkipsUnsupported(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice", "s3cret")

	resp := uploadFiles(t, ts.URL, token, map[string]struct {
		contentType string
		data        []byte
	}{
		"notes.txt": {"text/plain", []byte("Budget summary inside.")},
		"photo.png": {"image/png", []byte{0x89, 0x50, 0x4e, 0x47}},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Items []app.UploadResult `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(body.Items))
	}
	var stored, skipped int
	for _, item := range body.Items {
		if item.Stored {
			stored++
		} else {
			skipped++
			if item.Warning == "" {
				t.Fatalf("skipped item %+v missing warning", item)
			}
		}
	}
	if stored != 1 || skipped != 1 {
		t.Fatalf("stored = %d skipped = %d, want 1/1", stored, skipped)
	}
}

func TestQueryWithoutDocument(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice", "s3cret")

	resp := postJSON(t, ts.URL+"/api/query", token, map[string]string{"question": "anything"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query status = %d, want 200", resp.StatusCode)
	}
	var ans domain.Answer
	if err := json.NewDecoder(resp.Body).Decode(&ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ans.Response != app.NoMatchResponse {
		t.Fatalf("response = %q, want canned no-match text", ans.Response)
	}
}

func TestLatestDocumentEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice", "s3cret")

	resp := getWithToken(t, ts.URL+"/api/documents/latest", token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("latest with no upload status = %d, want 404", resp.StatusCode)
	}

	up := uploadFiles(t, ts.URL, token, map[string]struct {
		contentType string
		data        []byte
	}{
		"plan.txt": {"text/plain", []byte("Some content here.")},
	})
	up.Body.Close()

	resp = getWithToken(t, ts.URL+"/api/documents/latest", token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("latest status = %d, want 200", resp.StatusCode)
	}
	var doc documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Filename != "plan.txt" || doc.TextLength == 0 {
		t.Fatalf("latest = %+v, want plan.txt with text", doc)
	}
}

func TestEmptyHistoryDownload(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice", "s3cret")

	resp := getWithToken(t, ts.URL+"/api/history/download", token)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "No chat history found." {
		t.Fatalf("empty transcript = %q", string(body))
	}
}
