package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/JulianKunkel/julia-sets/bmp"
)

func newTestServer(t *testing.T) (*imgWorkScheduler, *httptest.Server) {
	t.Helper()
	p := testParams()
	iws := newImgWorkScheduler(p, 11, 16)
	srv := httptest.NewServer(webServer(iws, 0).Handler)
	t.Cleanup(srv.Close)
	return iws, srv
}

func TestBitmapEndpoint(t *testing.T) {
	iws, srv := newTestServer(t)
	iws.start(2, localRenderer{})

	resp, err := http.Get(srv.URL + "/julia.bmp")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/bmp" {
		t.Errorf("content type %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	w, h, _, err := bmp.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if w != 40 || h != 40 {
		t.Errorf("bitmap is %dx%d", w, h)
	}
}

func TestStatusEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var pr progress
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		t.Fatal(err)
	}
	if pr.Done || pr.Finished != 0 || pr.Tiles != 9 {
		t.Errorf("status before rendering = %+v", pr)
	}
}

func TestWebsocketStreamsProgressAndBitmap(t *testing.T) {
	iws, srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.CloseNow()
	c.SetReadLimit(int64(bmp.FileSize(40, 40)))

	iws.start(2, localRenderer{})

	var updates int
	var last progress
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if typ == websocket.MessageText {
			if err := json.Unmarshal(data, &last); err != nil {
				t.Fatalf("progress message %q: %v", data, err)
			}
			updates++
			continue
		}

		if len(data) != bmp.FileSize(40, 40) {
			t.Errorf("bitmap is %d bytes", len(data))
		}
		break
	}

	if updates == 0 || !last.Done {
		t.Errorf("got %d progress messages, last %+v", updates, last)
	}

	// server closes normally after the bitmap
	_, _, err = c.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Errorf("read after bitmap = %v, want normal closure", err)
	}
}
