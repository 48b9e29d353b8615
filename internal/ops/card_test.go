package ops

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nanosheet/internal/model"
	"nanosheet/internal/sheet"
	"nanosheet/internal/undo"
)

// fakePersister records UpdateCard calls and serves canned media.
type fakePersister struct {
	mu      sync.Mutex
	updates []model.Card
	fail    bool
	media   []byte
}

func (f *fakePersister) UpdateCard(_ context.Context, c model.Card) (model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return model.Card{}, errors.New("service unavailable")
	}
	f.updates = append(f.updates, c)
	return c, nil
}

func (f *fakePersister) FetchCards(_ context.Context, ids []string) ([]model.Card, error) {
	return nil, nil
}

func (f *fakePersister) DownloadLane(_ context.Context, title string, cards []model.Card) ([]byte, error) {
	if f.fail {
		return nil, errors.New("service unavailable")
	}
	return []byte("archive:" + title), nil
}

func (f *fakePersister) FetchMedia(_ context.Context, url string) ([]byte, error) {
	if f.fail {
		return nil, errors.New("service unavailable")
	}
	return f.media, nil
}

func (f *fakePersister) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func editEngine(t *testing.T) (*Engine, *fakePersister) {
	t.Helper()
	sh := specSheet(t)
	sh.PutCard(model.Card{ID: "A", Title: "Old", Color: "#111"})
	e := NewEngine(sh, "user-a", undo.NewLedger())
	p := &fakePersister{}
	e.Persist = p
	return e, p
}

func TestRenameWritesImmediatelyPersistsDebounced(t *testing.T) {
	e, p := editEngine(t)

	if err := e.Rename("A", "First"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := e.Rename("A", "Second"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	// Live write is immediate.
	if v, _ := e.Sheet.Cards().Field("A", "title"); v != "Second" {
		t.Fatalf("title = %v, want Second", v)
	}
	// Persistence has not fired yet.
	if p.updateCount() != 0 {
		t.Fatalf("persist must be debounced, got %d calls", p.updateCount())
	}

	e.CommitRename("A")
	if p.updateCount() != 1 {
		t.Fatalf("flush must persist exactly once, got %d calls", p.updateCount())
	}
	p.mu.Lock()
	got := p.updates[0].Title
	p.mu.Unlock()
	if got != "Second" {
		t.Fatalf("persisted title = %q, want the latest edit", got)
	}
}

func TestRenameUnchangedIsNoop(t *testing.T) {
	e, p := editEngine(t)
	if err := e.Rename("A", "Old"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if e.Ledger.UndoDepth("user-a") != 0 {
		t.Fatalf("unchanged rename must not record an undo entry")
	}
	e.CommitRename("A")
	if p.updateCount() != 0 {
		t.Fatalf("unchanged rename must not persist")
	}
}

func TestRenamePersistFailureKeepsLocalState(t *testing.T) {
	e, p := editEngine(t)
	p.fail = true

	var toasts []string
	e.Toast = func(msg string) { toasts = append(toasts, msg) }

	if err := e.Rename("A", "New"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	e.CommitRename("A")

	if v, _ := e.Sheet.Cards().Field("A", "title"); v != "New" {
		t.Fatalf("optimistic local edit must survive a persist failure, got %v", v)
	}
	if len(toasts) != 1 || !strings.Contains(toasts[0], "save") {
		t.Fatalf("persist failure must surface one toast, got %v", toasts)
	}
}

func TestSetPromptDebounceReplacesPending(t *testing.T) {
	e, p := editEngine(t)

	if err := e.SetPrompt("A", "draft one"); err != nil {
		t.Fatalf("set prompt: %v", err)
	}
	if err := e.SetPrompt("A", "draft two"); err != nil {
		t.Fatalf("set prompt: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for p.updateCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("debounced persist never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	if p.updateCount() != 1 {
		t.Fatalf("rapid re-edits must collapse into one persist, got %d", p.updateCount())
	}
	p.mu.Lock()
	got := p.updates[0].Prompt
	p.mu.Unlock()
	if got != "draft two" {
		t.Fatalf("persisted prompt = %q, want the most recent edit", got)
	}
}

func TestDownloadCardArtifacts(t *testing.T) {
	sh := sheet.New("sheet-test")
	sh.TimeAxis().Replace([]string{"t0"})
	sh.LaneAxis().Replace([]string{"l0"})
	sh.SetCell("t0", "l0", "A")
	sh.PutCard(model.Card{ID: "A", Title: "Hero", Color: "#111",
		MediaURL: "https://example.com/a.mp4", MediaType: model.MediaTypeVideo})
	e := NewEngine(sh, "user-a", undo.NewLedger())
	p := &fakePersister{media: []byte("frames")}
	e.Persist = p

	out, err := e.Download(context.Background(), "A")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if out.MetadataName != "A.json" || !strings.Contains(string(out.Metadata), "Hero") {
		t.Fatalf("metadata artifact wrong: %s %s", out.MetadataName, out.Metadata)
	}
	if string(out.Media) != "frames" {
		t.Fatalf("media artifact = %q", out.Media)
	}
	if !strings.HasSuffix(out.MediaName, "/A.mp4") {
		t.Fatalf("media name = %q, want date dir + A.mp4", out.MediaName)
	}
}

func TestMediaPath(t *testing.T) {
	datePrefix := time.Now().Format("01-02-2006") + "/"

	if got := MediaPath("file1", "png", false); got != datePrefix+"file1.png" {
		t.Fatalf("media path = %q", got)
	}
	if got := MediaPath("file1", "png", true); got != datePrefix+"file1_thumb.png" {
		t.Fatalf("thumb path = %q", got)
	}
}

func TestDownloadLaneOrdersCards(t *testing.T) {
	e, _ := editEngine(t)
	e.Sheet.LaneTitles().Set("l0", "Opening")

	archive, err := e.DownloadLane(context.Background(), "l0")
	if err != nil {
		t.Fatalf("download lane: %v", err)
	}
	if string(archive) != "archive:Opening" {
		t.Fatalf("archive = %q", archive)
	}
	if _, err := e.DownloadLane(context.Background(), "nope"); err == nil {
		t.Fatalf("unknown lane must fail")
	}
}
