package memstat

import "testing"

func TestTracker_TracksOpenAndClose(t *testing.T) {
	tr := NewTracker(8, nil)

	tr.FileOpened(100)
	tr.FileOpened(50)
	files, bytes := tr.Current()
	if files != 2 || bytes != 150 {
		t.Errorf("after two opens: files=%d bytes=%d, want 2 150", files, bytes)
	}

	tr.FileClosed(50)
	files, bytes = tr.Current()
	if files != 1 || bytes != 100 {
		t.Errorf("after one close: files=%d bytes=%d, want 1 100", files, bytes)
	}
}

func TestTracker_HistoryIsBoundedAndIndependent(t *testing.T) {
	tr := NewTracker(3, nil)
	for i := 0; i < 5; i++ {
		tr.FileOpened(1)
	}
	hist := tr.History()
	if len(hist) != 3 {
		t.Fatalf("len(History()) = %d, want 3 (bounded by maxHistory)", len(hist))
	}
	if hist[len(hist)-1].FilesOpen != 5 {
		t.Errorf("latest snapshot FilesOpen = %d, want 5", hist[len(hist)-1].FilesOpen)
	}

	hist[0].FilesOpen = -999
	if tr.History()[0].FilesOpen == -999 {
		t.Error("History() must return a copy, not the internal slice")
	}
}
