package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAwaitWriteSettleStableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ready.bin")
	if err := os.WriteFile(path, []byte("complete"), 0644); err != nil {
		t.Fatal(err)
	}
	if !awaitWriteSettle(path, time.Millisecond) {
		t.Error("a file that is not growing must settle")
	}
}

func TestAwaitWriteSettleMissingFile(t *testing.T) {
	dir := t.TempDir()
	if awaitWriteSettle(filepath.Join(dir, "gone.bin"), time.Millisecond) {
		t.Error("a missing file must not settle")
	}
}

func TestAwaitWriteSettleGrowingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slow.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			if _, err := f.Write([]byte("chunk of data")); err != nil {
				t.Errorf("write failed: %v", err)
				return
			}
			time.Sleep(2 * time.Millisecond)
		}
		if err := f.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	}()

	if !awaitWriteSettle(path, 10*time.Millisecond) {
		t.Error("the file must settle once writing stops")
	}
	<-done
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(5*len("chunk of data")) {
		t.Errorf("settled before the writer finished: %d bytes", info.Size())
	}
}
