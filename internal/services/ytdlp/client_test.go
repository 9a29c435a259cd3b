package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

type fakeExecutor struct {
	calls  [][]string
	stdout []string
	stderr []string
	err    error
	onRun  func(args []string)
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string, onStdout, onStderr func(string)) error {
	f.calls = append(f.calls, args)
	if f.onRun != nil {
		f.onRun(args)
	}
	for _, line := range f.stdout {
		if onStdout != nil {
			onStdout(line)
		}
	}
	for _, line := range f.stderr {
		if onStderr != nil {
			onStderr(line)
		}
	}
	return f.err
}

func TestInfoParsesMetadata(t *testing.T) {
	exec := &fakeExecutor{stdout: []string{
		`{"id":"abc","title":"A Song","artist":"Someone","album":"An Album","track_number":3,"release_year":2021,"genre":"Electronic"}`,
	}}
	client, err := New("yt-dlp", WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	info, err := client.Info(context.Background(), "https://music.example.com/watch?v=abc")
	if err != nil {
		t.Fatal(err)
	}
	if info.Title != "A Song" || info.Artist != "Someone" || info.TrackNumber != 3 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if len(exec.calls) != 1 || !slices.Contains(exec.calls[0], "--dump-json") {
		t.Fatalf("unexpected invocation: %v", exec.calls)
	}
	if !slices.Contains(exec.calls[0], "--no-playlist") {
		t.Fatalf("expected --no-playlist: %v", exec.calls[0])
	}
}

func TestInfoEmptyOutputIsError(t *testing.T) {
	client, _ := New("yt-dlp", WithExecutor(&fakeExecutor{}))
	if _, err := client.Info(context.Background(), "url"); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestInfoMalformedJSONIsError(t *testing.T) {
	client, _ := New("yt-dlp", WithExecutor(&fakeExecutor{stdout: []string{"{not json"}}))
	if _, err := client.Info(context.Background(), "url"); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestFlatPlaylist(t *testing.T) {
	exec := &fakeExecutor{stdout: []string{
		`{"title":"My Mix","entries":[{"id":"a1","title":"One"},{"id":"b2","title":"Two"}]}`,
	}}
	client, _ := New("yt-dlp", WithExecutor(exec))

	info, err := client.FlatPlaylist(context.Background(), "https://music.example.com/playlist?list=x")
	if err != nil {
		t.Fatal(err)
	}
	if info.Title != "My Mix" || len(info.Entries) != 2 {
		t.Fatalf("unexpected playlist: %+v", info)
	}
	if !slices.Contains(exec.calls[0], "--flat-playlist") {
		t.Fatalf("expected flat playlist flag: %v", exec.calls[0])
	}
}

func TestDirectURLTakesFirstNonEmptyLine(t *testing.T) {
	exec := &fakeExecutor{stdout: []string{"", "https://cdn.example.com/stream.webm"}}
	client, _ := New("yt-dlp", WithExecutor(exec))

	url, err := client.DirectURL(context.Background(), "video")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn.example.com/stream.webm" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestDirectURLErrorIncludesStderrTail(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 1"), stderr: []string{"ERROR: no formats"}}
	client, _ := New("yt-dlp", WithExecutor(exec))

	_, err := client.DirectURL(context.Background(), "video")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "no formats") {
		t.Fatalf("error should carry stderr context: %q", got)
	}
}

func TestDownloadNativeFindsNewestOutput(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "Old_Track.webm")
	if err := os.WriteFile(older, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{onRun: func([]string) {
		if err := os.WriteFile(filepath.Join(dir, "New_Track.webm"), []byte("new"), 0o644); err != nil {
			t.Fatal(err)
		}
	}}
	client, _ := New("yt-dlp", WithExecutor(exec))

	path, err := client.DownloadNative(context.Background(), "video", dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "New_Track.webm" {
		t.Fatalf("expected newest download, got %s", path)
	}
}

func TestDownloadExtractChecksTempOutputs(t *testing.T) {
	dir := t.TempDir()
	tempBase := filepath.Join(dir, "temp-xyz")
	exec := &fakeExecutor{onRun: func([]string) {
		if err := os.WriteFile(tempBase+".opus", []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
	}}
	client, _ := New("yt-dlp", WithExecutor(exec))

	path, err := client.DownloadExtract(context.Background(), "video", tempBase)
	if err != nil {
		t.Fatal(err)
	}
	if path != tempBase+".opus" {
		t.Fatalf("unexpected path: %s", path)
	}
}

func TestDownloadExtractMissingOutputIsError(t *testing.T) {
	client, _ := New("yt-dlp", WithExecutor(&fakeExecutor{}))
	if _, err := client.DownloadExtract(context.Background(), "video", filepath.Join(t.TempDir(), "temp")); err == nil {
		t.Fatal("expected error when no output file appears")
	}
}
