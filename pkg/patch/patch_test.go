package patch

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"
)

const formatPatch = `From 1234567890abcdef Mon Sep 17 00:00:00 2001
From: Jane Doe <jane@example.com>
Subject: [PATCH] ext4: fix journal credits

The previous version of this change touched
--- a/fs/xfs/xfs_log.c
+++ b/fs/xfs/xfs_log.c
which is quoted here and must not count.

Signed-off-by: Jane Doe <jane@example.com>
---
 fs/ext4/ext4_jbd2.h | 2 +-
 fs/ext4/inode.c     | 1 +
 2 files changed, 2 insertions(+), 1 deletion(-)

diff --git a/fs/ext4/ext4_jbd2.h b/fs/ext4/ext4_jbd2.h
index 1111111..2222222 100644
--- a/fs/ext4/ext4_jbd2.h
+++ b/fs/ext4/ext4_jbd2.h
@@ -1 +1 @@
-old
+new
diff --git a/fs/ext4/inode.c b/fs/ext4/inode.c
index 3333333..4444444 100644
--- a/fs/ext4/inode.c
+++ b/fs/ext4/inode.c
@@ -1 +1,2 @@
 line
+line
--
2.20.1
`

const renamePatch = `diff --git a/Documentation/video-output.txt b/Documentation/video_output.txt
similarity index 100%
rename from Documentation/video-output.txt
rename to Documentation/video_output.txt
`

const unifiedPatch = `--- linux.orig/lib/llist.c	2019-01-01 00:00:00.000000000 +0000
+++ linux/lib/llist.c	2019-01-02 00:00:00.000000000 +0000
@@ -1 +1 @@
-a
+b
--- /dev/null
+++ linux/new_file
@@ -0,0 +1 @@
+c
`

func TestSourceSet(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		name    string
		content string
		want    sets.Set[string]
	}{
		{
			name:    "format-patch drops headers quoted in the message",
			content: formatPatch,
			want:    sets.New("fs/ext4/ext4_jbd2.h", "fs/ext4/inode.c"),
		},
		{
			name:    "rename",
			content: renamePatch,
			want:    sets.New("Documentation/video-output.txt", "Documentation/video_output.txt"),
		},
		{
			name:    "unified diff with timestamps and a new file",
			content: unifiedPatch,
			want:    sets.New("lib/llist.c", "new_file"),
		},
		{
			name:    "deleted file",
			content: "--- a/Kconfig\n+++ /dev/null\n",
			want:    sets.New("Kconfig"),
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := SourceSet(tc.content)
			require.NoError(t, err)
			if diff := cmp.Diff(sets.List(tc.want), sets.List(got)); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestSourceSetErrors(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		name    string
		content string
		want    error
	}{
		{name: "empty", content: "", want: ErrUnrecognizedFormat},
		{name: "no diff headers", content: "text", want: ErrUnrecognizedFormat},
		{name: "both files absent", content: "--- /dev/null\n+++ /dev/null", want: ErrUnrecognizedFormat},
		{name: "old header without file", content: "--- \n+++ /dev/null", want: ErrUnrecognizedFormat},
		{name: "new header without file", content: "--- /dev/null\n+++ ", want: ErrUnrecognizedFormat},
		{name: "old path without directory", content: "--- abc\n+++ ghi/jkl", want: ErrUnrecognizedPathFormat},
		{name: "new path without directory", content: "--- abc/def\n+++ jkl", want: ErrUnrecognizedPathFormat},
		{name: "new path is a directory", content: "--- abc/def\n+++ ghi/jkl/", want: ErrUnrecognizedPathFormat},
		{name: "old path is a directory", content: "--- abc/def/\n+++ ghi/jkl", want: ErrUnrecognizedPathFormat},
		{name: "old path is absolute", content: "--- /abc/def\n+++ ghi/jkl", want: ErrUnrecognizedPathFormat},
		{name: "new path is absolute", content: "--- abc/def\n+++ /ghi/jkl", want: ErrUnrecognizedPathFormat},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := SourceSet(tc.content)
			if !errors.Is(err, tc.want) {
				t.Errorf("got error %v, want %v", err, tc.want)
			}
			require.ErrorIs(t, err, ErrUnrecognizedFormat)
		})
	}
}

func TestLoadSourceSet(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"patches/0001.patch": {Data: []byte(formatPatch)},
		"patches/0002.patch": {Data: []byte(renamePatch)},
		"patches/0003.patch": {Data: []byte(unifiedPatch)},
		"patches/bad.patch":  {Data: []byte("text")},
	}

	got, err := LoadSourceSet(context.Background(), fsys, []string{
		"patches/0001.patch", "patches/0002.patch", "patches/0003.patch",
	})
	require.NoError(t, err)
	want := []string{
		"Documentation/video-output.txt",
		"Documentation/video_output.txt",
		"fs/ext4/ext4_jbd2.h",
		"fs/ext4/inode.c",
		"lib/llist.c",
		"new_file",
	}
	if diff := cmp.Diff(want, sets.List(got)); diff != "" {
		t.Error(diff)
	}

	_, err = LoadSourceSet(context.Background(), fsys, []string{"patches/0001.patch", "patches/bad.patch"})
	require.ErrorIs(t, err, ErrUnrecognizedFormat)
	require.ErrorContains(t, err, "patches/bad.patch")

	_, err = LoadSourceSet(context.Background(), fsys, []string{"patches/missing.patch"})
	require.Error(t, err)

	_, err = LoadSourceSet(context.Background(), fsys, []string{"https://example.com/1.patch"})
	require.ErrorIs(t, err, ErrRemoteLocation)
}
