package vault

import (
	"testing"
	"time"
)

func newTestCheckpoints(t *testing.T, retention int) (*CheckpointManager, *ShardIO, *Layout) {
	t.Helper()
	root := t.TempDir()
	layout, err := ResolveLayout(root, "proj1")
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	fs := osFS{}
	if err := layout.EnsureDirs(fs); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	shard := NewShardIO(layout, fs)
	return NewCheckpointManager(layout, fs, shard, retention), shard, layout
}

func TestCheckpointCreateAndRestore(t *testing.T) {
	cm, shard, _ := newTestCheckpoints(t, 0)

	v1, _ := FromMap(map[string]interface{}{"a": 1})
	if err := shard.PersistChunk("notes", &v1); err != nil {
		t.Fatalf("PersistChunk: %v", err)
	}

	fileName, err := cm.Create("weekly", "", time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if fileName == "" {
		t.Fatal("expected non-empty checkpoint file name")
	}

	// Mutate the chunk after the checkpoint.
	v2, _ := FromMap(map[string]interface{}{"a": 2})
	if err := shard.PersistChunk("notes", &v2); err != nil {
		t.Fatalf("PersistChunk 2: %v", err)
	}
	v3, _ := FromMap(map[string]interface{}{"b": "new"})
	if err := shard.PersistChunk("extra", &v3); err != nil {
		t.Fatalf("PersistChunk extra: %v", err)
	}

	if err := cm.Restore(fileName); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := shard.FetchChunk("notes")
	if err != nil {
		t.Fatalf("FetchChunk after restore: %v", err)
	}
	if !got.Equal(v1) {
		t.Errorf("restore did not roll back notes: %v", got.ToMap())
	}

	if _, err := shard.FetchChunk("extra"); GetKindOrFail(t, err) != KindNotFound {
		t.Errorf("expected 'extra' chunk to be removed by restore, got %v", err)
	}
}

func TestCheckpointListOrdersNewestFirst(t *testing.T) {
	cm, shard, _ := newTestCheckpoints(t, 0)

	v, _ := FromMap(map[string]interface{}{"a": 1})
	shard.PersistChunk("notes", &v)

	if _, err := cm.Create("first", "", time.Unix(1000, 0)); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if _, err := cm.Create("second", "", time.Unix(2000, 0)); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	infos, err := cm.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(infos))
	}
	if infos[0].Manifest.Label != "second" {
		t.Errorf("expected newest checkpoint first, got %s", infos[0].Manifest.Label)
	}
}

func TestCheckpointRetentionPrunesOldest(t *testing.T) {
	cm, shard, _ := newTestCheckpoints(t, 2)

	v, _ := FromMap(map[string]interface{}{"a": 1})
	shard.PersistChunk("notes", &v)

	for i, ts := range []int64{1000, 2000, 3000} {
		if _, err := cm.Create("snap", "", time.Unix(ts, 0)); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	infos, err := cm.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected retention to prune to 2 checkpoints, got %d", len(infos))
	}
	if infos[0].Manifest.CreatedAt.Unix() != 3000 || infos[1].Manifest.CreatedAt.Unix() != 2000 {
		t.Errorf("expected the two newest checkpoints to survive, got %v, %v",
			infos[0].Manifest.CreatedAt, infos[1].Manifest.CreatedAt)
	}
}
