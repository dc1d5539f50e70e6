package driver

import (
	"crypto/sha256"
	"testing"

	"sdlint/internal/diag"
	"sdlint/internal/source"
)

func openTestCache(t *testing.T) *ResultCache {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenResultCache("sdlint")
	if err != nil {
		t.Fatalf("OpenResultCache: %v", err)
	}
	return cache
}

func samplePayload() *resultPayload {
	return newResultPayload(sha256.Sum256([]byte("schema")), []diag.Diagnostic{
		{
			Severity: diag.SevWarning,
			Code:     diag.LntPastDeletionDate,
			Message:  "field `User.firstname` can be removed",
			Primary:  source.Span{File: 3, Start: 14, End: 23},
			Params:   map[string]string{"nodeName": "field `User.firstname`"},
			Notes: []diag.Note{
				{Span: source.Span{File: 3, Start: 32, End: 63}, Msg: "deletion date 25/12/2022 has passed"},
			},
			Fixes: []diag.Fix{
				{
					ID:          "deprecation-date:3:14-63",
					Title:       "Remove `firstname`",
					IsPreferred: true,
					Edits: []diag.TextEdit{
						{Span: source.Span{File: 3, Start: 14, End: 63}, OldText: "firstname: String @deprecated"},
					},
				},
			},
		},
	})
}

func TestResultCacheRoundTrip(t *testing.T) {
	cache := openTestCache(t)
	key := resultKey(sha256.Sum256([]byte("schema")), runStamp{config: "c", day: "2023-06-15"})

	if err := cache.Put(key, samplePayload()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got resultPayload
	hit, err := cache.Get(key, &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected a cache hit")
	}

	// Restore rebinds spans to the run's own FileID.
	const liveID source.FileID = 7
	bag := diag.NewBag(8)
	if !got.restore(liveID, bag) {
		t.Fatal("restore rejected a current-schema payload")
	}
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("restored diagnostics = %d, want 1", len(items))
	}
	d := items[0]
	if d.Code != diag.LntPastDeletionDate || d.Severity != diag.SevWarning {
		t.Errorf("restored diagnostic = %v", d)
	}
	if d.Primary.File != liveID || d.Primary.Start != 14 || d.Primary.End != 23 {
		t.Errorf("primary span = %v", d.Primary)
	}
	if d.Params["nodeName"] != "field `User.firstname`" {
		t.Errorf("params = %v", d.Params)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.File != liveID {
		t.Errorf("notes = %v", d.Notes)
	}
	if len(d.Fixes) != 1 {
		t.Fatalf("fixes = %d, want 1", len(d.Fixes))
	}
	fx := d.Fixes[0]
	if !fx.IsPreferred || fx.Title != "Remove `firstname`" {
		t.Errorf("fix = %+v", fx)
	}
	if len(fx.Edits) != 1 || fx.Edits[0].Span.File != liveID || fx.Edits[0].OldText == "" {
		t.Errorf("edits = %v", fx.Edits)
	}
}

func TestResultCacheMiss(t *testing.T) {
	cache := openTestCache(t)

	var out resultPayload
	hit, err := cache.Get(resultKey(sha256.Sum256([]byte("nope")), runStamp{}), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatal("expected a miss for an unknown key")
	}
}

func TestResultCacheStaleSchema(t *testing.T) {
	payload := samplePayload()
	payload.Schema = resultCacheSchema + 1

	bag := diag.NewBag(8)
	if payload.restore(1, bag) {
		t.Fatal("restore accepted a stale payload schema")
	}
	if bag.Len() != 0 {
		t.Errorf("bag mutated by rejected restore: %v", bag.Items())
	}
}

func TestResultCacheDropAll(t *testing.T) {
	cache := openTestCache(t)
	key := resultKey(sha256.Sum256([]byte("schema")), runStamp{day: "2023-06-15"})

	if err := cache.Put(key, samplePayload()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}

	var out resultPayload
	hit, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("Get after drop: %v", err)
	}
	if hit {
		t.Fatal("expected the cache to be empty after DropAll")
	}
}

func TestResultKey(t *testing.T) {
	hash := sha256.Sum256([]byte("schema"))
	base := runStamp{config: "cfg", rules: []string{"deprecation-date"}, day: "2023-06-15", max: 64}

	same := resultKey(hash, base)
	if same != resultKey(hash, base) {
		t.Error("identical inputs must produce identical keys")
	}

	variants := []runStamp{
		{config: "other", rules: base.rules, day: base.day, max: base.max},
		{config: base.config, rules: []string{"another-rule"}, day: base.day, max: base.max},
		{config: base.config, rules: base.rules, day: "2023-06-16", max: base.max},
		{config: base.config, rules: base.rules, day: base.day, max: 8},
	}
	for i, v := range variants {
		if resultKey(hash, v) == same {
			t.Errorf("variant %d should change the key: %+v", i, v)
		}
	}

	otherHash := sha256.Sum256([]byte("schema v2"))
	if resultKey(otherHash, base) == same {
		t.Error("content changes should change the key")
	}
}
