package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aimehq/aime/internal/domain/partner"
	"github.com/aimehq/aime/internal/domain/types"
	"github.com/aimehq/aime/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func fixture(id, version string) string {
	return fmt.Sprintf(`{
  "partnerId": %q,
  "version": %q,
  "name": "Partner %s",
  "trafficProfile": {"tier": "low_volume"},
  "personaRouting": {"defaultPersonaId": "P-%s"}
}`, id, version, id, id)
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestPartnerStore_LoadEmbedded(t *testing.T) {
	ctx := context.Background()
	store := NewPartnerStore()

	report, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"adeeva", "allmax", "gima"}, report.Loaded); diff != "" {
		t.Errorf("loaded partners mismatch (-want +got):\n%s", diff)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("expected no skipped fixtures, got %v", report.Skipped)
	}

	want, err := store.Get(ctx, "allmax")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"ALLMAX", " allmax ", "AllMax\t"} {
		got, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get(%q): %v", id, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Get(%q) differs (-want +got):\n%s", id, diff)
		}
	}

	if want.TrafficProfile.Tier != partner.TierHighVolume {
		t.Errorf("expected high_volume tier, got %q", want.TrafficProfile.Tier)
	}
	if want.Analytics.BaselineErrorRate != 0.008 {
		t.Errorf("expected fractional error rate, got %v", want.Analytics.BaselineErrorRate)
	}
	gima, _ := store.Get(ctx, "gima")
	if len(gima.PersonaRouting.Rules) != 2 || *gima.PersonaRouting.Rules[1].Match.MinReach != 5000 {
		t.Errorf("unexpected gima rules: %+v", gima.PersonaRouting.Rules)
	}

	if got := store.List(ctx); len(got) != 3 || got[2].PartnerID != "gima" {
		t.Errorf("unexpected list: %d entries", len(got))
	}
}

func TestPartnerStore_UnknownPartner(t *testing.T) {
	ctx := context.Background()
	store := NewPartnerStore()

	// Before the first load every lookup misses.
	if _, err := store.Get(ctx, "allmax"); !errors.Is(err, partner.ErrPartnerNotFound) {
		t.Fatalf("expected not found before load, got %v", err)
	}
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{"acme", "", "  "} {
		_, err := store.Get(ctx, id)
		if !errors.Is(err, partner.ErrPartnerNotFound) {
			t.Errorf("Get(%q): expected ErrPartnerNotFound, got %v", id, err)
		}
		if types.KindOf(err) != types.ErrNotFound {
			t.Errorf("Get(%q): expected not-found kind", id)
		}
	}
}

func TestPartnerStore_SkipsBadFixtures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"partnerId": "broken",`)
	writeFile(t, dir, "huge.yaml", "partnerId: huge\nname: Huge\ntrafficProfile:\n  tier: enormous\npersonaRouting:\n  defaultPersonaId: P-1\n")
	writeFile(t, dir, "dupe-rules.json", `{"partnerId":"dupe","name":"Dupe","trafficProfile":{"tier":"low_volume"},"personaRouting":{"defaultPersonaId":"P","rules":[{"id":"r","personaId":"A"},{"id":"r","personaId":"B"}]}}`)
	writeFile(t, dir, "acme.yml", "partner_id: ACME\nversion: 3\nname: Acme\ntrafficProfile:\n  tier: mid_volume\npersonaRouting:\n  defaultPersonaId: P-ACME\n  rules:\n    - id: acme_reels\n      personaId: P-ACME-REEL\n      match:\n        contentType: [Reel]\n")
	writeFile(t, dir, "notes.txt", "ignored")

	store := NewPartnerStore(WithSources(DirSource("fixtures", dir)))
	report, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"acme"}, report.Loaded); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}
	if len(report.Skipped) != 3 {
		t.Fatalf("expected 3 skipped fixtures, got %+v", report.Skipped)
	}

	acme, err := store.Get(ctx, "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acme.Version != "3" {
		t.Errorf("expected numeric version coerced to \"3\", got %q", acme.Version)
	}
	if diff := cmp.Diff([]string{"reel"}, acme.PersonaRouting.Rules[0].Match.ContentType); diff != "" {
		t.Errorf("match values should be normalised (-want +got):\n%s", diff)
	}
}

func TestPartnerStore_Overlay(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "allmax.json", fixture("allmax", "9"))
	writeFile(t, dir, "zeta.json", fixture("zeta", "1"))

	store := NewPartnerStore(WithDirectory("fixtures", dir), WithDirectory("imports", filepath.Join(dir, "missing")))
	report, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"adeeva", "allmax", "gima", "zeta"}, report.Loaded); diff != "" {
		t.Errorf("an override keeps its load position (-want +got):\n%s", diff)
	}
	allmax, _ := store.Get(ctx, "allmax")
	if allmax.Version != "9" || allmax.Name != "Partner allmax" {
		t.Errorf("expected overridden allmax, got version %q name %q", allmax.Version, allmax.Name)
	}
}

func TestPartnerStore_ZeroLoadedKeepsPreviousTable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "acme.json", fixture("acme", "1"))

	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store := NewPartnerStore(WithSources(DirSource("fixtures", dir)), WithClock(func() time.Time { return at }))
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeFile(t, dir, "acme.json", `not json`)
	report, err := store.Reload(ctx)
	if !errors.Is(err, ErrNoPartners) {
		t.Fatalf("expected ErrNoPartners, got %v", err)
	}
	if len(report.Skipped) != 1 {
		t.Errorf("expected the broken fixture in the report, got %+v", report.Skipped)
	}

	cfg, err := store.Get(ctx, "acme")
	if err != nil || cfg.Version != "1" {
		t.Fatalf("previous table should survive, got %+v, %v", cfg, err)
	}
	if !store.Report().At.Equal(at) || len(store.Report().Loaded) != 1 {
		t.Errorf("published report should be the previous one: %+v", store.Report())
	}
}

func TestPartnerStore_EmptySources(t *testing.T) {
	store := NewPartnerStore(WithSources())
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNoPartners) {
		t.Fatalf("expected ErrNoPartners, got %v", err)
	}
	if store.List(context.Background()) != nil {
		t.Error("expected no partners")
	}
}

func TestPartnerStore_ConcurrentReloadIsAtomic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ids := []string{"a", "b", "c", "d"}
	write := func(version int) {
		for _, id := range ids {
			writeFile(t, dir, id+".json", fixture(id, fmt.Sprint(version)))
		}
	}
	write(0)

	store := NewPartnerStore(WithSources(DirSource("fixtures", dir)))
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stop atomic.Bool
	var torn atomic.Int64
	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				list := store.List(ctx)
				if len(list) != len(ids) {
					torn.Add(1)
					continue
				}
				for _, cfg := range list[1:] {
					if cfg.Version != list[0].Version {
						torn.Add(1)
						break
					}
				}
				if _, err := store.Get(ctx, "c"); err != nil {
					torn.Add(1)
				}
			}
		}()
	}

	for v := 1; v <= 25; v++ {
		write(v)
		if _, err := store.Reload(ctx); err != nil {
			t.Errorf("reload %d: %v", v, err)
		}
	}
	stop.Store(true)
	wg.Wait()

	if n := torn.Load(); n != 0 {
		t.Fatalf("observed %d inconsistent tables", n)
	}
	if cfg, _ := store.Get(ctx, "a"); cfg.Version != "25" {
		t.Errorf("expected final version 25, got %q", cfg.Version)
	}
}

func TestPartnerStore_CoalescedReload(t *testing.T) {
	ctx := context.Background()
	store := NewPartnerStore()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Reload(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if len(store.IDs()) != 3 {
		t.Errorf("expected 3 partners, got %v", store.IDs())
	}
}

func TestPartnerStore_ReloadSeesPriorWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewPartnerStore(WithSources(EmbeddedSource(), DirSource("import_dir", dir)))
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	missing := make(chan string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(fixture(id, "1")), 0o600); err != nil {
				t.Errorf("write %s: %v", id, err)
				return
			}
			if _, err := store.Reload(ctx); err != nil {
				t.Errorf("reload %s: %v", id, err)
				return
			}
			if _, err := store.Get(ctx, id); err != nil {
				missing <- id
			}
		}()
	}
	wg.Wait()
	close(missing)

	for id := range missing {
		t.Errorf("partner %s written before reload but not served after it", id)
	}
	if got := len(store.IDs()); got != n+3 {
		t.Errorf("expected %d partners, got %d", n+3, got)
	}
}

func TestDecode(t *testing.T) {
	if _, err := Decode(".toml", []byte("x = 1")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if _, err := Decode(".json", []byte(`[1,2]`)); types.KindOf(err) != types.ErrParse {
		t.Errorf("expected parse kind for non-object, got %v", err)
	}
	_, err := Decode(".json", []byte(`{"partnerId":"x","name":"X","trafficProfile":{"tier":"low_volume"},"personaRouting":{"defaultPersonaId":"P"},"analytics":{"baselineErrorRate":4}}`))
	if types.KindOf(err) != types.ErrValidation {
		t.Errorf("expected validation kind for percentage error rate, got %v", err)
	}
	_, err = Decode(".json", []byte(`{"partnerId":"x","name":"X","trafficProfile":{"tier":"low_volume"},"personaRouting":{"defaultPersonaId":"P"},"analytics":{"dailyGrowthRate":-2}}`))
	if types.KindOf(err) != types.ErrValidation {
		t.Errorf("expected validation kind for growth rate <= -1, got %v", err)
	}
}

func TestPrepareImport(t *testing.T) {
	t.Run("partner_id alias is canonicalised", func(t *testing.T) {
		body := `{"partner_id":"Acme","version":3,"name":"Acme","trafficProfile":{"tier":"mid_volume"},"personaRouting":{"defaultPersonaId":"P-ACME"}}`

		cfg, doc, err := PrepareImport([]byte(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.PartnerID != "acme" {
			t.Errorf("partner id = %q, want acme", cfg.PartnerID)
		}
		again, err := Decode(".json", doc)
		if err != nil {
			t.Fatalf("persisted document does not reload: %v", err)
		}
		if again.Version != "3" {
			t.Errorf("version = %q, want 3", again.Version)
		}
	})

	t.Run("missing partner id", func(t *testing.T) {
		_, _, err := PrepareImport([]byte(`{"name":"Nameless"}`))
		if !errors.Is(err, ErrMissingPartnerID) || !errors.Is(err, types.ErrValidation) {
			t.Fatalf("expected missing partner id validation error, got %v", err)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		_, _, err := PrepareImport([]byte(`{"partnerId":"acme","name":"Acme","trafficProfile":{"tier":"huge"},"personaRouting":{"defaultPersonaId":"P"}}`))
		if !errors.Is(err, types.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("not JSON", func(t *testing.T) {
		_, _, err := PrepareImport([]byte(`partner_id: acme`))
		if !errors.Is(err, types.ErrParse) {
			t.Fatalf("expected parse error, got %v", err)
		}
	})
}
